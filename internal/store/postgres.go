// In file: internal/store/postgres.go
package store

import (
	"database/sql"
	"fmt"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS intent_record (
	id          BIGSERIAL PRIMARY KEY,
	text        TEXT             NOT NULL,
	intent_type TEXT             NOT NULL,
	confidence  DOUBLE PRECISION NOT NULL,
	entities    JSONB            NOT NULL DEFAULT '{}',
	created_ts  BIGINT           NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_intent_record_text ON intent_record(text);
`

// NewPostgres connects to PostgreSQL and migrates the intent table.
func NewPostgres(dsn string, logger *zap.Logger) (IntentStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", redactURL(dsn))
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	s, err := newSQLStore(db, dialect{
		name:        "postgres",
		schema:      postgresSchema,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	}, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
