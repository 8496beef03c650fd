// In file: internal/store/sqlite.go
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	// Pure-Go SQLite driver, registered as "sqlite".
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS intent_record (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	text        TEXT    NOT NULL,
	intent_type TEXT    NOT NULL,
	confidence  REAL    NOT NULL,
	entities    TEXT    NOT NULL DEFAULT '{}',
	created_ts  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_intent_record_text ON intent_record(text);
`

// NewSQLite opens (and migrates) a SQLite-backed IntentStore at path.
func NewSQLite(path string, logger *zap.Logger) (IntentStore, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
	}

	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite database %s", path)
	}

	// SQLite has a single writer; one connection also keeps ":memory:" shared.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping sqlite database")
	}

	s, err := newSQLStore(db, dialect{
		name:        "sqlite",
		schema:      sqliteSchema,
		placeholder: func(int) string { return "?" },
	}, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}
