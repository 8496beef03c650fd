// In file: internal/store/sql.go
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
)

// dialect captures what differs between the SQL backends.
type dialect struct {
	name        string
	schema      string
	placeholder func(n int) string
}

// sqlStore implements IntentStore on database/sql for any dialect.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
	now     func() time.Time
}

func newSQLStore(db *sql.DB, d dialect, logger *zap.Logger) (*sqlStore, error) {
	s := &sqlStore{db: db, dialect: d, logger: logger.Named("store").With(zap.String("driver", d.name)), now: time.Now}
	if _, err := db.Exec(d.schema); err != nil {
		return nil, errors.Wrapf(err, "failed to migrate %s schema", d.name)
	}
	s.logger.Info("intent store ready")
	return s, nil
}

func (s *sqlStore) Save(ctx context.Context, in *intent.Intent) error {
	if in == nil {
		return nil
	}
	entities, err := json.Marshal(in.Entities())
	if err != nil {
		return errors.Wrap(err, "failed to marshal entities")
	}
	p := s.dialect.placeholder
	stmt := fmt.Sprintf(
		"INSERT INTO intent_record (text, intent_type, confidence, entities, created_ts) VALUES (%s, %s, %s, %s, %s)",
		p(1), p(2), p(3), p(4), p(5),
	)
	if _, err := s.db.ExecContext(ctx, stmt,
		in.Text(), string(in.Type()), in.Confidence(), string(entities), s.now().Unix(),
	); err != nil {
		return errors.Wrapf(err, "failed to save intent for %q", in.Text())
	}
	return nil
}

func (s *sqlStore) FindByText(ctx context.Context, text string) (*intent.Intent, error) {
	query := fmt.Sprintf(
		"SELECT text, intent_type, confidence, entities FROM intent_record WHERE text = %s ORDER BY id DESC LIMIT 1",
		s.dialect.placeholder(1),
	)
	in, err := scanIntent(s.db.QueryRowContext(ctx, query, text))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to find intent for %q", text)
	}
	return in, nil
}

func (s *sqlStore) FindRecent(ctx context.Context, limit int) ([]*intent.Intent, error) {
	query := fmt.Sprintf(
		"SELECT text, intent_type, confidence, entities FROM intent_record ORDER BY id DESC LIMIT %s",
		s.dialect.placeholder(1),
	)
	rows, err := s.db.QueryContext(ctx, query, normalizeLimit(limit))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list recent intents")
	}
	defer rows.Close()

	var out []*intent.Intent
	for rows.Next() {
		in, err := scanIntent(rows)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan intent row")
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate intent rows")
	}
	return out, nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIntent(row rowScanner) (*intent.Intent, error) {
	var (
		text, typ  string
		confidence float64
		rawEnt     []byte
	)
	if err := row.Scan(&text, &typ, &confidence, &rawEnt); err != nil {
		return nil, err
	}
	entities := map[string]any{}
	if len(rawEnt) > 0 {
		if err := json.Unmarshal(rawEnt, &entities); err != nil {
			return nil, errors.Wrap(err, "failed to decode entities")
		}
	}
	return intent.New(intent.ParseType(typ), confidence, text, entities), nil
}
