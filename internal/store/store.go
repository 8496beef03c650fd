// In file: internal/store/store.go

// Package store persists confidently recognised intents so that repeated
// utterances can be answered from the cache strategy without re-running the
// rule or LLM strategies.
//
// Three backends share one IntentStore interface: an in-memory store, a
// SQLite database (the default) and PostgreSQL. Any of them can be fronted by
// a Redis read-through cache.
package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// IntentStore is the persistence contract used by the strategy chain.
type IntentStore interface {
	// Save appends the intent. Saving the same text again makes the newer
	// row the one FindByText returns.
	Save(ctx context.Context, in *intent.Intent) error
	// FindByText returns the most recently saved intent for the exact text,
	// or (nil, nil) when there is none.
	FindByText(ctx context.Context, text string) (*intent.Intent, error)
	// FindRecent returns up to limit intents, newest first.
	FindRecent(ctx context.Context, limit int) ([]*intent.Intent, error)
	// Close releases the underlying connections.
	Close() error
}

// Open picks a backend from a database URL:
//
//	""  or "memory://"            in-process map
//	"sqlite://path/to/file.db"    SQLite file (":memory:" also works)
//	"postgres://..." / "postgresql://..."
func Open(databaseURL string, logger *zap.Logger) (IntentStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch {
	case databaseURL == "" || databaseURL == "memory://":
		return NewMemory(), nil
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return NewSQLite(strings.TrimPrefix(databaseURL, "sqlite://"), logger)
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return NewPostgres(databaseURL, logger)
	default:
		return nil, errors.Errorf("unsupported database url %q", redactURL(databaseURL))
	}
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}

// redactURL keeps the scheme only, so credentials never reach the logs.
func redactURL(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		return u[:i+3] + "***"
	}
	return "***"
}
