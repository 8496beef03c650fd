// In file: internal/dialogue/store.go

// Package dialogue keeps the per-session conversation memory: a bounded,
// TTL-expiring history of user and assistant turns for every session id,
// plus small bits of session metadata such as the device location.
package dialogue

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Defaults applied when a Config field is zero.
const (
	DefaultMaxHistory  = 5
	DefaultTTL         = 30 * time.Minute
	DefaultMaxContexts = 1000
)

// Config bounds the store.
type Config struct {
	MaxHistory  int
	TTL         time.Duration
	MaxContexts int
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store maps session ids to their dialogue contexts.
//
// Expired contexts are swept lazily on every lookup, and when the number of
// contexts would exceed MaxContexts the one with the oldest last write is
// evicted. All mutations take the store lock and then the context lock, in
// that order.
type Store struct {
	mu       sync.Mutex
	contexts map[string]*Context
	cfg      Config
	now      func() time.Time
	logger   *zap.Logger
	sessions *keyedLocker
}

// NewStore creates an empty store. It is constructed once by the composition
// root and shared by reference.
func NewStore(cfg Config, logger *zap.Logger, opts ...Option) *Store {
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = DefaultMaxHistory
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxContexts <= 0 {
		cfg.MaxContexts = DefaultMaxContexts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		contexts: make(map[string]*Context),
		cfg:      cfg,
		now:      time.Now,
		logger:   logger.Named("dialogue"),
		sessions: newKeyedLocker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger.Info("dialogue store initialized",
		zap.Int("max_history", cfg.MaxHistory),
		zap.Duration("ttl", cfg.TTL),
		zap.Int("max_contexts", cfg.MaxContexts))
	return s
}

// LockSession serializes whole request pipelines for one session id. The
// returned function releases the lock and is safe to call more than once.
func (s *Store) LockSession(sessionID string) (unlock func()) {
	return s.sessions.lock(sessionID)
}

// GetOrCreate returns the context for sessionID, creating it if needed.
func (s *Store) GetOrCreate(sessionID string) *Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(sessionID)
}

// AddUserMessage appends a user turn to the session history.
func (s *Store) AddUserMessage(sessionID, text string) {
	s.addMessage(sessionID, RoleUser, text)
}

// AddAssistantMessage appends an assistant turn to the session history.
func (s *Store) AddAssistantMessage(sessionID, text string) {
	s.addMessage(sessionID, RoleAssistant, text)
}

// History returns the session's messages, oldest first.
func (s *Store) History(sessionID string) []Message {
	return s.GetOrCreate(sessionID).History()
}

// Clear empties the history of an existing session but keeps the context.
func (s *Store) Clear(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contexts[sessionID]
	if !ok {
		return false
	}
	c.clear(s.now())
	s.logger.Info("cleared dialogue context", zap.String("session_id", sessionID))
	return true
}

// Delete removes a session's context entirely.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contexts[sessionID]; !ok {
		return false
	}
	delete(s.contexts, sessionID)
	s.logger.Info("deleted dialogue context", zap.String("session_id", sessionID))
	return true
}

// SetLocation records the device location in the session metadata.
func (s *Store) SetLocation(sessionID string, loc Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID).setLocation(loc, s.now())
}

// Location returns the device location of a live session, if one was set.
func (s *Store) Location(sessionID string) (Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	c, ok := s.contexts[sessionID]
	if !ok {
		return Location{}, false
	}
	return c.location()
}

// Len returns the number of live contexts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.contexts)
}

func (s *Store) addMessage(sessionID string, role Role, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreateLocked(sessionID).append(role, text, s.now())
}

func (s *Store) getOrCreateLocked(sessionID string) *Context {
	s.sweepLocked()

	if c, ok := s.contexts[sessionID]; ok {
		return c
	}

	s.logger.Debug("creating dialogue context", zap.String("session_id", sessionID))
	// Make room first so the new context is never an eviction candidate.
	for len(s.contexts) >= s.cfg.MaxContexts && len(s.contexts) > 0 {
		s.evictOldestLocked()
	}
	c := newContext(sessionID, s.cfg.MaxHistory, s.cfg.TTL, s.now())
	s.contexts[sessionID] = c
	return c
}

// sweepLocked drops every expired context.
func (s *Store) sweepLocked() {
	now := s.now()
	for id, c := range s.contexts {
		if c.expired(now) {
			delete(s.contexts, id)
			s.logger.Info("dialogue context expired", zap.String("session_id", id))
		}
	}
}

// evictOldestLocked removes the context with the smallest last_updated.
func (s *Store) evictOldestLocked() {
	var (
		oldestID string
		oldestAt time.Time
		found    bool
	)
	for id, c := range s.contexts {
		at := c.LastUpdated()
		if !found || at.Before(oldestAt) {
			oldestID, oldestAt, found = id, at, true
		}
	}
	if found {
		delete(s.contexts, oldestID)
		s.logger.Info("dialogue store over capacity, evicted oldest context",
			zap.String("session_id", oldestID))
	}
}

// Stats is a point-in-time snapshot of the store.
type Stats struct {
	Contexts    int `json:"contexts"`
	MaxContexts int `json:"max_contexts"`
}

// Stats reports the live context count.
func (s *Store) Stats() Stats {
	return Stats{Contexts: s.Len(), MaxContexts: s.cfg.MaxContexts}
}
