// In file: internal/store/memory.go
package store

import (
	"context"
	"sync"

	"github.com/chengwenxing-cmd/VoiceService/internal/intent"
)

// Memory is an append-only, process-local IntentStore.
type Memory struct {
	mu      sync.RWMutex
	records []*intent.Intent
	byText  map[string]int
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{byText: make(map[string]int)}
}

func (m *Memory) Save(_ context.Context, in *intent.Intent) error {
	if in == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, in)
	m.byText[in.Text()] = len(m.records) - 1
	return nil
}

func (m *Memory) FindByText(_ context.Context, text string) (*intent.Intent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	idx, ok := m.byText[text]
	if !ok {
		return nil, nil
	}
	return m.records[idx], nil
}

func (m *Memory) FindRecent(_ context.Context, limit int) ([]*intent.Intent, error) {
	limit = normalizeLimit(limit)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*intent.Intent, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

func (m *Memory) Close() error { return nil }
