package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process alert deduplicator used when Redis is not
// configured. State is lost on restart.
type MemoryStore struct {
	mu   sync.Mutex
	sent map[string]struct{}
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sent: make(map[string]struct{})}
}

func (m *MemoryStore) MarkAlerted(_ context.Context, symbol string, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := alertKey("", symbol, date)
	if _, ok := m.sent[key]; ok {
		return false, nil
	}
	m.sent[key] = struct{}{}
	return true, nil
}

func (m *MemoryStore) UnmarkAlerted(_ context.Context, symbol string, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sent, alertKey("", symbol, date))
	return nil
}
