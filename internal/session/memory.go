package session

import (
	"context"
	"sync"

	"github.com/maxviazov/volleyball-scoreboard/internal/match"
)

// MemoryStore keeps encoded sessions in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]byte)}
}

func (m *MemoryStore) Load(_ context.Context, id string) (*match.Session, error) {
	m.mu.RLock()
	b, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(id, b)
}

func (m *MemoryStore) Save(_ context.Context, s *match.Session) error {
	b, err := encode(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.items[s.ID] = b
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

var _ Store = (*MemoryStore)(nil)
