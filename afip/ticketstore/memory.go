package ticketstore

import (
	"sync"
	"time"

	"github.com/afipar/go-afip-client/afip/model"
)

// Memory keeps tickets in a process-local map. Useful for tests and for
// short-lived processes that do not want disk state.
type Memory struct {
	mu      sync.RWMutex
	entries map[Key]*model.AuthTicket
	clock   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[Key]*model.AuthTicket),
		clock:   time.Now,
	}
}

func (m *Memory) Get(key Key) (*model.AuthTicket, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.entries[key]
	if !ok || !t.ValidAt(m.clock()) {
		return nil, false
	}
	return t, true
}

func (m *Memory) Put(key Key, t *model.AuthTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = t
	return nil
}

func (m *Memory) Evict(key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}
