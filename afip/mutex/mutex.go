// Package mutex provides a mutex keyed by an arbitrary comparable
// value. Entries persist for the life of the Keyed value, which keeps
// the implementation trivial; intended for small, bounded key spaces.
package mutex

import "sync"

type Keyed[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*sync.Mutex
}

func (m *Keyed[K]) Lock(key K) {
	m.mu.Lock()
	if m.locks == nil {
		m.locks = make(map[K]*sync.Mutex)
	}
	l, ok := m.locks[key]
	if !ok {
		l = &sync.Mutex{}
		m.locks[key] = l
	}
	m.mu.Unlock()
	l.Lock()
}

// Unlock releases the lock for key. Calling it without a matching Lock
// is a programming error, same as with sync.Mutex.
func (m *Keyed[K]) Unlock(key K) {
	m.mu.Lock()
	l := m.locks[key]
	m.mu.Unlock()
	l.Unlock()
}
