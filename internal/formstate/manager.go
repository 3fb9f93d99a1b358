package formstate

import (
	"sync"
	"time"
)

// Manager keeps one Store per browser session.
type Manager struct {
	mu     sync.RWMutex
	stores map[string]*entry
	now    func() time.Time
}

type entry struct {
	store *Store
	seen  time.Time
}

func NewManager() *Manager {
	return &Manager{stores: make(map[string]*entry), now: time.Now}
}

// Get returns the store for sessionID, creating an empty one on first use.
func (m *Manager) Get(sessionID string) *Store {
	m.mu.RLock()
	e, ok := m.stores[sessionID]
	m.mu.RUnlock()
	if ok {
		m.mu.Lock()
		e.seen = m.now()
		m.mu.Unlock()
		return e.store
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.stores[sessionID]; ok {
		e.seen = m.now()
		return e.store
	}
	e = &entry{store: newStoreAt(m.now), seen: m.now()}
	m.stores[sessionID] = e
	return e.store
}

// Has reports whether a store exists for sessionID.
func (m *Manager) Has(sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.stores[sessionID]
	return ok
}

// Reset drops the store of sessionID.
func (m *Manager) Reset(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sessionID)
}

// EvictIdle drops stores neither requested nor changed within ttl and returns
// how many were removed. Stores with a chat turn in flight are kept.
func (m *Manager) EvictIdle(ttl time.Duration) int {
	cutoff := m.now().Add(-ttl)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.stores {
		last := e.seen
		if t := e.store.lastTouched(); t.After(last) {
			last = t
		}
		if !last.Before(cutoff) || e.store.Snapshot().Loading {
			continue
		}
		delete(m.stores, id)
		n++
	}
	return n
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.stores)
}
