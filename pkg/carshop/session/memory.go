package session

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	session   *Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Reads and writes both
// extend a session's TTL; sessions idle for longer are dropped on access
// and by Sweep.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore returns an in-process store. A zero ttl keeps sessions
// until the process exits.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.load(id)
	if entry, ok := m.sessions[id]; ok && m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
		m.sessions[id] = entry
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	working := m.load(id).Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.ID = id
	working.UpdatedAt = m.now()

	entry := memoryEntry{session: working}
	if m.ttl > 0 {
		entry.expiresAt = working.UpdatedAt.Add(m.ttl)
	}
	m.sessions[id] = entry
	return working.Clone(), nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// Sweep removes expired sessions and returns how many were dropped.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	dropped := 0
	for id, entry := range m.sessions {
		if m.expired(entry, now) {
			delete(m.sessions, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of stored sessions, expired ones included.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// load must be called with mu held.
func (m *MemoryStore) load(id string) *Session {
	entry, ok := m.sessions[id]
	if !ok {
		return New(id)
	}
	if m.expired(entry, m.now()) {
		delete(m.sessions, id)
		return New(id)
	}
	return entry.session
}

func (m *MemoryStore) expired(entry memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && now.After(entry.expiresAt)
}
