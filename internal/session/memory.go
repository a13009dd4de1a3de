package session

import (
	"sync"
	"time"

	"github.com/m3rciful/expensebot/internal/txn"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore constructs an in-process Store. A non-positive ttl uses
// DefaultTTL; a nil clock uses time.Now.
func NewMemoryStore(ttl time.Duration, now func() time.Time) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if now == nil {
		now = time.Now
	}
	return &memoryStore{
		sessions: make(map[int64]*Session),
		ttl:      ttl,
		now:      now,
	}
}

func (m *memoryStore) expired(s *Session, now time.Time) bool {
	return !now.Before(s.CreatedAt.Add(m.ttl))
}

// live returns the session of a user unless it has expired. Callers hold mu.
func (m *memoryStore) live(userID int64) (*Session, bool) {
	s, ok := m.sessions[userID]
	if !ok || m.expired(s, m.now()) {
		return nil, false
	}
	return s, true
}

func (m *memoryStore) Get(userID int64) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.live(userID)
	if !ok {
		return Session{}, false
	}
	return *s, true
}

func (m *memoryStore) Create(userID int64, t txn.Type) Session {
	now := m.now()
	s := &Session{UserID: userID, Type: t, CreatedAt: now, UpdatedAt: now}
	if mod, ok := txn.ModuleFor(t); ok {
		s.Step = mod.First()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[userID] = s
	return *s
}

func (m *memoryStore) MergeFields(userID int64, d txn.Draft) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(userID)
	if !ok {
		return
	}
	s.Draft = s.Draft.Merge(d)
	s.UpdatedAt = m.now()
}

func (m *memoryStore) Patch(userID int64, p Patch) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.live(userID)
	if !ok {
		return
	}
	if p.Step != nil {
		s.Step = *p.Step
	}
	if p.AwaitingInput != nil {
		s.AwaitingInput = *p.AwaitingInput
	}
	if p.Preset != nil {
		s.Preset = *p.Preset
	}
	s.UpdatedAt = m.now()
}

func (m *memoryStore) Clear(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
}

func (m *memoryStore) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for id, s := range m.sessions {
		if m.expired(s, now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
