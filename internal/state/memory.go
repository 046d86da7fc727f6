package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps users in process memory. Safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int64]Profile
	now   func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{users: make(map[int64]Profile), now: time.Now}
}

// Register implements Store.
func (s *MemoryStore) Register(_ context.Context, p Profile, initial string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.users[p.ID]
	if !ok {
		p.State = initial
		stored = p
	}
	stored.LastActivity = s.now()
	s.users[p.ID] = stored
	return stored, nil
}

// State implements Store.
func (s *MemoryStore) State(_ context.Context, userID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.users[userID]
	if !ok {
		return "", ErrUserNotFound
	}
	return p.State, nil
}

// SetState implements Store.
func (s *MemoryStore) SetState(_ context.Context, userID int64, status string) error {
	return s.update(userID, func(p *Profile) { p.State = status })
}

// SetLang implements Store.
func (s *MemoryStore) SetLang(_ context.Context, userID int64, lang string) error {
	return s.update(userID, func(p *Profile) { p.Lang = lang })
}

func (s *MemoryStore) update(userID int64, fn func(*Profile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	fn(&p)
	p.LastActivity = s.now()
	s.users[userID] = p
	return nil
}
