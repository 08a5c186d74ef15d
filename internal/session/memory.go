package session

import (
	"sync"
	"time"

	"giftcircle/internal/models"
	"giftcircle/internal/security"
)

type entry struct {
	user      models.PublicUser
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory with a fixed lifetime
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
	now      func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose sessions live for ttl
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(user models.PublicUser) (string, error) {
	token := security.GenerateSessionID()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = entry{user: user, expiresAt: s.now().Add(s.ttl)}
	return token, nil
}

func (s *MemoryStore) Get(token string) (*models.PublicUser, bool) {
	s.mu.RLock()
	e, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		return nil, false
	}
	user := e.user
	return &user, true
}

// Update replaces the cached user and keeps the token and its expiry
func (s *MemoryStore) Update(token string, user models.PublicUser) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok || !s.now().Before(e.expiresAt) {
		return "", ErrUnknownSession
	}
	e.user = user
	s.sessions[token] = e
	return token, nil
}

func (s *MemoryStore) Delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for token, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired ones included until swept
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
