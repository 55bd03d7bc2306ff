package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cleanexit/cleanexit/internal/model"
)

// ErrSessionNotFound is returned when no live session exists for a token id.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists sessions keyed by token id. Login and logout only
// depend on this interface.
type SessionStore interface {
	Get(ctx context.Context, tokenID string) (*model.Session, error)
	Set(ctx context.Context, s *model.Session, ttl time.Duration) error
	Clear(ctx context.Context, tokenID string) error
}

// MemorySessionStore is an in-process SessionStore.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]model.Session
	now      func() time.Time
}

// NewMemorySessionStore returns an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]model.Session), now: time.Now}
}

// Get returns the session for tokenID.
func (m *MemorySessionStore) Get(ctx context.Context, tokenID string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[tokenID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Expired(m.now()) {
		delete(m.sessions, tokenID)
		return nil, ErrSessionNotFound
	}
	return &s, nil
}

// Set stores a session. A positive ttl overrides the session's expiry.
func (m *MemorySessionStore) Set(ctx context.Context, s *model.Session, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *s
	if ttl > 0 {
		stored.ExpiresAt = m.now().Add(ttl)
	}
	m.sessions[s.TokenID] = stored
	return nil
}

// Clear removes a session. Clearing an unknown token is not an error.
func (m *MemorySessionStore) Clear(ctx context.Context, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, tokenID)
	return nil
}
