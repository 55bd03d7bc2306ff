package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/model"
)

// sessionKeyPrefix is the Redis key prefix for bearer sessions.
const sessionKeyPrefix = "session:"

// SessionStore is a Redis-backed auth.SessionStore.
type SessionStore struct {
	cache *Cache
}

var _ auth.SessionStore = (*SessionStore)(nil)

// NewSessionStore returns a SessionStore using c.
func NewSessionStore(c *Cache) *SessionStore {
	return &SessionStore{cache: c}
}

func sessionKey(tokenID string) string {
	return sessionKeyPrefix + hashKey(tokenID)
}

// Get returns the session for tokenID or auth.ErrSessionNotFound.
func (s *SessionStore) Get(ctx context.Context, tokenID string) (*model.Session, error) {
	data, err := s.cache.client.Get(ctx, sessionKey(tokenID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, auth.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		// Corrupted entry - treat as logged out
		_ = s.cache.client.Del(ctx, sessionKey(tokenID)).Err()
		return nil, auth.ErrSessionNotFound
	}
	return &session, nil
}

// Set stores the session with the given ttl.
func (s *SessionStore) Set(ctx context.Context, session *model.Session, ttl time.Duration) error {
	stored := *session
	if ttl > 0 {
		stored.ExpiresAt = time.Now().UTC().Add(ttl)
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.cache.client.Set(ctx, sessionKey(session.TokenID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Clear deletes the session. Clearing an unknown token is not an error.
func (s *SessionStore) Clear(ctx context.Context, tokenID string) error {
	if err := s.cache.client.Del(ctx, sessionKey(tokenID)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
