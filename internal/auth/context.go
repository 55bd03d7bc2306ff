// Package auth provides bearer session tokens and request session context.
package auth

import (
	"context"

	"github.com/cleanexit/cleanexit/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the context key for storing the Session.
	sessionContextKey contextKey = "session"
)

// ContextWithSession adds the caller's Session to the context.
func ContextWithSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext retrieves the Session from the context.
// Returns nil if not present.
func SessionFromContext(ctx context.Context) *model.Session {
	s, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return nil
	}
	return s
}

// MustSessionFromContext retrieves the Session from the context.
// Panics if not present (use only behind RequireSession).
func MustSessionFromContext(ctx context.Context) *model.Session {
	s := SessionFromContext(ctx)
	if s == nil {
		panic("session not found - ensure session middleware is applied")
	}
	return s
}

// UserIDFromContext is a convenience function to get user ID from context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	s := SessionFromContext(ctx)
	if s == nil {
		return ""
	}
	return s.UserID
}
