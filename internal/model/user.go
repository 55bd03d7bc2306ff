// Package model defines domain entities for the application.
package model

import "time"

// UserEmailDomain is appended to usernames to derive placeholder emails.
const UserEmailDomain = "cleanexit.local"

// User is a username-keyed portal account. There is no password.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlaceholderEmail derives the email stored for a username-only account.
func PlaceholderEmail(username string) string {
	return username + "@" + UserEmailDomain
}

// Session is the server-side state behind a bearer token.
type Session struct {
	TokenID   string    `json:"token_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at t.
func (s *Session) Expired(t time.Time) bool {
	return !s.ExpiresAt.IsZero() && !t.Before(s.ExpiresAt)
}
