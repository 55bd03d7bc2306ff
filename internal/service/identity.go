package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/metrics"
	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 254
)

// IdentityService resolves usernames to accounts and manages sessions.
type IdentityService struct {
	users    UserStore
	sessions auth.SessionStore
	tokens   *auth.Tokens
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(users UserStore, sessions auth.SessionStore, tokens *auth.Tokens, recorder metrics.Recorder) *IdentityService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &IdentityService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		metrics:  recorder,
		now:      time.Now,
	}
}

// LoginResult is a resolved account plus the session token issued for it.
type LoginResult struct {
	User      *model.User
	Created   bool
	Token     string
	ExpiresAt time.Time
}

// Login resolves the username to an account, creating it on first use, and
// opens a session for it.
func (s *IdentityService) Login(ctx context.Context, username string) (*LoginResult, error) {
	user, created, err := s.LoginOrCreate(ctx, username)
	if err != nil {
		return nil, err
	}

	result, err := s.StartSession(ctx, user)
	if err != nil {
		return nil, err
	}
	result.Created = created
	return result, nil
}

// LoginOrCreate returns the account for username, creating it when none
// exists. Concurrent first logins for the same username resolve to one
// account. The boolean reports whether this call created it.
func (s *IdentityService) LoginOrCreate(ctx context.Context, username string) (*model.User, bool, error) {
	return s.loginOrCreate(ctx, username, "")
}

// loginOrCreate resolves username, storing email on a new account. An empty
// email stores the placeholder derived from the username.
func (s *IdentityService) loginOrCreate(ctx context.Context, username, email string) (*model.User, bool, error) {
	username, err := normalizeUsername(username)
	if err != nil {
		return nil, false, err
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err == nil {
		s.metrics.IncLogin(false)
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, storageErr("get user", err)
	}

	if email == "" {
		email = model.PlaceholderEmail(username)
	}

	now := s.now().UTC()
	user = &model.User{
		ID:        newID(),
		Username:  username,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrUsernameExists) {
			return nil, false, storageErr("create user", err)
		}
		// Lost the race to a concurrent first login.
		existing, getErr := s.users.GetUserByUsername(ctx, username)
		if getErr != nil {
			return nil, false, storageErr("get user", getErr)
		}
		s.metrics.IncLogin(false)
		return existing, false, nil
	}

	s.metrics.IncLogin(true)
	return user, true, nil
}

// StartSession issues a bearer token for user and records its session.
func (s *IdentityService) StartSession(ctx context.Context, user *model.User) (*LoginResult, error) {
	token, claims, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		TokenID:   claims.ID,
		UserID:    user.ID,
		Username:  user.Username,
		CreatedAt: claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.sessions.Set(ctx, session, s.tokens.TTL()); err != nil {
		return nil, storageErr("set session", err)
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Authenticate verifies a bearer token and returns its live session.
func (s *IdentityService) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, storageErr("get session", err)
	}
	if session.UserID != claims.Subject {
		return nil, ErrUnauthenticated
	}
	return session, nil
}

// Logout ends the session. Ending an already ended session succeeds.
func (s *IdentityService) Logout(ctx context.Context, session *model.Session) error {
	if session == nil {
		return ErrUnauthenticated
	}
	if err := s.sessions.Clear(ctx, session.TokenID); err != nil {
		return storageErr("clear session", err)
	}
	return nil
}

// CurrentUser returns the account behind a session.
func (s *IdentityService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageErr("get user", err)
	}
	return user, nil
}

func normalizeUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength {
		return "", invalid("Username must be at least %d characters", minUsernameLength)
	}
	if n > maxUsernameLength {
		return "", invalid("Username must be at most %d characters", maxUsernameLength)
	}
	return username, nil
}
