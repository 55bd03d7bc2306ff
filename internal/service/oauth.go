package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

// ErrUpstream is returned when an external identity provider fails.
var ErrUpstream = errors.New("identity provider unavailable")

var providerRegex = regexp.MustCompile(`^[a-z][a-z0-9_-]{1,31}$`)

// ExternalIdentity is the account an identity provider vouches for.
type ExternalIdentity struct {
	ID    string
	Email string
	Name  string
}

// IdentityProvider runs the third-party OAuth exchange.
type IdentityProvider interface {
	RedirectURL(ctx context.Context, provider string) (string, error)
	Exchange(ctx context.Context, code string) (*ExternalIdentity, error)
}

// OAuthService signs users in through an external identity provider. The
// resulting account is the same one a username login with the verified email
// would resolve to.
type OAuthService struct {
	provider IdentityProvider
	identity *IdentityService
}

// NewOAuthService creates a new OAuthService. A nil provider disables OAuth
// and every call returns a NotConfiguredError.
func NewOAuthService(provider IdentityProvider, identity *IdentityService) *OAuthService {
	return &OAuthService{provider: provider, identity: identity}
}

// Enabled reports whether an identity provider is configured.
func (s *OAuthService) Enabled() bool {
	return s.provider != nil
}

// RedirectURL returns the provider login URL the browser should visit.
func (s *OAuthService) RedirectURL(ctx context.Context, provider string) (string, error) {
	if !s.Enabled() {
		return "", notConfigured()
	}
	provider = strings.ToLower(strings.TrimSpace(provider))
	if !providerRegex.MatchString(provider) {
		return "", invalid("Unsupported OAuth provider")
	}

	url, err := s.provider.RedirectURL(ctx, provider)
	if err != nil {
		return "", errors.Join(ErrUpstream, err)
	}
	return url, nil
}

// CompleteLogin exchanges the provider's one-time code and opens a session
// for the verified account.
func (s *OAuthService) CompleteLogin(ctx context.Context, code string) (*LoginResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, invalid("No authorization code provided")
	}
	if !s.Enabled() {
		return nil, notConfigured()
	}

	ext, err := s.provider.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Join(ErrUpstream, err)
	}

	email := strings.ToLower(strings.TrimSpace(ext.Email))
	if email == "" || !emailRegex.MatchString(email) {
		return nil, errors.Join(ErrUpstream, errors.New("identity provider returned no verified email"))
	}

	user, created, err := s.identity.loginOrCreate(ctx, email, email)
	if err != nil {
		return nil, err
	}

	result, err := s.identity.StartSession(ctx, user)
	if err != nil {
		return nil, err
	}
	result.Created = created
	return result, nil
}

func notConfigured() error {
	return &NotConfiguredError{Service: "Users Service"}
}
