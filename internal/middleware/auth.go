package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/service"
)

// Authenticator resolves a bearer token to its session.
// *service.IdentityService implements it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Session, error)
}

// AuthConfig holds configuration for the session middleware.
type AuthConfig struct {
	Logger        *slog.Logger
	Authenticator Authenticator
}

// Session returns a middleware that authenticates a bearer token when one is
// sent and stores the session in the request context. Requests without a
// token pass through as guests; a token that does not verify is rejected.
func Session(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, present := extractBearerToken(r)
			if !present {
				next.ServeHTTP(w, r)
				return
			}

			session, err := cfg.Authenticator.Authenticate(r.Context(), token)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					cfg.Logger.Warn("authentication failed",
						slog.String("reason", "invalid_token"),
						slog.String("endpoint", r.Method+" "+r.URL.Path),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeAuthError(w)
					return
				}
				cfg.Logger.Error("session lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeError(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			recordUser(r.Context(), session.UserID)
			ctx := auth.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireSession rejects requests that carry no authenticated session.
// It must run after Session.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth.SessionFromContext(r.Context()) == nil {
			writeAuthError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractBearerToken returns the token from "Authorization: Bearer <token>".
// present is true whenever an Authorization header was sent.
func extractBearerToken(r *http.Request) (token string, present bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, value, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(value), true
}

// writeAuthError writes a 401 Unauthorized response. The message is the
// same for every failure.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="cleanexit"`)
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}
