package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/service"
)

type fakeAuthenticator struct {
	sessions map[string]*model.Session
	err      error
}

func (f *fakeAuthenticator) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, service.ErrUnauthenticated
}

func newAuthConfig(a Authenticator) AuthConfig {
	return AuthConfig{Logger: slog.New(slog.NewTextHandler(io.Discard, nil)), Authenticator: a}
}

func TestSession(t *testing.T) {
	authn := &fakeAuthenticator{sessions: map[string]*model.Session{
		"good": {TokenID: "t1", UserID: "u1", Username: "alice"},
	}}

	var gotUser string
	handler := Session(newAuthConfig(authn))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = auth.UserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{"no header is a guest", "", http.StatusOK, ""},
		{"valid token", "Bearer good", http.StatusOK, "u1"},
		{"scheme is case insensitive", "bearer good", http.StatusOK, "u1"},
		{"unknown token", "Bearer nope", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, ""},
		{"empty bearer", "Bearer ", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser = ""
			req := httptest.NewRequest(http.MethodGet, "/api/certificate", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if gotUser != tt.wantUser {
				t.Errorf("user = %q, want %q", gotUser, tt.wantUser)
			}
		})
	}
}

func TestSession_StoreFailure(t *testing.T) {
	authn := &fakeAuthenticator{err: &service.StorageError{Op: "get session", Err: errors.New("redis down")}}
	handler := Session(newAuthConfig(authn))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer anything")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRequireSession(t *testing.T) {
	handler := RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/subscription", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") == "" {
		t.Error("WWW-Authenticate not set")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/subscription", nil)
	req = req.WithContext(auth.ContextWithSession(req.Context(), &model.Session{UserID: "u1"}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
