package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/chat"
	"github.com/cleanexit/cleanexit/internal/metrics"
	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/repository/memory"
	"github.com/cleanexit/cleanexit/internal/service"
)

type testHandlers struct {
	store    *memory.Store
	metrics  *metrics.InMemoryRecorder
	identity *service.IdentityService

	auth          *AuthHandler
	certificates  *CertificateHandler
	tickets       *TicketHandler
	subscriptions *SubscriptionHandler
	chat          *ChatHandler
}

func newTestHandlers(t *testing.T) *testHandlers {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	recorder := metrics.NewInMemory()
	identity := service.NewIdentityService(store, auth.NewMemorySessionStore(),
		auth.NewTokens("handler-test-secret-0123456789", time.Hour), recorder)

	return &testHandlers{
		store:         store,
		metrics:       recorder,
		identity:      identity,
		auth:          NewAuthHandler(identity, nil, logger),
		certificates:  NewCertificateHandler(service.NewCertificateService(store, nil, recorder, logger), logger),
		tickets:       NewTicketHandler(service.NewTicketService(store, recorder), logger),
		subscriptions: NewSubscriptionHandler(service.NewSubscriptionService(store, nil, logger), logger),
		chat:          NewChatHandler(service.NewChatService(chat.New(), recorder), logger),
	}
}

// login creates an account and returns a session for it.
func (th *testHandlers) login(t *testing.T, username string) *model.Session {
	t.Helper()

	result, err := th.identity.Login(context.Background(), username)
	if err != nil {
		t.Fatalf("login %s: %v", username, err)
	}
	session, err := th.identity.Authenticate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("authenticate %s: %v", username, err)
	}
	return session
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withSession(r *http.Request, s *model.Session) *http.Request {
	return r.WithContext(auth.ContextWithSession(r.Context(), s))
}

func withURLParams(r *http.Request, kv ...string) *http.Request {
	rctx := chi.NewRouteContext()
	for i := 0; i+1 < len(kv); i += 2 {
		rctx.URLParams.Add(kv[i], kv[i+1])
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeEnvelope decodes the response envelope, unmarshalling data into dst
// when dst is non-nil.
func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dst any) Envelope {
	t.Helper()

	var raw struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if dst != nil && len(raw.Data) > 0 {
		if err := json.Unmarshal(raw.Data, dst); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return Envelope{Success: raw.Success, Error: raw.Error}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    io.Reader
		limit   int64
		status  int
		message string
	}{
		{"empty body", strings.NewReader(""), 0, http.StatusBadRequest, "Request body is required"},
		{"malformed", strings.NewReader("{"), 0, http.StatusBadRequest, "Invalid request body"},
		{"wrong type", strings.NewReader(`{"username":42}`), 0, http.StatusBadRequest, "Invalid request body"},
		{"too large", strings.NewReader(`{"username":"` + strings.Repeat("a", 64) + `"}`), 16, http.StatusRequestEntityTooLarge, "Request body too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", tt.body)
			if tt.limit > 0 {
				req.Body = http.MaxBytesReader(rec, req.Body, tt.limit)
			}

			var dst struct {
				Username string `json:"username"`
			}
			if decodeJSON(rec, req, &dst) {
				t.Fatal("expected decode to fail")
			}
			if rec.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rec.Code)
			}
			env := decodeEnvelope(t, rec, nil)
			if env.Success || env.Error != tt.message {
				t.Errorf("unexpected envelope: %+v", env)
			}
		})
	}
}

func TestNotFoundAndMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	MethodNotAllowed(rec, httptest.NewRequest(http.MethodPatch, "/api/login", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
	if env := decodeEnvelope(t, rec, nil); env.Error != "Method not allowed" {
		t.Errorf("unexpected error: %q", env.Error)
	}
}
