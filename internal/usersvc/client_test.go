package usersvc

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /oauth/google/redirect_url", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderAPIKey) != "k" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"redirect_url": "https://accounts.example/auth"})
	})
	mux.HandleFunc("POST /sessions", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["code"] != "good" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"session_token": "tok"})
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"id":"ext-1","email":"ada@example.com","google_user_data":{"name":"Ada"}}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RedirectURL(t *testing.T) {
	srv := newTestServer(t)

	url, err := New(srv.URL+"/", "k", srv.Client()).RedirectURL(context.Background(), "google")
	require.NoError(t, err)
	assert.Equal(t, "https://accounts.example/auth", url)

	_, err = New(srv.URL, "wrong", srv.Client()).RedirectURL(context.Background(), "google")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestClient_Exchange(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, "k", srv.Client())

	ext, err := c.Exchange(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "ext-1", ext.ID)
	assert.Equal(t, "ada@example.com", ext.Email)
	assert.Equal(t, "Ada", ext.Name)

	_, err = c.Exchange(context.Background(), "bad")
	assert.Error(t, err)
}

func TestNewHTTPClient_NoRedirects(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("redirect was followed")
	}))
	defer target.Close()

	redirector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer redirector.Close()

	resp, err := NewHTTPClient(0).Get(redirector.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}
