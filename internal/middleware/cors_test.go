package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCORS(t *testing.T) {
	tests := []struct {
		name           string
		allowedOrigins []string
		requestOrigin  string
		method         string
		wantStatus     int
		wantHeader     string
	}{
		{
			name:           "wildcard allows any origin",
			allowedOrigins: []string{"*"},
			requestOrigin:  "https://anywhere.example",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "*",
		},
		{
			name:           "no origins configured blocks all",
			allowedOrigins: []string{},
			requestOrigin:  "https://example.com",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "",
		},
		{
			name:           "allowed origin gets header",
			allowedOrigins: []string{"https://cleanexit.example"},
			requestOrigin:  "https://cleanexit.example",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://cleanexit.example",
		},
		{
			name:           "disallowed origin blocked on preflight",
			allowedOrigins: []string{"https://cleanexit.example"},
			requestOrigin:  "https://evil.com",
			method:         http.MethodOptions,
			wantStatus:     http.StatusForbidden,
			wantHeader:     "",
		},
		{
			name:           "preflight returns no content",
			allowedOrigins: []string{"*"},
			requestOrigin:  "https://cleanexit.example",
			method:         http.MethodOptions,
			wantStatus:     http.StatusNoContent,
			wantHeader:     "*",
		},
		{
			name:           "subdomain pattern",
			allowedOrigins: []string{"*.cleanexit.example"},
			requestOrigin:  "https://app.cleanexit.example",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://app.cleanexit.example",
		},
		{
			name:           "subdomain pattern rejects apex lookalike",
			allowedOrigins: []string{"*.cleanexit.example"},
			requestOrigin:  "https://evilcleanexit.example",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "",
		},
		{
			name:           "case insensitive origin match",
			allowedOrigins: []string{"HTTPS://CLEANEXIT.EXAMPLE"},
			requestOrigin:  "https://cleanexit.example",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "https://cleanexit.example",
		},
		{
			name:           "no origin header skips CORS",
			allowedOrigins: []string{"*"},
			requestOrigin:  "",
			method:         http.MethodGet,
			wantStatus:     http.StatusOK,
			wantHeader:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCORSConfig()
			cfg.AllowedOrigins = tt.allowedOrigins

			handler := CORS(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/plans", nil)
			if tt.requestOrigin != "" {
				req.Header.Set("Origin", tt.requestOrigin)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}

			got := rec.Header().Get("Access-Control-Allow-Origin")
			if got != tt.wantHeader {
				t.Errorf("Access-Control-Allow-Origin = %q, want %q", got, tt.wantHeader)
			}
		})
	}
}

func TestCORSPreflightHeaders(t *testing.T) {
	handler := CORS(DefaultCORSConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("preflight reached the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/certificate", nil)
	req.Header.Set("Origin", "https://cleanexit.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET, POST, PUT, DELETE, OPTIONS" {
		t.Errorf("Access-Control-Allow-Methods = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got != "Content-Type, Authorization, X-Request-ID" {
		t.Errorf("Access-Control-Allow-Headers = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Max-Age"); got != "86400" {
		t.Errorf("Access-Control-Max-Age = %q", got)
	}
}
