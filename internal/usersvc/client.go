// Package usersvc is a client for the hosted users service that brokers
// third-party OAuth logins.
package usersvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cleanexit/cleanexit/internal/service"
)

const (
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 5 * time.Second

	// HeaderAPIKey carries the deployment's API key.
	HeaderAPIKey = "x-api-key"

	maxResponseBytes = 1 << 20
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("users service %s: unexpected status %d", e.Op, e.StatusCode)
}

// Client calls the users service API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewHTTPClient creates an HTTP client for users service calls.
// It does not follow redirects.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: TLSHandshakeTimeout,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// New returns a Client. httpClient may be nil.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(10 * time.Second)
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// RedirectURL asks the users service for the provider's login URL.
func (c *Client) RedirectURL(ctx context.Context, provider string) (string, error) {
	var out struct {
		RedirectURL string `json:"redirect_url"`
	}
	path := "/oauth/" + url.PathEscape(provider) + "/redirect_url"
	if err := c.do(ctx, "redirect url", http.MethodGet, path, "", nil, &out); err != nil {
		return "", err
	}
	if out.RedirectURL == "" {
		return "", errors.New("users service redirect url: empty response")
	}
	return out.RedirectURL, nil
}

// Exchange trades a one-time OAuth code for the signed-in account.
func (c *Client) Exchange(ctx context.Context, code string) (*service.ExternalIdentity, error) {
	var session struct {
		SessionToken string `json:"session_token"`
	}
	if err := c.do(ctx, "exchange code", http.MethodPost, "/sessions", "", map[string]string{"code": code}, &session); err != nil {
		return nil, err
	}
	if session.SessionToken == "" {
		return nil, errors.New("users service exchange code: empty session token")
	}

	var me struct {
		ID             string `json:"id"`
		Email          string `json:"email"`
		GoogleUserData struct {
			Name string `json:"name"`
		} `json:"google_user_data"`
	}
	if err := c.do(ctx, "current user", http.MethodGet, "/users/me", session.SessionToken, nil, &me); err != nil {
		return nil, err
	}

	return &service.ExternalIdentity{ID: me.ID, Email: me.Email, Name: me.GoogleUserData.Name}, nil
}

func (c *Client) do(ctx context.Context, op, method, path, bearer string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("users service %s: encode: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("users service %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Cleanexit/1.0")
	req.Header.Set(HeaderAPIKey, c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("users service %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("users service %s: decode: %w", op, err)
	}
	return nil
}
