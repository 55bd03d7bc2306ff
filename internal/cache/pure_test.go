package cache

import (
	"strings"
	"testing"
)

func TestHashKey_Deterministic(t *testing.T) {
	t.Parallel()

	if hashKey("192.168.1.100") != hashKey("192.168.1.100") {
		t.Error("Same input should produce same hash")
	}
}

func TestHashKey_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"token id", "0123456789abcdef0123456789abcdef"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := hashKey(tt.in); len(got) != 16 {
				t.Errorf("hashKey(%q) length = %d, want 16", tt.in, len(got))
			}
		})
	}
}

func TestHashKey_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
		{"public vs private", "8.8.8.8", "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if hashKey(tt.a) == hashKey(tt.b) {
				t.Errorf("%q and %q should hash differently", tt.a, tt.b)
			}
		})
	}
}

func TestKeysNeverContainRawValues(t *testing.T) {
	t.Parallel()

	ip := "203.0.113.7"
	key := rateLimitKey("login", ip)
	if !strings.HasPrefix(key, "ratelimit:ip:login:") {
		t.Errorf("unexpected rate limit key %q", key)
	}
	if strings.Contains(key, ip) {
		t.Errorf("rate limit key leaks the client IP: %q", key)
	}

	token := "0123456789abcdef0123456789abcdef"
	if sk := sessionKey(token); strings.Contains(sk, token) || !strings.HasPrefix(sk, sessionKeyPrefix) {
		t.Errorf("unexpected session key %q", sk)
	}
}
