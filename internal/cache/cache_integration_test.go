//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/testutil"
)

func newTestCache(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	c, err := New(ctx, testutil.RequireEnv(t, "REDIS_URL"))
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return ctx, c
}

func TestIntegrationSessionStore_Lifecycle(t *testing.T) {
	ctx, c := newTestCache(t)
	store := NewSessionStore(c)

	session := &model.Session{
		TokenID:   "jti-" + testutil.UniqueID("s"),
		UserID:    "u1",
		Username:  "alice",
		CreatedAt: time.Now().UTC(),
	}
	if err := store.Set(ctx, session, time.Minute); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, session.TokenID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.UserID != "u1" || got.Username != "alice" || got.ExpiresAt.IsZero() {
		t.Errorf("unexpected session: %+v", got)
	}

	ttl, err := c.Client().TTL(ctx, sessionKey(session.TokenID)).Result()
	if err != nil {
		t.Fatalf("TTL failed: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("unexpected ttl %v", ttl)
	}

	if err := store.Clear(ctx, session.TokenID); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := store.Get(ctx, session.TokenID); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after Clear, got %v", err)
	}
}

func TestIntegrationSessionStore_CorruptEntry(t *testing.T) {
	ctx, c := newTestCache(t)
	store := NewSessionStore(c)

	if err := c.Client().Set(ctx, sessionKey("jti-bad"), "{not json", time.Minute).Err(); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}
	if _, err := store.Get(ctx, "jti-bad"); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if n, _ := c.Client().Exists(ctx, sessionKey("jti-bad")).Result(); n != 0 {
		t.Error("corrupt entry should be deleted")
	}
}

func TestIntegrationPlans_Cache(t *testing.T) {
	ctx, c := newTestCache(t)

	if _, err := c.GetPlans(ctx); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	plans := []*model.Plan{
		{ID: "plan_starter", Name: "Starter", Price: 0, Currency: "INR", DevicesLimit: 5, Features: []string{"a"}},
		{ID: "plan_advanced", Name: "Advanced", Price: 699, Currency: "INR", DevicesLimit: -1},
	}
	if err := c.SetPlans(ctx, plans, DefaultPlansTTL); err != nil {
		t.Fatalf("SetPlans failed: %v", err)
	}

	got, err := c.GetPlans(ctx)
	if err != nil {
		t.Fatalf("GetPlans failed: %v", err)
	}
	if len(got) != 2 || got[1].DevicesLimit != -1 || got[0].Features[0] != "a" {
		t.Errorf("unexpected plans: %+v", got)
	}

	if err := c.InvalidatePlans(ctx); err != nil {
		t.Fatalf("InvalidatePlans failed: %v", err)
	}
	if _, err := c.GetPlans(ctx); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after invalidate, got %v", err)
	}
}

func TestIntegrationRateLimit_TokenBucket(t *testing.T) {
	ctx, c := newTestCache(t)
	ip := "203.0.113." + testutil.UniqueID("ip")

	for i := 0; i < 3; i++ {
		res, err := c.CheckIPRateLimit(ctx, "login", ip, 1, 3)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !res.Allowed {
			t.Fatalf("check %d: expected allowed within burst", i)
		}
	}

	res, err := c.CheckIPRateLimit(ctx, "login", ip, 1, 3)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if res.Allowed || res.RetryAfter < time.Second {
		t.Errorf("expected denial with retry, got %+v", res)
	}

	// Scopes have separate buckets.
	res, err = c.CheckIPRateLimit(ctx, "chat", ip, 1, 3)
	if err != nil {
		t.Fatalf("check chat: %v", err)
	}
	if !res.Allowed {
		t.Error("expected chat scope to have its own bucket")
	}
}
