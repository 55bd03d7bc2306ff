// Package testutil provides helpers for integration tests against real
// Postgres and Redis instances.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/cleanexit/cleanexit/internal/model"
	"github.com/cleanexit/cleanexit/internal/repository/migrations"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731001

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema rolls every migration back and applies them again, leaving
// empty tables and a freshly seeded plan catalog.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := migrations.Reset(ctx, db); err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

var seq atomic.Uint64

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// NewTestUser creates a test user with a placeholder email.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.User{
		ID:        UniqueID("user"),
		Username:  username,
		Email:     model.PlaceholderEmail(username),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestCertificate creates a certificate held by userID. An empty userID
// makes a guest certificate.
func NewTestCertificate(t testing.TB, userID string) *model.Certificate {
	t.Helper()
	if userID == "" {
		userID = model.GuestUserID
	}
	now := time.Now().UTC().Truncate(time.Microsecond)
	n := seq.Add(1)
	return &model.Certificate{
		ID:            UniqueID("cert"),
		UserID:        userID,
		CertificateID: fmt.Sprintf("CERT-%d-T%08d", now.UnixMilli(), n),
		DeviceType:    "Laptop",
		Standard:      model.DefaultStandard,
		Signature:     fmt.Sprintf("SIG-T%09d", n),
		WipedAt:       now,
		CreatedAt:     now,
	}
}

// NewTestTicket creates an open support ticket.
func NewTestTicket(t testing.TB) *model.Ticket {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Ticket{
		ID:        UniqueID("ticket"),
		Reference: fmt.Sprintf("TKT-T%08d", seq.Add(1)),
		Name:      "Test Submitter",
		Email:     "submitter@example.com",
		Subject:   "Test subject",
		Message:   "Test message",
		Status:    model.TicketOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
