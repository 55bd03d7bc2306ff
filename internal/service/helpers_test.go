package service

import (
	"testing"
	"time"

	"github.com/cleanexit/cleanexit/internal/auth"
	"github.com/cleanexit/cleanexit/internal/metrics"
	"github.com/cleanexit/cleanexit/internal/repository/memory"
)

const testSecret = "test-session-secret-0123456789"

type testEnv struct {
	store    *memory.Store
	sessions *auth.MemorySessionStore
	metrics  *metrics.InMemoryRecorder

	identity      *IdentityService
	certificates  *CertificateService
	subscriptions *SubscriptionService
	tickets       *TicketService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.New()
	sessions := auth.NewMemorySessionStore()
	recorder := metrics.NewInMemory()

	return &testEnv{
		store:         store,
		sessions:      sessions,
		metrics:       recorder,
		identity:      NewIdentityService(store, sessions, auth.NewTokens(testSecret, time.Hour), recorder),
		certificates:  NewCertificateService(store, nil, recorder, nil),
		subscriptions: NewSubscriptionService(store, nil, nil),
		tickets:       NewTicketService(store, recorder),
	}
}
