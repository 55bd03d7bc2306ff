package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanexit/cleanexit/internal/model"
)

func TestMemorySessionStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	s := &model.Session{TokenID: "tok", UserID: "u1", Username: "alice"}
	require.NoError(t, store.Set(ctx, s, time.Hour))

	got, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.False(t, got.ExpiresAt.IsZero())

	require.NoError(t, store.Clear(ctx, "tok"))
	_, err = store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, store.Clear(ctx, "missing"))
}

func TestMemorySessionStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	now := time.Now()
	store.now = func() time.Time { return now }
	require.NoError(t, store.Set(ctx, &model.Session{TokenID: "tok", UserID: "u1"}, time.Minute))

	store.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err := store.Get(ctx, "tok")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionContext(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, SessionFromContext(ctx))
	assert.Empty(t, UserIDFromContext(ctx))
	assert.Panics(t, func() { MustSessionFromContext(ctx) })

	ctx = ContextWithSession(ctx, &model.Session{UserID: "u1"})
	assert.Equal(t, "u1", UserIDFromContext(ctx))
	assert.NotPanics(t, func() { MustSessionFromContext(ctx) })
}
