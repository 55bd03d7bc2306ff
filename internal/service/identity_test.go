package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanexit/cleanexit/internal/model"
)

func TestLoginOrCreate_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, created, err := env.identity.LoginOrCreate(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "alice", first.Username)
	assert.Equal(t, "alice@"+model.UserEmailDomain, first.Email)

	second, created, err := env.identity.LoginOrCreate(ctx, "  alice ")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	snap := env.metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.UsersCreated)
	assert.Equal(t, uint64(1), snap.LoginsExisting)
}

func TestLoginOrCreate_Validation(t *testing.T) {
	env := newTestEnv(t)

	for _, name := range []string{"", "  ", "ab", " ab "} {
		_, _, err := env.identity.LoginOrCreate(context.Background(), name)
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr), "username %q", name)
		assert.Equal(t, "Username must be at least 3 characters", vErr.Message)
	}
}

func TestLoginOrCreate_Concurrent(t *testing.T) {
	env := newTestEnv(t)

	const n = 16
	ids := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user, _, err := env.identity.LoginOrCreate(context.Background(), "racer")
			if assert.NoError(t, err) {
				ids[i] = user.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, uint64(1), env.metrics.Snapshot().UsersCreated)
}

func TestLoginOrCreate_StorageError(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailWith("GetUserByUsername", errors.New("connection refused"))

	_, _, err := env.identity.LoginOrCreate(context.Background(), "alice")
	assert.True(t, IsStorage(err))
}

func TestLogin_SessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	result, err := env.identity.Login(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, result.Created)
	require.NotEmpty(t, result.Token)

	session, err := env.identity.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, session.UserID)
	assert.Equal(t, "bob", session.Username)

	me, err := env.identity.CurrentUser(ctx, session.UserID)
	require.NoError(t, err)
	assert.Equal(t, "bob", me.Username)

	require.NoError(t, env.identity.Logout(ctx, session))
	_, err = env.identity.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	// Logging out twice is fine.
	assert.NoError(t, env.identity.Logout(ctx, session))
}

func TestAuthenticate_RejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.identity.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestCurrentUser_NotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.identity.CurrentUser(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
