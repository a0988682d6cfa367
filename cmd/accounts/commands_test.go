package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/golden-vcr/twitter-auth/internal/users"
)

func Test_account_commands(t *testing.T) {
	store, err := users.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Create(ctx, users.User{Username: "twitter/alice", Name: "alice", Email: "alice@twitter.example"}))

	require.NoError(t, runBlockCommand(ctx, store, "twitter/alice"))
	u, err := store.Get(ctx, "twitter/alice")
	require.NoError(t, err)
	assert.True(t, u.Blocked)

	require.NoError(t, runUnblockCommand(ctx, store, "twitter/alice"))
	require.NoError(t, runRequireActivationCommand(ctx, store, "twitter/alice"))
	u, err = store.Get(ctx, "twitter/alice")
	require.NoError(t, err)
	assert.False(t, u.Blocked)
	assert.Len(t, u.Activation, 32)

	require.NoError(t, runActivateCommand(ctx, store, "twitter/alice"))
	u, err = store.Get(ctx, "twitter/alice")
	require.NoError(t, err)
	assert.False(t, u.IsDenied())

	assert.ErrorIs(t, runBlockCommand(ctx, store, "twitter/nobody"), users.ErrNotFound)
	assert.ErrorIs(t, runShowCommand(ctx, store, "twitter/nobody"), users.ErrNotFound)
}
