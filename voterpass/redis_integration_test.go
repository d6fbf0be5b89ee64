// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

//go:build integration

package voterpass

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := NewRedisClient(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	store, err := NewRedisStore(client, 2*time.Second)
	require.NoError(t, err)

	t.Run("issue and resolve", func(t *testing.T) {
		pass, err := store.Issue(ctx, "voter-1", "session-1")
		require.NoError(t, err)

		got, err := store.Resolve(ctx, pass.Token)
		require.NoError(t, err)
		assert.Equal(t, "voter-1", got.VoterID)
		assert.Equal(t, "session-1", got.SessionID)
		assert.Equal(t, pass.Token, got.Token)
	})

	t.Run("use slides expiry", func(t *testing.T) {
		pass, err := store.Issue(ctx, "voter-2", "session-1")
		require.NoError(t, err)

		for i := 0; i < 3; i++ {
			time.Sleep(1200 * time.Millisecond)
			_, err := store.Resolve(ctx, pass.Token)
			require.NoError(t, err)
		}

		time.Sleep(2500 * time.Millisecond)
		_, err = store.Resolve(ctx, pass.Token)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("revoke", func(t *testing.T) {
		pass, err := store.Issue(ctx, "voter-3", "session-1")
		require.NoError(t, err)
		require.NoError(t, store.Revoke(ctx, pass.Token))

		_, err = store.Resolve(ctx, pass.Token)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
