// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeplanet/usercenter/internal/account"
)

const loginKey = "userLoginState"

func newTestStore(t *testing.T) (*Store, *MemoryRepository) {
	t.Helper()
	repo := NewMemoryRepository()
	store, err := NewStore(repo, time.Hour)
	require.NoError(t, err)
	return store, repo
}

func TestNewStore(t *testing.T) {
	t.Run("requires repository", func(t *testing.T) {
		store, err := NewStore(nil, time.Hour)
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "repository is required")
	})

	t.Run("requires positive ttl", func(t *testing.T) {
		store, err := NewStore(NewMemoryRepository(), 0)
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "ttl must be positive")
	})

	t.Run("requires logger", func(t *testing.T) {
		store, err := NewStoreWithLogger(NewMemoryRepository(), time.Hour, nil)
		require.Error(t, err)
		assert.Nil(t, store)
		assert.Contains(t, err.Error(), "logger is required")
	})
}

func TestStoreOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("empty token yields anonymous slot", func(t *testing.T) {
		store, repo := newTestStore(t)

		slot := store.Open(ctx, "")
		require.NotNil(t, slot)

		_, ok, err := slot.Get(ctx, loginKey)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, repo.Len())
	})

	t.Run("unknown token yields anonymous slot", func(t *testing.T) {
		store, repo := newTestStore(t)

		slot := store.Open(ctx, "no-such-token")
		_, ok, err := slot.Get(ctx, loginKey)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, repo.Len())
	})

	t.Run("resumes persisted session", func(t *testing.T) {
		store, _ := newTestStore(t)

		first := store.Open(ctx, "")
		view := &account.SafetyView{ID: 7, Handle: "yupi"}
		require.NoError(t, first.Set(ctx, loginKey, view))

		token, issued := first.IssuedToken()
		require.True(t, issued)

		second := store.Open(ctx, token)
		got, ok, err := second.Get(ctx, loginKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(7), got.ID)
		assert.Equal(t, "yupi", got.Handle)

		// Resumed slots never re-issue the token.
		_, issued = second.IssuedToken()
		assert.False(t, issued)
	})

	t.Run("expired session is dropped", func(t *testing.T) {
		repo := NewMemoryRepository()
		store, err := NewStore(repo, time.Hour)
		require.NoError(t, err)

		token, hash, err := GenerateToken()
		require.NoError(t, err)
		rec, err := NewRecord(hash, time.Now().Add(-time.Minute))
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, rec))

		slot := store.Open(ctx, token)
		_, ok, err := slot.Get(ctx, loginKey)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, repo.Len())
	})
}

func TestSlotLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("set creates session lazily", func(t *testing.T) {
		store, repo := newTestStore(t)

		slot := store.Open(ctx, "")
		assert.Equal(t, 0, repo.Len())

		require.NoError(t, slot.Set(ctx, loginKey, &account.SafetyView{ID: 1}))
		assert.Equal(t, 1, repo.Len())

		token, issued := slot.IssuedToken()
		assert.True(t, issued)
		assert.Len(t, token, TokenBytes*2)
	})

	t.Run("second set updates in place", func(t *testing.T) {
		store, repo := newTestStore(t)

		slot := store.Open(ctx, "")
		require.NoError(t, slot.Set(ctx, loginKey, &account.SafetyView{ID: 1}))
		require.NoError(t, slot.Set(ctx, loginKey, &account.SafetyView{ID: 2}))
		assert.Equal(t, 1, repo.Len())

		got, ok, err := slot.Get(ctx, loginKey)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, int64(2), got.ID)
	})

	t.Run("clear destroys the session", func(t *testing.T) {
		store, repo := newTestStore(t)

		slot := store.Open(ctx, "")
		require.NoError(t, slot.Set(ctx, loginKey, &account.SafetyView{ID: 1}))
		require.NoError(t, slot.Clear(ctx))

		assert.Equal(t, 0, repo.Len())
		assert.True(t, slot.Cleared())

		_, ok, err := slot.Get(ctx, loginKey)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("clearing anonymous slot is a no-op", func(t *testing.T) {
		store, repo := newTestStore(t)

		slot := store.Open(ctx, "")
		require.NoError(t, slot.Clear(ctx))
		assert.True(t, slot.Cleared())
		assert.Equal(t, 0, repo.Len())
	})

	t.Run("set after clear issues a new session", func(t *testing.T) {
		store, repo := newTestStore(t)

		slot := store.Open(ctx, "")
		require.NoError(t, slot.Set(ctx, loginKey, &account.SafetyView{ID: 1}))
		firstToken, _ := slot.IssuedToken()

		require.NoError(t, slot.Clear(ctx))
		require.NoError(t, slot.Set(ctx, loginKey, &account.SafetyView{ID: 1}))

		secondToken, issued := slot.IssuedToken()
		assert.True(t, issued)
		assert.NotEqual(t, firstToken, secondToken)
		assert.False(t, slot.Cleared())
		assert.Equal(t, 1, repo.Len())
	})
}

func TestStoreSweep(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	store, err := NewStore(repo, time.Hour)
	require.NoError(t, err)

	live, err := NewRecord("live", time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, live))

	stale, err := NewRecord("stale", time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, stale))

	n, err := store.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, 1, repo.Len())
}
