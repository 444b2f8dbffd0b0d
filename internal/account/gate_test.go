// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeplanet/usercenter/internal/account"
	"github.com/codeplanet/usercenter/internal/account/accounttest"
)

const testLoginKey = "userLoginState"

const testAdminRole = 1

func TestGate_IsAdmin(t *testing.T) {
	ctx := context.Background()
	gate := account.NewGate(testAdminRole, testLoginKey)

	t.Run("nil session", func(t *testing.T) {
		assert.False(t, gate.IsAdmin(ctx, nil))
	})

	t.Run("anonymous session", func(t *testing.T) {
		assert.False(t, gate.IsAdmin(ctx, accounttest.NewMemorySession()))
	})

	t.Run("ordinary role", func(t *testing.T) {
		sess := accounttest.NewMemorySession()
		require.NoError(t, sess.Set(ctx, testLoginKey, &account.SafetyView{ID: 1, Role: account.RoleOrdinary}))
		assert.False(t, gate.IsAdmin(ctx, sess))
	})

	t.Run("admin role", func(t *testing.T) {
		sess := accounttest.NewMemorySession()
		require.NoError(t, sess.Set(ctx, testLoginKey, &account.SafetyView{ID: 1, Role: testAdminRole}))
		assert.True(t, gate.IsAdmin(ctx, sess))
	})

	t.Run("session store fault fails closed", func(t *testing.T) {
		sess := accounttest.NewMemorySession()
		sess.GetErr = errors.New("store down")
		assert.False(t, gate.IsAdmin(ctx, sess))
	})
}
