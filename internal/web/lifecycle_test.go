// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package web

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/codeplanet/usercenter/internal/account"
	"github.com/codeplanet/usercenter/internal/account/accounttest"
	"github.com/codeplanet/usercenter/internal/session"
)

func newLifecycleServer(t *testing.T) *Server {
	t.Helper()

	hasher, err := account.NewHasher("md5", "pepper")
	require.NoError(t, err)
	gate := account.NewGate(testAdminRole, testLoginKey)
	svc, err := account.NewService(accounttest.NewFakeRepository(), hasher, gate, testLoginKey)
	require.NoError(t, err)
	sessions, err := session.NewStore(session.NewMemoryRepository(), time.Hour)
	require.NoError(t, err)

	srv, err := NewServer(Config{
		Addr:          "127.0.0.1:0",
		LoginStateKey: testLoginKey,
		AdminRole:     testAdminRole,
		SessionTTL:    time.Hour,
	}, svc, sessions, nil, nil)
	require.NoError(t, err)
	return srv
}

func TestServer_StartStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	defer http.DefaultClient.CloseIdleConnections()

	srv := newLifecycleServer(t)

	errCh, err := srv.Start()
	require.NoError(t, err)
	require.NotEmpty(t, srv.Addr())

	// The API answers while running.
	resp, err := http.Get("http://" + srv.Addr() + "/api/users/search")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))

	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			t.Errorf("unexpected error on shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("timeout waiting for error channel to close")
	}
}

func TestServer_DoubleStartFails(t *testing.T) {
	srv := newLifecycleServer(t)

	_, err := srv.Start()
	require.NoError(t, err)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Stop(ctx)
	}()

	_, err = srv.Start()
	require.Error(t, err)
}

func TestServer_StopIdempotent(t *testing.T) {
	srv := newLifecycleServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
}
