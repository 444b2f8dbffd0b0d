// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package account

import "context"

// LoginStateKey is the well-known session key login state is stored under.
const LoginStateKey = "userLoginState"

// Session is the narrow per-caller storage slot the engine records login
// state in. Implementations are owned by the transport layer; the engine only
// touches the single well-known login-state key it is configured with, never
// a general-purpose map.
type Session interface {
	// Get returns the SafetyView stored under key, or ok=false when absent.
	Get(ctx context.Context, key string) (view *SafetyView, ok bool, err error)

	// Set stores view under key, creating server-side state if needed.
	Set(ctx context.Context, key string, view *SafetyView) error

	// Clear destroys the entire session.
	Clear(ctx context.Context) error
}
