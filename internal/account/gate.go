// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package account

import "context"

// Gate decides whether a caller's session grants admin privilege. The engine
// consults it before directory search and account deletion.
type Gate struct {
	adminRole int
	loginKey  string
}

// NewGate creates a Gate for the configured admin role value and login-state
// session key.
func NewGate(adminRole int, loginStateKey string) *Gate {
	return &Gate{adminRole: adminRole, loginKey: loginStateKey}
}

// IsAdmin reports whether the session holds a SafetyView whose role equals
// the configured admin role. Nil or anonymous sessions read as not-admin, and
// so do session-store faults: the gate fails closed rather than erroring.
func (g *Gate) IsAdmin(ctx context.Context, sess Session) bool {
	if sess == nil {
		return false
	}
	view, ok, err := sess.Get(ctx, g.loginKey)
	if err != nil || !ok || view == nil {
		return false
	}
	return view.Role == g.adminRole
}
