// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

// Package account implements the account lifecycle and authentication engine.
//
// # Domain Types
//
// Account is the persisted user record, including the sensitive credential
// digest. SafetyView is its redacted projection, produced by Mask, and is the
// only shape that ever leaves the service or enters a session.
//
// # Services
//
// Service orchestrates registration, login, logout, directory search and
// account deletion on top of a Repository, a PasswordHasher, and the
// caller-scoped Session slot. Gate decides admin privilege from the session's
// login state. Both are created with New* constructors that validate their
// dependencies.
package account
