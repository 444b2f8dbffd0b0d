// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package account

import "errors"

// ErrNotFound is returned by repositories when no matching account exists.
var ErrNotFound = errors.New("not found")

// Uniqueness conflicts surfaced by the storage layer. Repositories translate
// unique-constraint violations into these so the engine can report the same
// duplicate reasons as its pre-insert checks.
var (
	ErrDuplicateHandle     = errors.New("duplicate account handle")
	ErrDuplicatePlanetCode = errors.New("duplicate planet code")
)

// Error codes attached to oops errors raised by this package. The transport
// layer maps these onto business response codes.
const (
	CodeInvalidParams      = "ACCOUNT_INVALID_PARAMS"
	CodeCredentialMismatch = "ACCOUNT_CREDENTIAL_MISMATCH"
	CodeAlreadyLoggedOut   = "ACCOUNT_ALREADY_LOGGED_OUT"
	CodeStorageFailed      = "ACCOUNT_STORAGE_FAILED"
	CodeSessionFailed      = "ACCOUNT_SESSION_FAILED"
)
