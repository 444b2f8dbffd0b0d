// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package account

import "context"

// Filter narrows repository lookups. Zero-value fields are ignored; set
// fields combine with AND.
type Filter struct {
	// Handle matches the account handle exactly.
	Handle string

	// PlanetCode matches the planet code exactly.
	PlanetCode string

	// Digest matches the credential digest exactly.
	Digest string

	// NameContains matches display names containing the substring,
	// case-insensitively.
	NameContains string
}

// Repository persists accounts. The Active variants exclude soft-deleted
// records; ListAll does not. Callers pick one explicitly so the soft-delete
// filter is never applied by accident.
type Repository interface {
	// ExistsActive reports whether any non-deleted account matches f.
	ExistsActive(ctx context.Context, f Filter) (bool, error)

	// GetActive returns the non-deleted account matching f, or ErrNotFound.
	GetActive(ctx context.Context, f Filter) (*Account, error)

	// ListActive returns all non-deleted accounts matching f.
	ListActive(ctx context.Context, f Filter) ([]*Account, error)

	// ListAll returns all accounts matching f, soft-deleted ones included.
	ListAll(ctx context.Context, f Filter) ([]*Account, error)

	// Create persists a new account and returns it with its identifier set.
	// Unique-constraint conflicts surface as ErrDuplicateHandle or
	// ErrDuplicatePlanetCode.
	Create(ctx context.Context, a *Account) (*Account, error)

	// DeleteByID removes the account with the given id and returns the
	// number of rows removed. Deleting a missing account removes zero rows
	// and is not an error.
	DeleteByID(ctx context.Context, id int64) (int64, error)
}
