// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package account

import "time"

// Defaults assigned at registration.
const (
	RoleOrdinary = 0
	StatusNormal = 0
)

// Account is a persisted user record. Digest holds the one-way hashed
// credential and must never be returned to callers; use Mask to produce the
// shareable projection.
type Account struct {
	ID         int64
	Name       string
	Handle     string
	PlanetCode string
	Digest     string
	Role       int
	Status     int
	AvatarURL  *string
	Gender     *int
	Phone      *string
	Email      *string
	Tags       *string
	IsDelete   int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IsDeleted reports whether the record is soft-deleted.
func (a *Account) IsDeleted() bool {
	return a.IsDelete != 0
}
