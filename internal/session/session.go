// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

// Package session provides server-side caller sessions keyed by an opaque
// cookie token. Tokens are stored hashed; the session body is a small
// key-value map the account engine records login state in.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/codeplanet/usercenter/internal/account"
)

// Session token configuration.
const (
	TokenBytes = 32             // 32 bytes = 64 hex chars
	DefaultTTL = 24 * time.Hour // session lifetime

	// CookieName is the HTTP cookie carrying the plaintext token.
	CookieName = "uc_session"
)

// ErrNotFound is returned when no session matches a lookup.
var ErrNotFound = errors.New("not found")

// Record is a persisted caller session.
type Record struct {
	ID         ulid.ULID
	TokenHash  string
	Data       map[string]*account.SafetyView
	CreatedAt  time.Time
	LastSeenAt time.Time
	ExpiresAt  time.Time
}

// NewRecord creates a validated Record with a fresh identifier and empty data.
func NewRecord(tokenHash string, expiresAt time.Time) (*Record, error) {
	if tokenHash == "" {
		return nil, oops.Code("SESSION_INVALID_HASH").Errorf("token hash cannot be empty")
	}
	if expiresAt.IsZero() {
		return nil, oops.Code("SESSION_INVALID_EXPIRY").Errorf("expiry time cannot be zero")
	}
	now := time.Now()
	return &Record{
		ID:         ulid.Make(),
		TokenHash:  tokenHash,
		Data:       make(map[string]*account.SafetyView),
		CreatedAt:  now,
		LastSeenAt: now,
		ExpiresAt:  expiresAt,
	}, nil
}

// IsExpired reports whether the session has expired.
func (r *Record) IsExpired() bool {
	return time.Now().After(r.ExpiresAt)
}

// GenerateToken creates a secure random token and its hash. The plaintext
// token goes to the client cookie; only the hash is stored.
func GenerateToken() (token, hash string, err error) {
	buf := make([]byte, TokenBytes)
	if _, err = rand.Read(buf); err != nil {
		return "", "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "crypto/rand.Read").
			Wrap(err)
	}
	token = hex.EncodeToString(buf)
	return token, HashToken(token), nil
}

// HashToken computes the SHA256 hash of a session token.
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// Repository manages session persistence.
type Repository interface {
	// Create stores a new session record.
	Create(ctx context.Context, rec *Record) error

	// GetByTokenHash retrieves a session by its token hash, expired or not.
	GetByTokenHash(ctx context.Context, tokenHash string) (*Record, error)

	// UpdateData replaces the session's data map.
	UpdateData(ctx context.Context, id ulid.ULID, data map[string]*account.SafetyView) error

	// UpdateLastSeen updates the LastSeenAt timestamp.
	UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error

	// Delete removes a session by ID.
	Delete(ctx context.Context, id ulid.ULID) error

	// DeleteExpired removes all expired sessions and returns the count of
	// deleted records.
	DeleteExpired(ctx context.Context) (int64, error)
}
