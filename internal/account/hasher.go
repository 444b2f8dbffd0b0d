// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package account

import (
	"crypto/md5" //nolint:gosec // G501: digest compatibility with records produced by the original service.
	"encoding/hex"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// Hasher algorithm names accepted in configuration.
const (
	HasherMD5      = "md5"
	HasherArgon2id = "argon2id"
)

// argon2id parameters for the upgraded hasher.
const (
	argon2Time    = 1         // iterations
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4         // parallelism
	argon2KeyLen  = 32        // output length in bytes
)

// PasswordHasher turns a plaintext credential into a storable digest. The
// transform must be deterministic for a fixed salt: login matches accounts
// with a single handle+digest lookup, so equal secrets have to produce equal
// digests.
type PasswordHasher interface {
	Digest(secret string) string
}

// MD5Hasher reproduces the digests of the original service: MD5 over the
// static salt concatenated with the secret, hex encoded. Kept for
// compatibility with already-stored credentials.
type MD5Hasher struct {
	salt string
}

// NewMD5Hasher creates an MD5Hasher with the given static salt.
func NewMD5Hasher(salt string) *MD5Hasher {
	return &MD5Hasher{salt: salt}
}

// Digest returns the hex MD5 digest of salt+secret.
func (h *MD5Hasher) Digest(secret string) string {
	sum := md5.Sum([]byte(h.salt + secret)) //nolint:gosec // G401: see type comment.
	return hex.EncodeToString(sum[:])
}

// Argon2Hasher derives the digest with argon2id, using the static salt as the
// argon2 salt. Memory-hard, but still deterministic per secret, so the
// handle+digest login lookup keeps working. Digests are not interoperable
// with MD5Hasher output.
type Argon2Hasher struct {
	salt []byte
}

// NewArgon2Hasher creates an Argon2Hasher with the given static salt.
func NewArgon2Hasher(salt string) *Argon2Hasher {
	return &Argon2Hasher{salt: []byte(salt)}
}

// Digest returns the hex argon2id key derived from the secret.
func (h *Argon2Hasher) Digest(secret string) string {
	key := argon2.IDKey([]byte(secret), h.salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return hex.EncodeToString(key)
}

// NewHasher returns the PasswordHasher named by algo. An empty algo selects
// MD5 for compatibility with existing records.
func NewHasher(algo, salt string) (PasswordHasher, error) {
	if salt == "" {
		return nil, oops.Code("ACCOUNT_HASHER_INVALID").Errorf("hasher salt cannot be empty")
	}
	switch algo {
	case "", HasherMD5:
		return NewMD5Hasher(salt), nil
	case HasherArgon2id:
		return NewArgon2Hasher(salt), nil
	default:
		return nil, oops.Code("ACCOUNT_HASHER_INVALID").
			With("algorithm", algo).
			Errorf("unknown hasher algorithm %q", algo)
	}
}
