// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package session

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/codeplanet/usercenter/internal/account"
)

// MemoryRepository is an in-memory Repository. Used by tests and by local
// development runs without a database.
type MemoryRepository struct {
	mu     sync.Mutex
	byHash map[string]*Record
}

// NewMemoryRepository creates an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byHash: make(map[string]*Record)}
}

func (r *MemoryRepository) find(id ulid.ULID) *Record {
	for _, rec := range r.byHash {
		if rec.ID == id {
			return rec
		}
	}
	return nil
}

// Create implements Repository.
func (r *MemoryRepository) Create(_ context.Context, rec *Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	cp.Data = maps.Clone(rec.Data)
	r.byHash[rec.TokenHash] = &cp
	return nil
}

// GetByTokenHash implements Repository.
func (r *MemoryRepository) GetByTokenHash(_ context.Context, tokenHash string) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byHash[tokenHash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	cp.Data = maps.Clone(rec.Data)
	return &cp, nil
}

// UpdateData implements Repository.
func (r *MemoryRepository) UpdateData(_ context.Context, id ulid.ULID, data map[string]*account.SafetyView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.find(id)
	if rec == nil {
		return ErrNotFound
	}
	rec.Data = maps.Clone(data)
	return nil
}

// UpdateLastSeen implements Repository.
func (r *MemoryRepository) UpdateLastSeen(_ context.Context, id ulid.ULID, lastSeen time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.find(id)
	if rec == nil {
		return ErrNotFound
	}
	rec.LastSeenAt = lastSeen
	return nil
}

// Delete implements Repository.
func (r *MemoryRepository) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for hash, rec := range r.byHash {
		if rec.ID == id {
			delete(r.byHash, hash)
			return nil
		}
	}
	return ErrNotFound
}

// DeleteExpired implements Repository.
func (r *MemoryRepository) DeleteExpired(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for hash, rec := range r.byHash {
		if rec.IsExpired() {
			delete(r.byHash, hash)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byHash)
}

// Compile-time interface check.
var _ Repository = (*MemoryRepository)(nil)
