// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

// Package accounttest provides in-memory test doubles for the account domain.
package accounttest

import (
	"context"
	"strings"
	"sync"

	"github.com/codeplanet/usercenter/internal/account"
)

// FakeRepository is an in-memory account.Repository. It honors soft-delete
// filtering, partial-unique semantics on handle/planet code, and hard delete,
// so service tests exercise the same contract the postgres repository keeps.
type FakeRepository struct {
	mu       sync.Mutex
	nextID   int64
	accounts map[int64]*account.Account

	// CreateErr, when set, is returned by Create instead of inserting.
	CreateErr error
	// LookupErr, when set, is returned by the read methods.
	LookupErr error
	// DeleteErr, when set, is returned by DeleteByID.
	DeleteErr error
	// ZeroID makes Create persist without assigning an identifier.
	ZeroID bool
}

// NewFakeRepository creates an empty FakeRepository.
func NewFakeRepository() *FakeRepository {
	return &FakeRepository{nextID: 1, accounts: make(map[int64]*account.Account)}
}

func matches(a *account.Account, f account.Filter) bool {
	if f.Handle != "" && a.Handle != f.Handle {
		return false
	}
	if f.PlanetCode != "" && a.PlanetCode != f.PlanetCode {
		return false
	}
	if f.Digest != "" && a.Digest != f.Digest {
		return false
	}
	if f.NameContains != "" && !strings.Contains(strings.ToLower(a.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	return true
}

// ExistsActive implements account.Repository.
func (r *FakeRepository) ExistsActive(_ context.Context, f account.Filter) (bool, error) {
	if r.LookupErr != nil {
		return false, r.LookupErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if !a.IsDeleted() && matches(a, f) {
			return true, nil
		}
	}
	return false, nil
}

// GetActive implements account.Repository.
func (r *FakeRepository) GetActive(_ context.Context, f account.Filter) (*account.Account, error) {
	if r.LookupErr != nil {
		return nil, r.LookupErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if !a.IsDeleted() && matches(a, f) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, account.ErrNotFound
}

// ListActive implements account.Repository.
func (r *FakeRepository) ListActive(_ context.Context, f account.Filter) ([]*account.Account, error) {
	if r.LookupErr != nil {
		return nil, r.LookupErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*account.Account
	for id := int64(1); id < r.nextID; id++ {
		a, okID := r.accounts[id]
		if okID && !a.IsDeleted() && matches(a, f) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ListAll implements account.Repository.
func (r *FakeRepository) ListAll(_ context.Context, f account.Filter) ([]*account.Account, error) {
	if r.LookupErr != nil {
		return nil, r.LookupErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*account.Account
	for id := int64(1); id < r.nextID; id++ {
		if a, okID := r.accounts[id]; okID && matches(a, f) {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Create implements account.Repository.
func (r *FakeRepository) Create(_ context.Context, a *account.Account) (*account.Account, error) {
	if r.CreateErr != nil {
		return nil, r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.IsDeleted() {
			continue
		}
		if existing.Handle == a.Handle {
			return nil, account.ErrDuplicateHandle
		}
		if existing.PlanetCode == a.PlanetCode {
			return nil, account.ErrDuplicatePlanetCode
		}
	}
	cp := *a
	if !r.ZeroID {
		cp.ID = r.nextID
	}
	r.accounts[r.nextID] = &cp
	r.nextID++
	out := cp
	return &out, nil
}

// DeleteByID implements account.Repository.
func (r *FakeRepository) DeleteByID(_ context.Context, id int64) (int64, error) {
	if r.DeleteErr != nil {
		return 0, r.DeleteErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok || a.IsDelete != 0 {
		return 0, nil
	}
	delete(r.accounts, id)
	return 1, nil
}

// Seed inserts an account directly, assigning an id, bypassing uniqueness
// checks. Returns the stored copy.
func (r *FakeRepository) Seed(a account.Account) *account.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.nextID
	r.accounts[r.nextID] = &a
	r.nextID++
	return &a
}

// MemorySession is an in-memory account.Session.
type MemorySession struct {
	mu   sync.Mutex
	data map[string]*account.SafetyView

	// GetErr, SetErr and ClearErr force the corresponding method to fail.
	GetErr   error
	SetErr   error
	ClearErr error
}

// NewMemorySession creates an empty MemorySession.
func NewMemorySession() *MemorySession {
	return &MemorySession{data: make(map[string]*account.SafetyView)}
}

// Get implements account.Session.
func (s *MemorySession) Get(_ context.Context, key string) (*account.SafetyView, bool, error) {
	if s.GetErr != nil {
		return nil, false, s.GetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set implements account.Session.
func (s *MemorySession) Set(_ context.Context, key string, view *account.SafetyView) error {
	if s.SetErr != nil {
		return s.SetErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = view
	return nil
}

// Clear implements account.Session.
func (s *MemorySession) Clear(_ context.Context) error {
	if s.ClearErr != nil {
		return s.ClearErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]*account.SafetyView)
	return nil
}

// Len returns the number of stored keys.
func (s *MemorySession) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Compile-time interface checks.
var (
	_ account.Repository = (*FakeRepository)(nil)
	_ account.Session    = (*MemorySession)(nil)
)
