// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/codeplanet/usercenter/internal/account"
)

// Store resolves cookie tokens into caller-scoped session slots.
type Store struct {
	repo   Repository
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore creates a Store with a no-op logger.
// Returns an error if repo is nil or ttl is not positive.
func NewStore(repo Repository, ttl time.Duration) (*Store, error) {
	return NewStoreWithLogger(repo, ttl, slog.New(slog.DiscardHandler))
}

// NewStoreWithLogger creates a Store with the provided logger.
func NewStoreWithLogger(repo Repository, ttl time.Duration, logger *slog.Logger) (*Store, error) {
	if repo == nil {
		return nil, oops.Errorf("session repository is required")
	}
	if ttl <= 0 {
		return nil, oops.Errorf("session ttl must be positive")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Store{repo: repo, ttl: ttl, logger: logger}, nil
}

// Open binds a slot to the session identified by token. An empty, unknown or
// expired token yields a fresh anonymous slot; server-side state is only
// created when something is stored in it. Expired records found on the way
// are deleted best-effort.
func (s *Store) Open(ctx context.Context, token string) *Slot {
	slot := &Slot{store: s}
	if token == "" {
		return slot
	}

	rec, err := s.repo.GetByTokenHash(ctx, HashToken(token))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("session lookup failed", "error", err)
		}
		return slot
	}
	if rec.IsExpired() {
		if err := s.repo.Delete(ctx, rec.ID); err != nil && !errors.Is(err, ErrNotFound) {
			s.logger.Warn("expired session cleanup failed", "session_id", rec.ID.String(), "error", err)
		}
		return slot
	}

	// Best effort; resolution succeeds regardless.
	if err := s.repo.UpdateLastSeen(ctx, rec.ID, time.Now()); err != nil {
		s.logger.Warn("session last-seen update failed", "session_id", rec.ID.String(), "error", err)
	}

	slot.rec = rec
	slot.persisted = true
	return slot
}

// Sweep removes expired sessions and returns the count of deleted records.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx)
	if err != nil {
		return 0, oops.Code("SESSION_SWEEP_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return n, nil
}

// Slot is one caller's session, bound for the duration of a request. It
// implements account.Session: server-side state is created lazily on the
// first Set and destroyed by Clear.
type Slot struct {
	store     *Store
	mu        sync.Mutex
	rec       *Record
	persisted bool
	issued    string // plaintext token when this request created the session
	cleared   bool
}

// Get returns the SafetyView stored under key, or ok=false when the slot is
// anonymous or the key is absent.
func (s *Slot) Get(_ context.Context, key string) (*account.SafetyView, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rec == nil {
		return nil, false, nil
	}
	v, ok := s.rec.Data[key]
	return v, ok, nil
}

// Set stores view under key, creating the server-side session on first use.
func (s *Slot) Set(ctx context.Context, key string, view *account.SafetyView) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.persisted {
		token, hash, err := GenerateToken()
		if err != nil {
			return err
		}
		rec, err := NewRecord(hash, time.Now().Add(s.store.ttl))
		if err != nil {
			return err
		}
		rec.Data[key] = view
		if err := s.store.repo.Create(ctx, rec); err != nil {
			return oops.Code("SESSION_CREATE_FAILED").
				With("operation", "persist session").
				Wrap(err)
		}
		s.rec = rec
		s.persisted = true
		s.issued = token
		s.cleared = false
		return nil
	}

	s.rec.Data[key] = view
	if err := s.store.repo.UpdateData(ctx, s.rec.ID, s.rec.Data); err != nil {
		return oops.Code("SESSION_UPDATE_FAILED").
			With("operation", "persist session data").
			With("session_id", s.rec.ID.String()).
			Wrap(err)
	}
	return nil
}

// Clear destroys the session. Clearing an anonymous slot is a no-op that
// still marks the slot cleared so the transport drops its cookie.
func (s *Slot) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.persisted {
		if err := s.store.repo.Delete(ctx, s.rec.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return oops.Code("SESSION_CLEAR_FAILED").
				With("operation", "delete session").
				With("session_id", s.rec.ID.String()).
				Wrap(err)
		}
	}
	s.rec = nil
	s.persisted = false
	s.issued = ""
	s.cleared = true
	return nil
}

// IssuedToken returns the plaintext token when this request created the
// session, so the transport can set the cookie.
func (s *Slot) IssuedToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issued, s.issued != ""
}

// Cleared reports whether the slot was cleared during this request, so the
// transport can expire the cookie.
func (s *Slot) Cleared() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cleared
}

// Compile-time interface check.
var _ account.Session = (*Slot)(nil)
