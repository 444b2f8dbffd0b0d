// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package account

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Service orchestrates registration, login, logout, directory search and
// account deletion. It is stateless across calls; all caller state lives in
// the Session passed into each operation.
type Service struct {
	repo     Repository
	hasher   PasswordHasher
	gate     *Gate
	loginKey string
	logger   *slog.Logger
}

// NewService creates a Service with a no-op logger.
// Returns an error if any required dependency is nil.
func NewService(repo Repository, hasher PasswordHasher, gate *Gate, loginStateKey string) (*Service, error) {
	return NewServiceWithLogger(repo, hasher, gate, loginStateKey, slog.New(slog.DiscardHandler))
}

// NewServiceWithLogger creates a Service with the provided logger.
// Returns an error if any required dependency is nil.
func NewServiceWithLogger(repo Repository, hasher PasswordHasher, gate *Gate, loginStateKey string, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, oops.Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if gate == nil {
		return nil, oops.Errorf("authorization gate is required")
	}
	if loginStateKey == "" {
		return nil, oops.Errorf("login-state key is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		repo:     repo,
		hasher:   hasher,
		gate:     gate,
		loginKey: loginStateKey,
		logger:   logger,
	}, nil
}

// Register validates the inputs, checks handle and planet-code uniqueness
// among non-deleted accounts, and persists a new ordinary account. It returns
// the new identifier, or -1 when persistence yields none. Validation rules
// run in a fixed order and the first failure is returned.
func (s *Service) Register(ctx context.Context, handle, credential, confirm, planetCode string) (int64, error) {
	if err := RequireFields(handle, credential, confirm, planetCode); err != nil {
		return 0, err
	}
	if err := MinLength("account handle", handle, MinHandleLength); err != nil {
		return 0, err
	}
	if err := MinLength("credential", credential, MinCredentialLength); err != nil {
		return 0, err
	}
	if err := MinLength("credential", confirm, MinCredentialLength); err != nil {
		return 0, err
	}
	if err := MaxLength("planet code", planetCode, MaxPlanetCodeLength); err != nil {
		return 0, err
	}
	if err := AlphanumericOnly("account handle", handle); err != nil {
		return 0, err
	}
	if err := MatchConfirmation(credential, confirm); err != nil {
		return 0, err
	}

	taken, err := s.repo.ExistsActive(ctx, Filter{Handle: handle})
	if err != nil {
		return 0, oops.Code(CodeStorageFailed).
			With("operation", "check handle uniqueness").
			Wrap(err)
	}
	if taken {
		return 0, oops.Code(CodeInvalidParams).
			With("handle", handle).
			Errorf("duplicate account handle")
	}

	taken, err = s.repo.ExistsActive(ctx, Filter{PlanetCode: planetCode})
	if err != nil {
		return 0, oops.Code(CodeStorageFailed).
			With("operation", "check planet code uniqueness").
			Wrap(err)
	}
	if taken {
		return 0, oops.Code(CodeInvalidParams).
			With("planet_code", planetCode).
			Errorf("duplicate planet code")
	}

	now := time.Now()
	created, err := s.repo.Create(ctx, &Account{
		Handle:     handle,
		PlanetCode: planetCode,
		Digest:     s.hasher.Digest(credential),
		Role:       RoleOrdinary,
		Status:     StatusNormal,
		IsDelete:   0,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		// A concurrent registration can win the race between the checks
		// above and the insert; the storage-level constraint reports it
		// with the same duplicate reasons.
		if errors.Is(err, ErrDuplicateHandle) {
			return 0, oops.Code(CodeInvalidParams).
				With("handle", handle).
				Errorf("duplicate account handle")
		}
		if errors.Is(err, ErrDuplicatePlanetCode) {
			return 0, oops.Code(CodeInvalidParams).
				With("planet_code", planetCode).
				Errorf("duplicate planet code")
		}
		return 0, oops.Code(CodeStorageFailed).
			With("operation", "create account").
			Wrap(err)
	}
	if created.ID == 0 {
		// Persistence yielded no identifier. Not an error: the caller gets
		// the could-not-register sentinel instead.
		s.logger.Warn("account persisted without identifier", "handle", handle)
		return -1, nil
	}

	s.logger.Info("account registered", "id", created.ID, "handle", handle)
	return created.ID, nil
}

// Login validates the inputs, matches a non-deleted account by handle and
// credential digest in one lookup, records the masked account in the session
// under the login-state key, and returns the SafetyView. An unknown handle
// and a wrong credential fail identically so neither half leaks.
func (s *Service) Login(ctx context.Context, sess Session, handle, credential string) (*SafetyView, error) {
	if err := RequireFields(handle, credential); err != nil {
		return nil, err
	}
	if err := MinLength("account handle", handle, MinHandleLength); err != nil {
		return nil, err
	}
	if err := MinLength("credential", credential, MinCredentialLength); err != nil {
		return nil, err
	}
	if err := AlphanumericOnly("account handle", handle); err != nil {
		return nil, err
	}

	acct, err := s.repo.GetActive(ctx, Filter{
		Handle: handle,
		Digest: s.hasher.Digest(credential),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.logger.Info("login rejected", "handle", handle)
			return nil, oops.Code(CodeCredentialMismatch).
				Errorf("credential mismatch")
		}
		return nil, oops.Code(CodeStorageFailed).
			With("operation", "match credentials").
			Wrap(err)
	}

	view := Mask(acct)
	if sess != nil {
		if err := sess.Set(ctx, s.loginKey, view); err != nil {
			return nil, oops.Code(CodeSessionFailed).
				With("operation", "record login state").
				Wrap(err)
		}
	}

	s.logger.Info("login succeeded", "id", acct.ID, "handle", acct.Handle)
	return view, nil
}

// Logout clears the caller's session. The clear happens whether or not the
// caller was logged in; callers that were not logged in additionally get an
// already-logged-out failure after the clear.
func (s *Service) Logout(ctx context.Context, sess Session) error {
	if sess == nil {
		return oops.Code(CodeAlreadyLoggedOut).Errorf("already logged out")
	}

	_, loggedIn, err := sess.Get(ctx, s.loginKey)
	if err != nil {
		return oops.Code(CodeSessionFailed).
			With("operation", "read login state").
			Wrap(err)
	}
	if err := sess.Clear(ctx); err != nil {
		return oops.Code(CodeSessionFailed).
			With("operation", "clear session").
			Wrap(err)
	}
	if !loggedIn {
		return oops.Code(CodeAlreadyLoggedOut).Errorf("already logged out")
	}
	return nil
}

// Search returns SafetyViews for non-deleted accounts. A blank or
// whitespace-only pattern matches every account; otherwise display names are
// matched by case-insensitive substring. Non-admin callers get an empty list
// rather than an error, so the endpoint's data shape is not leaked.
func (s *Service) Search(ctx context.Context, sess Session, namePattern string) ([]*SafetyView, error) {
	if !s.gate.IsAdmin(ctx, sess) {
		return []*SafetyView{}, nil
	}

	var f Filter
	if p := strings.TrimSpace(namePattern); p != "" {
		f.NameContains = p
	}
	accounts, err := s.repo.ListActive(ctx, f)
	if err != nil {
		return nil, oops.Code(CodeStorageFailed).
			With("operation", "list accounts").
			Wrap(err)
	}

	views := make([]*SafetyView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, Mask(a))
	}
	return views, nil
}

// DeleteAccount removes the account with the given id and reports whether
// exactly one row was removed. Non-admin callers and non-positive ids get
// false rather than an error, and so does deleting a missing account.
func (s *Service) DeleteAccount(ctx context.Context, sess Session, id int64) (bool, error) {
	if !s.gate.IsAdmin(ctx, sess) {
		return false, nil
	}
	if id <= 0 {
		return false, nil
	}

	rows, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return false, oops.Code(CodeStorageFailed).
			With("operation", "delete account").
			With("id", id).
			Wrap(err)
	}
	if rows == 0 {
		s.logger.Warn("delete of missing account", "id", id)
		return false, nil
	}
	return rows == 1, nil
}
