// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

// Package postgres implements the account repository on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/codeplanet/usercenter/internal/account"
)

// Constraint names from the accounts migration. Uniqueness is enforced with
// partial indexes over non-deleted rows, so a freed handle can be re-used
// after a soft delete.
const (
	constraintHandleActive     = "uq_users_account_active"
	constraintPlanetCodeActive = "uq_users_planet_code_active"
)

const accountColumns = `id, user_name, user_account, planet_code, user_password,
	user_role, user_status, avatar_url, gender, phone, email, tags,
	is_delete, create_time, update_time`

// poolIface is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it as well.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountRepository implements account.Repository using PostgreSQL.
type AccountRepository struct {
	pool poolIface
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool poolIface) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// whereClause renders the filter into a WHERE clause. activeOnly adds the
// soft-delete predicate.
func whereClause(f account.Filter, activeOnly bool) (string, []any) {
	var conds []string
	var args []any

	next := func() string { return fmt.Sprintf("$%d", len(args)) }

	if activeOnly {
		conds = append(conds, "is_delete = 0")
	}
	if f.Handle != "" {
		args = append(args, f.Handle)
		conds = append(conds, "user_account = "+next())
	}
	if f.PlanetCode != "" {
		args = append(args, f.PlanetCode)
		conds = append(conds, "planet_code = "+next())
	}
	if f.Digest != "" {
		args = append(args, f.Digest)
		conds = append(conds, "user_password = "+next())
	}
	if f.NameContains != "" {
		args = append(args, f.NameContains)
		conds = append(conds, "user_name ILIKE '%' || "+next()+" || '%'")
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ExistsActive reports whether any non-deleted account matches f.
func (r *AccountRepository) ExistsActive(ctx context.Context, f account.Filter) (bool, error) {
	where, args := whereClause(f, true)

	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM users"+where+")", args...).Scan(&exists)
	if err != nil {
		return false, oops.Code("ACCOUNT_EXISTS_FAILED").
			With("operation", "check account existence").
			Wrap(err)
	}
	return exists, nil
}

// GetActive returns the non-deleted account matching f, or
// account.ErrNotFound.
func (r *AccountRepository) GetActive(ctx context.Context, f account.Filter) (*account.Account, error) {
	where, args := whereClause(f, true)

	row := r.pool.QueryRow(ctx, "SELECT "+accountColumns+" FROM users"+where, args...)
	acct, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "get account").
			Wrap(err)
	}
	return acct, nil
}

// ListActive returns all non-deleted accounts matching f.
func (r *AccountRepository) ListActive(ctx context.Context, f account.Filter) ([]*account.Account, error) {
	return r.list(ctx, f, true)
}

// ListAll returns all accounts matching f, soft-deleted ones included.
func (r *AccountRepository) ListAll(ctx context.Context, f account.Filter) ([]*account.Account, error) {
	return r.list(ctx, f, false)
}

func (r *AccountRepository) list(ctx context.Context, f account.Filter, activeOnly bool) ([]*account.Account, error) {
	where, args := whereClause(f, activeOnly)

	rows, err := r.pool.Query(ctx, "SELECT "+accountColumns+" FROM users"+where+" ORDER BY id", args...)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").
			With("operation", "list accounts").
			Wrap(err)
	}
	defer rows.Close()

	var accounts []*account.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, oops.Code("ACCOUNT_LIST_FAILED").
				With("operation", "scan account row").
				Wrap(err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_LIST_FAILED").
			With("operation", "iterate accounts").
			Wrap(err)
	}
	return accounts, nil
}

// Create persists a new account and returns it with its identifier set.
// Unique-constraint conflicts on the active partial indexes surface as
// account.ErrDuplicateHandle and account.ErrDuplicatePlanetCode.
func (r *AccountRepository) Create(ctx context.Context, a *account.Account) (*account.Account, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (
			user_name, user_account, planet_code, user_password,
			user_role, user_status, avatar_url, gender, phone, email, tags,
			is_delete, create_time, update_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`,
		a.Name,
		a.Handle,
		a.PlanetCode,
		a.Digest,
		a.Role,
		a.Status,
		a.AvatarURL,
		a.Gender,
		a.Phone,
		a.Email,
		a.Tags,
		a.IsDelete,
		a.CreatedAt,
		a.UpdatedAt,
	).Scan(&a.ID)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return nil, dup
		}
		return nil, oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("handle", a.Handle).
			Wrap(err)
	}
	return a, nil
}

// DeleteByID removes the active account with the given id and returns the
// number of rows removed. Soft-deleted rows are invisible here, matching the
// rest of the repository.
func (r *AccountRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	result, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1 AND is_delete = 0`, id)
	if err != nil {
		return 0, oops.Code("ACCOUNT_DELETE_FAILED").
			With("operation", "delete account").
			With("id", id).
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// duplicateError translates a unique-violation on one of the active partial
// indexes into the matching sentinel, or returns nil for other errors.
func duplicateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return nil
	}
	switch pgErr.ConstraintName {
	case constraintHandleActive:
		return account.ErrDuplicateHandle
	case constraintPlanetCodeActive:
		return account.ErrDuplicatePlanetCode
	}
	return nil
}

// scanAccount scans a single row into an Account. Callers are responsible
// for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*account.Account, error) {
	a := &account.Account{}
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Handle,
		&a.PlanetCode,
		&a.Digest,
		&a.Role,
		&a.Status,
		&a.AvatarURL,
		&a.Gender,
		&a.Phone,
		&a.Email,
		&a.Tags,
		&a.IsDelete,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // Callers wrap with context-specific info.
	}
	return a, nil
}

// Compile-time interface check.
var _ account.Repository = (*AccountRepository)(nil)
