// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UserCenter Contributors

package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/codeplanet/usercenter/internal/account"
)

// poolIface is the subset of pgxpool.Pool the repository needs. pgxmock
// satisfies it as well.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool poolIface
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(pool poolIface) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a new session record.
func (r *PostgresRepository) Create(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "marshal session data").
			Wrap(err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_sessions (id, token_hash, data, created_at, last_seen_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		rec.ID.String(),
		rec.TokenHash,
		data,
		rec.CreatedAt,
		rec.LastSeenAt,
		rec.ExpiresAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			Wrap(err)
	}
	return nil
}

// GetByTokenHash retrieves a session by its token hash.
func (r *PostgresRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*Record, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, token_hash, data, created_at, last_seen_at, expires_at
		FROM user_sessions
		WHERE token_hash = $1
	`, tokenHash)

	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_FAILED").
			With("operation", "get session by token hash").
			Wrap(err)
	}
	return rec, nil
}

// UpdateData replaces the session's data map.
func (r *PostgresRepository) UpdateData(ctx context.Context, id ulid.ULID, data map[string]*account.SafetyView) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return oops.Code("SESSION_UPDATE_FAILED").
			With("operation", "marshal session data").
			Wrap(err)
	}

	result, err := r.pool.Exec(ctx, `
		UPDATE user_sessions SET data = $2 WHERE id = $1
	`, id.String(), raw)
	if err != nil {
		return oops.Code("SESSION_UPDATE_FAILED").
			With("operation", "update session data").
			With("session_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateLastSeen updates the LastSeenAt timestamp.
func (r *PostgresRepository) UpdateLastSeen(ctx context.Context, id ulid.ULID, lastSeen time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE user_sessions SET last_seen_at = $2 WHERE id = $1
	`, id.String(), lastSeen)
	if err != nil {
		return oops.Code("SESSION_UPDATE_FAILED").
			With("operation", "update last seen").
			With("session_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a session by ID.
func (r *PostgresRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM user_sessions WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			With("session_id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteExpired removes all expired sessions.
func (r *PostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM user_sessions WHERE expires_at < NOW()
	`)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// scanRecord scans a single row into a Record. Callers are responsible for
// handling pgx.ErrNoRows.
func scanRecord(row pgx.Row) (*Record, error) {
	var (
		idStr string
		rec   Record
		raw   []byte
	)
	err := row.Scan(&idStr, &rec.TokenHash, &raw, &rec.CreatedAt, &rec.LastSeenAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info.
		}
		return nil, oops.Code("SESSION_SCAN_FAILED").
			With("operation", "scan session").
			Wrap(err)
	}

	rec.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_ID").
			With("operation", "parse session id").
			With("id", idStr).
			Wrap(err)
	}

	rec.Data = make(map[string]*account.SafetyView)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &rec.Data); err != nil {
			return nil, oops.Code("SESSION_INVALID_DATA").
				With("operation", "unmarshal session data").
				Wrap(err)
		}
	}
	return &rec, nil
}

// Compile-time interface check.
var _ Repository = (*PostgresRepository)(nil)
