// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forkful/forkful/internal/platform/apperr"
)

// PostgresUserRepository implements the UserRepository interface using pgx.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of the UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new account row into auth.account.
//
// # Error Mapping
//
// A unique-constraint violation on the email column surfaces as
// [apperr.Conflict] so the service does not depend on SQLSTATE codes.
func (repository *PostgresUserRepository) Create(ctx context.Context, user *User) error {
	const query = `
		INSERT INTO auth.account (email, name, password_hash, enabled, roles, bio, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	err := repository.pool.QueryRow(ctx, query,
		user.Email,
		user.Name,
		user.PasswordHash,
		user.Enabled,
		user.Roles,
		user.Bio,
		user.ImageURL,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return apperr.Conflict("Email already exists. Please try another one.").
				WithCode("EMAIL_TAKEN")
		}
		return fmt.Errorf("postgres_user_repo_create_failed: %w", err)
	}

	return nil
}

// FindByEmail retrieves an account by its unique email address.
func (repository *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const query = `
		SELECT id, email, name, password_hash, enabled, roles, bio, image_url, created_at, updated_at
		FROM auth.account
		WHERE email = $1`

	return repository.scanOne(ctx, query, email)
}

// FindByID retrieves an account by its ID.
func (repository *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*User, error) {
	const query = `
		SELECT id, email, name, password_hash, enabled, roles, bio, image_url, created_at, updated_at
		FROM auth.account
		WHERE id = $1`

	return repository.scanOne(ctx, query, id)
}

// Update persists changes to an account's mutable profile fields.
func (repository *PostgresUserRepository) Update(ctx context.Context, user *User) error {
	const query = `
		UPDATE auth.account
		SET name = $2, bio = $3, image_url = $4, updated_at = $5
		WHERE id = $1`

	user.UpdatedAt = time.Now()
	_, err := repository.pool.Exec(ctx, query,
		user.ID,
		user.Name,
		user.Bio,
		user.ImageURL,
		user.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("postgres_user_repo_update_failed: %w", err)
	}

	return nil
}

// SetEnabled flips the enabled flag for the account.
func (repository *PostgresUserRepository) SetEnabled(ctx context.Context, userID int64, enabled bool) error {
	const query = "UPDATE auth.account SET enabled = $2, updated_at = $3 WHERE id = $1"

	_, err := repository.pool.Exec(ctx, query, userID, enabled, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_user_repo_set_enabled_failed: %w", err)
	}

	return nil
}

// FindNotEnabled returns every account that has not confirmed its email yet.
func (repository *PostgresUserRepository) FindNotEnabled(ctx context.Context) ([]*User, error) {
	const query = `
		SELECT id, email, name, password_hash, enabled, roles, bio, image_url, created_at, updated_at
		FROM auth.account
		WHERE enabled = FALSE
		ORDER BY id`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres_user_repo_find_not_enabled_failed: %w", err)
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user := &User{}
		if err := scanUser(rows, user); err != nil {
			return nil, fmt.Errorf("postgres_user_repo_scan_failed: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres_user_repo_rows_failed: %w", err)
	}

	return users, nil
}

// scanOne runs a single-row account query.
func (repository *PostgresUserRepository) scanOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := scanUser(repository.pool.QueryRow(ctx, query, arg), user)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("User")
		}
		return nil, fmt.Errorf("postgres_user_repo_find_failed: %w", err)
	}

	return user, nil
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, user *User) error {
	return row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.Enabled,
		&user.Roles,
		&user.Bio,
		&user.ImageURL,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
}

// ── Access-Token Ledger ──────────────────────────────────────────────────────

// PostgresAccessTokenLedger implements the AccessTokenLedger interface.
type PostgresAccessTokenLedger struct {
	pool *pgxpool.Pool
}

// NewAccessTokenLedger creates a new PostgreSQL implementation of AccessTokenLedger.
func NewAccessTokenLedger(pool *pgxpool.Pool) *PostgresAccessTokenLedger {
	return &PostgresAccessTokenLedger{pool: pool}
}

const insertLedgerRowSQL = `
	INSERT INTO auth.access_token (token, kind, expired, revoked, user_id)
	VALUES ($1, $2, FALSE, FALSE, $3)`

const revokeAllLiveSQL = `
	UPDATE auth.access_token
	SET expired = TRUE, revoked = TRUE
	WHERE user_id = $1 AND (expired = FALSE OR revoked = FALSE)`

// RecordIssued inserts a fresh live ledger row for the token.
func (ledger *PostgresAccessTokenLedger) RecordIssued(ctx context.Context, userID int64, token string) error {
	_, err := ledger.pool.Exec(ctx, insertLedgerRowSQL, token, TokenKindBearer, userID)
	if err != nil {
		return fmt.Errorf("postgres_ledger_record_failed: %w", err)
	}
	return nil
}

// FindLiveByToken returns the live row matching the exact token string.
func (ledger *PostgresAccessTokenLedger) FindLiveByToken(ctx context.Context, token string) (*AccessTokenRecord, error) {
	const query = `
		SELECT id, token, kind, expired, revoked, user_id
		FROM auth.access_token
		WHERE token = $1 AND expired = FALSE AND revoked = FALSE`

	record := &AccessTokenRecord{}
	err := ledger.pool.QueryRow(ctx, query, token).Scan(
		&record.ID,
		&record.Token,
		&record.Kind,
		&record.Expired,
		&record.Revoked,
		&record.UserID,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Access token")
		}
		return nil, fmt.Errorf("postgres_ledger_find_failed: %w", err)
	}

	return record, nil
}

// RevokeAllLiveForUser marks every not-yet-dead row for the user as expired
// and revoked.
func (ledger *PostgresAccessTokenLedger) RevokeAllLiveForUser(ctx context.Context, userID int64) error {
	_, err := ledger.pool.Exec(ctx, revokeAllLiveSQL, userID)
	if err != nil {
		return fmt.Errorf("postgres_ledger_revoke_all_failed: %w", err)
	}
	return nil
}

// RevokeByToken marks the single matching row as expired and revoked.
// An unknown token affects zero rows and is not an error.
func (ledger *PostgresAccessTokenLedger) RevokeByToken(ctx context.Context, token string) error {
	const query = `
		UPDATE auth.access_token
		SET expired = TRUE, revoked = TRUE
		WHERE token = $1`

	_, err := ledger.pool.Exec(ctx, query, token)
	if err != nil {
		return fmt.Errorf("postgres_ledger_revoke_failed: %w", err)
	}
	return nil
}

// ReplaceLive revokes all live rows for the user and records the new token
// inside one transaction.
//
// # Ordering
//
// The revocation must commit atomically with the insert: two concurrent
// logins for the same account then serialize on the row locks, and whichever
// commits last leaves exactly one live row.
func (ledger *PostgresAccessTokenLedger) ReplaceLive(ctx context.Context, userID int64, token string) error {
	tx, err := ledger.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres_ledger_begin_failed: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, revokeAllLiveSQL, userID); err != nil {
		return fmt.Errorf("postgres_ledger_replace_revoke_failed: %w", err)
	}

	if _, err := tx.Exec(ctx, insertLedgerRowSQL, token, TokenKindBearer, userID); err != nil {
		return fmt.Errorf("postgres_ledger_replace_insert_failed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("postgres_ledger_commit_failed: %w", err)
	}

	return nil
}

// ── Confirmation-Token Repository ────────────────────────────────────────────

// PostgresConfirmationTokenRepository implements ConfirmationTokenRepository.
type PostgresConfirmationTokenRepository struct {
	pool *pgxpool.Pool
}

// NewConfirmationTokenRepository creates a new PostgreSQL implementation of
// ConfirmationTokenRepository.
func NewConfirmationTokenRepository(pool *pgxpool.Pool) *PostgresConfirmationTokenRepository {
	return &PostgresConfirmationTokenRepository{pool: pool}
}

// Create persists a freshly issued confirmation token row.
func (repository *PostgresConfirmationTokenRepository) Create(ctx context.Context, token *ConfirmationToken) error {
	const query = `
		INSERT INTO auth.confirmation_token (token, issued_at, expires_at, confirmed_at, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repository.pool.QueryRow(ctx, query,
		token.Token,
		token.IssuedAt,
		token.ExpiresAt,
		token.ConfirmedAt,
		token.UserID,
	).Scan(&token.ID)

	if err != nil {
		return fmt.Errorf("postgres_confirmation_repo_create_failed: %w", err)
	}

	return nil
}

// FindByToken returns the row whose non-null token string matches exactly.
// Superseded rows hold NULL and can never match.
func (repository *PostgresConfirmationTokenRepository) FindByToken(ctx context.Context, token string) (*ConfirmationToken, error) {
	const query = `
		SELECT id, token, issued_at, expires_at, confirmed_at, user_id
		FROM auth.confirmation_token
		WHERE token = $1`

	confirmation := &ConfirmationToken{}
	err := repository.pool.QueryRow(ctx, query, token).Scan(
		&confirmation.ID,
		&confirmation.Token,
		&confirmation.IssuedAt,
		&confirmation.ExpiresAt,
		&confirmation.ConfirmedAt,
		&confirmation.UserID,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Confirmation token")
		}
		return nil, fmt.Errorf("postgres_confirmation_repo_find_failed: %w", err)
	}

	return confirmation, nil
}

// MarkConfirmed stamps the row with its confirmation time.
func (repository *PostgresConfirmationTokenRepository) MarkConfirmed(ctx context.Context, tokenID int64, confirmedAt time.Time) error {
	const query = "UPDATE auth.confirmation_token SET confirmed_at = $2 WHERE id = $1"

	_, err := repository.pool.Exec(ctx, query, tokenID, confirmedAt)
	if err != nil {
		return fmt.Errorf("postgres_confirmation_repo_mark_failed: %w", err)
	}

	return nil
}

// InvalidateAllLiveForUser nulls the token string on every outstanding row
// for the user. Historical rows stay in place for auditing.
func (repository *PostgresConfirmationTokenRepository) InvalidateAllLiveForUser(ctx context.Context, userID int64) error {
	const query = `
		UPDATE auth.confirmation_token
		SET token = NULL
		WHERE user_id = $1 AND token IS NOT NULL`

	_, err := repository.pool.Exec(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("postgres_confirmation_repo_invalidate_failed: %w", err)
	}

	return nil
}
