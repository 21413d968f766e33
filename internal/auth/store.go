// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package auth

import (
	"context"
	"time"
)

// UserRepository defines the data access contract for user accounts.
//
// # Review Process
//
// This interface is placed in a separate file from user.go so entity changes
// and storage-contract changes can be reviewed independently.
//
// # Implementations
//
// The canonical implementation for Forkful is PostgreSQL (store_postgres.go).
type UserRepository interface {
	// FindByID returns the account with the given ID.
	//
	// Returns [apperr.NotFound] if the account does not exist.
	FindByID(ctx context.Context, id int64) (*User, error)

	// FindByEmail returns the account with the given email.
	//
	// Returns [apperr.NotFound] if no user is registered with this email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// Create persists a brand-new user account and fills in its ID.
	//
	// Returns [apperr.Conflict] if the email is already registered.
	Create(ctx context.Context, user *User) error

	// Update persists changes to mutable profile fields (Name, Bio, ImageURL).
	Update(ctx context.Context, user *User) error

	// SetEnabled flips the enabled flag for the account. Enabling happens
	// exactly once, when a confirmation token is consumed.
	SetEnabled(ctx context.Context, userID int64, enabled bool) error

	// FindNotEnabled returns every account that has not confirmed its email
	// yet. Used by the weekly reminder sweep.
	FindNotEnabled(ctx context.Context) ([]*User, error)
}

// AccessTokenLedger defines the contract for the durable record of issued
// access tokens and their revocation state.
//
// # Domain Ownership
//
// The ledger is owned by the auth domain: only login, logout and the ledger
// itself touch these rows. The per-request authentication gate deliberately
// never reads them.
type AccessTokenLedger interface {
	// RecordIssued inserts a fresh live row for the token.
	RecordIssued(ctx context.Context, userID int64, token string) error

	// FindLiveByToken returns the live record whose token string matches
	// exactly.
	//
	// Returns [apperr.NotFound] if there is no live row for this token.
	FindLiveByToken(ctx context.Context, token string) (*AccessTokenRecord, error)

	// RevokeAllLiveForUser marks every not-yet-dead row for the user as
	// expired and revoked. A user with no live rows is a no-op.
	RevokeAllLiveForUser(ctx context.Context, userID int64) error

	// RevokeByToken marks the single matching row as expired and revoked.
	// An unknown token string is a no-op, not an error: logout is
	// idempotent from the caller's perspective.
	RevokeByToken(ctx context.Context, token string) error

	// ReplaceLive revokes all live rows for the user and records the new
	// token, in that order, inside one transaction. Login uses this so a
	// concurrent login for the same account can never leave two live rows.
	ReplaceLive(ctx context.Context, userID int64, token string) error
}

// ConfirmationTokenRepository defines the contract for persisted email
// confirmation tokens.
type ConfirmationTokenRepository interface {
	// Create persists a freshly issued token and fills in its ID.
	Create(ctx context.Context, token *ConfirmationToken) error

	// FindByToken returns the row whose non-null token string matches.
	//
	// Returns [apperr.NotFound] if no row matches. Superseded rows have a
	// null token string and can never match.
	FindByToken(ctx context.Context, token string) (*ConfirmationToken, error)

	// MarkConfirmed stamps the row with its confirmation time.
	MarkConfirmed(ctx context.Context, tokenID int64, confirmedAt time.Time) error

	// InvalidateAllLiveForUser nulls the token string on every outstanding
	// row for the user, so only a subsequently issued token is matchable.
	InvalidateAllLiveForUser(ctx context.Context, userID int64) error
}
