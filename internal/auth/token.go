// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package auth

import (
	"time"

	"github.com/google/uuid"
)

// TokenKind labels the transport scheme of a recorded access credential.
type TokenKind string

const (
	// TokenKindBearer is currently the only issued kind.
	TokenKindBearer TokenKind = "bearer"
)

// AccessTokenRecord is one row of the access-credential ledger.
//
// # Security Concept
//
// Access tokens are stateless JWTs and cannot be invalidated cryptographically
// before they expire. The ledger is the durable record of every issued access
// token: logout and forced single-session enforcement flip the Expired and
// Revoked flags instead of deleting rows, so the ledger doubles as an audit
// trail. Rows are never physically deleted.
type AccessTokenRecord struct {
	ID      int64     `json:"id"`
	Token   string    `json:"-"` // The signed token string. Omitted for security.
	Kind    TokenKind `json:"kind"`
	Expired bool      `json:"expired"`
	Revoked bool      `json:"revoked"`
	UserID  int64     `json:"user_id"`
}

// Live reports whether the record still authorizes ledger-aware operations.
// A record is live only while neither flag is set.
func (r *AccessTokenRecord) Live() bool {
	return !r.Expired && !r.Revoked
}

// ConfirmationToken is a single-use, time-boxed token proving control of an
// email address.
//
// # Lifecycle
//
// ISSUED → CONFIRMED (ConfirmedAt set, terminal success), or
// ISSUED → EXPIRED (evaluated lazily at lookup, the row is left intact), or
// ISSUED → SUPERSEDED (Token nulled by a resend, terminal).
// Rows are never deleted; an account accumulates historical rows over time,
// but at most one should be actionable at any moment.
type ConfirmationToken struct {
	ID          int64      `json:"id"`
	Token       *string    `json:"-"` // nil once superseded by a newer token.
	IssuedAt    time.Time  `json:"issued_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	UserID      int64      `json:"user_id"`
}

// NewConfirmationToken issues a fresh token for the user, valid for
// [ConfirmationTokenTTL] from now. The token string is a random UUID.
func NewConfirmationToken(userID int64, now time.Time) *ConfirmationToken {
	tokenString := uuid.NewString()
	return &ConfirmationToken{
		Token:     &tokenString,
		IssuedAt:  now,
		ExpiresAt: now.Add(ConfirmationTokenTTL),
		UserID:    userID,
	}
}

// ExpiredAt reports whether the token had expired at the given instant.
//
// # Boundary
//
// The valid window is inclusive of the expiry instant itself: a token checked
// exactly at ExpiresAt is still valid, and only a strictly later instant
// expires it.
func (t *ConfirmationToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// Confirmed reports whether the token has already been consumed.
func (t *ConfirmationToken) Confirmed() bool {
	return t.ConfirmedAt != nil
}

// Superseded reports whether a newer token has replaced this one.
func (t *ConfirmationToken) Superseded() bool {
	return t.Token == nil
}
