// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

// Package sec provides cryptographic primitives and bearer-credential management.
//
// # Architecture
//
// This package isolates security-sensitive code (hashing, token signing) from
// the domain logic. It performs no I/O and holds no persistence: a token is a
// self-contained signed structure, and the codec only signs and verifies it.
package sec

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verification failure kinds. Services translate these into the API error
// taxonomy; the authentication middleware treats all of them as "anonymous".
var (
	// ErrTokenMalformed means the token structure could not be parsed.
	ErrTokenMalformed = errors.New("sec: malformed token")

	// ErrTokenBadSignature means the signature does not match the expected
	// key. Verifying an access token against the refresh key (or vice
	// versa) always fails with this error.
	ErrTokenBadSignature = errors.New("sec: bad token signature")

	// ErrTokenExpired means the token's expiry has passed. Expiry is a
	// strict wall-clock comparison with no leeway for clock skew.
	ErrTokenExpired = errors.New("sec: token expired")
)

// AccessClaims is the payload embedded inside an access token.
//
// # Why a roles claim?
//
// Embedding role names lets authorization decisions happen without a role
// lookup per request. Refresh tokens deliberately carry no role claim: a new
// access token is only minted through the auth service, which re-reads the
// user's current roles at refresh time so role changes are picked up.
type AccessClaims struct {
	jwt.RegisteredClaims

	Roles []string `json:"roles"`
}

// TokenCodec signs and verifies the two bearer-credential variants using
// HS256 with two independent symmetric secrets.
//
// # Key Separation
//
// Access and refresh tokens live in separate signing domains. A leaked
// refresh token cannot be presented as an access token: its signature will
// not verify under the access key.
type TokenCodec struct {
	accessKey  []byte
	refreshKey []byte
}

// NewTokenCodec creates a codec from the two signing secrets.
// Both secrets are required and must differ.
func NewTokenCodec(accessSecret, refreshSecret string) (*TokenCodec, error) {
	if accessSecret == "" || refreshSecret == "" {
		return nil, fmt.Errorf("sec: both token secrets are required")
	}
	if accessSecret == refreshSecret {
		return nil, fmt.Errorf("sec: access and refresh secrets must differ")
	}

	return &TokenCodec{
		accessKey:  []byte(accessSecret),
		refreshKey: []byte(refreshSecret),
	}, nil
}

// IssueAccess creates a signed access token for the given subject email.
//
// The token carries the subject, issue time, expiry (now + timeToLive) and
// the user's role names.
func (codec *TokenCodec) IssueAccess(email string, roles []string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Roles: roles,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.accessKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign access token: %w", err)
	}

	return signedToken, nil
}

// IssueRefresh creates a signed refresh token for the given subject email.
// It carries no role claim.
func (codec *TokenCodec) IssueRefresh(email string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(currentTime),
		ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(codec.refreshKey)
	if err != nil {
		return "", fmt.Errorf("sec: failed to sign refresh token: %w", err)
	}

	return signedToken, nil
}

// VerifyAccess checks a token against the access key and returns its subject
// and expiry.
//
// # Failure Kinds
//
// Returns [ErrTokenMalformed], [ErrTokenBadSignature] or [ErrTokenExpired].
func (codec *TokenCodec) VerifyAccess(tokenString string) (subject string, expiry time.Time, err error) {
	claims := &AccessClaims{}
	if err := codec.verify(tokenString, claims, codec.accessKey); err != nil {
		return "", time.Time{}, err
	}

	if claims.ExpiresAt == nil {
		return "", time.Time{}, ErrTokenMalformed
	}

	return claims.Subject, claims.ExpiresAt.Time, nil
}

// VerifyRefresh checks a token against the refresh key and returns its subject.
// Failure kinds match [VerifyAccess].
func (codec *TokenCodec) VerifyRefresh(tokenString string) (subject string, err error) {
	claims := &jwt.RegisteredClaims{}
	if err := codec.verify(tokenString, claims, codec.refreshKey); err != nil {
		return "", err
	}

	return claims.Subject, nil
}

// verify parses and validates a token with the given key, mapping library
// errors onto the codec's failure kinds.
func (codec *TokenCodec) verify(tokenString string, claims jwt.Claims, key []byte) error {
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			return key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid),
			errors.Is(err, jwt.ErrTokenUnverifiable):
			return ErrTokenBadSignature
		default:
			return ErrTokenMalformed
		}
	}

	if !token.Valid {
		return ErrTokenMalformed
	}

	return nil
}
