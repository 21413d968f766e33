// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/forkful/forkful/internal/auth"
	"github.com/forkful/forkful/internal/platform/apperr"
	"github.com/forkful/forkful/internal/platform/ctxkey"
	"github.com/forkful/forkful/internal/platform/respond"
)

// AccessVerifier checks the signature and expiry of an access token and
// returns its subject.
//
// # Why an interface?
//
// Defining AccessVerifier here decouples the middleware from the concrete
// codec, allowing us to easily inject mocks during unit testing.
type AccessVerifier interface {
	VerifyAccess(token string) (subject string, expiresAt time.Time, err error)
}

// IdentityLoader resolves a token subject into a full account.
type IdentityLoader interface {
	FindByEmail(ctx context.Context, email string) (*auth.User, error)
}

// Authenticate extracts and verifies the JWT from the Authorization header
// and resolves it to a full account.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. Verify the token's signature and expiry via [AccessVerifier].
//  3. Resolve the subject to an account via [IdentityLoader].
//  4. Inject the [*auth.User] into the request context for downstream use.
//
// # Failure Policy
//
// This gate never rejects a request. A missing header, malformed value,
// bad signature, expired token or unknown subject all let the request
// proceed as anonymous; route-level guards like [RequireAuth] decide
// whether anonymous is acceptable. Rejecting here would turn every stale
// token into a hard error on public endpoints.
func Authenticate(verifier AccessVerifier, identities IdentityLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			// An identity resolved earlier in the pipeline wins; the token
			// is not re-verified.
			if GetUser(request.Context()) != nil {
				next.ServeHTTP(writer, request)
				return
			}

			authHeader := request.Header.Get("Authorization")

			// ── 1. Header Extraction ──────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Verification ─────────────────────────────────────────
			subject, _, err := verifier.VerifyAccess(parts[1])
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 3. Identity Resolution ────────────────────────────────────────
			user, err := identities.FindByEmail(request.Context(), subject)
			if err != nil {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := WithUser(request.Context(), user)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
//
// # Flow
//  1. Check if a [*auth.User] exists in context.
//  2. If missing, abort with HTTP 401 Unauthorized.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		user := GetUser(request.Context())
		if user == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// RequireRole blocks requests if the authenticated user doesn't have the required role.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate]. It automatically implies
// [RequireAuth] so you don't need to mount both.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			user := GetUser(request.Context())

			// ── 1. Authentication Check ───────────────────────────────────────
			if user == nil {
				respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
				return
			}

			// ── 2. Authorization Check ────────────────────────────────────────
			if !user.HasRole(role) {
				respond.Error(writer, request, apperr.Forbidden("Insufficient permissions"))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// WithUser returns a copy of ctx carrying the resolved account.
func WithUser(ctx context.Context, user *auth.User) context.Context {
	return context.WithValue(ctx, ctxkey.KeyUser, user)
}

// GetUser retrieves the [*auth.User] from the [context.Context].
//
// # Returns
//   - The resolved account if the request is authenticated.
//   - nil if the request is anonymous.
func GetUser(ctx context.Context) *auth.User {
	user, ok := ctx.Value(ctxkey.KeyUser).(*auth.User)
	if !ok {
		return nil
	}
	return user
}
