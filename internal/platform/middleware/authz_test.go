// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/forkful/internal/auth"
	"github.com/forkful/forkful/internal/platform/apperr"
	"github.com/forkful/forkful/internal/platform/middleware"
)

// stubVerifier accepts exactly one token string and returns its subject.
type stubVerifier struct {
	validToken string
	subject    string
	err        error
}

func (v *stubVerifier) VerifyAccess(token string) (string, time.Time, error) {
	if v.err != nil {
		return "", time.Time{}, v.err
	}
	if token != v.validToken {
		return "", time.Time{}, assert.AnError
	}
	return v.subject, time.Now().Add(10 * time.Minute), nil
}

// stubIdentities resolves a single known email.
type stubIdentities struct {
	user *auth.User
}

func (s *stubIdentities) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	if s.user != nil && s.user.Email == email {
		return s.user, nil
	}
	return nil, apperr.NotFound("User")
}

// capture runs the middleware chain and records the user seen by the final
// handler along with the response.
func capture(t *testing.T, chain func(http.Handler) http.Handler, header string) (*auth.User, *httptest.ResponseRecorder) {
	t.Helper()

	var seen *auth.User
	handler := chain(http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
		seen = middleware.GetUser(request.Context())
	}))

	request := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	if header != "" {
		request.Header.Set("Authorization", header)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return seen, recorder
}

/*
TestAuthenticate_ResolvesUser checks the happy path: a valid bearer token
puts the resolved account into the request context.
*/
func TestAuthenticate_ResolvesUser(t *testing.T) {
	account := &auth.User{ID: 7, Email: "mai@example.com", Roles: []string{auth.RoleUser}}
	verifier := &stubVerifier{validToken: "good-token", subject: "mai@example.com"}
	identities := &stubIdentities{user: account}

	seen, recorder := capture(t, middleware.Authenticate(verifier, identities), "Bearer good-token")

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(7), seen.ID)
}

/*
TestAuthenticate_PassesThroughAnonymous checks the failure policy: every
verification failure lets the request proceed with no user in context, and
never produces an error response.
*/
func TestAuthenticate_PassesThroughAnonymous(t *testing.T) {
	account := &auth.User{ID: 7, Email: "mai@example.com", Roles: []string{auth.RoleUser}}

	tests := []struct {
		name       string
		verifier   *stubVerifier
		identities *stubIdentities
		header     string
	}{
		{
			"missing_header",
			&stubVerifier{validToken: "good-token", subject: "mai@example.com"},
			&stubIdentities{user: account},
			"",
		},
		{
			"not_a_bearer_scheme",
			&stubVerifier{validToken: "good-token", subject: "mai@example.com"},
			&stubIdentities{user: account},
			"Basic dXNlcjpwYXNz",
		},
		{
			"bare_token_without_scheme",
			&stubVerifier{validToken: "good-token", subject: "mai@example.com"},
			&stubIdentities{user: account},
			"good-token",
		},
		{
			"verification_fails",
			&stubVerifier{err: assert.AnError},
			&stubIdentities{user: account},
			"Bearer good-token",
		},
		{
			"unknown_subject",
			&stubVerifier{validToken: "good-token", subject: "ghost@example.com"},
			&stubIdentities{user: account},
			"Bearer good-token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen, recorder := capture(t, middleware.Authenticate(tt.verifier, tt.identities), tt.header)

			assert.Equal(t, http.StatusOK, recorder.Code)
			assert.Nil(t, seen)
		})
	}
}

/*
TestAuthenticate_KeepsResolvedIdentity checks that an identity resolved
earlier in the pipeline wins: the gate neither re-verifies the token nor
replaces the user already in context.
*/
func TestAuthenticate_KeepsResolvedIdentity(t *testing.T) {
	resolved := &auth.User{ID: 7, Email: "mai@example.com", Roles: []string{auth.RoleUser}}

	// A verifier that would reject the presented token outright.
	verifier := &stubVerifier{err: assert.AnError}
	identities := &stubIdentities{}

	var seen *auth.User
	handler := middleware.Authenticate(verifier, identities)(
		http.HandlerFunc(func(_ http.ResponseWriter, request *http.Request) {
			seen = middleware.GetUser(request.Context())
		}),
	)

	request := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
	request.Header.Set("Authorization", "Bearer stale-token")
	request = request.WithContext(middleware.WithUser(request.Context(), resolved))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, resolved, seen)
}

/*
TestRequireAuth checks that anonymous requests are rejected with 401 and
authenticated ones pass through.
*/
func TestRequireAuth(t *testing.T) {
	t.Run("anonymous_rejected", func(t *testing.T) {
		handler := middleware.RequireAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run for anonymous requests")
		}))

		request := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, recorder.Body.String(), "Authentication required")
	})

	t.Run("authenticated_passes", func(t *testing.T) {
		var ran bool
		handler := middleware.RequireAuth(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			ran = true
		}))

		request := httptest.NewRequest(http.MethodGet, "/api/v1/recipes", nil)
		ctx := middleware.WithUser(request.Context(), &auth.User{ID: 7})
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request.WithContext(ctx))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, ran)
	})
}

/*
TestRequireRole checks the role gate: 401 for anonymous, 403 for a missing
role, pass-through when the role is held.
*/
func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		user       *auth.User
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"plain_user", &auth.User{ID: 7, Roles: []string{auth.RoleUser}}, http.StatusForbidden},
		{"admin", &auth.User{ID: 1, Roles: []string{auth.RoleUser, auth.RoleAdmin}}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := middleware.RequireRole(auth.RoleAdmin)(
				http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}),
			)

			request := httptest.NewRequest(http.MethodDelete, "/api/v1/recipes/1", nil)
			if tt.user != nil {
				request = request.WithContext(middleware.WithUser(request.Context(), tt.user))
			}
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
