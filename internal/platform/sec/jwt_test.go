// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/forkful/internal/platform/sec"
)

func newTestCodec(t *testing.T) *sec.TokenCodec {
	t.Helper()
	codec, err := sec.NewTokenCodec("access-secret-for-tests", "refresh-secret-for-tests")
	require.NoError(t, err)
	return codec
}

/*
TestNewTokenCodec_SecretRules verifies the constructor rejects missing or
identical secrets.
*/
func TestNewTokenCodec_SecretRules(t *testing.T) {
	tests := []struct {
		name          string
		accessSecret  string
		refreshSecret string
		wantError     bool
	}{
		{"distinct_secrets", "aaa", "bbb", false},
		{"missing_access", "", "bbb", true},
		{"missing_refresh", "aaa", "", true},
		{"equal_secrets", "same", "same", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sec.NewTokenCodec(tt.accessSecret, tt.refreshSecret)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

/*
TestTokenCodec_AccessRoundTrip issues an access token and verifies the
subject and expiry survive the round trip.
*/
func TestTokenCodec_AccessRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.IssueAccess("cook@forkful.app", []string{"user"}, 10*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	subject, expiry, err := codec.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "cook@forkful.app", subject)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiry, 5*time.Second)
}

/*
TestTokenCodec_RefreshRoundTrip issues a refresh token and verifies the
subject survives the round trip.
*/
func TestTokenCodec_RefreshRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.IssueRefresh("cook@forkful.app", 30*24*time.Hour)
	require.NoError(t, err)

	subject, err := codec.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "cook@forkful.app", subject)
}

/*
TestTokenCodec_KeySeparation proves the two signing domains do not overlap:
a refresh token never verifies as an access token and vice versa.
*/
func TestTokenCodec_KeySeparation(t *testing.T) {
	codec := newTestCodec(t)

	accessToken, err := codec.IssueAccess("cook@forkful.app", nil, time.Minute)
	require.NoError(t, err)
	refreshToken, err := codec.IssueRefresh("cook@forkful.app", time.Minute)
	require.NoError(t, err)

	_, _, err = codec.VerifyAccess(refreshToken)
	assert.ErrorIs(t, err, sec.ErrTokenBadSignature)

	_, err = codec.VerifyRefresh(accessToken)
	assert.ErrorIs(t, err, sec.ErrTokenBadSignature)
}

/*
TestTokenCodec_ForeignKey verifies a token signed with an unknown secret is
reported as a signature failure, not a parse failure.
*/
func TestTokenCodec_ForeignKey(t *testing.T) {
	codec := newTestCodec(t)

	foreign, err := sec.NewTokenCodec("some-other-access", "some-other-refresh")
	require.NoError(t, err)

	token, err := foreign.IssueAccess("cook@forkful.app", nil, time.Minute)
	require.NoError(t, err)

	_, _, err = codec.VerifyAccess(token)
	assert.ErrorIs(t, err, sec.ErrTokenBadSignature)
}

/*
TestTokenCodec_Expired verifies a token past its expiry fails with
ErrTokenExpired.
*/
func TestTokenCodec_Expired(t *testing.T) {
	codec := newTestCodec(t)

	token, err := codec.IssueAccess("cook@forkful.app", nil, -time.Minute)
	require.NoError(t, err)

	_, _, err = codec.VerifyAccess(token)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)

	refreshToken, err := codec.IssueRefresh("cook@forkful.app", -time.Minute)
	require.NoError(t, err)

	_, err = codec.VerifyRefresh(refreshToken)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenCodec_Malformed verifies garbage input is classified as malformed.
*/
func TestTokenCodec_Malformed(t *testing.T) {
	codec := newTestCodec(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not_a_jwt", "hello-world"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := codec.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, sec.ErrTokenMalformed)
		})
	}
}
