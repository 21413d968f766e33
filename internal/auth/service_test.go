// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkful/forkful/internal/auth"
	"github.com/forkful/forkful/internal/platform/apperr"
	"github.com/forkful/forkful/internal/platform/sec"
)

// # In-Memory Test Doubles

type memoryUsers struct {
	nextID int64
	byID   map[int64]*auth.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{byID: map[int64]*auth.User{}}
}

func (m *memoryUsers) FindByID(_ context.Context, id int64) (*auth.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (m *memoryUsers) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range m.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (m *memoryUsers) Create(_ context.Context, user *auth.User) error {
	for _, existing := range m.byID {
		if existing.Email == user.Email {
			return apperr.Conflict("Email already exists. Please try another one.").
				WithCode("EMAIL_TAKEN")
		}
	}
	m.nextID++
	user.ID = m.nextID
	m.byID[user.ID] = user
	return nil
}

func (m *memoryUsers) Update(_ context.Context, user *auth.User) error {
	m.byID[user.ID] = user
	return nil
}

func (m *memoryUsers) SetEnabled(_ context.Context, userID int64, enabled bool) error {
	user, ok := m.byID[userID]
	if !ok {
		return apperr.NotFound("User")
	}
	user.Enabled = enabled
	return nil
}

func (m *memoryUsers) FindNotEnabled(_ context.Context) ([]*auth.User, error) {
	var users []*auth.User
	for id := int64(1); id <= m.nextID; id++ {
		if user, ok := m.byID[id]; ok && !user.Enabled {
			users = append(users, user)
		}
	}
	return users, nil
}

type memoryLedger struct {
	nextID int64
	rows   []*auth.AccessTokenRecord
}

func (m *memoryLedger) RecordIssued(_ context.Context, userID int64, token string) error {
	m.nextID++
	m.rows = append(m.rows, &auth.AccessTokenRecord{
		ID:     m.nextID,
		Token:  token,
		Kind:   auth.TokenKindBearer,
		UserID: userID,
	})
	return nil
}

func (m *memoryLedger) FindLiveByToken(_ context.Context, token string) (*auth.AccessTokenRecord, error) {
	for _, row := range m.rows {
		if row.Token == token && row.Live() {
			return row, nil
		}
	}
	return nil, apperr.NotFound("Access token")
}

func (m *memoryLedger) RevokeAllLiveForUser(_ context.Context, userID int64) error {
	for _, row := range m.rows {
		if row.UserID == userID && row.Live() {
			row.Expired = true
			row.Revoked = true
		}
	}
	return nil
}

func (m *memoryLedger) RevokeByToken(_ context.Context, token string) error {
	for _, row := range m.rows {
		if row.Token == token && row.Live() {
			row.Expired = true
			row.Revoked = true
		}
	}
	return nil
}

func (m *memoryLedger) ReplaceLive(ctx context.Context, userID int64, token string) error {
	if err := m.RevokeAllLiveForUser(ctx, userID); err != nil {
		return err
	}
	return m.RecordIssued(ctx, userID, token)
}

func (m *memoryLedger) liveFor(userID int64) []*auth.AccessTokenRecord {
	var live []*auth.AccessTokenRecord
	for _, row := range m.rows {
		if row.UserID == userID && row.Live() {
			live = append(live, row)
		}
	}
	return live
}

type memoryConfirmations struct {
	nextID int64
	rows   []*auth.ConfirmationToken
}

func (m *memoryConfirmations) Create(_ context.Context, token *auth.ConfirmationToken) error {
	m.nextID++
	token.ID = m.nextID
	m.rows = append(m.rows, token)
	return nil
}

func (m *memoryConfirmations) FindByToken(_ context.Context, token string) (*auth.ConfirmationToken, error) {
	for _, row := range m.rows {
		if row.Token != nil && *row.Token == token {
			return row, nil
		}
	}
	return nil, apperr.NotFound("Confirmation token")
}

func (m *memoryConfirmations) MarkConfirmed(_ context.Context, tokenID int64, confirmedAt time.Time) error {
	for _, row := range m.rows {
		if row.ID == tokenID {
			row.ConfirmedAt = &confirmedAt
			return nil
		}
	}
	return apperr.NotFound("Confirmation token")
}

func (m *memoryConfirmations) InvalidateAllLiveForUser(_ context.Context, userID int64) error {
	for _, row := range m.rows {
		if row.UserID == userID && row.Token != nil {
			row.Token = nil
		}
	}
	return nil
}

func (m *memoryConfirmations) matchableFor(userID int64) []*auth.ConfirmationToken {
	var matchable []*auth.ConfirmationToken
	for _, row := range m.rows {
		if row.UserID == userID && row.Token != nil {
			matchable = append(matchable, row)
		}
	}
	return matchable
}

// fakeCodec issues deterministic token strings and verifies refresh tokens
// against a scripted table, so tests can inject any sentinel failure.
type fakeCodec struct {
	verifyErr      map[string]error
	verifySubjects map[string]string
}

func newFakeCodec() *fakeCodec {
	return &fakeCodec{
		verifyErr:      map[string]error{},
		verifySubjects: map[string]string{},
	}
}

func (c *fakeCodec) IssueAccess(email string, _ []string, _ time.Duration) (string, error) {
	return "access-for-" + email, nil
}

func (c *fakeCodec) IssueRefresh(email string, _ time.Duration) (string, error) {
	token := "refresh-for-" + email
	c.verifySubjects[token] = email
	return token, nil
}

func (c *fakeCodec) VerifyRefresh(token string) (string, error) {
	if err, ok := c.verifyErr[token]; ok {
		return "", err
	}
	if subject, ok := c.verifySubjects[token]; ok {
		return subject, nil
	}
	return "", sec.ErrTokenMalformed
}

// recorderSender captures every delivered confirmation link and can be
// scripted to fail for specific recipients.
type recorderSender struct {
	failFor map[string]error
	sent    []sentConfirmation
}

type sentConfirmation struct {
	toEmail string
	link    string
}

func newRecorderSender() *recorderSender {
	return &recorderSender{failFor: map[string]error{}}
}

func (s *recorderSender) SendConfirmation(_ context.Context, toEmail, _, link string) error {
	if err, ok := s.failFor[toEmail]; ok {
		return err
	}
	s.sent = append(s.sent, sentConfirmation{toEmail: toEmail, link: link})
	return nil
}

// # Fixture

const testConfirmLink = "https://forkful.app/confirm?token="

type serviceFixture struct {
	users         *memoryUsers
	ledger        *memoryLedger
	confirmations *memoryConfirmations
	codec         *fakeCodec
	sender        *recorderSender
	service       *auth.Service
}

func newServiceFixture() *serviceFixture {
	f := &serviceFixture{
		users:         newMemoryUsers(),
		ledger:        &memoryLedger{},
		confirmations: &memoryConfirmations{},
		codec:         newFakeCodec(),
		sender:        newRecorderSender(),
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = auth.NewService(
		f.users, f.ledger, f.confirmations, f.codec, f.sender, testConfirmLink, log,
	)
	return f
}

// register enrolls an account through the real flow and optionally enables
// it, bypassing the confirmation dance for tests that start logged in.
func (f *serviceFixture) register(t *testing.T, email, password string, enabled bool) *auth.User {
	t.Helper()

	_, err := f.service.Register(context.Background(), auth.RegisterInput{
		Email:           email,
		Name:            "Test Cook",
		Password:        password,
		ConfirmPassword: password,
	})
	require.NoError(t, err)

	user, err := f.users.FindByEmail(context.Background(), email)
	require.NoError(t, err)
	user.Enabled = enabled
	return user
}

// requireCode asserts the error is an AppError carrying the taxonomy code.
func requireCode(t *testing.T, err error, code string, httpStatus int) {
	t.Helper()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, code, ae.Code)
	assert.Equal(t, httpStatus, ae.HTTPStatus)
}

// # Registration

/*
TestService_Register covers enrollment: the happy path creates a disabled
account with the default role and delivers a confirmation link; duplicates
and mismatched passwords are rejected before anything is persisted.
*/
func TestService_Register(t *testing.T) {
	t.Run("success_creates_disabled_account", func(t *testing.T) {
		f := newServiceFixture()

		result, err := f.service.Register(context.Background(), auth.RegisterInput{
			Email:           "mai@example.com",
			Name:            "Mai",
			Password:        "gingersnap42",
			ConfirmPassword: "gingersnap42",
		})

		require.NoError(t, err)
		assert.Equal(t, "mai@example.com", result.Email)

		user, err := f.users.FindByEmail(context.Background(), "mai@example.com")
		require.NoError(t, err)
		assert.False(t, user.Enabled)
		assert.Equal(t, []string{auth.RoleUser}, user.Roles)
		assert.NotEqual(t, "gingersnap42", user.PasswordHash)
		assert.True(t, sec.CheckPasswordHash("gingersnap42", user.PasswordHash))

		// One confirmation token exists and its link was delivered.
		matchable := f.confirmations.matchableFor(user.ID)
		require.Len(t, matchable, 1)
		require.Len(t, f.sender.sent, 1)
		assert.Equal(t, "mai@example.com", f.sender.sent[0].toEmail)
		assert.Equal(t, testConfirmLink+*matchable[0].Token, f.sender.sent[0].link)
	})

	t.Run("duplicate_email_conflicts", func(t *testing.T) {
		f := newServiceFixture()
		f.register(t, "mai@example.com", "gingersnap42", false)

		_, err := f.service.Register(context.Background(), auth.RegisterInput{
			Email:           "mai@example.com",
			Name:            "Other Mai",
			Password:        "different-pass",
			ConfirmPassword: "different-pass",
		})

		requireCode(t, err, "EMAIL_TAKEN", 409)
	})

	t.Run("password_mismatch", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.Register(context.Background(), auth.RegisterInput{
			Email:           "mai@example.com",
			Name:            "Mai",
			Password:        "gingersnap42",
			ConfirmPassword: "gingersnap43",
		})

		requireCode(t, err, "PASSWORD_MISMATCH", 400)
		_, findErr := f.users.FindByEmail(context.Background(), "mai@example.com")
		assert.Error(t, findErr, "nothing should be persisted on mismatch")
	})
}

// # Login

/*
TestService_Login covers session establishment, the single-active-session
ledger rotation, and the credential failure paths.
*/
func TestService_Login(t *testing.T) {
	t.Run("success_issues_pair_and_records_ledger_row", func(t *testing.T) {
		f := newServiceFixture()
		user := f.register(t, "mai@example.com", "gingersnap42", true)

		pair, err := f.service.Login(context.Background(), "mai@example.com", "gingersnap42")

		require.NoError(t, err)
		assert.Equal(t, "access-for-mai@example.com", pair.AccessToken)
		assert.Equal(t, "refresh-for-mai@example.com", pair.RefreshToken)

		live := f.ledger.liveFor(user.ID)
		require.Len(t, live, 1)
		assert.Equal(t, pair.AccessToken, live[0].Token)
		assert.Equal(t, auth.TokenKindBearer, live[0].Kind)
	})

	t.Run("second_login_replaces_live_row", func(t *testing.T) {
		f := newServiceFixture()
		user := f.register(t, "mai@example.com", "gingersnap42", true)

		_, err := f.service.Login(context.Background(), "mai@example.com", "gingersnap42")
		require.NoError(t, err)
		_, err = f.service.Login(context.Background(), "mai@example.com", "gingersnap42")
		require.NoError(t, err)

		// Exactly one live row survives; the first is flagged, not deleted.
		assert.Len(t, f.ledger.liveFor(user.ID), 1)
		assert.Len(t, f.ledger.rows, 2)
		assert.True(t, f.ledger.rows[0].Revoked)
		assert.True(t, f.ledger.rows[0].Expired)
	})

	t.Run("revoked_first_token_still_verifies_cryptographically", func(t *testing.T) {
		f := newServiceFixture()

		// Use the real codec: revocation is a ledger-only fact and must not
		// affect pure signature-and-expiry verification.
		codec, err := sec.NewTokenCodec("access-secret-for-tests", "refresh-secret-for-tests")
		require.NoError(t, err)
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		f.service = auth.NewService(
			f.users, f.ledger, f.confirmations, codec, f.sender, testConfirmLink, log,
		)

		user := f.register(t, "mai@example.com", "gingersnap42", true)

		first, err := f.service.Login(context.Background(), "mai@example.com", "gingersnap42")
		require.NoError(t, err)

		// A role change between the logins makes the second token a
		// distinct string regardless of issuance timestamps.
		user.Roles = append(user.Roles, auth.RoleAdmin)

		second, err := f.service.Login(context.Background(), "mai@example.com", "gingersnap42")
		require.NoError(t, err)
		require.NotEqual(t, first.AccessToken, second.AccessToken)

		// The first token's ledger row is dead.
		_, err = f.ledger.FindLiveByToken(context.Background(), first.AccessToken)
		require.Error(t, err)

		// Yet it still passes stateless verification until its expiry.
		subject, _, err := codec.VerifyAccess(first.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "mai@example.com", subject)

		// The replacement is the single live row.
		live := f.ledger.liveFor(user.ID)
		require.Len(t, live, 1)
		assert.Equal(t, second.AccessToken, live[0].Token)
	})

	t.Run("wrong_password", func(t *testing.T) {
		f := newServiceFixture()
		f.register(t, "mai@example.com", "gingersnap42", true)

		_, err := f.service.Login(context.Background(), "mai@example.com", "wrong-password")

		requireCode(t, err, "BAD_CREDENTIALS", 403)
	})

	t.Run("unknown_email_gets_same_error", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.Login(context.Background(), "nobody@example.com", "whatever")

		requireCode(t, err, "BAD_CREDENTIALS", 403)
	})

	t.Run("disabled_account", func(t *testing.T) {
		f := newServiceFixture()
		user := f.register(t, "mai@example.com", "gingersnap42", false)

		_, err := f.service.Login(context.Background(), "mai@example.com", "gingersnap42")

		requireCode(t, err, "ACCOUNT_DISABLED", 403)
		assert.Empty(t, f.ledger.liveFor(user.ID))
	})
}

// # Credential Refresh

/*
TestService_Refresh covers re-issuing an access token from a refresh token.
The ledger must never be touched: only login writes to it.
*/
func TestService_Refresh(t *testing.T) {
	t.Run("success_reflects_current_roles", func(t *testing.T) {
		f := newServiceFixture()
		user := f.register(t, "mai@example.com", "gingersnap42", true)

		pair, err := f.service.Login(context.Background(), "mai@example.com", "gingersnap42")
		require.NoError(t, err)

		// Role changes after login must flow into the refreshed token,
		// because the account is re-read at refresh time.
		user.Roles = append(user.Roles, auth.RoleAdmin)

		result, err := f.service.Refresh(context.Background(), pair.RefreshToken)

		require.NoError(t, err)
		assert.Equal(t, "mai@example.com", result.Email)
		assert.Equal(t, "access-for-mai@example.com", result.AccessToken)

		// The ledger still holds exactly the row recorded at login.
		assert.Len(t, f.ledger.rows, 1)
		assert.Len(t, f.ledger.liveFor(user.ID), 1)
	})

	t.Run("verification_failures_map_to_taxonomy", func(t *testing.T) {
		tests := []struct {
			name      string
			verifyErr error
			code      string
		}{
			{"expired", sec.ErrTokenExpired, "TOKEN_EXPIRED"},
			{"bad_signature", sec.ErrTokenBadSignature, "TOKEN_BAD_SIGNATURE"},
			{"malformed", sec.ErrTokenMalformed, "TOKEN_MALFORMED"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newServiceFixture()
				f.codec.verifyErr["bad-token"] = tt.verifyErr

				_, err := f.service.Refresh(context.Background(), "bad-token")

				requireCode(t, err, tt.code, 403)
			})
		}
	})

	t.Run("subject_no_longer_exists", func(t *testing.T) {
		f := newServiceFixture()
		f.codec.verifySubjects["ghost-token"] = "ghost@example.com"

		_, err := f.service.Refresh(context.Background(), "ghost-token")

		requireCode(t, err, "IDENTITY_NOT_FOUND", 403)
	})
}

// # Email Confirmation

/*
TestService_ConfirmEmail covers consuming a confirmation token: enabling the
account on success, and each rejection kind.
*/
func TestService_ConfirmEmail(t *testing.T) {
	t.Run("success_enables_account", func(t *testing.T) {
		f := newServiceFixture()
		user := f.register(t, "mai@example.com", "gingersnap42", false)
		token := f.confirmations.matchableFor(user.ID)[0]

		message, err := f.service.ConfirmEmail(context.Background(), *token.Token)

		require.NoError(t, err)
		assert.Contains(t, message, "successfully confirmed")
		assert.True(t, f.users.byID[user.ID].Enabled)
		assert.True(t, token.Confirmed())
	})

	t.Run("unknown_token", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.ConfirmEmail(context.Background(), "no-such-token")

		requireCode(t, err, "TOKEN_NOT_FOUND", 403)
	})

	t.Run("superseded_token_no_longer_matches", func(t *testing.T) {
		f := newServiceFixture()
		user := f.register(t, "mai@example.com", "gingersnap42", false)
		original := *f.confirmations.matchableFor(user.ID)[0].Token

		_, err := f.service.ResendConfirmation(context.Background(), "mai@example.com")
		require.NoError(t, err)

		_, err = f.service.ConfirmEmail(context.Background(), original)

		requireCode(t, err, "TOKEN_NOT_FOUND", 403)
	})

	t.Run("already_confirmed", func(t *testing.T) {
		f := newServiceFixture()
		user := f.register(t, "mai@example.com", "gingersnap42", false)
		token := *f.confirmations.matchableFor(user.ID)[0].Token

		_, err := f.service.ConfirmEmail(context.Background(), token)
		require.NoError(t, err)

		_, err = f.service.ConfirmEmail(context.Background(), token)

		requireCode(t, err, "ALREADY_CONFIRMED", 403)
	})

	t.Run("expired_token", func(t *testing.T) {
		f := newServiceFixture()
		user := f.register(t, "mai@example.com", "gingersnap42", false)
		token := f.confirmations.matchableFor(user.ID)[0]
		token.ExpiresAt = time.Now().Add(-time.Second)

		_, err := f.service.ConfirmEmail(context.Background(), *token.Token)

		requireCode(t, err, "TOKEN_EXPIRED", 403)
		assert.False(t, f.users.byID[user.ID].Enabled)
	})
}

/*
TestService_ResendConfirmation checks that a manual resend supersedes every
outstanding token before issuing the replacement.
*/
func TestService_ResendConfirmation(t *testing.T) {
	t.Run("supersedes_prior_tokens", func(t *testing.T) {
		f := newServiceFixture()
		user := f.register(t, "mai@example.com", "gingersnap42", false)

		_, err := f.service.ResendConfirmation(context.Background(), "mai@example.com")
		require.NoError(t, err)

		// Only the newest token is matchable; the historical row remains.
		matchable := f.confirmations.matchableFor(user.ID)
		require.Len(t, matchable, 1)
		assert.Len(t, f.confirmations.rows, 2)
		assert.True(t, f.confirmations.rows[0].Superseded())
		assert.Len(t, f.sender.sent, 2)
	})

	t.Run("unknown_email", func(t *testing.T) {
		f := newServiceFixture()

		_, err := f.service.ResendConfirmation(context.Background(), "nobody@example.com")

		requireCode(t, err, "IDENTITY_NOT_FOUND", 400)
	})

	t.Run("already_enabled", func(t *testing.T) {
		f := newServiceFixture()
		f.register(t, "mai@example.com", "gingersnap42", true)

		_, err := f.service.ResendConfirmation(context.Background(), "mai@example.com")

		requireCode(t, err, "ALREADY_CONFIRMED", 403)
	})
}

// # Weekly Reminder Sweep

/*
TestService_SendWeeklyReminders checks the sweep delivers a fresh link to
every unconfirmed account, leaves prior tokens actionable, and isolates
per-account delivery failures.
*/
func TestService_SendWeeklyReminders(t *testing.T) {
	t.Run("delivers_without_invalidating", func(t *testing.T) {
		f := newServiceFixture()
		pending := f.register(t, "pending@example.com", "gingersnap42", false)
		f.register(t, "active@example.com", "gingersnap42", true)

		err := f.service.SendWeeklyReminders(context.Background())

		require.NoError(t, err)

		// The registration token and the reminder token are both matchable.
		assert.Len(t, f.confirmations.matchableFor(pending.ID), 2)

		// Registration sent one email per account; the sweep adds one more
		// for the unconfirmed account only.
		require.Len(t, f.sender.sent, 3)
		assert.Equal(t, "pending@example.com", f.sender.sent[2].toEmail)
	})

	t.Run("one_failure_does_not_stop_the_sweep", func(t *testing.T) {
		f := newServiceFixture()
		f.register(t, "broken@example.com", "gingersnap42", false)
		healthy := f.register(t, "healthy@example.com", "gingersnap42", false)

		f.sender.failFor["broken@example.com"] = errors.New("smtp: mailbox unavailable")

		err := f.service.SendWeeklyReminders(context.Background())

		require.NoError(t, err)

		// The healthy account still received its reminder.
		var healthyReminders int
		for _, sent := range f.sender.sent {
			if sent.toEmail == "healthy@example.com" {
				healthyReminders++
			}
		}
		assert.Equal(t, 2, healthyReminders, "registration email plus one reminder")
		assert.Len(t, f.confirmations.matchableFor(healthy.ID), 2)
	})
}

// # Logout

/*
TestService_Logout verifies that logout revokes exactly the presented token
and treats every malformed or unknown input as a successful no-op.
*/
func TestService_Logout(t *testing.T) {
	t.Run("revokes_presented_token", func(t *testing.T) {
		f := newServiceFixture()
		user := f.register(t, "mai@example.com", "gingersnap42", true)

		pair, err := f.service.Login(context.Background(), "mai@example.com", "gingersnap42")
		require.NoError(t, err)

		err = f.service.Logout(context.Background(), "Bearer "+pair.AccessToken)

		require.NoError(t, err)
		assert.Empty(t, f.ledger.liveFor(user.ID))
		assert.Len(t, f.ledger.rows, 1, "rows are flagged, never deleted")
	})

	t.Run("second_logout_is_a_no_op", func(t *testing.T) {
		f := newServiceFixture()
		f.register(t, "mai@example.com", "gingersnap42", true)

		pair, err := f.service.Login(context.Background(), "mai@example.com", "gingersnap42")
		require.NoError(t, err)

		require.NoError(t, f.service.Logout(context.Background(), "Bearer "+pair.AccessToken))
		require.NoError(t, f.service.Logout(context.Background(), "Bearer "+pair.AccessToken))
	})

	t.Run("tolerates_malformed_headers", func(t *testing.T) {
		headers := []string{
			"",
			"Bearer",
			"Bearer ",
			"Basic dXNlcjpwYXNz",
			strings.Repeat("x", 64),
		}

		f := newServiceFixture()
		for _, header := range headers {
			assert.NoError(t, f.service.Logout(context.Background(), header))
		}
	})

	t.Run("unknown_token_is_a_no_op", func(t *testing.T) {
		f := newServiceFixture()

		err := f.service.Logout(context.Background(), "Bearer never-issued-token")

		assert.NoError(t, err)
	})
}
