// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/forkful/forkful/internal/platform/apperr"
	"github.com/forkful/forkful/internal/platform/sec"
)

// CredentialCodec defines the contract for issuing and verifying the signed
// bearer credentials. Satisfied by [sec.TokenCodec].
//
// # Why an interface?
//
// The service never inspects token internals; defining the contract here
// keeps the application layer independent of the signing library and lets
// tests substitute a codec with crafted lifetimes.
type CredentialCodec interface {
	// IssueAccess creates a signed access token carrying the subject email
	// and role names, valid for timeToLive.
	IssueAccess(email string, roles []string, timeToLive time.Duration) (string, error)

	// IssueRefresh creates a signed refresh token carrying only the subject
	// email, valid for timeToLive.
	IssueRefresh(email string, timeToLive time.Duration) (string, error)

	// VerifyRefresh checks a refresh token and returns its subject email.
	// Fails with the [sec] sentinel errors.
	VerifyRefresh(token string) (string, error)
}

// ConfirmationSender delivers confirmation links to account owners.
// Implemented by the email package; substituted with a recorder in tests.
type ConfirmationSender interface {
	SendConfirmation(ctx context.Context, toEmail, name, link string) error
}

// Service orchestrates registration, login, credential refresh, email
// confirmation and logout.
//
// # Review Process
//
// This service is the only component allowed to combine the three stores
// with password verification. Changes to hashing, token issuance or
// revocation ordering must be reviewed by the security team.
type Service struct {
	users            UserRepository
	ledger           AccessTokenLedger
	confirmations    ConfirmationTokenRepository
	codec            CredentialCodec
	sender           ConfirmationSender
	confirmEmailLink string
	log              *slog.Logger
}

// NewService constructs the auth [Service] with its dependencies.
// confirmEmailLink is the public URL prefix the confirmation token string is
// appended to when building the emailed link.
func NewService(
	users UserRepository,
	ledger AccessTokenLedger,
	confirmations ConfirmationTokenRepository,
	codec CredentialCodec,
	sender ConfirmationSender,
	confirmEmailLink string,
	log *slog.Logger,
) *Service {
	return &Service{
		users:            users,
		ledger:           ledger,
		confirmations:    confirmations,
		codec:            codec,
		sender:           sender,
		confirmEmailLink: confirmEmailLink,
		log:              log,
	}
}

// # Registration

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email           string
	Name            string
	Password        string
	ConfirmPassword string
}

// RegisterResult is returned on successful enrollment.
type RegisterResult struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// Register creates a disabled account and issues its first confirmation token.
//
// # Business Rules
//   - Emails must be unique (EMAIL_TAKEN, 409).
//   - Password and its confirmation must match (PASSWORD_MISMATCH, 400).
//   - New accounts start disabled with the default role; only consuming a
//     confirmation token enables them.
func (service *Service) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	// ── 1. Uniqueness Check ───────────────────────────────────────────────

	if _, err := service.users.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperr.Conflict("Email already exists. Please try another one.").
			WithCode("EMAIL_TAKEN")
	}

	// ── 2. Password Agreement ─────────────────────────────────────────────

	if input.Password != input.ConfirmPassword {
		return nil, apperr.ValidationError("Passwords do not match.").
			WithCode("PASSWORD_MISMATCH")
	}

	// ── 3. Security ───────────────────────────────────────────────────────

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// ── 4. Entity Construction & Persistence ──────────────────────────────

	user := &User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hashedPassword,
		Enabled:      false, // Rule: accounts stay disabled until confirmed
		Roles:        []string{RoleUser},
	}

	if err := service.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// ── 5. Confirmation Token & Delivery ──────────────────────────────────

	if err := service.issueAndDeliverConfirmation(ctx, user); err != nil {
		return nil, err
	}

	return &RegisterResult{
		Message: "Success! Please check your email for the confirmation",
		Email:   user.Email,
	}, nil
}

// # Login

// TokenPair carries the freshly issued credential set.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login validates credentials and establishes a new session.
//
// # Flow
//  1. Lookup user by email and verify the password hash.
//  2. Reject accounts that have not confirmed their email.
//  3. Issue access + refresh tokens.
//  4. Revoke every previously live ledger row, then record the new one,
//     inside one transaction. At most one live access token per account
//     exists at any time (single-active-session policy).
func (service *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	// ── 1. Credential Verification ────────────────────────────────────────

	user, err := service.users.FindByEmail(ctx, email)

	// A generic error for both unknown email and wrong password prevents
	// account enumeration.
	if err != nil || !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.Forbidden("Invalid email or password").
			WithCode("BAD_CREDENTIALS")
	}

	// ── 2. Account State ──────────────────────────────────────────────────

	if !user.Enabled {
		return nil, apperr.Forbidden("User is not enabled yet").
			WithCode("ACCOUNT_DISABLED")
	}

	// ── 3. Token Issuance ─────────────────────────────────────────────────

	accessToken, err := service.codec.IssueAccess(user.Email, user.Roles, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.codec.IssueRefresh(user.Email, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// ── 4. Ledger Rotation ────────────────────────────────────────────────

	// Revocation precedes the insert inside a single transaction, so a
	// concurrent duplicate login cannot revoke the row it just created.
	if err := service.ledger.ReplaceLive(ctx, user.ID, accessToken); err != nil {
		return nil, fmt.Errorf("auth_service_ledger_rotation_failed: %w", err)
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// # Credential Refresh

// RefreshResult carries the re-issued access token.
type RefreshResult struct {
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

// Refresh mints a fresh access token from a valid refresh token.
//
// The current account is re-read so role changes since login are reflected
// in the new token. The access-token ledger is deliberately not touched:
// the row recorded at login stays the account's ledger entry, and a
// refreshed access token is only invalidated by its own expiry.
func (service *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	// ── 1. Verify Against the Refresh Key ─────────────────────────────────

	subject, err := service.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, refreshVerificationError(err)
	}

	// ── 2. Resolve the Current Account ────────────────────────────────────

	user, err := service.users.FindByEmail(ctx, subject)
	if err != nil {
		return nil, apperr.Forbidden("User not found").
			WithCode("IDENTITY_NOT_FOUND")
	}

	// ── 3. Issue a Fresh Access Token ─────────────────────────────────────

	accessToken, err := service.codec.IssueAccess(user.Email, user.Roles, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_failed: %w", err)
	}

	return &RefreshResult{Email: user.Email, AccessToken: accessToken}, nil
}

// refreshVerificationError translates codec sentinels into the API taxonomy.
func refreshVerificationError(err error) error {
	switch {
	case errors.Is(err, sec.ErrTokenExpired):
		return apperr.Forbidden("Refresh token has expired").WithCode("TOKEN_EXPIRED")
	case errors.Is(err, sec.ErrTokenBadSignature):
		return apperr.Forbidden("Invalid refresh token signature").WithCode("TOKEN_BAD_SIGNATURE")
	default:
		return apperr.Forbidden("Malformed refresh token").WithCode("TOKEN_MALFORMED")
	}
}

// # Email Confirmation

// ConfirmEmail consumes a confirmation token and enables its account.
//
// # Failure Kinds
//   - TOKEN_NOT_FOUND: unknown or superseded token string.
//   - ALREADY_CONFIRMED: the token was consumed before.
//   - TOKEN_EXPIRED: strictly past the expiry instant (the instant itself
//     is still inside the valid window).
func (service *Service) ConfirmEmail(ctx context.Context, token string) (string, error) {
	confirmation, err := service.confirmations.FindByToken(ctx, token)
	if err != nil {
		return "", apperr.Forbidden("Token not found").WithCode("TOKEN_NOT_FOUND")
	}

	if confirmation.Confirmed() {
		return "", apperr.Forbidden("Email already confirmed").WithCode("ALREADY_CONFIRMED")
	}

	if confirmation.ExpiredAt(time.Now()) {
		return "", apperr.Forbidden("Token has expired").WithCode("TOKEN_EXPIRED")
	}

	// Consume the token and enable the account.
	if err := service.confirmations.MarkConfirmed(ctx, confirmation.ID, time.Now()); err != nil {
		return "", fmt.Errorf("auth_service_confirm_failed: %w", err)
	}
	if err := service.users.SetEnabled(ctx, confirmation.UserID, true); err != nil {
		return "", fmt.Errorf("auth_service_enable_failed: %w", err)
	}

	return "Email successfully confirmed. Go back to your login page", nil
}

// ResendConfirmation supersedes every outstanding confirmation token for the
// account and delivers a fresh one.
//
// Unlike the weekly reminder sweep, a manual resend invalidates prior
// tokens: only the newest emailed link works afterwards.
func (service *Service) ResendConfirmation(ctx context.Context, email string) (string, error) {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		return "", apperr.ValidationError("User not found").WithCode("IDENTITY_NOT_FOUND")
	}

	if user.Enabled {
		return "", apperr.Forbidden("Email already confirmed").WithCode("ALREADY_CONFIRMED")
	}

	if err := service.confirmations.InvalidateAllLiveForUser(ctx, user.ID); err != nil {
		return "", fmt.Errorf("auth_service_invalidate_failed: %w", err)
	}

	if err := service.issueAndDeliverConfirmation(ctx, user); err != nil {
		return "", err
	}

	return "Success! Please check your email for the re-confirmation", nil
}

// # Weekly Reminder Sweep

// SendWeeklyReminders issues a fresh confirmation token to every account
// that has not confirmed its email, and delivers the link.
//
// # Failure Isolation
//
// One account's failure (storage or delivery) is logged and skipped; the
// sweep always continues with the remaining accounts. Prior tokens are NOT
// invalidated here, so an older un-expired link keeps working alongside the
// reminder's link.
func (service *Service) SendWeeklyReminders(ctx context.Context) error {
	users, err := service.users.FindNotEnabled(ctx)
	if err != nil {
		return fmt.Errorf("auth_service_reminder_query_failed: %w", err)
	}

	// Pace outbound sends so a large backlog does not flood the SMTP relay.
	limiter := rate.NewLimiter(rate.Limit(reminderSendsPerSecond), reminderSendBurst)

	for _, user := range users {
		if err := limiter.Wait(ctx); err != nil {
			// Context cancelled: abort the remainder of the sweep cleanly.
			return err
		}

		if err := service.issueAndDeliverConfirmation(ctx, user); err != nil {
			service.log.Error("reminder_delivery_failed",
				slog.Int64("user_id", user.ID),
				slog.Any("error", err),
			)
			continue
		}
	}

	return nil
}

// # Logout

// Logout revokes the access token presented in the Authorization header.
//
// Logout always succeeds from the caller's perspective: a missing or
// malformed header and an unknown token are both no-ops. A second logout
// with the same token finds no live row and changes nothing.
func (service *Service) Logout(ctx context.Context, authorizationHeader string) error {
	token, ok := bearerToken(authorizationHeader)
	if !ok {
		return nil
	}

	if err := service.ledger.RevokeByToken(ctx, token); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}

	return nil
}

// bearerToken extracts the credential from an "Authorization: Bearer ..."
// header value. ok is false for an absent or differently-shaped header.
func bearerToken(header string) (token string, ok bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// # Internals

// issueAndDeliverConfirmation creates a confirmation token row and emails
// its link to the account owner.
func (service *Service) issueAndDeliverConfirmation(ctx context.Context, user *User) error {
	confirmation := NewConfirmationToken(user.ID, time.Now())
	if err := service.confirmations.Create(ctx, confirmation); err != nil {
		return fmt.Errorf("auth_service_confirmation_create_failed: %w", err)
	}

	link := service.confirmEmailLink + *confirmation.Token
	if err := service.sender.SendConfirmation(ctx, user.Email, user.Name, link); err != nil {
		return apperr.Internal(fmt.Errorf("auth_service_confirmation_delivery_failed: %w", err))
	}

	return nil
}
