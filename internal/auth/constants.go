// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package auth

import "time"

// # Credential Lifetimes

const (
	// AccessTokenTTL is the duration an access token remains valid.
	// Kept short so a leaked or logged-out token ages out quickly: the
	// per-request gate verifies signature and expiry only, it does not
	// consult the ledger.
	AccessTokenTTL = 10 * time.Minute

	// RefreshTokenTTL is the duration a refresh token remains valid.
	// Long-lived (30 days) so users are not forced to re-enter credentials.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// ConfirmationTokenTTL is the duration an email confirmation token
	// remains actionable after issuance.
	ConfirmationTokenTTL = 5 * time.Minute
)

// # Validation Field Names

const (
	FieldEmail           = "email"
	FieldName            = "name"
	FieldPassword        = "password"
	FieldPasswordConfirm = "passwordConfirm"
	FieldToken           = "token"
	FieldRefreshToken    = "refreshToken"
)

// # Reminder Sweep

const (
	// reminderSendsPerSecond paces outbound confirmation reminders so the
	// SMTP relay is not flooded when many accounts are unconfirmed.
	reminderSendsPerSecond = 5

	// reminderSendBurst is the limiter burst for the reminder sweep.
	reminderSendBurst = 5
)
