// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

/*
Package auth provides account enrollment, session establishment, and the
token lifecycle behind them.

It owns the credential codec plumbing, the access-token ledger, and the
email-confirmation flow that gates new accounts.

# Architecture

The package is layered the same way as every other feature:
  - [Handler] is the transport layer: decoding, validation, status codes.
  - [Service] holds the business rules and orchestrates the stores.
  - [UserRepository], [AccessTokenLedger] and [ConfirmationTokenRepository]
    abstract persistence behind interfaces with pgx implementations.
*/
package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/forkful/forkful/internal/platform/constants"
	"github.com/forkful/forkful/internal/platform/ctxutil"
	requestutil "github.com/forkful/forkful/internal/platform/request"
	"github.com/forkful/forkful/internal/platform/respond"
	"github.com/forkful/forkful/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication routes.
//
// # Endpoints
//   - POST /register        : Creates a new (disabled) account.
//   - POST /login           : Authenticates and returns a token pair.
//   - POST /refresh-token   : Exchanges a refresh token for a new access token.
//   - GET  /confirm-email   : Consumes an email confirmation token.
//   - POST /reconfirm-email : Reissues a confirmation token.
//   - POST /logout          : Revokes the presented access token.
//
// Every route is public. Logout is deliberately not behind the auth gate:
// it inspects the Authorization header itself and treats a missing or
// unusable credential as an already-logged-out session.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh-token", handler.refreshToken)
	router.Get("/confirm-email", handler.confirmEmail)
	router.Post("/reconfirm-email", handler.reconfirmEmail)
	router.Post("/logout", handler.logout)

	return router
}

// # Request Payloads

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type reconfirmRequest struct {
	Email string `json:"email"`
}

/*
Register handles the creation of a new user account.

POST /api/v1/auth/register

Description: Validates input, enforces email uniqueness and password
confirmation, then persists a disabled account and emails a confirmation
token.

Request:
  - Body: registerRequest (Name, Email, Password, PasswordConfirm)

Response:
  - 200: RegisterResult: Confirmation prompt and the registered email
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: EMAIL_TAKEN: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldName, input.Name).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Required(FieldPasswordConfirm, input.PasswordConfirm)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Register(request.Context(), RegisterInput{
		Name:            input.Name,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.PasswordConfirm,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	// The account is pending confirmation, not a finished resource, so the
	// response is a plain 200 acknowledgement.
	respond.OK(writer, result)
}

/*
Login authenticates a user and establishes a session.

POST /api/v1/auth/login

Description: Verifies credentials, issues a fresh access/refresh pair and
replaces the account's live ledger entry.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: TokenPair: Access and refresh tokens
  - 403: BAD_CREDENTIALS / ACCOUNT_DISABLED
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
RefreshToken issues a new access token from a valid refresh token.

POST /api/v1/auth/refresh-token?refreshToken=...

Description: Verifies the refresh token signature and expiry, re-reads the
account for its current roles, and returns a fresh access token. The ledger
is not consulted or modified here.

Response:
  - 200: RefreshResult: Email and new access token
  - 403: TOKEN_EXPIRED / TOKEN_BAD_SIGNATURE / TOKEN_MALFORMED / IDENTITY_NOT_FOUND
*/
func (handler *Handler) refreshToken(writer http.ResponseWriter, request *http.Request) {
	refreshToken := request.URL.Query().Get(FieldRefreshToken)

	validator := &validate.Validator{}
	validator.Required(FieldRefreshToken, refreshToken)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.authService.Refresh(request.Context(), refreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, result)
}

/*
ConfirmEmail consumes an email confirmation token and enables the account.

GET /api/v1/auth/confirm-email?token=...

Description: Looks the token up by its exact string, rejects confirmed or
expired tokens, stamps the confirmation time and enables the account.

Response:
  - 200: message: Confirmation acknowledgement
  - 403: TOKEN_NOT_FOUND / ALREADY_CONFIRMED / TOKEN_EXPIRED
*/
func (handler *Handler) confirmEmail(writer http.ResponseWriter, request *http.Request) {
	token := request.URL.Query().Get(FieldToken)

	validator := &validate.Validator{}
	validator.Required(FieldToken, token)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.authService.ConfirmEmail(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldMessage: message})
}

/*
ReconfirmEmail reissues a confirmation token for an unconfirmed account.

POST /api/v1/auth/reconfirm-email

Description: Invalidates every outstanding confirmation token for the
account, then issues and emails a fresh one.

Request:
  - Body: reconfirmRequest (Email)

Response:
  - 200: message: Delivery acknowledgement
  - 400: IDENTITY_NOT_FOUND
  - 403: ALREADY_CONFIRMED
*/
func (handler *Handler) reconfirmEmail(writer http.ResponseWriter, request *http.Request) {
	var input reconfirmRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.authService.ResendConfirmation(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{constants.FieldMessage: message})
}

/*
Logout revokes the access token presented in the Authorization header.

POST /api/v1/auth/logout

Description: Marks the exact token's ledger row as expired and revoked.
A missing, malformed or unknown token is treated as already logged out.

Response:
  - 200: message: Always succeeds from the client's point of view
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	err := handler.authService.Logout(request.Context(), request.Header.Get(constants.HeaderAuthorization))
	if err != nil {
		// Revocation failures stay server-side. The client's session is
		// over either way.
		ctxutil.GetLogger(request.Context()).Error("logout revocation failed", "error", err)
	}

	respond.OK(writer, map[string]string{constants.FieldMessage: "Logged out successfully."})
}
