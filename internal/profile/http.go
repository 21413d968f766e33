// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

/*
Package profile provides public cook pages and the follow graph.

A profile is a projection over the account table; follows are a single
directed edge table read from both directions.
*/
package profile

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/forkful/forkful/internal/platform/middleware"
	requestutil "github.com/forkful/forkful/internal/platform/request"
	"github.com/forkful/forkful/internal/platform/respond"
	"github.com/forkful/forkful/internal/platform/validate"
	"github.com/forkful/forkful/pkg/pagination"
)

// Validation field names.
const (
	fieldName   = "name"
	fieldQuery  = "query"
	fieldUserID = "userID"
)

// Handler implements profile-related HTTP endpoints.
type Handler struct {
	profileService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{profileService: service}
}

// Routes returns a [chi.Router] configured with profile routes.
//
// # Endpoints
//   - GET    /search              : Find cooks by name.
//   - GET    /{userID}            : Public profile page.
//   - GET    /{userID}/followers  : Who follows this cook.
//   - GET    /{userID}/following  : Who this cook follows.
//   - GET    /me                  : The viewer's own profile (auth).
//   - PUT    /me                  : Edit the viewer's profile (auth).
//   - PUT    /{userID}/follow     : Follow a cook (auth).
//   - DELETE /{userID}/follow     : Unfollow a cook (auth).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Get("/search", handler.search)
	router.Get("/{userID}", handler.get)
	router.Get("/{userID}/followers", handler.listFollowers)
	router.Get("/{userID}/following", handler.listFollowing)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Put("/me", handler.update)
		r.Put("/{userID}/follow", handler.follow)
		r.Delete("/{userID}/follow", handler.unfollow)
	})

	return router
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	ImageURL string `json:"imageUrl"`
}

/*
Get returns a cook's public profile.

GET /api/v1/profiles/{userID}

Response:
  - 200: Profile
  - 404: NOT_FOUND for unknown or unconfirmed accounts
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	userID, err := pathUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	viewer := middleware.GetUser(request.Context())
	profile, err := handler.profileService.Get(request.Context(), userID, viewer)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
Me returns the viewer's own profile.

GET /api/v1/profiles/me

Response:
  - 200: Profile
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	viewer := middleware.GetUser(request.Context())

	profile, err := handler.profileService.Get(request.Context(), viewer.ID, viewer)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

/*
Update edits the viewer's own profile.

PUT /api/v1/profiles/me

Response:
  - 200: Profile (fresh state)
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateProfileRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(fieldName, input.Name).
		MaxLen(fieldName, input.Name, 60).
		MaxLen("bio", input.Bio, 500)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	viewer := middleware.GetUser(request.Context())
	profile, err := handler.profileService.Update(request.Context(), viewer, UpdateInput{
		Name:     input.Name,
		Bio:      input.Bio,
		ImageURL: input.ImageURL,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

func (handler *Handler) follow(writer http.ResponseWriter, request *http.Request) {
	handler.setFollow(writer, request, true)
}

func (handler *Handler) unfollow(writer http.ResponseWriter, request *http.Request) {
	handler.setFollow(writer, request, false)
}

// setFollow is the shared body of the follow/unfollow endpoints.
func (handler *Handler) setFollow(writer http.ResponseWriter, request *http.Request, following bool) {
	userID, err := pathUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	viewer := middleware.GetUser(request.Context())
	if err := handler.profileService.SetFollow(request.Context(), viewer, userID, following); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
ListFollowers returns the accounts following a cook.

GET /api/v1/profiles/{userID}/followers

Response:
  - 200: []Summary with pagination metadata
*/
func (handler *Handler) listFollowers(writer http.ResponseWriter, request *http.Request) {
	handler.listEdges(writer, request, handler.profileService.ListFollowers)
}

/*
ListFollowing returns the accounts a cook follows.

GET /api/v1/profiles/{userID}/following

Response:
  - 200: []Summary with pagination metadata
*/
func (handler *Handler) listFollowing(writer http.ResponseWriter, request *http.Request) {
	handler.listEdges(writer, request, handler.profileService.ListFollowing)
}

type edgeLister func(ctx context.Context, userID int64, params pagination.Params) ([]*Summary, pagination.Meta, error)

// listEdges is the shared body of the two follow-list endpoints.
func (handler *Handler) listEdges(writer http.ResponseWriter, request *http.Request, list edgeLister) {
	userID, err := pathUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	summaries, meta, err := list(request.Context(), userID, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, summaries, meta)
}

/*
Search finds cooks by name.

GET /api/v1/profiles/search?query=nguyen

Response:
  - 200: []Summary with pagination metadata
  - 400: VALIDATION_ERROR when the query is empty
*/
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query().Get(fieldQuery)

	validator := &validate.Validator{}
	validator.Required(fieldQuery, query)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	summaries, meta, err := handler.profileService.Search(request.Context(), query, pagination.FromRequest(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, summaries, meta)
}

// pathUserID parses the numeric {userID} path parameter.
func pathUserID(request *http.Request) (int64, error) {
	raw := requestutil.Param(request, fieldUserID)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, validate.RequiredError(fieldUserID, "Must be a positive integer")
	}

	return id, nil
}
