// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

/*
Package recipe provides the catalogue of published dishes.

It covers browse/search, the recipe detail page with its Redis read model,
authoring, and the like/save engagement edges.
*/
package recipe

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/forkful/forkful/internal/auth"
	"github.com/forkful/forkful/internal/platform/middleware"
	requestutil "github.com/forkful/forkful/internal/platform/request"
	"github.com/forkful/forkful/internal/platform/respond"
	"github.com/forkful/forkful/internal/platform/validate"
	"github.com/forkful/forkful/pkg/pagination"
)

// Validation field names.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldDifficulty  = "difficulty"
	fieldServings    = "servings"
	fieldIngredients = "ingredients"
	fieldRecipeID    = "recipeID"
)

// Handler implements recipe-related HTTP endpoints.
type Handler struct {
	recipeService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{recipeService: service}
}

// Routes returns a [chi.Router] configured with recipe routes.
//
// # Endpoints
//   - GET    /              : Browse/search recipes.
//   - GET    /{slug}        : Recipe detail page.
//   - POST   /              : Publish a recipe (auth).
//   - PUT    /{recipeID}    : Edit a recipe (author only).
//   - DELETE /{recipeID}    : Remove a recipe (author only).
//   - PUT    /{recipeID}/like, /save   : Create the engagement edge (auth).
//   - DELETE /{recipeID}/like, /save   : Remove the engagement edge (auth).
//   - GET    /saved         : The viewer's saved recipes (auth).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Get("/", handler.list)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/saved", handler.listSaved)
		r.Post("/", handler.create)
		r.Put("/{recipeID}", handler.update)
		r.Delete("/{recipeID}", handler.delete)
		r.Put("/{recipeID}/like", handler.like)
		r.Delete("/{recipeID}/like", handler.unlike)
		r.Put("/{recipeID}/save", handler.save)
		r.Delete("/{recipeID}/save", handler.unsave)
	})

	router.Get("/{slug}", handler.detail)

	return router
}

// # Request Payloads

type recipeRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	ImageURL    string       `json:"imageUrl"`
	Category    string       `json:"category"`
	Difficulty  string       `json:"difficulty"`
	CookMinutes int          `json:"cookMinutes"`
	Servings    int          `json:"servings"`
	Ingredients []Ingredient `json:"ingredients"`
}

// validateRecipe runs the shared rules for create and update payloads.
func validateRecipe(input recipeRequest) error {
	validator := &validate.Validator{}
	validator.Required(fieldTitle, input.Title).
		MaxLen(fieldTitle, input.Title, 120).
		Required(fieldDescription, input.Description).
		OneOf(fieldCategory, input.Category,
			string(CategoryBreakfast), string(CategoryLunch), string(CategoryDinner),
			string(CategoryDessert), string(CategorySnack)).
		OneOf(fieldDifficulty, input.Difficulty,
			string(DifficultyEasy), string(DifficultyMedium), string(DifficultyHard)).
		Custom(fieldServings, input.Servings < 1, "Must be at least 1").
		Custom(fieldIngredients, len(input.Ingredients) == 0, "At least one ingredient is required")

	return validator.Err()
}

/*
List returns a filtered, paginated recipe collection.

GET /api/v1/recipes?category=dinner&query=pho&authorId=7&page=1&limit=20

Response:
  - 200: []Recipe with pagination metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	filter := Filter{
		Category: Category(request.URL.Query().Get("category")),
		Query:    request.URL.Query().Get("query"),
	}

	if filter.Category != "" && !filter.Category.IsValid() {
		respond.Error(writer, request, validate.RequiredError(fieldCategory, "Unknown category"))
		return
	}

	if raw := request.URL.Query().Get("authorId"); raw != "" {
		authorID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || authorID < 1 {
			respond.Error(writer, request, validate.RequiredError("authorId", "Must be a positive integer"))
			return
		}
		filter.AuthorID = authorID
	}

	viewer := middleware.GetUser(request.Context())
	recipes, meta, err := handler.recipeService.List(request.Context(), filter, viewer, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, recipes, meta)
}

/*
Detail returns one fully hydrated recipe page.

GET /api/v1/recipes/{slug}

Response:
  - 200: Recipe
  - 404: NOT_FOUND
*/
func (handler *Handler) detail(writer http.ResponseWriter, request *http.Request) {
	viewer := middleware.GetUser(request.Context())

	recipe, err := handler.recipeService.GetBySlug(request.Context(), requestutil.Param(request, "slug"), viewer)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, recipe)
}

/*
Create publishes a new recipe under the authenticated account.

POST /api/v1/recipes

Response:
  - 201: Recipe
  - 400: VALIDATION_ERROR
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input recipeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := validateRecipe(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	author := middleware.GetUser(request.Context())
	recipe, err := handler.recipeService.Create(request.Context(), author, Input{
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Category:    Category(input.Category),
		Difficulty:  Difficulty(input.Difficulty),
		CookMinutes: input.CookMinutes,
		Servings:    input.Servings,
		Ingredients: input.Ingredients,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, recipe)
}

/*
Update rewrites an existing recipe.

PUT /api/v1/recipes/{recipeID}

Response:
  - 200: Recipe
  - 403: FORBIDDEN when the caller is not the author
  - 404: NOT_FOUND
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	recipeID, err := pathRecipeID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input recipeRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if err := validateRecipe(input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := middleware.GetUser(request.Context())
	recipe, err := handler.recipeService.Update(request.Context(), actor, recipeID, Input{
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Category:    Category(input.Category),
		Difficulty:  Difficulty(input.Difficulty),
		CookMinutes: input.CookMinutes,
		Servings:    input.Servings,
		Ingredients: input.Ingredients,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, recipe)
}

/*
Delete removes a recipe and its engagement edges.

DELETE /api/v1/recipes/{recipeID}

Response:
  - 204: No Content
  - 403: FORBIDDEN when the caller is not the author
*/
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	recipeID, err := pathRecipeID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	actor := middleware.GetUser(request.Context())
	if err := handler.recipeService.Delete(request.Context(), actor, recipeID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

func (handler *Handler) like(writer http.ResponseWriter, request *http.Request) {
	handler.toggle(writer, request, handler.recipeService.SetLike, true)
}

func (handler *Handler) unlike(writer http.ResponseWriter, request *http.Request) {
	handler.toggle(writer, request, handler.recipeService.SetLike, false)
}

func (handler *Handler) save(writer http.ResponseWriter, request *http.Request) {
	handler.toggle(writer, request, handler.recipeService.SetSave, true)
}

func (handler *Handler) unsave(writer http.ResponseWriter, request *http.Request) {
	handler.toggle(writer, request, handler.recipeService.SetSave, false)
}

// toggle is the shared body of the four engagement endpoints.
func (handler *Handler) toggle(
	writer http.ResponseWriter,
	request *http.Request,
	apply func(ctx context.Context, viewer *auth.User, recipeID int64, active bool) error,
	active bool,
) {
	recipeID, err := pathRecipeID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	viewer := middleware.GetUser(request.Context())
	if err := apply(request.Context(), viewer, recipeID, active); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

/*
ListSaved returns the recipes the viewer has saved.

GET /api/v1/recipes/saved

Response:
  - 200: []Recipe with pagination metadata
*/
func (handler *Handler) listSaved(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)
	viewer := middleware.GetUser(request.Context())

	recipes, meta, err := handler.recipeService.ListSaved(request.Context(), viewer, params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, recipes, meta)
}

// pathRecipeID parses the numeric {recipeID} path parameter.
func pathRecipeID(request *http.Request) (int64, error) {
	raw := requestutil.Param(request, fieldRecipeID)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, validate.RequiredError(fieldRecipeID, "Must be a positive integer")
	}

	return id, nil
}
