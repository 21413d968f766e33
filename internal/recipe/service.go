// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package recipe

import (
	"context"
	"log/slog"

	"github.com/forkful/forkful/internal/auth"
	"github.com/forkful/forkful/internal/platform/apperr"
	"github.com/forkful/forkful/pkg/pagination"
	"github.com/forkful/forkful/pkg/slug"
)

// Service orchestrates recipe reads, writes and engagement toggles.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewService constructs a [Service].
func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// List returns a filtered page of recipes plus pagination metadata.
func (service *Service) List(ctx context.Context, filter Filter, viewer *auth.User, params pagination.Params) ([]*Recipe, pagination.Meta, error) {
	viewerID := viewerIDOf(viewer)

	recipes, total, err := service.repo.List(ctx, filter, viewerID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return recipes, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// GetBySlug returns one hydrated recipe page.
//
// # Caching
//
// Anonymous requests are served from the Redis read model when possible.
// Authenticated requests always hit Postgres because IsLiked/IsSaved are
// viewer-specific. Cache failures degrade to a database read.
func (service *Service) GetBySlug(ctx context.Context, recipeSlug string, viewer *auth.User) (*Recipe, error) {
	if viewer == nil {
		if cached, err := service.cache.Get(ctx, recipeSlug); err == nil {
			return cached, nil
		} else if !apperr.IsAppError(err) {
			service.log.Warn("recipe_cache_read_failed", slog.Any("error", err))
		}
	}

	recipe, err := service.repo.FindBySlug(ctx, recipeSlug, viewerIDOf(viewer))
	if err != nil {
		return nil, err
	}

	if viewer == nil {
		if err := service.cache.Set(ctx, recipe); err != nil {
			service.log.Warn("recipe_cache_write_failed", slog.Any("error", err))
		}
	}

	return recipe, nil
}

// Input holds the author-editable fields of a recipe.
type Input struct {
	Title       string
	Description string
	ImageURL    string
	Category    Category
	Difficulty  Difficulty
	CookMinutes int
	Servings    int
	Ingredients []Ingredient
}

// Create publishes a new recipe under the author's account.
func (service *Service) Create(ctx context.Context, author *auth.User, input Input) (*Recipe, error) {
	recipe := &Recipe{
		Title:       input.Title,
		Slug:        slug.From(input.Title),
		Description: input.Description,
		ImageURL:    input.ImageURL,
		Category:    input.Category,
		Difficulty:  input.Difficulty,
		CookMinutes: input.CookMinutes,
		Servings:    input.Servings,
		Ingredients: input.Ingredients,
		AuthorID:    author.ID,
		AuthorName:  author.Name,
	}

	if err := service.repo.Create(ctx, recipe); err != nil {
		return nil, err
	}

	return recipe, nil
}

// Update rewrites a recipe. Only the author (or an admin) may edit.
func (service *Service) Update(ctx context.Context, actor *auth.User, recipeID int64, input Input) (*Recipe, error) {
	existing, err := service.repo.FindByID(ctx, recipeID, actor.ID)
	if err != nil {
		return nil, err
	}

	if existing.AuthorID != actor.ID && !actor.HasRole(auth.RoleAdmin) {
		return nil, apperr.Forbidden("Only the author can edit this recipe")
	}

	oldSlug := existing.Slug

	existing.Title = input.Title
	existing.Slug = slug.From(input.Title)
	existing.Description = input.Description
	existing.ImageURL = input.ImageURL
	existing.Category = input.Category
	existing.Difficulty = input.Difficulty
	existing.CookMinutes = input.CookMinutes
	existing.Servings = input.Servings
	existing.Ingredients = input.Ingredients

	if err := service.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	service.invalidate(ctx, oldSlug, existing.Slug)
	return existing, nil
}

// Delete removes a recipe. Only the author (or an admin) may delete.
func (service *Service) Delete(ctx context.Context, actor *auth.User, recipeID int64) error {
	existing, err := service.repo.FindByID(ctx, recipeID, actor.ID)
	if err != nil {
		return err
	}

	if existing.AuthorID != actor.ID && !actor.HasRole(auth.RoleAdmin) {
		return apperr.Forbidden("Only the author can delete this recipe")
	}

	if err := service.repo.Delete(ctx, recipeID); err != nil {
		return err
	}

	service.invalidate(ctx, existing.Slug, "")
	return nil
}

// SetLike toggles the viewer's like on a recipe.
func (service *Service) SetLike(ctx context.Context, viewer *auth.User, recipeID int64, liked bool) error {
	return service.toggleEdge(ctx, viewer, recipeID, liked, service.repo.SetLike)
}

// SetSave toggles the viewer's save on a recipe.
func (service *Service) SetSave(ctx context.Context, viewer *auth.User, recipeID int64, saved bool) error {
	return service.toggleEdge(ctx, viewer, recipeID, saved, service.repo.SetSave)
}

// ListSaved returns the viewer's saved recipes.
func (service *Service) ListSaved(ctx context.Context, viewer *auth.User, params pagination.Params) ([]*Recipe, pagination.Meta, error) {
	recipes, total, err := service.repo.ListSavedByUser(ctx, viewer.ID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	return recipes, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// toggleEdge resolves the recipe (for its slug), applies the toggle and
// invalidates the cached page so counters stay fresh.
func (service *Service) toggleEdge(
	ctx context.Context,
	viewer *auth.User,
	recipeID int64,
	active bool,
	apply func(ctx context.Context, userID, recipeID int64, active bool) error,
) error {
	recipe, err := service.repo.FindByID(ctx, recipeID, viewer.ID)
	if err != nil {
		return err
	}

	if err := apply(ctx, viewer.ID, recipeID, active); err != nil {
		return err
	}

	service.invalidate(ctx, recipe.Slug, "")
	return nil
}

// invalidate drops up to two cached slugs, logging failures as soft errors.
func (service *Service) invalidate(ctx context.Context, slugs ...string) {
	for _, s := range slugs {
		if s == "" {
			continue
		}
		if err := service.cache.Invalidate(ctx, s); err != nil {
			service.log.Warn("recipe_cache_invalidate_failed",
				slog.String("slug", s),
				slog.Any("error", err),
			)
		}
	}
}

func viewerIDOf(viewer *auth.User) int64 {
	if viewer == nil {
		return 0
	}
	return viewer.ID
}
