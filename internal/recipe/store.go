// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package recipe

import "context"

// Repository defines the data access contract for the recipe domain.
//
// # Architecture
//
// The interface lives in the domain package because the service layer (the
// consumer) defines what it needs; the pgx implementation sits alongside it
// in store_postgres.go.
type Repository interface {
	// List returns a filtered, paginated slice of recipes and the total count.
	// viewerID personalizes the IsLiked/IsSaved flags; zero means anonymous.
	List(ctx context.Context, filter Filter, viewerID int64, limit, offset int) ([]*Recipe, int, error)

	// FindByID returns the recipe with the given ID.
	FindByID(ctx context.Context, id int64, viewerID int64) (*Recipe, error)

	// FindBySlug returns the recipe with the given slug.
	FindBySlug(ctx context.Context, slug string, viewerID int64) (*Recipe, error)

	// Create persists a new recipe and its ingredient list.
	// The caller sets the Slug before calling this method.
	Create(ctx context.Context, recipe *Recipe) error

	// Update persists changes to a recipe's mutable fields and replaces
	// its ingredient list.
	Update(ctx context.Context, recipe *Recipe) error

	// Delete removes the recipe and its edges.
	Delete(ctx context.Context, id int64) error

	// SetLike creates or removes the (user, recipe) like edge and adjusts
	// the denormalized counter. Repeating the same state is a no-op.
	SetLike(ctx context.Context, userID, recipeID int64, liked bool) error

	// SetSave creates or removes the (user, recipe) save edge and adjusts
	// the denormalized counter. Repeating the same state is a no-op.
	SetSave(ctx context.Context, userID, recipeID int64, saved bool) error

	// ListSavedByUser returns the recipes a user has saved, newest first.
	ListSavedByUser(ctx context.Context, userID int64, limit, offset int) ([]*Recipe, int, error)
}

// Cache is a read-model cache for fully hydrated recipe pages.
//
// Lookups that miss return [apperr.NotFound]; writers treat cache failures
// as soft errors.
type Cache interface {
	Get(ctx context.Context, slug string) (*Recipe, error)
	Set(ctx context.Context, recipe *Recipe) error
	Invalidate(ctx context.Context, slug string) error
}
