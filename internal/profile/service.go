// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package profile

import (
	"context"
	"log/slog"

	"github.com/forkful/forkful/internal/auth"
	"github.com/forkful/forkful/internal/platform/apperr"
	"github.com/forkful/forkful/pkg/pagination"
)

// Service orchestrates profile reads, edits and the follow graph.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService constructs a [Service].
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Get returns a cook's public profile, personalized for the viewer.
func (service *Service) Get(ctx context.Context, userID int64, viewer *auth.User) (*Profile, error) {
	var viewerID int64
	if viewer != nil {
		viewerID = viewer.ID
	}
	return service.repo.FindByUserID(ctx, userID, viewerID)
}

// UpdateInput holds the owner-editable profile fields.
type UpdateInput struct {
	Name     string
	Bio      string
	ImageURL string
}

// Update rewrites the viewer's own profile and returns the fresh state.
func (service *Service) Update(ctx context.Context, viewer *auth.User, input UpdateInput) (*Profile, error) {
	if err := service.repo.UpdateBio(ctx, viewer.ID, input.Name, input.Bio, input.ImageURL); err != nil {
		return nil, err
	}
	return service.repo.FindByUserID(ctx, viewer.ID, viewer.ID)
}

// SetFollow creates or removes the viewer's follow edge to another cook.
//
// Following yourself is rejected; everything else is idempotent.
func (service *Service) SetFollow(ctx context.Context, viewer *auth.User, followeeID int64, following bool) error {
	if viewer.ID == followeeID {
		return apperr.ValidationError("You cannot follow yourself")
	}

	// Confirm the target exists (and is enabled) before touching the edge.
	if _, err := service.repo.FindByUserID(ctx, followeeID, viewer.ID); err != nil {
		return err
	}

	return service.repo.SetFollow(ctx, viewer.ID, followeeID, following)
}

// ListFollowers returns the accounts following userID.
func (service *Service) ListFollowers(ctx context.Context, userID int64, params pagination.Params) ([]*Summary, pagination.Meta, error) {
	summaries, total, err := service.repo.ListFollowers(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return summaries, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// ListFollowing returns the accounts userID follows.
func (service *Service) ListFollowing(ctx context.Context, userID int64, params pagination.Params) ([]*Summary, pagination.Meta, error) {
	summaries, total, err := service.repo.ListFollowing(ctx, userID, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return summaries, pagination.NewMeta(params.Page, params.Limit, total), nil
}

// Search finds cooks by name.
func (service *Service) Search(ctx context.Context, query string, params pagination.Params) ([]*Summary, pagination.Meta, error) {
	summaries, total, err := service.repo.Search(ctx, query, params.Limit, params.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return summaries, pagination.NewMeta(params.Page, params.Limit, total), nil
}
