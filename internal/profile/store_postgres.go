// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/forkful/forkful/internal/platform/apperr"
	"github.com/forkful/forkful/internal/platform/dberr"
)

// PostgresRepository implements the Repository interface using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL implementation of Repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// FindByUserID hydrates the public profile with its computed counters.
func (repository *PostgresRepository) FindByUserID(ctx context.Context, userID, viewerID int64) (*Profile, error) {
	const query = `
		SELECT a.id, a.name, a.bio, a.image_url, a.created_at,
			(SELECT COUNT(*) FROM recipe.recipe r WHERE r.author_id = a.id),
			(SELECT COUNT(*) FROM profile.follow f WHERE f.followee_id = a.id),
			(SELECT COUNT(*) FROM profile.follow f WHERE f.follower_id = a.id),
			EXISTS (SELECT 1 FROM profile.follow f WHERE f.follower_id = $2 AND f.followee_id = a.id)
		FROM auth.account a
		WHERE a.id = $1 AND a.enabled = TRUE`

	profile := &Profile{}
	err := repository.pool.QueryRow(ctx, query, userID, viewerID).Scan(
		&profile.UserID,
		&profile.Name,
		&profile.Bio,
		&profile.ImageURL,
		&profile.CreatedAt,
		&profile.RecipeCount,
		&profile.FollowerCount,
		&profile.FollowingCount,
		&profile.IsFollowed,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Profile")
		}
		return nil, fmt.Errorf("postgres_profile_find_failed: %w", err)
	}

	return profile, nil
}

// UpdateBio rewrites the editable profile fields on the account row.
func (repository *PostgresRepository) UpdateBio(ctx context.Context, userID int64, name, bio, imageURL string) error {
	const query = `
		UPDATE auth.account
		SET name = $2, bio = $3, image_url = $4, updated_at = $5
		WHERE id = $1`

	tag, err := repository.pool.Exec(ctx, query, userID, name, bio, imageURL, time.Now())
	if err != nil {
		return fmt.Errorf("postgres_profile_update_failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Profile")
	}

	return nil
}

// SetFollow inserts or deletes the directed follow edge.
func (repository *PostgresRepository) SetFollow(ctx context.Context, followerID, followeeID int64, following bool) error {
	var query string
	if following {
		query = `
			INSERT INTO profile.follow (follower_id, followee_id, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT DO NOTHING`
	} else {
		query = "DELETE FROM profile.follow WHERE follower_id = $1 AND followee_id = $2"
	}

	if _, err := repository.pool.Exec(ctx, query, followerID, followeeID); err != nil {
		return dberr.Wrap(err, "Profile")
	}

	return nil
}

// ListFollowers returns the accounts following userID.
func (repository *PostgresRepository) ListFollowers(ctx context.Context, userID int64, limit, offset int) ([]*Summary, int, error) {
	const query = `
		SELECT a.id, a.name, a.image_url
		FROM profile.follow f
		JOIN auth.account a ON a.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3`
	const countQuery = "SELECT COUNT(*) FROM profile.follow WHERE followee_id = $1"

	return repository.listSummaries(ctx, query, countQuery, userID, limit, offset)
}

// ListFollowing returns the accounts userID follows.
func (repository *PostgresRepository) ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]*Summary, int, error) {
	const query = `
		SELECT a.id, a.name, a.image_url
		FROM profile.follow f
		JOIN auth.account a ON a.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
		LIMIT $2 OFFSET $3`
	const countQuery = "SELECT COUNT(*) FROM profile.follow WHERE follower_id = $1"

	return repository.listSummaries(ctx, query, countQuery, userID, limit, offset)
}

// Search matches enabled accounts by name, case-insensitively.
func (repository *PostgresRepository) Search(ctx context.Context, searchQuery string, limit, offset int) ([]*Summary, int, error) {
	const query = `
		SELECT a.id, a.name, a.image_url
		FROM auth.account a
		WHERE a.enabled = TRUE AND a.name ILIKE $1
		ORDER BY a.name ASC
		LIMIT $2 OFFSET $3`
	const countQuery = "SELECT COUNT(*) FROM auth.account WHERE enabled = TRUE AND name ILIKE $1"

	pattern := "%" + searchQuery + "%"
	return repository.listSummaries(ctx, query, countQuery, pattern, limit, offset)
}

// listSummaries runs a paired count + page query over account summaries.
func (repository *PostgresRepository) listSummaries(ctx context.Context, query, countQuery string, arg any, limit, offset int) ([]*Summary, int, error) {
	var total int
	if err := repository.pool.QueryRow(ctx, countQuery, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_count_failed: %w", err)
	}

	rows, err := repository.pool.Query(ctx, query, arg, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_list_failed: %w", err)
	}
	defer rows.Close()

	summaries := make([]*Summary, 0)
	for rows.Next() {
		summary := &Summary{}
		if err := rows.Scan(&summary.UserID, &summary.Name, &summary.ImageURL); err != nil {
			return nil, 0, fmt.Errorf("postgres_profile_scan_failed: %w", err)
		}
		summaries = append(summaries, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("postgres_profile_rows_failed: %w", err)
	}

	return summaries, total, nil
}
