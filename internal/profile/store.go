// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package profile

import "context"

// Repository defines the data access contract for profiles and the follow
// graph.
//
// # Follow Graph
//
// Follows live in one directed edge table (follower_id, followee_id).
// Both directions of a profile's counts and both list queries read from
// that single table, so the two sides can never disagree.
type Repository interface {
	// FindByUserID returns the hydrated public profile for an account.
	// viewerID personalizes IsFollowed; zero means anonymous.
	FindByUserID(ctx context.Context, userID, viewerID int64) (*Profile, error)

	// UpdateBio persists the account's editable profile fields.
	UpdateBio(ctx context.Context, userID int64, name, bio, imageURL string) error

	// SetFollow creates or removes the follower → followee edge.
	// Repeating the same state is a no-op.
	SetFollow(ctx context.Context, followerID, followeeID int64, following bool) error

	// ListFollowers returns accounts following userID, newest edge first.
	ListFollowers(ctx context.Context, userID int64, limit, offset int) ([]*Summary, int, error)

	// ListFollowing returns accounts userID follows, newest edge first.
	ListFollowing(ctx context.Context, userID int64, limit, offset int) ([]*Summary, int, error)

	// Search returns enabled accounts whose name matches the query.
	Search(ctx context.Context, query string, limit, offset int) ([]*Summary, int, error)
}
