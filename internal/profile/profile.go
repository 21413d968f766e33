// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package profile

import "time"

// Profile is the public projection of an account: what other members see
// on a cook's page. Counters are computed from the follow and recipe
// tables at read time.
type Profile struct {
	UserID   int64  `json:"userId"`
	Name     string `json:"name"`
	Bio      string `json:"bio"`
	ImageURL string `json:"imageUrl"`

	RecipeCount    int64 `json:"recipeCount"`
	FollowerCount  int64 `json:"followerCount"`
	FollowingCount int64 `json:"followingCount"`

	// IsFollowed reflects the requesting user's own follow edge.
	// Always false for anonymous requests.
	IsFollowed bool `json:"isFollowed"`

	CreatedAt time.Time `json:"createdAt"`
}

// Summary is the compact projection used in follower lists and search
// results.
type Summary struct {
	UserID   int64  `json:"userId"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}
