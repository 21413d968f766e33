// Copyright (c) 2026 Forkful. All rights reserved.
// Author: dev@forkful.app

package recipe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/forkful/forkful/internal/platform/apperr"
)

// cacheTTL bounds staleness of cached recipe pages. Engagement counters on
// a hot page may lag by up to this window.
const cacheTTL = 5 * time.Minute

// RedisCache implements the Cache interface for hydrated recipe pages.
//
// # Scope
//
// Only the anonymous projection is cached: IsLiked/IsSaved are
// viewer-specific and always false here. The service overlays are skipped
// for anonymous requests, which serve the bulk of detail-page traffic.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache creates a Redis-backed recipe page cache.
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func cacheKey(slug string) string {
	return "recipe:page:" + slug
}

// Get returns the cached page for slug, or [apperr.NotFound] on a miss.
func (cache *RedisCache) Get(ctx context.Context, slug string) (*Recipe, error) {
	payload, err := cache.client.Get(ctx, cacheKey(slug)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperr.NotFound("Recipe page")
		}
		return nil, fmt.Errorf("redis_recipe_cache_get_failed: %w", err)
	}

	recipe := &Recipe{}
	if err := json.Unmarshal(payload, recipe); err != nil {
		return nil, fmt.Errorf("redis_recipe_cache_decode_failed: %w", err)
	}

	return recipe, nil
}

// Set stores the page under its slug with the standard TTL.
func (cache *RedisCache) Set(ctx context.Context, recipe *Recipe) error {
	payload, err := json.Marshal(recipe)
	if err != nil {
		return fmt.Errorf("redis_recipe_cache_encode_failed: %w", err)
	}

	if err := cache.client.Set(ctx, cacheKey(recipe.Slug), payload, cacheTTL).Err(); err != nil {
		return fmt.Errorf("redis_recipe_cache_set_failed: %w", err)
	}

	return nil
}

// Invalidate drops the cached page after a write.
func (cache *RedisCache) Invalidate(ctx context.Context, slug string) error {
	if err := cache.client.Del(ctx, cacheKey(slug)).Err(); err != nil {
		return fmt.Errorf("redis_recipe_cache_del_failed: %w", err)
	}
	return nil
}
