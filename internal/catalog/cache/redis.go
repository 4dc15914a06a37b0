// Package cache keeps the grouped catalog in Redis between reads.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"printsite_backend/internal/catalog/transport"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultKey = "catalog:offerings:v1"
	DefaultTTL = 5 * time.Minute
)

// RedisCache stores the grouped catalog as one JSON value.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisCache creates a cache entry under DefaultKey. A non-positive ttl
// falls back to DefaultTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, key: DefaultKey, ttl: ttl}
}

// Get returns the cached groups and whether the entry existed.
func (c *RedisCache) Get(ctx context.Context) ([]transport.CategoryGroup, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read catalog cache: %w", err)
	}

	var groups []transport.CategoryGroup
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, false, fmt.Errorf("decode catalog cache: %w", err)
	}
	return groups, true, nil
}

// Set replaces the cached groups.
func (c *RedisCache) Set(ctx context.Context, groups []transport.CategoryGroup) error {
	raw, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("encode catalog cache: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("write catalog cache: %w", err)
	}
	return nil
}

// Invalidate drops the cached entry.
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
