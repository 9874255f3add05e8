package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statsCacheKey = "booking:stats"

// RedisStatsCache keeps booking counts per listing scope in one Redis hash.
// Invalidate drops the whole hash, so every scope is refreshed after a mutation.
type RedisStatsCache struct {
	rdb *redis.Client
}

// NewRedisStatsCache creates a new RedisStatsCache.
func NewRedisStatsCache(rdb *redis.Client) *RedisStatsCache {
	return &RedisStatsCache{rdb: rdb}
}

// Get returns the cached counts for scope.
func (c *RedisStatsCache) Get(ctx context.Context, scope string) (map[string]int64, bool, error) {
	raw, err := c.rdb.HGet(ctx, statsCacheKey, scope).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read stats cache: %w", err)
	}

	var counts map[string]int64
	if err := json.Unmarshal(raw, &counts); err != nil {
		return nil, false, fmt.Errorf("failed to decode stats cache: %w", err)
	}
	return counts, true, nil
}

// Set stores counts for scope and refreshes the hash TTL.
func (c *RedisStatsCache) Set(ctx context.Context, scope string, counts map[string]int64, ttl time.Duration) error {
	raw, err := json.Marshal(counts)
	if err != nil {
		return fmt.Errorf("failed to encode stats cache: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, statsCacheKey, scope, raw)
	if ttl > 0 {
		pipe.Expire(ctx, statsCacheKey, ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write stats cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached scope.
func (c *RedisStatsCache) Invalidate(ctx context.Context) error {
	if err := c.rdb.Del(ctx, statsCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate stats cache: %w", err)
	}
	return nil
}
