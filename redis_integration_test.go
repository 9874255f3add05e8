//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/joyhomes/service-booking/internal/common/middleware"
	"github.com/joyhomes/service-booking/internal/repository"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())
	return rdb
}

func TestRedisStatsCacheAndRateLimit(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()

	cache := repository.NewRedisStatsCache(rdb)
	_, ok, err := cache.Get(ctx, "all")
	require.NoError(t, err)
	assert.False(t, ok)

	counts := map[string]int64{"PENDING": 3, "APPROVED": 1}
	require.NoError(t, cache.Set(ctx, "all", counts, time.Minute))
	require.NoError(t, cache.Set(ctx, "user:42", map[string]int64{"PENDING": 1}, time.Minute))

	got, ok, err := cache.Get(ctx, "all")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, counts, got)

	require.NoError(t, cache.Invalidate(ctx))
	_, ok, err = cache.Get(ctx, "user:42")
	require.NoError(t, err)
	assert.False(t, ok, "invalidation drops every scope")

	counter := middleware.NewRedisWindowCounter(rdb)
	for i := int64(1); i <= 3; i++ {
		n, err := counter.Hit(ctx, "rate_limit:test", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	ttl, err := rdb.TTL(ctx, "rate_limit:test").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// A counter left without a TTL picks one up on the next hit.
	require.NoError(t, rdb.Set(ctx, "rate_limit:stale", 5, 0).Err())
	n, err := counter.Hit(ctx, "rate_limit:stale", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)
	ttl, err = rdb.TTL(ctx, "rate_limit:stale").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
