// Package cache provides a short-lived, read-through cache in front of
// get_scale_target, so that a burst of autoscaler polls doesn't each hit
// Postgres. Freshness is best-effort — the cache TTL is independent of any
// write path invalidation, since an autoscaler consuming this value doesn't
// need perfectly fresh numbers.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const scaleTargetKey = "cubr:queue:scale_target"

// ScaleTargetCache reads and writes the cached scale target. A
// ScaleTargetCache without a redis client (constructed via NewNoop) always
// misses, so the service can run with caching disabled.
type ScaleTargetCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New connects to redisURL and returns a ScaleTargetCache with the given
// TTL. An empty redisURL is a configuration error — callers should use
// NewNoop instead when caching is disabled.
func New(redisURL string, ttl time.Duration) (*ScaleTargetCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis for scale target cache: %w", err)
	}

	return &ScaleTargetCache{client: client, ttl: ttl}, nil
}

// NewNoop returns a cache that always misses, used when
// SCALE_TARGET_CACHE_URL is unset.
func NewNoop() *ScaleTargetCache {
	return &ScaleTargetCache{}
}

// Get returns the cached target and true, or (0, false) on a miss or when
// caching is disabled.
func (c *ScaleTargetCache) Get(ctx context.Context) (uint64, bool) {
	if c.client == nil {
		return 0, false
	}

	val, err := c.client.Get(ctx, scaleTargetKey).Result()
	if err != nil {
		return 0, false
	}

	target, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false
	}
	return target, true
}

// Set stores target with the configured TTL. A no-op cache silently
// discards the write.
func (c *ScaleTargetCache) Set(ctx context.Context, target uint64) {
	if c.client == nil {
		return
	}
	c.client.Set(ctx, scaleTargetKey, strconv.FormatUint(target, 10), c.ttl)
}

// Close releases the underlying redis connection, if any.
func (c *ScaleTargetCache) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}
