package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dealfeed/pkg/metrics"
)

// LookupCache caches per-title lookup responses between runs so repeated
// watchlist titles do not re-query the upstream API inside the TTL window.
type LookupCache interface {
	Get(ctx context.Context, key string, v interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		metrics.LookupCacheHitsTotal.WithLabelValues("miss").Inc()
		return false, nil
	}
	if err != nil {
		metrics.LookupCacheHitsTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal([]byte(val), v); err != nil {
		// A stale or corrupt entry behaves like a miss.
		metrics.LookupCacheHitsTotal.WithLabelValues("miss").Inc()
		return false, nil
	}

	metrics.LookupCacheHitsTotal.WithLabelValues("hit").Inc()
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, v interface{}) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err := c.client.Set(ctx, key, body, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// NoopCache is used when caching is disabled.
type NoopCache struct{}

func (NoopCache) Get(ctx context.Context, key string, v interface{}) (bool, error) {
	return false, nil
}

func (NoopCache) Set(ctx context.Context, key string, v interface{}) error {
	return nil
}
