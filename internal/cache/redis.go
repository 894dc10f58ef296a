package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Store on Redis. Expiry is delegated to Redis key TTLs, so
// there is no local sweep.
type RedisCache struct {
	redis      redis.Cmdable
	defaultTTL time.Duration
	prefix     string
}

// NewRedisCache creates a Redis-backed store. Every key is namespaced with prefix.
func NewRedisCache(client redis.Cmdable, defaultTTL time.Duration, prefix string) *RedisCache {
	return &RedisCache{
		redis:      client,
		defaultTTL: defaultTTL,
		prefix:     prefix,
	}
}

// Get returns the value stored under key. A missing or expired key is a miss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := c.redis.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores value under key with ttl, or the default TTL when ttl <= 0.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if err := c.redis.Set(ctx, c.prefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Delete removes key.
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.redis.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

// Len counts keys under the prefix using SCAN.
func (c *RedisCache) Len(ctx context.Context) (int, error) {
	count := 0
	iter := c.redis.Scan(ctx, 0, c.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("error scanning cache keys: %w", err)
	}
	return count, nil
}

// Close is a no-op; the connection is owned by the caller.
func (c *RedisCache) Close() error {
	return nil
}
