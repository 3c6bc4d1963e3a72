package redis

import (
	"context"
	"time"

	"github.com/avatarctic/quantum-studio/internal/core/ports"
	"github.com/go-redis/redis/v8"
)

const scanBatch = 200

// RedisCache implements ports.Cache using a Redis client.
type RedisCache struct {
	r redis.Cmdable
	// optional key prefix to namespace entries
	prefix string
}

// NewRedisCache creates a new Redis-backed cache.
func NewRedisCache(r redis.Cmdable, prefix string) *RedisCache {
	return &RedisCache{r: r, prefix: prefix}
}

func (c *RedisCache) namespaced(key string) string {
	if c.prefix == "" {
		return key
	}
	return c.prefix + ":" + key
}

// Backend implements Cache.Backend.
func (c *RedisCache) Backend() string { return "redis" }

// Get implements Cache.Get.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.r.Get(ctx, c.namespaced(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements Cache.Set.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ports.DefaultCacheTTL
	}
	return c.r.Set(ctx, c.namespaced(key), value, ttl).Err()
}

// Delete implements Cache.Delete.
func (c *RedisCache) Delete(ctx context.Context, key string) (int64, error) {
	return c.r.Del(ctx, c.namespaced(key)).Result()
}

// Exists implements Cache.Exists.
func (c *RedisCache) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.r.Exists(ctx, c.namespaced(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// FlushAll implements Cache.FlushAll. Without a prefix the whole selected database
// is flushed; with one, only keys under the prefix are removed so that a shared
// Redis instance keeps other tenants' data.
func (c *RedisCache) FlushAll(ctx context.Context) error {
	if c.prefix == "" {
		return c.r.FlushDB(ctx).Err()
	}
	var keys []string
	iter := c.r.Scan(ctx, 0, c.prefix+":*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	for len(keys) > 0 {
		n := min(len(keys), scanBatch)
		if err := c.r.Del(ctx, keys[:n]...).Err(); err != nil {
			return err
		}
		keys = keys[n:]
	}
	return nil
}

var _ ports.Cache = (*RedisCache)(nil)
