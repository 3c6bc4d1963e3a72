package redis

import (
	"context"
	"fmt"
	"time"

	config "github.com/avatarctic/quantum-studio/configs"
	"github.com/go-redis/redis/v8"
)

// NewRedisClient creates a Redis client from the REDIS_URL connection string and
// applies pool settings from config. It does not require the server to be reachable:
// an unreachable server degrades every cache call to a miss instead of stopping startup.
func NewRedisClient(cfg *config.CacheConfig) (*redis.Client, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opt.PoolSize = cfg.PoolSize
	}
	if cfg.MinIdleConns > 0 {
		opt.MinIdleConns = cfg.MinIdleConns
	}
	if cfg.DialTimeout > 0 {
		opt.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opt.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opt.WriteTimeout = cfg.WriteTimeout
	}
	return redis.NewClient(opt), nil
}

// Ping tests the connection with a short timeout.
func Ping(client redis.Cmdable) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}
