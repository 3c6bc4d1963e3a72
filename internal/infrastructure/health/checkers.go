package health

import (
	"context"

	"github.com/avatarctic/quantum-studio/internal/core/ports"
	infraDB "github.com/avatarctic/quantum-studio/internal/infrastructure/db"
	"github.com/go-redis/redis/v8"
)

const probeKey = "__health_probe__"

// dbHealthChecker wraps the database for health checks.
type dbHealthChecker struct{ db *infraDB.Database }

func (d *dbHealthChecker) Name() string                    { return "database" }
func (d *dbHealthChecker) Check(ctx context.Context) error { return d.db.DB.PingContext(ctx) }

// redisHealthChecker wraps the redis client for health checks.
type redisHealthChecker struct{ client redis.Cmdable }

func (r *redisHealthChecker) Name() string                    { return "redis" }
func (r *redisHealthChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
func (r *redisHealthChecker) Optional() bool                  { return true }

// cacheHealthChecker probes any cache backend with a read-only Exists call.
type cacheHealthChecker struct{ cache ports.Cache }

func (c *cacheHealthChecker) Name() string   { return "cache:" + c.cache.Backend() }
func (c *cacheHealthChecker) Optional() bool { return true }
func (c *cacheHealthChecker) Check(ctx context.Context) error {
	_, err := c.cache.Exists(ctx, probeKey)
	return err
}

// NewDBHealthChecker creates a health checker for the database.
func NewDBHealthChecker(db *infraDB.Database) ports.HealthChecker { return &dbHealthChecker{db: db} }

// NewRedisHealthChecker creates a health checker for Redis.
func NewRedisHealthChecker(client redis.Cmdable) ports.HealthChecker {
	return &redisHealthChecker{client: client}
}

// NewCacheHealthChecker creates a health checker for a cache backend.
func NewCacheHealthChecker(cache ports.Cache) ports.HealthChecker {
	return &cacheHealthChecker{cache: cache}
}
