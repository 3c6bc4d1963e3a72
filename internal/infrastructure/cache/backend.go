package cache

import (
	goredis "github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/quantum-studio/configs"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/health"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/redis"
)

// Backend is the process-wide cache backend chosen once at startup.
type Backend struct {
	ports.Cache
	Health ports.HealthChecker
	// Client is the Redis connection behind the networked backend, nil otherwise.
	Client *goredis.Client
	close  func() error
}

// Close releases the backend (Redis connections or the in-process janitor).
func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// NewBackend selects the networked backend when a Redis URL is configured and the
// in-process backend otherwise. A malformed URL is treated as a misconfiguration:
// it is logged and the in-process backend is used, so the cache never blocks startup.
// An unreachable Redis server keeps the networked backend; its calls then degrade to misses.
func NewBackend(cfg *config.CacheConfig, logger *logrus.Logger) *Backend {
	if cfg.UsesRedis() {
		client, err := redis.NewRedisClient(cfg)
		if err == nil {
			if pingErr := redis.Ping(client); pingErr != nil && logger != nil {
				logger.WithError(pingErr).Warn("redis unreachable at startup; cache calls will degrade to misses")
			}
			if logger != nil {
				logger.WithField("prefix", cfg.KeyPrefix).Info("using redis cache backend")
			}
			return &Backend{
				Cache:  NewInstrumentedCache(redis.NewRedisCache(client, cfg.KeyPrefix), nil),
				Health: health.NewRedisHealthChecker(client),
				Client: client,
				close:  client.Close,
			}
		}
		if logger != nil {
			logger.WithError(err).Warn("invalid REDIS_URL; falling back to in-process cache")
		}
	}

	mem := NewMemoryCache()
	mem.StartJanitor()
	if logger != nil {
		logger.Info("using in-process cache backend")
	}
	inst := NewInstrumentedCache(mem, nil)
	return &Backend{
		Cache:  inst,
		Health: health.NewCacheHealthChecker(inst),
		close:  mem.Close,
	}
}
