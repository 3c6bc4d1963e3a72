package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jellydator/ttlcache/v3"

	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

func windowKey(keyPrefix, client string, windowStart time.Time) string {
	return fmt.Sprintf("%s:%s:%d", keyPrefix, client, windowStart.Unix())
}

// RateLimitRedisRepository implements rate limiting counter storage with Redis.
type RateLimitRedisRepository struct {
	r redis.Cmdable
}

func NewRateLimitRedisRepository(r redis.Cmdable) *RateLimitRedisRepository {
	return &RateLimitRedisRepository{r: r}
}

// IncrementWindow increments a per-client counter for a fixed window.
func (repo *RateLimitRedisRepository) IncrementWindow(ctx context.Context, client string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	windowStart := time.Now().Truncate(window)
	key := windowKey(keyPrefix, client, windowStart)
	pipe := repo.r.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, windowStart, err
	}
	return int(incr.Val()), windowStart, nil
}

// RateLimitMemoryRepository keeps the counters in process when no Redis server is
// configured. Counts are per instance.
type RateLimitMemoryRepository struct {
	mu       sync.Mutex
	counters *ttlcache.Cache[string, int]
}

func NewRateLimitMemoryRepository() *RateLimitMemoryRepository {
	counters := ttlcache.New[string, int](ttlcache.WithDisableTouchOnHit[string, int]())
	go counters.Start()
	return &RateLimitMemoryRepository{counters: counters}
}

func (repo *RateLimitMemoryRepository) IncrementWindow(ctx context.Context, client string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	windowStart := time.Now().Truncate(window)
	key := windowKey(keyPrefix, client, windowStart)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	count := 1
	if item := repo.counters.Get(key); item != nil && !item.IsExpired() {
		count = item.Value() + 1
	}
	repo.counters.Set(key, count, ttl)
	return count, windowStart, nil
}

// Close stops the expiry sweep.
func (repo *RateLimitMemoryRepository) Close() {
	repo.counters.Stop()
}

var (
	_ ports.RateLimitRepository = (*RateLimitRedisRepository)(nil)
	_ ports.RateLimitRepository = (*RateLimitMemoryRepository)(nil)
)
