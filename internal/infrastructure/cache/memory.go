package cache

import (
	"bytes"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

// MemoryCache implements ports.Cache in process. Entries expire lazily on read;
// the optional janitor started by StartJanitor only reclaims memory.
// It has no capacity bound and is meant as a development fallback.
type MemoryCache struct {
	// mu makes Delete's count and the removal a single step.
	mu    sync.Mutex
	items *ttlcache.Cache[string, []byte]

	running atomic.Bool
}

// NewMemoryCache creates an empty in-process cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: ttlcache.New[string, []byte](
			ttlcache.WithTTL[string, []byte](ports.DefaultCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, []byte](),
		),
	}
}

// StartJanitor launches the background sweep of expired entries.
func (c *MemoryCache) StartJanitor() {
	if c.running.CompareAndSwap(false, true) {
		go c.items.Start()
	}
}

// Close stops the janitor, if running.
func (c *MemoryCache) Close() error {
	if c.running.CompareAndSwap(true, false) {
		c.items.Stop()
	}
	return nil
}

func (c *MemoryCache) Backend() string { return "memory" }

func (c *MemoryCache) live(key string) *ttlcache.Item[string, []byte] {
	item := c.items.Get(key)
	if item == nil || item.IsExpired() {
		return nil
	}
	return item
}

// Get implements Cache.Get.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	item := c.live(key)
	if item == nil {
		return nil, false, nil
	}
	return bytes.Clone(item.Value()), true, nil
}

// Set implements Cache.Set.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = ports.DefaultCacheTTL
	}
	c.items.Set(key, bytes.Clone(value), ttl)
	return nil
}

// Delete implements Cache.Delete.
func (c *MemoryCache) Delete(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed int64
	if c.live(key) != nil {
		removed = 1
	}
	c.items.Delete(key)
	return removed, nil
}

// Exists implements Cache.Exists.
func (c *MemoryCache) Exists(_ context.Context, key string) (bool, error) {
	return c.live(key) != nil, nil
}

// FlushAll implements Cache.FlushAll.
func (c *MemoryCache) FlushAll(_ context.Context) error {
	c.items.DeleteAll()
	return nil
}

// ExpiresAt returns the absolute expiry of a live entry.
func (c *MemoryCache) ExpiresAt(key string) (time.Time, bool) {
	item := c.live(key)
	if item == nil {
		return time.Time{}, false
	}
	return item.ExpiresAt(), true
}

var _ ports.Cache = (*MemoryCache)(nil)
