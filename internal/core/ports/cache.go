package ports

import (
	"context"
	"time"
)

// DefaultCacheTTL applies when a caller passes a zero or negative TTL.
const DefaultCacheTTL = time.Hour

// Cache defines the raw key-value contract shared by the networked and in-process backends.
// Implementations may return errors; the CacheService is responsible for absorbing them
// so that application logic can fall back to the primary datastore.
type Cache interface {
	// Get returns the raw bytes for key. ok=false if not found or expired.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key, replacing any previous entry. ttl <= 0 means DefaultCacheTTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key and reports how many entries were removed (0 or 1).
	Delete(ctx context.Context, key string) (int64, error)
	// Exists reports whether an unexpired entry is present without decoding it.
	Exists(ctx context.Context, key string) (bool, error)
	// FlushAll removes every entry regardless of key or expiry.
	FlushAll(ctx context.Context) error
	// Backend names the implementation ("redis" or "memory").
	Backend() string
}

// CacheService is the typed, fault-absorbing surface used by repositories and handlers.
// None of the per-key methods ever return an error: a cache fault degrades to a miss.
type CacheService interface {
	// Get decodes the cached JSON for key into dst and reports a hit.
	Get(ctx context.Context, key string, dst any) bool
	// Set encodes value as JSON and stores it; ttl <= 0 uses the service default.
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	// Delete invalidates every given key.
	Delete(ctx context.Context, keys ...string)
	// Exists reports whether key holds an unexpired entry.
	Exists(ctx context.Context, key string) bool
	// FlushAll clears the backend. Used by operators, never on a request path.
	FlushAll(ctx context.Context) error
	// Backend names the active backend.
	Backend() string
}
