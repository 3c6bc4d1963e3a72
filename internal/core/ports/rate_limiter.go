package ports

import (
	"context"
	"time"
)

// RateLimitRepository provides low-level atomic operations for rate limiting counters.
// Implementations must be safe for concurrent use.
type RateLimitRepository interface {
	// IncrementWindow atomically increments the request counter for client in the current
	// fixed window and ensures the counter expires after ttl. Returns the updated count
	// and the window start time.
	IncrementWindow(ctx context.Context, client string, window time.Duration, keyPrefix string, ttl time.Duration) (count int, windowStart time.Time, err error)
}

// RateLimiterService limits requests per client (the caller's IP address).
type RateLimiterService interface {
	// Allow consumes one request unit for client and reports whether it is permitted.
	// remaining: additional requests allowed in the current window after this one (>=0)
	// limit: configured max requests per window
	// reset: when the current window ends
	Allow(ctx context.Context, client string) (allowed bool, remaining int, limit int, reset time.Time, err error)
}
