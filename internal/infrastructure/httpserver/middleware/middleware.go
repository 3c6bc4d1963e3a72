package middleware

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/quantum-studio/internal/core/ports"
)

// MiddlewareCollection holds all middleware instances
type MiddlewareCollection struct {
	Logging   *LoggingMiddleware
	Metrics   *MetricsMiddleware
	RateLimit *RateLimitMiddleware
}

// NewMiddlewareCollection creates a new collection of all middleware.
// A nil rateLimiter disables rate limiting.
func NewMiddlewareCollection(
	logger *logrus.Logger,
	requestsTotal *prometheus.CounterVec,
	requestDuration *prometheus.HistogramVec,
	rateLimiter ports.RateLimiterService,
) *MiddlewareCollection {
	return &MiddlewareCollection{
		Logging:   NewLoggingMiddleware(logger),
		Metrics:   NewMetricsMiddleware(requestsTotal, requestDuration),
		RateLimit: NewRateLimitMiddleware(rateLimiter, logger),
	}
}
