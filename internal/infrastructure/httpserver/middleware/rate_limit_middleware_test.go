package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/quantum-studio/internal/application/services"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/httpserver/middleware"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/repositories"
	tmocks "github.com/avatarctic/quantum-studio/test/mocks"
)

func rateLimitedEcho(limiter ports.RateLimiterService, logger *logrus.Logger) *echo.Echo {
	e := echo.New()
	e.Use(middleware.NewRateLimitMiddleware(limiter, logger).Handler())
	e.GET("/api/thing", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func get(e *echo.Echo, path, realIP string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if realIP != "" {
		req.Header.Set(echo.HeaderXRealIP, realIP)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_RejectsAfterLimitPerAddress(t *testing.T) {
	repo := repositories.NewRateLimitMemoryRepository()
	t.Cleanup(repo.Close)
	limiter := services.NewRateLimiterService(repo, &services.RateLimiterConfig{RequestsPerWindow: 2, Window: time.Hour}, nil)
	e := rateLimitedEcho(limiter, nil)

	rec := get(e, "/api/thing", "198.51.100.7")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	reset, err := strconv.ParseInt(rec.Header().Get("X-RateLimit-Reset"), 10, 64)
	require.NoError(t, err)
	require.Greater(t, reset, time.Now().Unix())

	require.Equal(t, http.StatusOK, get(e, "/api/thing", "198.51.100.7").Code)

	rec = get(e, "/api/thing", "198.51.100.7")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// another address has its own window
	require.Equal(t, http.StatusOK, get(e, "/api/thing", "198.51.100.8").Code)
	// probes are never limited
	require.Equal(t, http.StatusOK, get(e, "/health", "198.51.100.7").Code)
}

func TestRateLimit_KeysOnRealIP(t *testing.T) {
	limiter := &tmocks.RateLimiterServiceMock{}
	e := rateLimitedEcho(limiter, nil)

	get(e, "/api/thing", "203.0.113.5")
	get(e, "/api/thing", "")
	require.Equal(t, []string{"203.0.113.5", "192.0.2.1"}, limiter.Clients)
}

func TestRateLimit_FailsOpenWhenStoreErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	repo := &tmocks.RateLimitRepositoryMock{
		IncrementWindowFn: func(ctx context.Context, client string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
			return 0, time.Now().Truncate(window), errors.New("connection refused")
		},
	}
	limiter := services.NewRateLimiterService(repo, &services.RateLimiterConfig{RequestsPerWindow: 1}, nil)
	e := rateLimitedEcho(limiter, logger)

	for i := 0; i < 3; i++ {
		rec := get(e, "/api/thing", "198.51.100.7")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "1", rec.Header().Get("X-RateLimit-Limit"))
	}
	require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestRateLimit_NilLimiterPassesThrough(t *testing.T) {
	e := rateLimitedEcho(nil, nil)
	rec := get(e, "/api/thing", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}
