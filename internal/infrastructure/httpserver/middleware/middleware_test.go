package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/avatarctic/quantum-studio/internal/infrastructure/httpserver/middleware"
)

func TestRequestLogging_LogsFinalStatusForAPIRequests(t *testing.T) {
	logger, hook := test.NewNullLogger()
	e := echo.New()
	m := middleware.NewLoggingMiddleware(logger)
	e.Use(m.RequestLogging())
	e.GET("/api/thing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "missing")
	})
	e.GET("/health", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/thing", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, hook.AllEntries(), 1)
	entry := hook.LastEntry()
	require.Equal(t, "request completed", entry.Message)
	require.Equal(t, http.StatusNotFound, entry.Data["status"])
	require.Equal(t, "/api/thing", entry.Data["path"])

	hook.Reset()
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, hook.AllEntries())
}

func TestRequestLogging_NilLoggerPassesThrough(t *testing.T) {
	e := echo.New()
	e.Use(middleware.NewLoggingMiddleware(nil).RequestLogging())
	e.GET("/api/ok", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ok", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestCollectHTTPMetrics_UsesRoutePattern(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_requests_total"}, []string{"method", "endpoint", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_request_duration_seconds"}, []string{"method", "endpoint"})
	m := middleware.NewMetricsMiddleware(total, duration)

	e := echo.New()
	e.Use(m.CollectHTTPMetrics())
	e.GET("/api/music/project/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/music/project/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	require.Equal(t, float64(3), testutil.ToFloat64(total.WithLabelValues(http.MethodGet, "/api/music/project/:id", "200")))
	require.Equal(t, 1, testutil.CollectAndCount(duration))
}

func TestCollectHTTPMetrics_RecordsRenderedErrorStatus(t *testing.T) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_error_requests_total"}, []string{"method", "endpoint", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{Name: "test_error_request_duration_seconds"}, []string{"method", "endpoint"})
	m := middleware.NewMetricsMiddleware(total, duration)

	e := echo.New()
	e.Use(m.CollectHTTPMetrics())
	e.Use(middleware.NewLoggingMiddleware(nil).RequestLogging())
	e.GET("/teapot", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "short and stout") })
	e.GET("/api/broken", func(c echo.Context) error { return errors.New("boom") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, float64(1), testutil.ToFloat64(total.WithLabelValues(http.MethodGet, "/teapot", "418")))
	require.Equal(t, float64(0), testutil.ToFloat64(total.WithLabelValues(http.MethodGet, "/teapot", "200")))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/broken", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, float64(1), testutil.ToFloat64(total.WithLabelValues(http.MethodGet, "/api/broken", "500")))
}
