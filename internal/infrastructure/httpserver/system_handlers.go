package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/quantum-studio/internal/core/domain/user"
)

func (s *Server) systemStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.systemService.Status(c.Request().Context()))
}

// getOwnProfile returns the default user; every request acts as that user.
func (s *Server) getOwnProfile(c echo.Context) error {
	u, err := s.userService.GetUser(c.Request().Context(), s.defaultUserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found")
		}
		return serverError("Failed to fetch user", err)
	}
	return c.JSON(http.StatusOK, u)
}

// flushCache empties the shared cache. Operational only; no request path calls it.
func (s *Server) flushCache(c echo.Context) error {
	if s.cache == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "cache not configured")
	}
	if err := s.cache.FlushAll(c.Request().Context()); err != nil {
		return serverError("Failed to flush cache", err)
	}
	if s.logger != nil {
		s.logger.WithField("backend", s.cache.Backend()).Warn("cache flushed via admin endpoint")
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "backend": s.cache.Backend()})
}
