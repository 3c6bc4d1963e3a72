package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/quantum-studio/internal/core/domain/music"
)

func (s *Server) listMusicProjects(c echo.Context) error {
	projects, err := s.musicService.ListProjects(c.Request().Context(), s.defaultUserID)
	if err != nil {
		return serverError("Failed to fetch music projects", err)
	}
	return c.JSON(http.StatusOK, projects)
}

// generateMusic stores a draft project; status advances in the background.
func (s *Server) generateMusic(c echo.Context) error {
	var req music.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := s.musicService.Generate(c.Request().Context(), s.defaultUserID, &req)
	if err != nil {
		if errors.Is(err, music.ErrTitleRequired) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return serverError("Failed to generate music", err)
	}
	return c.JSON(http.StatusOK, project)
}

func (s *Server) getMusicProject(c echo.Context) error {
	// A non-numeric id cannot name a project.
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}

	project, err := s.musicService.GetProject(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, music.ErrProjectNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Project not found")
		}
		return serverError("Failed to fetch music project", err)
	}
	return c.JSON(http.StatusOK, project)
}
