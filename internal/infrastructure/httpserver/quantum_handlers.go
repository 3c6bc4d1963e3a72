package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/quantum-studio/internal/core/domain/quantum"
)

func (s *Server) listQuantumProjects(c echo.Context) error {
	projects, err := s.quantumService.ListProjects(c.Request().Context(), s.defaultUserID)
	if err != nil {
		return serverError("Failed to fetch quantum projects", err)
	}
	return c.JSON(http.StatusOK, projects)
}

func (s *Server) createQuantumProject(c echo.Context) error {
	var req quantum.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := s.quantumService.CreateProject(c.Request().Context(), s.defaultUserID, &req)
	if err != nil {
		if isQuantumValidation(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return serverError("Failed to create quantum project", err)
	}
	return c.JSON(http.StatusOK, project)
}

func (s *Server) listSecureMessages(c echo.Context) error {
	msgs, err := s.quantumService.ListMessages(c.Request().Context(), s.defaultUserID)
	if err != nil {
		return serverError("Failed to fetch secure messages", err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (s *Server) createSecureMessage(c echo.Context) error {
	var req quantum.CreateMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	msg, err := s.quantumService.CreateMessage(c.Request().Context(), s.defaultUserID, &req)
	if err != nil {
		if isQuantumValidation(err) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return serverError("Failed to create secure message", err)
	}
	return c.JSON(http.StatusOK, msg)
}

func (s *Server) listSecureFiles(c echo.Context) error {
	files, err := s.quantumService.ListFiles(c.Request().Context(), s.defaultUserID)
	if err != nil {
		return serverError("Failed to fetch secure files", err)
	}
	return c.JSON(http.StatusOK, files)
}

// uploadSecureFile accepts a multipart form with a "file" part and an optional
// "watermark" field ("true" marks the file as watermarked).
func (s *Server) uploadSecureFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		// the body limit surfaces as an HTTPError from inside the multipart reader
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	if limit := s.config.UploadMaxBytes; limit > 0 && fh.Size > limit {
		return echo.ErrStatusRequestEntityTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return serverError("Failed to upload file", err)
	}
	defer src.Close()

	upload := &quantum.Upload{
		OriginalName: fh.Filename,
		MimeType:     fh.Header.Get(echo.HeaderContentType),
		Size:         fh.Size,
		Watermark:    c.FormValue("watermark") == "true",
	}
	f, err := s.quantumService.UploadFile(c.Request().Context(), s.defaultUserID, upload, src)
	if err != nil {
		if errors.Is(err, quantum.ErrNoFile) {
			return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
		}
		return serverError("Failed to upload file", err)
	}
	return c.JSON(http.StatusOK, f)
}

func isQuantumValidation(err error) bool {
	return errors.Is(err, quantum.ErrNameRequired) ||
		errors.Is(err, quantum.ErrInvalidPriority) ||
		errors.Is(err, quantum.ErrInvalidTasks) ||
		errors.Is(err, quantum.ErrContentRequired) ||
		errors.Is(err, quantum.ErrAuthorRequired)
}
