package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/quantum-studio/internal/core/domain/chat"
)

func (s *Server) listChatMessages(c echo.Context) error {
	msgs, err := s.chatService.ListMessages(c.Request().Context(), s.defaultUserID)
	if err != nil {
		return serverError("Failed to fetch chat messages", err)
	}
	return c.JSON(http.StatusOK, msgs)
}

func (s *Server) sendChatMessage(c echo.Context) error {
	var req chat.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Message content is required")
	}

	exchange, err := s.chatService.SendMessage(c.Request().Context(), s.defaultUserID, &req)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyContent) {
			return echo.NewHTTPError(http.StatusBadRequest, "Message content is required")
		}
		return serverError("Failed to process chat message", err)
	}
	return c.JSON(http.StatusOK, exchange)
}

func (s *Server) generateCode(c echo.Context) error {
	var req chat.GenerateCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Code prompt is required")
	}

	result, err := s.chatService.GenerateCode(c.Request().Context(), &req)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyPrompt) {
			return echo.NewHTTPError(http.StatusBadRequest, "Code prompt is required")
		}
		return serverError("Failed to generate code", err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) clearChat(c echo.Context) error {
	if err := s.chatService.ClearMessages(c.Request().Context(), s.defaultUserID); err != nil {
		return serverError("Failed to clear chat messages", err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
