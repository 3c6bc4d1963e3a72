package httpserver

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api")

	chat := api.Group("/chat")
	chat.GET("/messages", s.listChatMessages)
	chat.POST("/message", s.sendChatMessage)
	chat.POST("/generate-code", s.generateCode)
	chat.DELETE("/clear", s.clearChat)

	music := api.Group("/music")
	music.GET("/projects", s.listMusicProjects)
	music.POST("/generate", s.generateMusic)
	music.GET("/project/:id", s.getMusicProject)

	quantum := api.Group("/quantum")
	quantum.GET("/projects", s.listQuantumProjects)
	quantum.POST("/projects", s.createQuantumProject)
	quantum.GET("/messages", s.listSecureMessages)
	quantum.POST("/messages", s.createSecureMessage)
	quantum.GET("/files", s.listSecureFiles)
	quantum.POST("/upload", s.uploadSecureFile, s.uploadLimit()...)

	api.GET("/system/status", s.systemStatus)
	api.GET("/users/me", s.getOwnProfile)

	admin := api.Group("/admin")
	admin.DELETE("/cache", s.flushCache)
}

// uploadLimit rejects upload bodies larger than the configured cap with 413.
func (s *Server) uploadLimit() []echo.MiddlewareFunc {
	if s.config == nil || s.config.UploadMaxBytes <= 0 {
		return nil
	}
	return []echo.MiddlewareFunc{middleware.BodyLimit(strconv.FormatInt(s.config.UploadMaxBytes, 10) + "B")}
}
