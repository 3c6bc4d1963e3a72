package httpserver

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/quantum-studio/internal/core/ports"
	customMiddleware "github.com/avatarctic/quantum-studio/internal/infrastructure/httpserver/middleware"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
	Environment  string
	// UploadMaxBytes caps the body of POST /api/quantum/upload; 0 disables the cap.
	UploadMaxBytes int64
}

type ServerDeps struct {
	ChatService    ports.ChatService
	MusicService   ports.MusicService
	QuantumService ports.QuantumService
	UserService    ports.UserService
	SystemService  ports.SystemService
	Cache          ports.CacheService
	HealthCheckers []ports.HealthChecker
	// RateLimiter limits requests per client address; nil disables limiting.
	RateLimiter ports.RateLimiterService
	// DefaultUserID owns every request; there is no authentication.
	DefaultUserID int64
}

type Server struct {
	echo           *echo.Echo
	config         *ServerConfig
	logger         *logrus.Logger
	chatService    ports.ChatService
	musicService   ports.MusicService
	quantumService ports.QuantumService
	userService    ports.UserService
	systemService  ports.SystemService
	cache          ports.CacheService
	defaultUserID  int64
	middleware     *customMiddleware.MiddlewareCollection
	healthCheckers []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler(logger)

	server := &Server{
		echo:           e,
		config:         serverConfig,
		logger:         logger,
		chatService:    deps.ChatService,
		musicService:   deps.MusicService,
		quantumService: deps.QuantumService,
		userService:    deps.UserService,
		systemService:  deps.SystemService,
		cache:          deps.Cache,
		defaultUserID:  deps.DefaultUserID,
		healthCheckers: deps.HealthCheckers,
		middleware: customMiddleware.NewMiddlewareCollection(
			logger,
			GetRequestsTotal(),
			GetRequestDuration(),
			deps.RateLimiter,
		),
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
