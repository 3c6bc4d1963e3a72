package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	config "github.com/avatarctic/quantum-studio/configs"
	"github.com/avatarctic/quantum-studio/internal/application/services"
	"github.com/avatarctic/quantum-studio/internal/core/domain/user"
	"github.com/avatarctic/quantum-studio/internal/core/ports"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/cache"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/db"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/filestore"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/health"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/httpserver"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/llm"
	"github.com/avatarctic/quantum-studio/internal/infrastructure/repositories"
)

// repositorySet is the primary datastore behind the caching decorators.
type repositorySet struct {
	users           ports.UserRepository
	chat            ports.ChatRepository
	music           ports.MusicRepository
	quantumProjects ports.QuantumProjectRepository
	secureMessages  ports.SecureMessageRepository
	secureFiles     ports.SecureFileRepository
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logger := newLogger(&cfg.Log)
	logger.Info("Starting Quantum Studio API...")

	// Cache backend: Redis when REDIS_URL is set, otherwise in-process
	backend := cache.NewBackend(&cfg.Cache, logger)
	defer func() {
		if err := backend.Close(); err != nil {
			logger.WithError(err).Warn("failed to close cache backend")
		}
	}()
	cacheService := services.NewCacheService(backend, cfg.Cache.DefaultTTL, logger)
	logger.WithField("backend", cacheService.Backend()).Info("Cache backend ready")

	healthCheckers := []ports.HealthChecker{backend.Health}

	// Primary datastore: Postgres when DATABASE_URL is set, otherwise in-memory
	var base repositorySet
	if cfg.Database.DSN != "" {
		database, err := db.Open(&cfg.Database)
		if err != nil {
			logger.Fatal("Failed to connect to database:", err)
		}
		defer database.Close()
		logger.Info("Connected to database successfully")

		if err := database.Migrate(cfg.Database.MigrationsPath); err != nil {
			logger.Warn("Failed to run migrations:", err)
		}

		base = repositorySet{
			users:           repositories.NewUserRepository(database, logger),
			chat:            repositories.NewChatRepository(database, logger),
			music:           repositories.NewMusicRepository(database, logger),
			quantumProjects: repositories.NewQuantumProjectRepository(database, logger),
			secureMessages:  repositories.NewSecureMessageRepository(database, logger),
			secureFiles:     repositories.NewSecureFileRepository(database, logger),
		}
		healthCheckers = append(healthCheckers, health.NewDBHealthChecker(database))
	} else {
		logger.Warn("DATABASE_URL not set; using in-memory storage")
		store := repositories.NewMemoryStore()
		base = repositorySet{
			users:           store.Users(),
			chat:            store.Chat(),
			music:           store.Music(),
			quantumProjects: store.QuantumProjects(),
			secureMessages:  store.SecureMessages(),
			secureFiles:     store.SecureFiles(),
		}
	}

	// Decorate with caching
	ttls := repositories.DefaultCacheTTLs()
	userRepo := repositories.NewCachingUserRepository(base.users, cacheService, ttls.User)
	chatRepo := repositories.NewCachingChatRepository(base.chat, cacheService, ttls.ChatMessages)
	musicRepo := repositories.NewCachingMusicRepository(base.music, cacheService, ttls.MusicProjects, ttls.MusicProject)
	quantumProjectRepo := repositories.NewCachingQuantumProjectRepository(base.quantumProjects, cacheService, ttls.QuantumProjects)
	secureMessageRepo := repositories.NewCachingSecureMessageRepository(base.secureMessages, cacheService, ttls.SecureMessages)
	secureFileRepo := repositories.NewCachingSecureFileRepository(base.secureFiles, cacheService, ttls.SecureFiles)

	ctx := context.Background()
	fileStore, err := filestore.New(ctx, &cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to initialize file storage:", err)
	}

	providers := []ports.LLMProvider{
		llm.NewOpenAIProvider(&cfg.LLM, ""),
		llm.NewAnthropicProvider(&cfg.LLM),
	}
	for _, p := range providers {
		if !p.Configured() {
			logger.WithField("provider", p.Name()).Warn("LLM provider has no API key; replies will use the fallback text")
		}
	}

	userService := services.NewUserService(userRepo, logger)
	defaultUser, err := userService.EnsureDefaultUser(ctx, &user.CreateUserRequest{
		Username: cfg.App.DefaultUsername,
		Password: cfg.App.DefaultUserPassword,
		Initials: cfg.App.DefaultUserInitials,
	})
	if err != nil {
		logger.Fatal("Failed to ensure default user:", err)
	}
	if defaultUser.ID != cfg.App.DefaultUserID {
		logger.WithFields(logrus.Fields{"configured": cfg.App.DefaultUserID, "actual": defaultUser.ID}).
			Warn("default user id differs from DEFAULT_USER_ID; using the stored id")
	}

	chatService := services.NewChatService(chatRepo, providers, logger)
	musicService := services.NewMusicService(musicRepo, services.MusicTimings{
		ProcessingDelay:   cfg.App.MusicProcessingDelay,
		CompleteDelay:     cfg.App.MusicCompleteDelay,
		GeneratedDuration: cfg.App.MusicGeneratedDuration,
	}, logger)
	// Rate limiting: counters shared through Redis when configured
	var rateLimiter ports.RateLimiterService
	if cfg.RateLimit.Requests > 0 {
		var rateLimitRepo ports.RateLimitRepository
		if backend.Client != nil {
			rateLimitRepo = repositories.NewRateLimitRedisRepository(backend.Client)
		} else {
			memRepo := repositories.NewRateLimitMemoryRepository()
			defer memRepo.Close()
			rateLimitRepo = memRepo
		}
		rateLimiter = services.NewRateLimiterService(rateLimitRepo, &services.RateLimiterConfig{
			RequestsPerWindow: cfg.RateLimit.Requests,
			Window:            cfg.RateLimit.Window,
			KeyPrefix:         cfg.RateLimit.KeyPrefix,
		}, logger)
		logger.WithFields(logrus.Fields{"requests": cfg.RateLimit.Requests, "window": cfg.RateLimit.Window}).Info("Rate limiting enabled")
	}

	quantumService := services.NewQuantumService(quantumProjectRepo, secureMessageRepo, secureFileRepo, fileStore, logger)
	systemService := services.NewSystemService(providers, cacheService)

	serverConfig := &httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		TLSCertFile:    cfg.Server.TLSCertFile,
		TLSKeyFile:     cfg.Server.TLSKeyFile,
		Environment:    cfg.Server.Environment,
		UploadMaxBytes: cfg.Storage.UploadMaxBytes,
	}

	deps := httpserver.ServerDeps{
		ChatService:    chatService,
		MusicService:   musicService,
		QuantumService: quantumService,
		UserService:    userService,
		SystemService:  systemService,
		Cache:          cacheService,
		HealthCheckers: healthCheckers,
		RateLimiter:    rateLimiter,
		DefaultUserID:  defaultUser.ID,
	}

	server := httpserver.NewServer(serverConfig, logger, deps)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start server:", err)
		}
	}()

	logger.Infof("Server started on %s:%s", cfg.Server.Host, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown:", err)
	}
	if err := musicService.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Music jobs did not stop in time:", err)
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.LogConfig) *logrus.Logger {
	logger := logrus.New()
	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(level)
	}
	return logger
}
