package configs

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Cache     CacheConfig
	Database  DatabaseConfig
	LLM       LLMConfig
	Storage   StorageConfig
	App       AppConfig
	Log       LogConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
	Environment  string
}

// CacheConfig selects and tunes the cache backend. A non-empty RedisURL selects
// the networked backend; otherwise the in-process backend is used.
type CacheConfig struct {
	RedisURL   string
	KeyPrefix  string
	DefaultTTL time.Duration
	// Pool and timeout settings (networked backend only)
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// UsesRedis reports whether the networked backend is configured.
func (c CacheConfig) UsesRedis() bool {
	return c.RedisURL != ""
}

type DatabaseConfig struct {
	DSN            string
	MigrationsPath string
	// Connection pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type LLMConfig struct {
	OpenAIAPIKey     string
	OpenAIModel      string
	AnthropicAPIKey  string
	AnthropicModel   string
	AnthropicBaseURL string
	MaxTokens        int
	Timeout          time.Duration
}

type StorageConfig struct {
	UploadDir      string
	UploadMaxBytes int64
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Prefix       string
}

type AppConfig struct {
	DefaultUserID          int64
	DefaultUsername        string
	DefaultUserPassword    string
	DefaultUserInitials    string
	MusicProcessingDelay   time.Duration
	MusicCompleteDelay     time.Duration
	MusicGeneratedDuration int
}

// RateLimitConfig bounds requests per client address in a fixed window.
// Counters live in Redis when REDIS_URL is set. Requests <= 0 disables limiting.
type RateLimitConfig struct {
	Requests  int
	Window    time.Duration
	KeyPrefix string
}

type LogConfig struct {
	Level  string
	Format string // json or text
}

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
			IdleTimeout:  getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
			TLSCertFile:  getEnv("TLS_CERT_FILE", ""),
			TLSKeyFile:   getEnv("TLS_KEY_FILE", ""),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		Cache: CacheConfig{
			RedisURL:     getEnv("REDIS_URL", ""),
			KeyPrefix:    getEnv("CACHE_KEY_PREFIX", ""),
			DefaultTTL:   getDurationEnv("CACHE_DEFAULT_TTL", time.Hour),
			PoolSize:     getIntEnv("REDIS_POOL_SIZE", 10),
			MinIdleConns: getIntEnv("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDurationEnv("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getDurationEnv("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getDurationEnv("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DATABASE_URL", ""),
			MigrationsPath:  getEnv("DB_MIGRATIONS_PATH", "./migrations"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		},
		LLM: LLMConfig{
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", getEnv("OPENAI_API_KEY_ENV_VAR", "")),
			OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o"),
			AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", getEnv("ANTHROPIC_API_KEY_ENV_VAR", "")),
			AnthropicModel:   getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),
			AnthropicBaseURL: getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			MaxTokens:        getIntEnv("LLM_MAX_TOKENS", 2000),
			Timeout:          getDurationEnv("LLM_TIMEOUT", 45*time.Second),
		},
		Storage: StorageConfig{
			UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
			UploadMaxBytes: getInt64Env("UPLOAD_MAX_BYTES", 10*1024*1024),
			S3Bucket:       getEnv("S3_BUCKET", ""),
			S3Region:       getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:     getEnv("S3_ENDPOINT", ""),
			S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
			S3Prefix:       getEnv("S3_PREFIX", "uploads/"),
		},
		App: AppConfig{
			DefaultUserID:          getInt64Env("DEFAULT_USER_ID", 1),
			DefaultUsername:        getEnv("DEFAULT_USERNAME", "radosavlevici210"),
			DefaultUserPassword:    getEnv("DEFAULT_USER_PASSWORD", "demo"),
			DefaultUserInitials:    getEnv("DEFAULT_USER_INITIALS", "ER"),
			MusicProcessingDelay:   getDurationEnv("MUSIC_PROCESSING_DELAY", time.Second),
			MusicCompleteDelay:     getDurationEnv("MUSIC_COMPLETE_DELAY", 5*time.Second),
			MusicGeneratedDuration: getIntEnv("MUSIC_GENERATED_DURATION", 222), // 3:42
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			Requests:  getIntEnv("RATE_LIMIT_REQUESTS", 1000),
			Window:    getDurationEnv("RATE_LIMIT_WINDOW", 15*time.Minute),
			KeyPrefix: getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit:ip"),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
