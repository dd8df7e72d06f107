package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	BotToken       string
	ServerPort     string
	LogLevel       string
	DatabaseType   string
	DatabaseURL    string
	DatabasePath   string
	MigrationsPath string

	// Optional Redis leaderboard cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TopCacheTTL   time.Duration

	// Optional SES notifications
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	AdminEmail   string
}

// ErrMissingToken is returned when BOT_TOKEN is not set. The process
// must not start without it.
var ErrMissingToken = errors.New("BOT_TOKEN environment variable is required")

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:       os.Getenv("BOT_TOKEN"),
		ServerPort:     getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		DatabaseType:   getEnv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DatabasePath:   getEnv("DB_PATH", "./mathclash.db"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		TopCacheTTL:    getEnvDuration("TOP_CACHE_TTL", 30*time.Second),
		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:   os.Getenv("SES_FROM_EMAIL"),
		SESFromName:    getEnv("SES_FROM_NAME", "MathClash"),
		AdminEmail:     os.Getenv("ADMIN_EMAIL"),
	}

	if cfg.BotToken == "" {
		return nil, ErrMissingToken
	}

	return cfg, nil
}

// Debug reports whether verbose logging is enabled
func (c *Config) Debug() bool {
	return c.LogLevel == "debug"
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration reads a duration environment variable or returns a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
