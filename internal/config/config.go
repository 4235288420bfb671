// Package config handles loading and validation of application configuration
// from environment variables. Supports .env files via godotenv.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "dev-secret-change-in-production"

// Config holds all application configuration
type Config struct {
	// Server settings
	Port        int
	Environment string // "development" | "staging" | "production"

	// Database
	DatabaseURL string

	// Security
	JWTSecret      string
	AllowedOrigins []string
	RateLimitRPM   int

	// Redis (field schema cache)
	RedisURL       string
	SchemaCacheTTL time.Duration

	// Optional YAML file replacing the field_attributes table
	SchemaFile string

	// Edit sessions
	SessionIdleTimeout   time.Duration
	SessionSweepInterval time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnvInt("PORT", 8080),
		Environment: getEnv("ENVIRONMENT", "development"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		JWTSecret:      getEnv("JWT_SECRET", defaultJWTSecret),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000"), ","),
		RateLimitRPM:   getEnvInt("RATE_LIMIT_RPM", 120),

		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		SchemaCacheTTL: time.Duration(getEnvInt("SCHEMA_CACHE_TTL", 60)) * time.Minute,

		SchemaFile: getEnv("SCHEMA_FILE", ""),

		SessionIdleTimeout:   time.Duration(getEnvInt("SESSION_IDLE_TIMEOUT", 60)) * time.Minute,
		SessionSweepInterval: time.Duration(getEnvInt("SESSION_SWEEP_INTERVAL", 5)) * time.Minute,
	}

	// Validate required fields in production
	if cfg.Environment == "production" {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required in production")
		}
		if cfg.JWTSecret == defaultJWTSecret {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
	}
	if cfg.SessionSweepInterval <= 0 {
		return nil, fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
