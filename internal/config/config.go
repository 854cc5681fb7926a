// internal/config/config.go
// Centralized configuration management
// Loads from environment variables with sensible defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Server
	Port        string
	Environment string

	// Database
	DatabaseURL string
	RedisURL    string

	// Security
	JWTSecret string

	// Chat engine
	TypingExpiry     time.Duration
	SendBufferSize   int
	ReadLimitBytes   int64
	BroadcastChannel string // redis pub/sub channel for multi-instance fan-out
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		// Server
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		// Database
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/ops?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),

		// Security
		JWTSecret: getEnv("JWT_SECRET", "change-this-in-production"),

		// Chat engine
		TypingExpiry:     getEnvDuration("TYPING_EXPIRY", "1000ms"),
		SendBufferSize:   getEnvInt("WS_SEND_BUFFER", 256),
		ReadLimitBytes:   int64(getEnvInt("WS_READ_LIMIT", 64*1024)),
		BroadcastChannel: getEnv("BROADCAST_CHANNEL", "team:events"),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("database URL is required")
	}

	if c.JWTSecret == "change-this-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret must be changed for production")
	}

	if c.TypingExpiry <= 0 {
		return fmt.Errorf("typing expiry must be positive")
	}

	if c.SendBufferSize < 1 {
		return fmt.Errorf("send buffer size must be positive")
	}

	return nil
}

// IsProduction returns true if running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Helper functions

// getEnv gets a string value from environment with a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer value from environment with a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration value from environment with a default
func getEnvDuration(key string, defaultValue string) time.Duration {
	value := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
