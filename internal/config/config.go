// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
// An optional .env file in the working directory is applied first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	// Cache and session store (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Sessions. The secret signs bearer tokens; sessions live in Redis for SessionTTL.
	SessionSecret string        `env:"SESSION_SECRET" envDefault:"dev-session-secret-change-me"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"168h"`

	// Rate limiting (per client IP, token bucket)
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRPS     int  `env:"RATE_LIMIT_RPS" envDefault:"10"`
	RateLimitBurst   int  `env:"RATE_LIMIT_BURST" envDefault:"20"`

	// CORS configuration
	// Comma-separated list of allowed origins, or "*" for any origin.
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`

	UsersService UsersServiceConfig `envPrefix:"USERS_SERVICE_"`
	Archive      ArchiveConfig      `envPrefix:"ARCHIVE_S3_"`
}

// UsersServiceConfig points at the external OAuth users service.
// Leaving APIURL empty disables OAuth login.
type UsersServiceConfig struct {
	APIURL  string        `env:"API_URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

// Enabled reports whether the users service is configured.
func (c UsersServiceConfig) Enabled() bool {
	return c.APIURL != "" && c.APIKey != ""
}

// ArchiveConfig configures the S3-compatible bucket rendered certificates
// are copied to. Leaving Bucket empty disables archiving.
type ArchiveConfig struct {
	Bucket          string        `env:"BUCKET"`
	Region          string        `env:"REGION" envDefault:"us-east-1"`
	Endpoint        string        `env:"ENDPOINT"`
	AccessKeyID     string        `env:"ACCESS_KEY_ID"`
	SecretAccessKey string        `env:"SECRET_ACCESS_KEY"`
	Prefix          string        `env:"PREFIX" envDefault:"certificates/"`
	PresignExpiry   time.Duration `env:"PRESIGN_EXPIRY" envDefault:"15m"`
}

// Enabled reports whether certificate archiving is configured.
func (c ArchiveConfig) Enabled() bool {
	return c.Bucket != ""
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate rejects settings that are unsafe outside development.
func (c *Config) Validate() error {
	if c.IsProduction() && strings.HasPrefix(c.SessionSecret, "dev-") {
		return errors.New("SESSION_SECRET must be set in production")
	}
	if len(c.SessionSecret) < 16 {
		return errors.New("SESSION_SECRET must be at least 16 characters")
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	return nil
}

// Load reads an optional .env file, parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
