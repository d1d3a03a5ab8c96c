// Package config loads process-wide configuration from the environment.
//
// Config is read exactly once at startup and then passed by injection into
// the components that need it (token service, database, OAuth provider).
// Nothing in the codebase reads environment variables after Load returns —
// ambient config lookups scattered across packages are how secrets end up
// half-configured in production.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// minSecretLen is the shortest JWT secret we accept. Anything shorter than
// 16 bytes is trivially brute-forceable for HS256.
const minSecretLen = 16

// Config holds all server configuration.
type Config struct {
	// Server
	Port int

	// Database
	DBPath string

	// Auth
	JWTSecret string
	TokenTTL  time.Duration

	// Google OAuth (optional — external login is disabled when unset)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	// Cookies
	CookieSecure bool
}

// Load reads configuration from environment variables.
//
// JWT_SECRET is required: a server that starts without a signing secret
// would mint unverifiable tokens, so its absence is a fatal startup
// condition rather than a per-request error.
func Load() (*Config, error) {
	cfg := &Config{
		Port:     8080,
		DBPath:   "data/taskbox.db",
		TokenTTL: 24 * time.Hour,
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid PORT %q: %w", portStr, err)
		}
		cfg.Port = port
	}

	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		cfg.DBPath = dbPath
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("config: JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < minSecretLen {
		return nil, fmt.Errorf("config: JWT_SECRET must be at least %d characters", minSecretLen)
	}

	if ttlStr := os.Getenv("TOKEN_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid TOKEN_TTL %q: %w", ttlStr, err)
		}
		if ttl <= 0 {
			return nil, fmt.Errorf("config: TOKEN_TTL must be positive, got %s", ttl)
		}
		cfg.TokenTTL = ttl
	}

	cfg.GoogleClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.GoogleClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	cfg.GoogleCallbackURL = os.Getenv("GOOGLE_CALLBACK_URL")
	if cfg.GoogleCallbackURL == "" {
		cfg.GoogleCallbackURL = fmt.Sprintf("http://localhost:%d/auth/google/callback", cfg.Port)
	}

	cfg.CookieSecure = os.Getenv("COOKIE_SECURE") == "true"

	return cfg, nil
}

// GoogleEnabled reports whether the Google OAuth routes should be mounted.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
