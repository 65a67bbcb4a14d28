// Copyright (c) 2026 Gritsos. All rights reserved.

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis) via constructors.
  - Zero Hidden State: No global variables are used to store config.
*/
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"golang.org/x/crypto/bcrypt"
)

// # Configuration Schema

// Config holds all runtime configuration for the Gritsos API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// DatabaseURL selects the backend by scheme: postgres:// or postgresql://
	// for PostgreSQL, sqlite:// or file: for SQLite.
	DatabaseURL string `env:"DATABASE_URL,required"`

	// RedisURL enables the password-failure throttle when set.
	RedisURL string `env:"REDIS_URL"`

	// Credential handling
	BcryptCost  int           `env:"BCRYPT_COST"  envDefault:"10"`
	TokenLength int           `env:"TOKEN_LENGTH" envDefault:"48"`
	AuthTimeout time.Duration `env:"AUTH_TIMEOUT" envDefault:"5s"`

	// Password-failure throttle (only active with RedisURL)
	AuthFailureLimit  int           `env:"AUTH_FAILURE_LIMIT"  envDefault:"10"`
	AuthFailureWindow time.Duration `env:"AUTH_FAILURE_WINDOW" envDefault:"15m"`

	// Cross-Origin Resource Sharing
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`

	// Observability
	MetricsEnabled bool `env:"METRICS_ENABLED" envDefault:"true"`
}

// # Configuration Loading

// Load parses environment variables into a [Config] struct and validates it.
func Load() (*Config, error) {
	cfg := &Config{}

	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects values that parse but cannot be used.
func (c *Config) Validate() error {
	var errs []error

	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost))
	}
	if c.TokenLength < 16 {
		errs = append(errs, fmt.Errorf("TOKEN_LENGTH must be at least 16, got %d", c.TokenLength))
	}
	if c.AuthTimeout <= 0 {
		errs = append(errs, errors.New("AUTH_TIMEOUT must be positive"))
	}
	if c.AuthFailureLimit < 1 {
		errs = append(errs, fmt.Errorf("AUTH_FAILURE_LIMIT must be at least 1, got %d", c.AuthFailureLimit))
	}
	if c.AuthFailureWindow < time.Second {
		errs = append(errs, errors.New("AUTH_FAILURE_WINDOW must be at least 1s"))
	}
	if _, _, err := ParseDatabaseURL(c.DatabaseURL); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// OriginAllowed reports whether origin appears in AllowedOrigins.
// A "*" entry allows every origin.
func (c *Config) OriginAllowed(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		allowed = strings.TrimSpace(allowed)
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

// ThrottleEnabled reports whether failed password attempts are tracked.
func (c *Config) ThrottleEnabled() bool {
	return c.RedisURL != ""
}

// # Database Selection

// Driver names a supported persistence backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// ParseDatabaseURL resolves the backend and the driver-specific DSN.
//
// Postgres URLs are returned untouched. "sqlite://path" yields "path"
// ("sqlite://:memory:" is accepted), and "file:" DSNs are passed through
// so SQLite URI parameters keep working.
func ParseDatabaseURL(raw string) (Driver, string, error) {
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DriverPostgres, raw, nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		if path == "" {
			return "", "", errors.New("DATABASE_URL: sqlite:// requires a path")
		}
		return DriverSQLite, path, nil
	case strings.HasPrefix(raw, "file:"):
		return DriverSQLite, raw, nil
	default:
		return "", "", fmt.Errorf("DATABASE_URL: unsupported scheme in %q", redact(raw))
	}
}

// redact drops everything after the scheme so credentials never reach logs.
func redact(raw string) string {
	if index := strings.Index(raw, "://"); index >= 0 {
		return raw[:index+3] + "..."
	}
	if len(raw) > 8 {
		return raw[:8] + "..."
	}
	return raw
}
