// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

// Package config loads and validates the application configuration from
// layered sources (defaults, optional YAML file, environment variables).
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Security  SecurityConfig  `koanf:"security"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Cache     CacheConfig     `koanf:"cache"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`

	// Timeout applies to reads, writes, and graceful shutdown.
	Timeout time.Duration `koanf:"timeout"`

	// Environment is "development" or "production". Production tightens
	// secret validation and marks session cookies Secure.
	Environment string `koanf:"environment"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in production mode.
func (s ServerConfig) IsProduction() bool {
	return s.Environment == "production"
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	// Path is the database file location. ":memory:" or empty selects an
	// in-memory database (used by tests).
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`

	// Threads limits DuckDB worker threads. 0 lets DuckDB decide.
	Threads int `koanf:"threads"`
}

// SecurityConfig holds authentication and rate limiting settings.
type SecurityConfig struct {
	// JWTSecret signs session tokens. Must be at least 32 bytes in
	// production.
	JWTSecret string `koanf:"jwt_secret"`

	// SessionTimeout is the fixed token lifetime. No sliding renewal.
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// AdminUsername/AdminPassword seed the first operator account when the
	// admin table is empty at startup.
	AdminUsername string `koanf:"admin_username"`
	AdminPassword string `koanf:"admin_password"`

	// RateLimitReqs requests per RateLimitWindow per client IP.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// LoginRateLimitReqs bounds login attempts per LoginRateLimitWindow.
	LoginRateLimitReqs   int           `koanf:"login_rate_limit_reqs"`
	LoginRateLimitWindow time.Duration `koanf:"login_rate_limit_window"`

	CORSOrigins []string `koanf:"cors_origins"`

	// RevocationStorePath is the Badger directory for revoked session IDs.
	// Empty selects an in-memory store (sessions survive until expiry but
	// revocations are lost on restart).
	RevocationStorePath string `koanf:"revocation_store_path"`
}

// TelemetryConfig holds ingest settings.
type TelemetryConfig struct {
	// Token optionally gates POST /telemetry via the X-Telemetry-Token
	// header. Empty leaves ingest open.
	Token string `koanf:"token"`

	// RatePerMin is the per-source token bucket refill rate.
	RatePerMin        int  `koanf:"rate_per_min"`
	Burst             int  `koanf:"burst"`
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// CacheConfig holds catalog cache settings.
type CacheConfig struct {
	CatalogTTL      time.Duration `koanf:"catalog_ttl"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// minJWTSecretLen is the minimum production secret length in bytes.
const minJWTSecretLen = 32

// Validate checks configuration invariants. It is called by the loader and
// returns the first violation found.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be 1-65535, got %d", c.Server.Port)
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("server.environment must be development or production, got %q", c.Server.Environment)
	}

	if c.Server.IsProduction() {
		if len(c.Security.JWTSecret) < minJWTSecretLen {
			return fmt.Errorf("security.jwt_secret must be at least %d characters in production", minJWTSecretLen)
		}
		if c.Security.AdminPassword == defaultAdminPassword {
			return fmt.Errorf("security.admin_password must be changed from the default in production")
		}
	}

	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("security.session_timeout must be positive")
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs < 1 {
			return fmt.Errorf("security.rate_limit_reqs must be at least 1")
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive")
		}
	}

	if !c.Telemetry.RateLimitDisabled {
		if c.Telemetry.RatePerMin < 1 {
			return fmt.Errorf("telemetry.rate_per_min must be at least 1")
		}
		if c.Telemetry.Burst < 1 {
			return fmt.Errorf("telemetry.burst must be at least 1")
		}
	}

	if c.Cache.CatalogTTL < 0 {
		return fmt.Errorf("cache.catalog_ttl must not be negative")
	}

	return nil
}
