// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package config

import (
	"strings"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}

	if cfg.Server.Port != 8601 {
		t.Errorf("default port = %d, want 8601", cfg.Server.Port)
	}
	if cfg.Security.SessionTimeout != 8*time.Hour {
		t.Errorf("default session timeout = %v, want 8h", cfg.Security.SessionTimeout)
	}
	if cfg.Cache.CatalogTTL != 15*time.Second {
		t.Errorf("default catalog TTL = %v, want 15s", cfg.Cache.CatalogTTL)
	}
	if cfg.Security.RateLimitReqs != 100 || cfg.Security.RateLimitWindow != time.Minute {
		t.Errorf("default rate limit = %d/%v, want 100/1m",
			cfg.Security.RateLimitReqs, cfg.Security.RateLimitWindow)
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 8601}
	if s.Addr() != "127.0.0.1:8601" {
		t.Errorf("Addr = %q", s.Addr())
	}
}

func TestValidateRejectsBadPort(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected port validation failure")
	}
}

func TestValidateRejectsUnknownEnvironment(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Environment = "staging"
	if err := cfg.Validate(); err == nil {
		t.Error("expected environment validation failure")
	}
}

func TestProductionRequiresStrongSecret(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Environment = "production"
	cfg.Security.AdminPassword = "operator-chosen-password"
	cfg.Security.JWTSecret = "short"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected jwt secret validation failure")
	}
	if !strings.Contains(err.Error(), "jwt_secret") {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Security.JWTSecret = strings.Repeat("s", 32)
	if err := cfg.Validate(); err != nil {
		t.Errorf("32-byte secret should validate: %v", err)
	}
}

func TestProductionRejectsDefaultAdminPassword(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Environment = "production"
	cfg.Security.JWTSecret = strings.Repeat("s", 32)

	if err := cfg.Validate(); err == nil {
		t.Error("expected default admin password rejection in production")
	}
}

func TestValidateRateLimits(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.RateLimitReqs = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected rate limit validation failure")
	}

	// Disabling the limiter skips the bounds check.
	cfg.Security.RateLimitDisabled = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled limiter should not be validated: %v", err)
	}
}

func TestValidateTelemetryLimits(t *testing.T) {
	cfg := defaultConfig()
	cfg.Telemetry.Burst = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected telemetry burst validation failure")
	}

	cfg.Telemetry.RateLimitDisabled = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled telemetry limiter should not be validated: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DUCKDB_PATH", "database.path"},
		{"JWT_SECRET", "security.jwt_secret"},
		{"TELEMETRY_TOKEN", "telemetry.token"},
		{"CATALOG_CACHE_TTL", "cache.catalog_ttl"},
		{"LOG_LEVEL", "logging.level"},
		{"RANDOM_UNRELATED_VAR", ""},
		{"PATH", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("SESSION_TIMEOUT", "2h")
	t.Setenv("CORS_ORIGINS", "https://a.internal, https://b.internal")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Security.SessionTimeout != 2*time.Hour {
		t.Errorf("session timeout = %v, want 2h", cfg.Security.SessionTimeout)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != "https://a.internal" {
		t.Errorf("cors origins = %v", cfg.Security.CORSOrigins)
	}
}
