// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/Aldrich0129/automation-suite/internal/config"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

func newTestManager(t *testing.T, timeout time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      testSecret,
		SessionTimeout: timeout,
	})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	return m
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager(&config.SecurityConfig{SessionTimeout: time.Hour})
	if err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newTestManager(t, time.Hour)

	token, claims, err := m.GenerateToken("admin", 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}
	if claims.ID == "" {
		t.Error("token must carry a jti")
	}

	parsed, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if parsed.Username != "admin" || parsed.UserID != 1 {
		t.Errorf("claims = %q/%d, want admin/1", parsed.Username, parsed.UserID)
	}
	if parsed.ID != claims.ID {
		t.Errorf("jti changed across validate: %q vs %q", parsed.ID, claims.ID)
	}
}

func TestTokenLifetimeFixedAtIssuance(t *testing.T) {
	m := newTestManager(t, 8*time.Hour)

	_, claims, err := m.GenerateToken("admin", 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime != 8*time.Hour {
		t.Errorf("lifetime = %v, want 8h", lifetime)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := newTestManager(t, -time.Minute)

	token, _, err := m.GenerateToken("admin", 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := m.ValidateToken(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestWrongSecretRejected(t *testing.T) {
	m := newTestManager(t, time.Hour)
	token, _, err := m.GenerateToken("admin", 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	other, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      strings.Repeat("x", 32),
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}

	if _, err := other.ValidateToken(token); err == nil {
		t.Fatal("expected token signed with different secret to be rejected")
	}
}

func TestGarbageTokenRejected(t *testing.T) {
	m := newTestManager(t, time.Hour)
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := m.ValidateToken(token); err == nil {
			t.Errorf("token %q should be rejected", token)
		}
	}
}

func TestEachTokenGetsFreshJTI(t *testing.T) {
	m := newTestManager(t, time.Hour)

	_, c1, err := m.GenerateToken("admin", 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	_, c2, err := m.GenerateToken("admin", 1)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if c1.ID == c2.ID {
		t.Error("consecutive tokens must carry distinct jti values")
	}
}
