// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package models

import "time"

// AdminUser is an operator account. There is exactly one role; any admin may
// perform every admin operation.
type AdminUser struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

// LoginRequest carries admin credentials.
//
// The password travels in plaintext, so the deployment is expected to sit
// behind TLS. It is bcrypt-compared server-side and never logged.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=128"`
}

// LoginResponse returns the signed session token. The same token is also set
// as an HTTP-only cookie; the body copy exists for non-browser clients.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	UserID    int64     `json:"user_id"`
}

// AdminProfile is the authenticated identity echo for GET /auth/me.
type AdminProfile struct {
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}
