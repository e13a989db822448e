// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

// Package models defines the shared data structures exchanged between the
// storage, service, and HTTP layers.
package models

import (
	"strings"
	"time"
)

// Access modes for catalog applications.
//
//   - public: anyone who can reach the catalog may open the tool
//   - password: opening requires a per-application shared password
//   - sso: reserved for federated login (declared, not yet supported)
const (
	AccessModePublic   = "public"
	AccessModePassword = "password"
	AccessModeSSO      = "sso"
)

// ValidAccessMode reports whether mode is a recognized access mode.
func ValidAccessMode(mode string) bool {
	switch mode {
	case AccessModePublic, AccessModePassword, AccessModeSSO:
		return true
	}
	return false
}

// Application is a registered internal tool.
//
// ID is caller-assigned and immutable after creation. PasswordHash is only
// populated when AccessMode is "password" and never leaves the server.
// EnabledFrom/EnabledUntil bound the availability window; either side may be
// nil for a half-open window.
type Application struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Path            string     `json:"path"`
	Tags            []string   `json:"tags"`
	Enabled         bool       `json:"enabled"`
	AccessMode      string     `json:"access_mode"`
	PasswordHash    string     `json:"-"`
	EnabledFrom     *time.Time `json:"enabled_from,omitempty"`
	EnabledUntil    *time.Time `json:"enabled_until,omitempty"`
	RateLimitPerMin *int       `json:"rate_limit_per_min,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// HasPassword reports whether a password is set without exposing the hash.
func (a *Application) HasPassword() bool {
	return a.PasswordHash != ""
}

// CatalogEntry is the anonymous-facing projection of an Application.
// It carries no schedule, no hash, and no admin-only fields.
type CatalogEntry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Path        string   `json:"path"`
	Tags        []string `json:"tags"`
	AccessMode  string   `json:"access_mode"`
}

// ToCatalogEntry projects the application for the public catalog.
func (a *Application) ToCatalogEntry() CatalogEntry {
	return CatalogEntry{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Path:        a.Path,
		Tags:        a.Tags,
		AccessMode:  a.AccessMode,
	}
}

// JoinTags flattens a tag list for column storage.
// Empty and whitespace-only tags are dropped.
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return strings.Join(cleaned, ",")
}

// SplitTags parses a stored tag column back into a list.
// Returns an empty (non-nil) slice for an empty column so JSON renders [].
func SplitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

// CreateApplicationRequest is the admin payload for registering a tool.
type CreateApplicationRequest struct {
	ID              string     `json:"id" validate:"required,min=1,max=64,app_id"`
	Name            string     `json:"name" validate:"required,min=1,max=200"`
	Description     string     `json:"description" validate:"max=2000"`
	Path            string     `json:"path" validate:"required,max=500"`
	Tags            []string   `json:"tags" validate:"max=20,dive,max=50"`
	Enabled         *bool      `json:"enabled"`
	AccessMode      string     `json:"access_mode" validate:"omitempty,oneof=public password sso"`
	EnabledFrom     *time.Time `json:"enabled_from"`
	EnabledUntil    *time.Time `json:"enabled_until"`
	RateLimitPerMin *int       `json:"rate_limit_per_min" validate:"omitempty,min=1,max=100000"`
}

// UpdateApplicationRequest is the admin payload for a partial update.
// Nil fields are left untouched; the ID cannot be changed.
type UpdateApplicationRequest struct {
	Name            *string  `json:"name" validate:"omitempty,min=1,max=200"`
	Description     *string  `json:"description" validate:"omitempty,max=2000"`
	Path            *string  `json:"path" validate:"omitempty,min=1,max=500"`
	Tags            []string `json:"tags" validate:"omitempty,max=20,dive,max=50"`
	Enabled         *bool    `json:"enabled"`
	AccessMode      *string  `json:"access_mode" validate:"omitempty,oneof=public password sso"`
	RateLimitPerMin *int     `json:"rate_limit_per_min" validate:"omitempty,min=1,max=100000"`
}

// SetAppPasswordRequest sets a per-application password.
// Applying it also switches the application to password mode.
type SetAppPasswordRequest struct {
	Password string `json:"password" validate:"required,min=4,max=128"`
}

// ScheduleRequest sets an availability window. Either side may be null for a
// half-open window; when both are set, From must not be after Until.
type ScheduleRequest struct {
	EnabledFrom  *time.Time `json:"enabled_from"`
	EnabledUntil *time.Time `json:"enabled_until"`
}

// Schedule is the admin-facing view of an availability window.
type Schedule struct {
	AppID        string     `json:"app_id"`
	EnabledFrom  *time.Time `json:"enabled_from"`
	EnabledUntil *time.Time `json:"enabled_until"`
}

// OpenRequest is the anonymous payload for unlocking a tool.
// Password is only consulted for password-mode applications.
type OpenRequest struct {
	Password string `json:"password"`
}

// OpenResponse acknowledges a granted open and echoes the launch path.
type OpenResponse struct {
	AppID string `json:"app_id"`
	Path  string `json:"path"`
}
