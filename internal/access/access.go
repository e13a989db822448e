// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

// Package access implements the decision engine that answers whether an
// application may be seen or opened at a given instant. All functions are
// pure with respect to storage: callers load the application and pass the
// evaluation time explicitly, which keeps the rules deterministic and
// directly testable.
package access

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/models"
)

// AvailableNow reports whether the application is usable at the given time.
// An application is available iff it is enabled and now falls inside its
// availability window. A nil boundary leaves that side unbounded.
func AvailableNow(app *models.Application, now time.Time) bool {
	if !app.Enabled {
		return false
	}
	if app.EnabledFrom != nil && now.Before(*app.EnabledFrom) {
		return false
	}
	if app.EnabledUntil != nil && now.After(*app.EnabledUntil) {
		return false
	}
	return true
}

// VisibleToAnonymous reports whether the application appears in the public
// catalog. Visibility tracks availability exactly: a password-protected
// application is visible (it renders locked client-side), an unavailable one
// is not.
func VisibleToAnonymous(app *models.Application, now time.Time) bool {
	return AvailableNow(app, now)
}

// AuthorizeOpen decides whether an open attempt with the supplied credential
// unlocks the application at the given time. Returns nil on success.
//
// Availability is checked before the access mode, so an out-of-window
// password application reports unavailable rather than prompting for a
// credential.
func AuthorizeOpen(app *models.Application, credential string, now time.Time) error {
	if !AvailableNow(app, now) {
		return apperrors.Unavailable("application is not currently available")
	}

	switch app.AccessMode {
	case models.AccessModePublic:
		return nil

	case models.AccessModePassword:
		if app.PasswordHash == "" {
			// Password mode without a hash is a registry invariant
			// violation; fail closed.
			return apperrors.Unauthorized("application password is not configured")
		}
		if credential == "" {
			return apperrors.Unauthorized("password required")
		}
		if bcrypt.CompareHashAndPassword([]byte(app.PasswordHash), []byte(credential)) != nil {
			return apperrors.Unauthorized("invalid password")
		}
		return nil

	case models.AccessModeSSO:
		return apperrors.NotImplemented("sso access is not supported yet")

	default:
		return apperrors.Forbidden("unknown access mode")
	}
}
