// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package api

import (
	"context"
	"net/http"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/auth"
)

type sessionKey struct{}

// RequireSession rejects requests without a valid admin session. Verified
// claims are stored in the request context for handlers.
func RequireSession(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFromRequest(r)
			if token == "" {
				writeError(w, r, apperrors.Unauthorized("authentication required"))
				return
			}

			claims, err := svc.Verify(r.Context(), token)
			if err != nil {
				writeError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionClaims returns the verified claims placed by RequireSession.
func SessionClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(sessionKey{}).(*auth.Claims)
	return claims
}
