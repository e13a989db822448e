// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package api

import (
	"net/http"

	"github.com/Aldrich0129/automation-suite/internal/auth"
	"github.com/Aldrich0129/automation-suite/internal/models"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	resp, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	auth.SetSessionCookie(w, resp.Token, resp.ExpiresAt, s.cfg.Server.IsProduction())
	writeSuccess(w, r, http.StatusOK, resp)
}

// handleLogout revokes the current session and clears the cookie. Revocation
// is best-effort for garbage tokens but the cookie always goes away.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), auth.TokenFromRequest(r)); err != nil {
		writeError(w, r, err)
		return
	}

	auth.ClearSessionCookie(w, s.cfg.Server.IsProduction())
	writeSuccess(w, r, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := SessionClaims(r.Context())

	profile := models.AdminProfile{
		UserID:   claims.UserID,
		Username: claims.Username,
	}
	// last_login is informational; a lookup failure is not worth a 500.
	if admin, err := s.db.GetAdminByUsername(r.Context(), claims.Username); err == nil {
		profile.LastLogin = admin.LastLogin
	}

	writeSuccess(w, r, http.StatusOK, profile)
}
