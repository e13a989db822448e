// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/auth"
	"github.com/Aldrich0129/automation-suite/internal/models"
)

// invalidateCatalog drops the cached anonymous listing after any registry
// mutation.
func (s *Server) invalidateCatalog() {
	s.cache.Clear()
}

func (s *Server) handleAdminListApps(w http.ResponseWriter, r *http.Request) {
	apps, err := s.db.ListApplications(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, apps)
}

func (s *Server) handleAdminCreateApp(w http.ResponseWriter, r *http.Request) {
	var req models.CreateApplicationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	app := &models.Application{
		ID:              req.ID,
		Name:            req.Name,
		Description:     req.Description,
		Path:            req.Path,
		Tags:            models.SplitTags(models.JoinTags(req.Tags)),
		Enabled:         true,
		AccessMode:      models.AccessModePublic,
		EnabledFrom:     req.EnabledFrom,
		EnabledUntil:    req.EnabledUntil,
		RateLimitPerMin: req.RateLimitPerMin,
	}
	if req.Enabled != nil {
		app.Enabled = *req.Enabled
	}
	// Password mode cannot be requested at creation: the credential does not
	// exist yet. sso may be declared up front since it has no credential.
	switch req.AccessMode {
	case models.AccessModePassword:
		writeError(w, r, apperrors.Validation("set a password after creation to enable password mode"))
		return
	case models.AccessModeSSO:
		app.AccessMode = models.AccessModeSSO
	}

	if err := s.db.CreateApplication(r.Context(), app); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCatalog()
	writeSuccess(w, r, http.StatusCreated, app)
}

func (s *Server) handleAdminUpdateApp(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateApplicationRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	app, err := s.db.UpdateApplication(r.Context(), chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCatalog()
	writeSuccess(w, r, http.StatusOK, app)
}

func (s *Server) handleAdminDeleteApp(w http.ResponseWriter, r *http.Request) {
	if err := s.db.DeleteApplication(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCatalog()
	w.WriteHeader(http.StatusNoContent)
}

// handleAdminSetPassword hashes the new credential and switches the
// application to password mode. The hash never appears in any response.
func (s *Server) handleAdminSetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.SetAppPasswordRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.db.SetApplicationPassword(r.Context(), id, hash); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCatalog()
	writeSuccess(w, r, http.StatusOK, map[string]string{
		"app_id":      id,
		"access_mode": models.AccessModePassword,
	})
}

func (s *Server) handleAdminRemovePassword(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.db.RemoveApplicationPassword(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCatalog()
	writeSuccess(w, r, http.StatusOK, map[string]string{
		"app_id":      id,
		"access_mode": models.AccessModePublic,
	})
}

func (s *Server) handleAdminToggleApp(w http.ResponseWriter, r *http.Request) {
	app, err := s.db.ToggleApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCatalog()
	writeSuccess(w, r, http.StatusOK, app)
}

func (s *Server) handleAdminGetSchedule(w http.ResponseWriter, r *http.Request) {
	app, err := s.db.GetApplication(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, r, http.StatusOK, models.Schedule{
		AppID:        app.ID,
		EnabledFrom:  app.EnabledFrom,
		EnabledUntil: app.EnabledUntil,
	})
}

func (s *Server) handleAdminSetSchedule(w http.ResponseWriter, r *http.Request) {
	var req models.ScheduleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	app, err := s.db.SetApplicationSchedule(r.Context(), chi.URLParam(r, "id"), req.EnabledFrom, req.EnabledUntil)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCatalog()
	writeSuccess(w, r, http.StatusOK, models.Schedule{
		AppID:        app.ID,
		EnabledFrom:  app.EnabledFrom,
		EnabledUntil: app.EnabledUntil,
	})
}

func (s *Server) handleAdminClearSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.db.ClearApplicationSchedule(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateCatalog()
	writeSuccess(w, r, http.StatusOK, models.Schedule{AppID: id})
}
