// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Aldrich0129/automation-suite/internal/access"
	"github.com/Aldrich0129/automation-suite/internal/models"
)

const catalogCacheKey = "catalog"

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "up"
	status := "healthy"
	if err := s.db.Ping(r.Context()); err != nil {
		dbStatus = "down"
		status = "degraded"
	}

	writeSuccess(w, r, http.StatusOK, models.HealthStatus{
		Status:        status,
		Version:       Version,
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Database:      dbStatus,
		Timestamp:     time.Now().UTC(),
	})
}

// handleCatalog serves the anonymous catalog: enabled applications inside
// their availability window, projected without admin fields. The listing is
// cached; mutations clear the cache.
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	// The fill is shared by every request waiting on the single-flight lock,
	// so it must outlive the request that happened to initiate it.
	fillCtx := context.WithoutCancel(r.Context())

	cached := true
	entries, err := s.cache.GetOrCompute(catalogCacheKey, func() (interface{}, error) {
		cached = false
		apps, err := s.db.ListApplications(fillCtx)
		if err != nil {
			return nil, err
		}

		now := time.Now().UTC()
		catalog := make([]models.CatalogEntry, 0, len(apps))
		for i := range apps {
			if access.VisibleToAnonymous(&apps[i], now) {
				catalog = append(catalog, apps[i].ToCatalogEntry())
			}
		}
		return catalog, nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccessCached(w, r, entries, cached)
}

// handleOpen grants or denies opening a tool. The decision engine is the
// single authority: unavailability wins over any credential.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req models.OpenRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	app, err := s.db.GetApplication(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := access.AuthorizeOpen(app, req.Password, time.Now().UTC()); err != nil {
		writeError(w, r, err)
		return
	}

	s.telemetry.RecordOpen(r.Context(), app.ID)

	writeSuccess(w, r, http.StatusOK, models.OpenResponse{
		AppID: app.ID,
		Path:  app.Path,
	})
}

// clientIP extracts the remote address without the port. RealIP middleware
// has already unwrapped proxy headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
