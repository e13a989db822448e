// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	gorillaws "github.com/gorilla/websocket"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/logging"
	"github.com/Aldrich0129/automation-suite/internal/models"
	"github.com/Aldrich0129/automation-suite/internal/websocket"
)

// TelemetryTokenHeader carries the optional shared ingest secret.
const TelemetryTokenHeader = "X-Telemetry-Token"

const (
	defaultStatsDays = 30
	maxStatsDays     = 365
)

func (s *Server) handleTelemetryIngest(w http.ResponseWriter, r *http.Request) {
	if err := s.telemetry.Authorize(r.Header.Get(TelemetryTokenHeader)); err != nil {
		writeError(w, r, err)
		return
	}

	var req models.TelemetryIngestRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	event, err := s.telemetry.Ingest(r.Context(), clientIP(r), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeSuccess(w, r, http.StatusAccepted, event)
}

// daysParam parses the ?days= query, defaulting to 30 and capping at a year.
func daysParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("days")
	if raw == "" {
		return defaultStatsDays, nil
	}

	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 || days > maxStatsDays {
		return 0, apperrors.Validation("days must be an integer between 1 and 365")
	}
	return days, nil
}

func (s *Server) handleStatsSummary(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := s.db.UsageSummary(r.Context(), days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, summary)
}

func (s *Server) handleStatsApp(w http.ResponseWriter, r *http.Request) {
	days, err := daysParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	eventType := r.URL.Query().Get("event_type")
	if eventType != "" && !models.ValidEventType(eventType) {
		writeError(w, r, apperrors.Validation("unknown event type"))
		return
	}

	series, err := s.db.AppTimeseries(r.Context(), chi.URLParam(r, "id"), eventType, days)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, r, http.StatusOK, series)
}

var wsUpgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Session auth already ran; the feed is same-deployment tooling.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleEventsWS upgrades an authenticated admin session to the live
// telemetry feed.
func (s *Server) handleEventsWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, r, apperrors.NotImplemented("event feed is not enabled"))
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own response.
		logging.CtxErr(r.Context(), err).Msg("Websocket upgrade failed")
		return
	}

	client := websocket.NewClient(s.hub, conn)
	s.hub.Register <- client
	client.Start()
}
