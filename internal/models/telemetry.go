// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package models

import "time"

// Telemetry event types accepted by the ingest endpoint.
const (
	EventTypeOpen             = "open"
	EventTypeGenerateDocument = "generate_document"
	EventTypeError            = "error"
	EventTypeCustom           = "custom"
)

// ValidEventType reports whether t is an accepted event type.
func ValidEventType(t string) bool {
	switch t {
	case EventTypeOpen, EventTypeGenerateDocument, EventTypeError, EventTypeCustom:
		return true
	}
	return false
}

// TelemetryEvent is one recorded usage event. Events are append-only and are
// never updated after ingest. OccurredAt is assigned server-side at ingest
// time; client timestamps are not trusted.
//
// AppID intentionally carries no foreign-key relationship to the registry so
// history survives application deletion.
type TelemetryEvent struct {
	ID         string         `json:"id"`
	AppID      string         `json:"app_id"`
	EventType  string         `json:"event_type"`
	UserID     string         `json:"user_id,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// TelemetryIngestRequest is the wire payload for POST /telemetry.
type TelemetryIngestRequest struct {
	AppID     string         `json:"app_id" validate:"required,min=1,max=64"`
	EventType string         `json:"event_type" validate:"required"`
	UserID    string         `json:"user_id" validate:"max=100"`
	Meta      map[string]any `json:"meta"`
}

// AppUsageSummary aggregates event counts for one application over the
// requested window, broken down by event type.
type AppUsageSummary struct {
	AppID       string           `json:"app_id"`
	TotalEvents int64            `json:"total_events"`
	ByEventType map[string]int64 `json:"by_event_type"`
}

// UsageSummary is the full per-app breakdown for GET /admin/stats/summary.
type UsageSummary struct {
	Days  int               `json:"days"`
	Since time.Time         `json:"since"`
	Until time.Time         `json:"until"`
	Apps  []AppUsageSummary `json:"apps"`
}

// TimeseriesPoint is one calendar-day bucket in a usage series.
// Date is midnight UTC of the bucketed day.
type TimeseriesPoint struct {
	Date  time.Time `json:"date"`
	Count int64     `json:"count"`
}

// AppTimeseries is the zero-filled daily series for GET /admin/stats/app/{id}.
// Points always spans days+1 entries: the inclusive calendar days from
// now-days through today.
type AppTimeseries struct {
	AppID     string            `json:"app_id"`
	EventType string            `json:"event_type,omitempty"`
	Days      int               `json:"days"`
	Points    []TimeseriesPoint `json:"points"`
}
