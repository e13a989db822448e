// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/models"
)

// InsertTelemetryEvent appends one usage event. The event log is append-only;
// rows are never updated.
func (db *DB) InsertTelemetryEvent(ctx context.Context, event *models.TelemetryEvent) error {
	meta := ""
	if len(event.Meta) > 0 {
		raw, err := json.Marshal(event.Meta)
		if err != nil {
			return apperrors.Wrap(apperrors.KindValidation, "meta is not serializable", err)
		}
		meta = string(raw)
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO telemetry_events (id, app_id, event_type, user_id, meta, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		event.ID, event.AppID, event.EventType, event.UserID, meta, event.OccurredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert telemetry event: %w", err)
	}
	return nil
}

// UsageSummary aggregates event counts per application over the trailing
// window, broken down by event type. Applications with no events in the
// window are absent from the result.
func (db *DB) UsageSummary(ctx context.Context, days int) (*models.UsageSummary, error) {
	now := time.Now().UTC()
	since := now.AddDate(0, 0, -days)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT app_id, event_type, COUNT(*)
		 FROM telemetry_events
		 WHERE occurred_at >= ?
		 GROUP BY app_id, event_type`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate usage: %w", err)
	}
	defer rows.Close()

	byApp := make(map[string]*models.AppUsageSummary)
	for rows.Next() {
		var (
			appID     string
			eventType string
			count     int64
		)
		if err := rows.Scan(&appID, &eventType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan usage row: %w", err)
		}

		app, ok := byApp[appID]
		if !ok {
			app = &models.AppUsageSummary{
				AppID:       appID,
				ByEventType: make(map[string]int64),
			}
			byApp[appID] = app
		}
		app.ByEventType[eventType] += count
		app.TotalEvents += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read usage rows: %w", err)
	}

	apps := make([]models.AppUsageSummary, 0, len(byApp))
	for _, app := range byApp {
		apps = append(apps, *app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].AppID < apps[j].AppID })

	return &models.UsageSummary{
		Days:  days,
		Since: since,
		Until: now,
		Apps:  apps,
	}, nil
}

// AppTimeseries returns a zero-filled daily event series for one application.
// The series always spans days+1 points: every UTC calendar day from
// today-days through today, inclusive. An empty eventType counts all types.
//
// The application must exist in the registry; history for deleted
// applications is only reachable through the summary.
func (db *DB) AppTimeseries(ctx context.Context, appID, eventType string, days int) (*models.AppTimeseries, error) {
	if _, err := db.GetApplication(ctx, appID); err != nil {
		return nil, err
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	start := today.AddDate(0, 0, -days)

	query := `SELECT DATE_TRUNC('day', occurred_at) AS day, COUNT(*)
		 FROM telemetry_events
		 WHERE app_id = ? AND occurred_at >= ?`
	args := []any{appID, start}
	if eventType != "" {
		query += ` AND event_type = ?`
		args = append(args, eventType)
	}
	query += ` GROUP BY day`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate timeseries: %w", err)
	}
	defer rows.Close()

	counts := make(map[time.Time]int64, days+1)
	for rows.Next() {
		var (
			day   time.Time
			count int64
		)
		if err := rows.Scan(&day, &count); err != nil {
			return nil, fmt.Errorf("failed to scan timeseries row: %w", err)
		}
		counts[day.UTC()] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read timeseries rows: %w", err)
	}

	points := make([]models.TimeseriesPoint, 0, days+1)
	for day := start; !day.After(today); day = day.AddDate(0, 0, 1) {
		points = append(points, models.TimeseriesPoint{
			Date:  day,
			Count: counts[day],
		})
	}

	return &models.AppTimeseries{
		AppID:     appID,
		EventType: eventType,
		Days:      days,
		Points:    points,
	}, nil
}
