// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package database

import (
	"context"
	"fmt"
)

// createTables applies the schema. Every statement is idempotent so startup
// against an existing database file is a no-op.
func (db *DB) createTables(ctx context.Context) error {
	for _, query := range schemaStatements() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

func schemaStatements() []string {
	return []string{
		// Registry of internal tools. Tags are stored comma-joined; the
		// models package owns the join/split convention.
		`CREATE TABLE IF NOT EXISTS applications (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			path TEXT NOT NULL,
			tags TEXT NOT NULL DEFAULT '',
			enabled BOOLEAN NOT NULL DEFAULT TRUE,
			access_mode TEXT NOT NULL DEFAULT 'public',
			password_hash TEXT NOT NULL DEFAULT '',
			enabled_from TIMESTAMP,
			enabled_until TIMESTAMP,
			rate_limit_per_min INTEGER,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,

		`CREATE SEQUENCE IF NOT EXISTS admin_users_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS admin_users (
			id BIGINT PRIMARY KEY DEFAULT nextval('admin_users_id_seq'),
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL,
			last_login TIMESTAMP
		)`,

		// Append-only event log. app_id is deliberately not a foreign key:
		// usage history must survive application deletion.
		`CREATE TABLE IF NOT EXISTS telemetry_events (
			id UUID PRIMARY KEY,
			app_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT '',
			meta TEXT NOT NULL DEFAULT '',
			occurred_at TIMESTAMP NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_telemetry_app_time
			ON telemetry_events (app_id, occurred_at)`,
		`CREATE INDEX IF NOT EXISTS idx_telemetry_time
			ON telemetry_events (occurred_at)`,
	}
}
