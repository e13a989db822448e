// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/models"
)

const applicationColumns = `id, name, description, path, tags, enabled, access_mode,
	password_hash, enabled_from, enabled_until, rate_limit_per_min, created_at, updated_at`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*models.Application, error) {
	var (
		app       models.Application
		tags      string
		from      sql.NullTime
		until     sql.NullTime
		rateLimit sql.NullInt64
	)

	err := row.Scan(
		&app.ID, &app.Name, &app.Description, &app.Path, &tags,
		&app.Enabled, &app.AccessMode, &app.PasswordHash,
		&from, &until, &rateLimit,
		&app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	app.Tags = models.SplitTags(tags)
	if from.Valid {
		t := from.Time.UTC()
		app.EnabledFrom = &t
	}
	if until.Valid {
		t := until.Time.UTC()
		app.EnabledUntil = &t
	}
	if rateLimit.Valid {
		n := int(rateLimit.Int64)
		app.RateLimitPerMin = &n
	}
	app.CreatedAt = app.CreatedAt.UTC()
	app.UpdatedAt = app.UpdatedAt.UTC()

	return &app, nil
}

// CreateApplication inserts a new registry entry. A duplicate ID yields a
// conflict error.
func (db *DB) CreateApplication(ctx context.Context, app *models.Application) error {
	return db.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM applications WHERE id = ?)`, app.ID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check application existence: %w", err)
		}
		if exists {
			return apperrors.Conflict(fmt.Sprintf("application %q already exists", app.ID))
		}

		now := time.Now().UTC()
		app.CreatedAt = now
		app.UpdatedAt = now

		_, err = tx.ExecContext(ctx,
			`INSERT INTO applications
				(id, name, description, path, tags, enabled, access_mode,
				 password_hash, enabled_from, enabled_until, rate_limit_per_min,
				 created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			app.ID, app.Name, app.Description, app.Path, models.JoinTags(app.Tags),
			app.Enabled, app.AccessMode, app.PasswordHash,
			nullableTime(app.EnabledFrom), nullableTime(app.EnabledUntil),
			nullableInt(app.RateLimitPerMin),
			now, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert application: %w", err)
		}
		return nil
	})
}

// GetApplication loads one registry entry by ID.
func (db *DB) GetApplication(ctx context.Context, id string) (*models.Application, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)

	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound(fmt.Sprintf("application %q not found", id))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load application: %w", err)
	}
	return app, nil
}

// ListApplications returns every registry entry ordered by name.
func (db *DB) ListApplications(ctx context.Context) ([]models.Application, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+applicationColumns+` FROM applications ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]models.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan application: %w", err)
		}
		apps = append(apps, *app)
	}
	return apps, rows.Err()
}

// UpdateApplication applies a partial update. Nil request fields leave the
// stored value untouched. Switching into password mode requires a password to
// have been set already; switching out of it clears the stored hash.
func (db *DB) UpdateApplication(ctx context.Context, id string, req *models.UpdateApplicationRequest) (*models.Application, error) {
	var updated *models.Application

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+applicationColumns+` FROM applications WHERE id = ?`, id)
		app, err := scanApplication(row)
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound(fmt.Sprintf("application %q not found", id))
		}
		if err != nil {
			return fmt.Errorf("failed to load application: %w", err)
		}

		if req.Name != nil {
			app.Name = *req.Name
		}
		if req.Description != nil {
			app.Description = *req.Description
		}
		if req.Path != nil {
			app.Path = *req.Path
		}
		if req.Tags != nil {
			app.Tags = models.SplitTags(models.JoinTags(req.Tags))
		}
		if req.Enabled != nil {
			app.Enabled = *req.Enabled
		}
		if req.RateLimitPerMin != nil {
			app.RateLimitPerMin = req.RateLimitPerMin
		}
		if req.AccessMode != nil && *req.AccessMode != app.AccessMode {
			switch *req.AccessMode {
			case models.AccessModePassword:
				if !app.HasPassword() {
					return apperrors.Validation("set a password before switching to password mode")
				}
			default:
				app.PasswordHash = ""
			}
			app.AccessMode = *req.AccessMode
		}

		app.UpdatedAt = time.Now().UTC()

		_, err = tx.ExecContext(ctx,
			`UPDATE applications SET
				name = ?, description = ?, path = ?, tags = ?, enabled = ?,
				access_mode = ?, password_hash = ?, rate_limit_per_min = ?,
				updated_at = ?
			 WHERE id = ?`,
			app.Name, app.Description, app.Path, models.JoinTags(app.Tags),
			app.Enabled, app.AccessMode, app.PasswordHash,
			nullableInt(app.RateLimitPerMin), app.UpdatedAt, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update application: %w", err)
		}

		updated = app
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteApplication removes a registry entry. Telemetry history is kept.
func (db *DB) DeleteApplication(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound(fmt.Sprintf("application %q not found", id))
	}
	return nil
}

// SetApplicationPassword stores a new credential hash and switches the
// application to password mode in the same transaction.
func (db *DB) SetApplicationPassword(ctx context.Context, id, passwordHash string) error {
	return db.mutateExisting(ctx, id,
		`UPDATE applications SET password_hash = ?, access_mode = ?, updated_at = ? WHERE id = ?`,
		passwordHash, models.AccessModePassword, time.Now().UTC(), id)
}

// RemoveApplicationPassword clears the credential and reverts the application
// to public mode.
func (db *DB) RemoveApplicationPassword(ctx context.Context, id string) error {
	return db.mutateExisting(ctx, id,
		`UPDATE applications SET password_hash = '', access_mode = ?, updated_at = ? WHERE id = ?`,
		models.AccessModePublic, time.Now().UTC(), id)
}

// SetApplicationSchedule replaces the availability window. Either bound may
// be nil; when both are present From must not be after Until.
func (db *DB) SetApplicationSchedule(ctx context.Context, id string, from, until *time.Time) (*models.Application, error) {
	if from != nil && until != nil && from.After(*until) {
		return nil, apperrors.Validation("enabled_from must not be after enabled_until")
	}

	err := db.mutateExisting(ctx, id,
		`UPDATE applications SET enabled_from = ?, enabled_until = ?, updated_at = ? WHERE id = ?`,
		nullableTime(from), nullableTime(until), time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	return db.GetApplication(ctx, id)
}

// ClearApplicationSchedule removes both window bounds.
func (db *DB) ClearApplicationSchedule(ctx context.Context, id string) error {
	return db.mutateExisting(ctx, id,
		`UPDATE applications SET enabled_from = NULL, enabled_until = NULL, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
}

// ToggleApplication flips the enabled flag and returns the new state.
func (db *DB) ToggleApplication(ctx context.Context, id string) (*models.Application, error) {
	err := db.mutateExisting(ctx, id,
		`UPDATE applications SET enabled = NOT enabled, updated_at = ? WHERE id = ?`,
		time.Now().UTC(), id)
	if err != nil {
		return nil, err
	}
	return db.GetApplication(ctx, id)
}

// mutateExisting runs an UPDATE keyed on id and maps zero affected rows to a
// not-found error.
func (db *DB) mutateExisting(ctx context.Context, id, query string, args ...any) error {
	res, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return apperrors.NotFound(fmt.Sprintf("application %q not found", id))
	}
	return nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
