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

// GetAdminByUsername loads an operator account by username.
func (db *DB) GetAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var (
		admin     models.AdminUser
		lastLogin sql.NullTime
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, created_at, last_login
		 FROM admin_users WHERE username = ?`, username,
	).Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.CreatedAt, &lastLogin)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound(fmt.Sprintf("admin %q not found", username))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load admin: %w", err)
	}

	admin.CreatedAt = admin.CreatedAt.UTC()
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		admin.LastLogin = &t
	}
	return &admin, nil
}

// CountAdmins returns the number of operator accounts.
func (db *DB) CountAdmins(ctx context.Context) (int64, error) {
	var count int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM admin_users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}
	return count, nil
}

// CreateAdmin inserts an operator account and returns it with the assigned ID.
// A duplicate username yields a conflict error.
func (db *DB) CreateAdmin(ctx context.Context, username, passwordHash string) (*models.AdminUser, error) {
	var admin *models.AdminUser

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM admin_users WHERE username = ?)`, username,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check admin existence: %w", err)
		}
		if exists {
			return apperrors.Conflict(fmt.Sprintf("admin %q already exists", username))
		}

		now := time.Now().UTC()
		var id int64
		err = tx.QueryRowContext(ctx,
			`INSERT INTO admin_users (username, password_hash, created_at)
			 VALUES (?, ?, ?) RETURNING id`,
			username, passwordHash, now,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert admin: %w", err)
		}

		admin = &models.AdminUser{
			ID:           id,
			Username:     username,
			PasswordHash: passwordHash,
			CreatedAt:    now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return admin, nil
}

// UpdateAdminLastLogin records a successful login. Advisory only; callers
// treat failures as non-fatal.
func (db *DB) UpdateAdminLastLogin(ctx context.Context, id int64, at time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`UPDATE admin_users SET last_login = ? WHERE id = ?`, at.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update last_login: %w", err)
	}
	return nil
}
