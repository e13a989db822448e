// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package database

import (
	"context"
	"testing"
	"time"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
)

func TestCreateAndGetAdmin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := db.CreateAdmin(ctx, "operator", "$2a$12$fakehashfortest")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected assigned ID")
	}

	admin, err := db.GetAdminByUsername(ctx, "operator")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if admin.ID != created.ID || admin.PasswordHash != "$2a$12$fakehashfortest" {
		t.Errorf("loaded admin = %+v", admin)
	}
	if admin.LastLogin != nil {
		t.Error("fresh account must have no last_login")
	}
}

func TestCreateAdminDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateAdmin(ctx, "dup", "$2a$12$a"); err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	_, err := db.CreateAdmin(ctx, "dup", "$2a$12$b")
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Errorf("duplicate admin = %v, want conflict", err)
	}
}

func TestGetAdminNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetAdminByUsername(context.Background(), "nobody")
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("missing admin = %v, want not found", err)
	}
}

func TestCountAdmins(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	count, err := db.CountAdmins(ctx)
	if err != nil || count != 0 {
		t.Fatalf("empty count = %d, %v", count, err)
	}

	db.CreateAdmin(ctx, "a", "$2a$12$x")
	db.CreateAdmin(ctx, "b", "$2a$12$y")

	count, err = db.CountAdmins(ctx)
	if err != nil || count != 2 {
		t.Errorf("count = %d, %v", count, err)
	}
}

func TestUpdateAdminLastLogin(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	admin, err := db.CreateAdmin(ctx, "operator", "$2a$12$x")
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}

	at := time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)
	if err := db.UpdateAdminLastLogin(ctx, admin.ID, at); err != nil {
		t.Fatalf("UpdateAdminLastLogin: %v", err)
	}

	loaded, err := db.GetAdminByUsername(ctx, "operator")
	if err != nil {
		t.Fatalf("GetAdminByUsername: %v", err)
	}
	if loaded.LastLogin == nil || !loaded.LastLogin.Equal(at) {
		t.Errorf("last_login = %v, want %v", loaded.LastLogin, at)
	}
}
