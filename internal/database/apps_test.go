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
	"github.com/Aldrich0129/automation-suite/internal/models"
)

func seedApp(t *testing.T, db *DB, id string) *models.Application {
	t.Helper()

	app := &models.Application{
		ID:         id,
		Name:       "Tool " + id,
		Path:       "/tools/" + id,
		Tags:       []string{"reports", "finance"},
		Enabled:    true,
		AccessMode: models.AccessModePublic,
	}
	if err := db.CreateApplication(context.Background(), app); err != nil {
		t.Fatalf("CreateApplication(%s): %v", id, err)
	}
	return app
}

func TestCreateAndGetApplication(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedApp(t, db, "invoice-gen")

	got, err := db.GetApplication(ctx, "invoice-gen")
	if err != nil {
		t.Fatalf("GetApplication: %v", err)
	}
	if got.Name != "Tool invoice-gen" || got.Path != "/tools/invoice-gen" {
		t.Errorf("loaded app = %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "reports" {
		t.Errorf("tags = %v", got.Tags)
	}
	if !got.Enabled || got.AccessMode != models.AccessModePublic {
		t.Errorf("state = enabled:%v mode:%s", got.Enabled, got.AccessMode)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestCreateApplicationDuplicate(t *testing.T) {
	db := newTestDB(t)

	seedApp(t, db, "dup")
	err := db.CreateApplication(context.Background(), &models.Application{
		ID: "dup", Name: "Other", Path: "/x", AccessMode: models.AccessModePublic,
	})
	if !apperrors.IsKind(err, apperrors.KindConflict) {
		t.Errorf("duplicate create = %v, want conflict", err)
	}
}

func TestGetApplicationNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetApplication(context.Background(), "ghost")
	if !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("missing app = %v, want not found", err)
	}
}

func TestListApplicationsOrdered(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	for _, id := range []string{"zeta", "alpha", "mid"} {
		seedApp(t, db, id)
	}

	apps, err := db.ListApplications(ctx)
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if len(apps) != 3 {
		t.Fatalf("count = %d", len(apps))
	}
	if apps[0].ID != "alpha" || apps[2].ID != "zeta" {
		t.Errorf("order = %s, %s, %s", apps[0].ID, apps[1].ID, apps[2].ID)
	}
}

func TestListApplicationsEmpty(t *testing.T) {
	db := newTestDB(t)

	apps, err := db.ListApplications(context.Background())
	if err != nil {
		t.Fatalf("ListApplications: %v", err)
	}
	if apps == nil || len(apps) != 0 {
		t.Errorf("empty list = %v", apps)
	}
}

func TestUpdateApplicationPartial(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedApp(t, db, "partial")
	before, _ := db.GetApplication(ctx, "partial")

	name := "Renamed"
	limit := 50
	updated, err := db.UpdateApplication(ctx, "partial", &models.UpdateApplicationRequest{
		Name:            &name,
		RateLimitPerMin: &limit,
	})
	if err != nil {
		t.Fatalf("UpdateApplication: %v", err)
	}

	if updated.Name != "Renamed" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.RateLimitPerMin == nil || *updated.RateLimitPerMin != 50 {
		t.Errorf("rate limit = %v", updated.RateLimitPerMin)
	}
	// Untouched fields survive.
	if updated.Path != before.Path || len(updated.Tags) != len(before.Tags) {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if updated.UpdatedAt.Before(before.UpdatedAt) {
		t.Error("updated_at went backwards")
	}
}

func TestUpdateApplicationPasswordModeRequiresCredential(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedApp(t, db, "locked")

	mode := models.AccessModePassword
	_, err := db.UpdateApplication(ctx, "locked", &models.UpdateApplicationRequest{AccessMode: &mode})
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("switch without credential = %v, want validation error", err)
	}

	if err := db.SetApplicationPassword(ctx, "locked", "$2a$12$fakehashfortest"); err != nil {
		t.Fatalf("SetApplicationPassword: %v", err)
	}

	// Switching away from password mode clears the stored hash.
	public := models.AccessModePublic
	updated, err := db.UpdateApplication(ctx, "locked", &models.UpdateApplicationRequest{AccessMode: &public})
	if err != nil {
		t.Fatalf("UpdateApplication: %v", err)
	}
	if updated.AccessMode != models.AccessModePublic || updated.HasPassword() {
		t.Errorf("after switch: mode=%s hasPassword=%v", updated.AccessMode, updated.HasPassword())
	}
}

func TestSetAndRemoveApplicationPassword(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedApp(t, db, "secure")

	if err := db.SetApplicationPassword(ctx, "secure", "$2a$12$fakehashfortest"); err != nil {
		t.Fatalf("SetApplicationPassword: %v", err)
	}
	app, _ := db.GetApplication(ctx, "secure")
	if app.AccessMode != models.AccessModePassword || !app.HasPassword() {
		t.Errorf("after set: mode=%s hasPassword=%v", app.AccessMode, app.HasPassword())
	}

	if err := db.RemoveApplicationPassword(ctx, "secure"); err != nil {
		t.Fatalf("RemoveApplicationPassword: %v", err)
	}
	app, _ = db.GetApplication(ctx, "secure")
	if app.AccessMode != models.AccessModePublic || app.HasPassword() {
		t.Errorf("after remove: mode=%s hasPassword=%v", app.AccessMode, app.HasPassword())
	}

	if err := db.SetApplicationPassword(ctx, "ghost", "$2a$12$x"); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("set on missing app = %v, want not found", err)
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedApp(t, db, "windowed")

	from := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	until := time.Date(2026, 9, 30, 18, 0, 0, 0, time.UTC)

	app, err := db.SetApplicationSchedule(ctx, "windowed", &from, &until)
	if err != nil {
		t.Fatalf("SetApplicationSchedule: %v", err)
	}
	if app.EnabledFrom == nil || !app.EnabledFrom.Equal(from) {
		t.Errorf("enabled_from = %v", app.EnabledFrom)
	}
	if app.EnabledUntil == nil || !app.EnabledUntil.Equal(until) {
		t.Errorf("enabled_until = %v", app.EnabledUntil)
	}

	// Half-open window.
	if _, err := db.SetApplicationSchedule(ctx, "windowed", &from, nil); err != nil {
		t.Fatalf("half-open schedule: %v", err)
	}
	app, _ = db.GetApplication(ctx, "windowed")
	if app.EnabledFrom == nil || app.EnabledUntil != nil {
		t.Errorf("half-open window = %v..%v", app.EnabledFrom, app.EnabledUntil)
	}

	if err := db.ClearApplicationSchedule(ctx, "windowed"); err != nil {
		t.Fatalf("ClearApplicationSchedule: %v", err)
	}
	app, _ = db.GetApplication(ctx, "windowed")
	if app.EnabledFrom != nil || app.EnabledUntil != nil {
		t.Errorf("cleared window = %v..%v", app.EnabledFrom, app.EnabledUntil)
	}
}

func TestScheduleRejectsInvertedWindow(t *testing.T) {
	db := newTestDB(t)

	seedApp(t, db, "inverted")

	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	until := from.Add(-time.Hour)

	_, err := db.SetApplicationSchedule(context.Background(), "inverted", &from, &until)
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("inverted window = %v, want validation error", err)
	}
}

func TestToggleApplication(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedApp(t, db, "flip")

	app, err := db.ToggleApplication(ctx, "flip")
	if err != nil {
		t.Fatalf("ToggleApplication: %v", err)
	}
	if app.Enabled {
		t.Error("first toggle should disable")
	}

	app, err = db.ToggleApplication(ctx, "flip")
	if err != nil {
		t.Fatalf("ToggleApplication: %v", err)
	}
	if !app.Enabled {
		t.Error("second toggle should re-enable")
	}
}

func TestDeleteApplication(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	seedApp(t, db, "doomed")

	if err := db.DeleteApplication(ctx, "doomed"); err != nil {
		t.Fatalf("DeleteApplication: %v", err)
	}
	if _, err := db.GetApplication(ctx, "doomed"); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("get after delete = %v, want not found", err)
	}
	if err := db.DeleteApplication(ctx, "doomed"); !apperrors.IsKind(err, apperrors.KindNotFound) {
		t.Errorf("second delete = %v, want not found", err)
	}
}
