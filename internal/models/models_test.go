// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package models

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestJoinSplitTags(t *testing.T) {
	tests := []struct {
		name   string
		tags   []string
		joined string
		back   []string
	}{
		{"empty", nil, "", []string{}},
		{"single", []string{"report"}, "report", []string{"report"}},
		{"multiple", []string{"report", "pdf", "internal"}, "report,pdf,internal", []string{"report", "pdf", "internal"}},
		{"whitespace dropped", []string{" report ", "", "  "}, "report", []string{"report"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			joined := JoinTags(tt.tags)
			if joined != tt.joined {
				t.Errorf("JoinTags = %q, want %q", joined, tt.joined)
			}
			if got := SplitTags(joined); !reflect.DeepEqual(got, tt.back) {
				t.Errorf("SplitTags(%q) = %v, want %v", joined, got, tt.back)
			}
		})
	}
}

func TestSplitTagsNeverNil(t *testing.T) {
	got := SplitTags("")
	if got == nil {
		t.Fatal("SplitTags must return a non-nil slice for JSON rendering")
	}
	b, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[]" {
		t.Errorf("empty tags marshal = %s, want []", b)
	}
}

func TestApplicationJSONHidesHash(t *testing.T) {
	app := Application{
		ID:           "report-gen",
		Name:         "Report Generator",
		Path:         "/tools/report-gen",
		Tags:         []string{"pdf"},
		AccessMode:   AccessModePassword,
		PasswordHash: "$2a$12$secret",
		CreatedAt:    time.Now().UTC(),
	}

	b, err := json.Marshal(app)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "secret") || strings.Contains(string(b), "password_hash") {
		t.Errorf("serialized application leaks hash: %s", b)
	}
}

func TestToCatalogEntryOmitsSchedule(t *testing.T) {
	from := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	app := Application{
		ID:           "wiki",
		Name:         "Wiki",
		Path:         "/tools/wiki",
		Tags:         []string{"docs"},
		AccessMode:   AccessModePublic,
		EnabledFrom:  &from,
		PasswordHash: "hash",
	}

	entry := app.ToCatalogEntry()
	b, err := json.Marshal(entry)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, forbidden := range []string{"enabled_from", "enabled", "hash"} {
		if strings.Contains(string(b), forbidden) {
			t.Errorf("catalog entry leaks %q: %s", forbidden, b)
		}
	}
}

func TestValidAccessMode(t *testing.T) {
	for _, mode := range []string{AccessModePublic, AccessModePassword, AccessModeSSO} {
		if !ValidAccessMode(mode) {
			t.Errorf("ValidAccessMode(%q) = false", mode)
		}
	}
	for _, mode := range []string{"", "open", "PUBLIC"} {
		if ValidAccessMode(mode) {
			t.Errorf("ValidAccessMode(%q) = true", mode)
		}
	}
}

func TestValidEventType(t *testing.T) {
	for _, et := range []string{EventTypeOpen, EventTypeGenerateDocument, EventTypeError, EventTypeCustom} {
		if !ValidEventType(et) {
			t.Errorf("ValidEventType(%q) = false", et)
		}
	}
	for _, et := range []string{"", "click", "OPEN"} {
		if ValidEventType(et) {
			t.Errorf("ValidEventType(%q) = true", et)
		}
	}
}
