// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	e := NotFound("application abc not found")
	if e.Error() != "application abc not found" {
		t.Errorf("unexpected message: %q", e.Error())
	}

	wrapped := Wrap(KindInternal, "insert failed", errors.New("disk full"))
	if wrapped.Error() != "insert failed: disk full" {
		t.Errorf("unexpected wrapped message: %q", wrapped.Error())
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	e := Wrap(KindConflict, "duplicate id", cause)

	if !errors.Is(e, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}

func TestKindOfThroughChain(t *testing.T) {
	e := Unavailable("outside window")
	chained := fmt.Errorf("open denied: %w", e)

	if KindOf(chained) != KindUnavailable {
		t.Errorf("KindOf = %v, want KindUnavailable", KindOf(chained))
	}
	if !IsKind(chained, KindUnavailable) {
		t.Error("IsKind should see through wrapping")
	}
}

func TestKindOfUnclassified(t *testing.T) {
	if KindOf(errors.New("plain")) != KindInternal {
		t.Error("plain errors must classify as internal")
	}
	if IsKind(nil, KindInternal) {
		t.Error("nil error must not match any kind")
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{Validation("bad"), http.StatusBadRequest},
		{Unauthorized("no"), http.StatusUnauthorized},
		{Forbidden("no"), http.StatusForbidden},
		{Unavailable("closed"), http.StatusForbidden},
		{NotFound("gone"), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{RateLimited("slow down"), http.StatusTooManyRequests},
		{NotImplemented("sso"), http.StatusNotImplemented},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestCodeMapping(t *testing.T) {
	if Code(Unavailable("window closed")) != "APP_UNAVAILABLE" {
		t.Errorf("unavailable code = %q", Code(Unavailable("x")))
	}
	if Code(errors.New("boom")) != "INTERNAL_ERROR" {
		t.Errorf("internal code = %q", Code(errors.New("x")))
	}
}
