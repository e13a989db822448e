// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

// Package api implements the HTTP surface: routing, session enforcement, and
// the JSON envelope every endpoint speaks.
package api

import (
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/logging"
	"github.com/Aldrich0129/automation-suite/internal/middleware"
	"github.com/Aldrich0129/automation-suite/internal/models"
	"github.com/Aldrich0129/automation-suite/internal/validation"
)

func newMetadata(r *http.Request, cached bool) models.Metadata {
	return models.Metadata{
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(r.Context()),
		Cached:    cached,
	}
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, resp models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logging.CtxErr(r.Context(), err).Msg("Failed to encode response")
	}
}

// writeSuccess writes a success envelope with the given payload.
func writeSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	writeJSON(w, r, status, models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: newMetadata(r, false),
	})
}

// writeSuccessCached marks the envelope as served from cache.
func writeSuccessCached(w http.ResponseWriter, r *http.Request, data interface{}, cached bool) {
	writeJSON(w, r, http.StatusOK, models.APIResponse{
		Status:   "success",
		Data:     data,
		Metadata: newMetadata(r, cached),
	})
}

// writeError maps any error onto the envelope using the apperrors taxonomy.
// Validation errors keep their field details; everything else carries the
// kind's stable code. Internal causes are logged, never echoed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validation.RequestValidationError
	if errors.As(err, &ve) {
		apiErr := ve.ToAPIError()
		writeJSON(w, r, http.StatusBadRequest, models.APIResponse{
			Status:   "error",
			Metadata: newMetadata(r, false),
			Error: &models.APIError{
				Code:    apiErr.Code,
				Message: apiErr.Message,
				Details: apiErr.Details,
			},
		})
		return
	}

	status := apperrors.HTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.CtxErr(r.Context(), err).Msg("Request failed")
		message = "internal server error"
	}

	writeJSON(w, r, status, models.APIResponse{
		Status:   "error",
		Metadata: newMetadata(r, false),
		Error: &models.APIError{
			Code:    apperrors.Code(err),
			Message: message,
		},
	})
}

// decodeBody parses and validates a JSON request body.
func decodeBody(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return apperrors.Validation("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperrors.Validation("invalid JSON body")
	}
	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}
