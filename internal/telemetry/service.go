// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

// Package telemetry ingests usage events from the catalog's tools. Ingest is
// fire-and-forget from the client's perspective: events are validated,
// rate-limited per source, persisted behind a circuit breaker, and fanned out
// to live admin subscribers.
package telemetry

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/logging"
	"github.com/Aldrich0129/automation-suite/internal/models"
)

var (
	eventsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_events_ingested_total",
		Help: "Telemetry events accepted and persisted, by event type.",
	}, []string{"event_type"})

	eventsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "telemetry_events_rejected_total",
		Help: "Telemetry events rejected before persistence, by reason.",
	}, []string{"reason"})

	breakerState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "telemetry_store_breaker_state",
		Help: "Telemetry persistence breaker state (0 closed, 1 half-open, 2 open).",
	})
)

// Store persists accepted events.
type Store interface {
	InsertTelemetryEvent(ctx context.Context, event *models.TelemetryEvent) error
}

// Broadcaster fans accepted events out to live subscribers. Implementations
// must not block.
type Broadcaster interface {
	BroadcastEvent(event *models.TelemetryEvent)
}

// Config tunes the ingest pipeline.
type Config struct {
	// Token gates ingest when non-empty. Compared constant-time against the
	// X-Telemetry-Token header value.
	Token string

	// RatePerMin and Burst bound per-source ingest. Sources are client IPs.
	RatePerMin        int
	Burst             int
	RateLimitDisabled bool
}

// Service is the ingest pipeline. Safe for concurrent use.
type Service struct {
	store       Store
	broadcaster Broadcaster
	cfg         Config
	breaker     *gobreaker.CircuitBreaker[any]

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewService builds the pipeline. broadcaster may be nil when no live feed is
// attached.
func NewService(store Store, broadcaster Broadcaster, cfg Config) *Service {
	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "telemetry-store",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerState.Set(breakerStateValue(to))
			logging.Warn().
				Str("component", "telemetry").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Persistence breaker state change")
		},
	})

	return &Service{
		store:       store,
		broadcaster: broadcaster,
		cfg:         cfg,
		breaker:     breaker,
		limiters:    make(map[string]*rate.Limiter),
	}
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	}
	return -1
}

// Authorize checks the shared ingest token. A service configured without a
// token accepts every caller.
func (s *Service) Authorize(provided string) error {
	if s.cfg.Token == "" {
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(s.cfg.Token)) != 1 {
		eventsRejected.WithLabelValues("bad_token").Inc()
		return apperrors.Unauthorized("invalid telemetry token")
	}
	return nil
}

// Ingest validates, rate-limits, and persists one client-submitted event.
// source identifies the submitter for rate limiting, typically the client IP.
// OccurredAt is assigned here; client timestamps are not trusted.
func (s *Service) Ingest(ctx context.Context, source string, req *models.TelemetryIngestRequest) (*models.TelemetryEvent, error) {
	if !models.ValidEventType(req.EventType) {
		eventsRejected.WithLabelValues("bad_event_type").Inc()
		return nil, apperrors.Validation(fmt.Sprintf("unknown event type %q", req.EventType))
	}

	if !s.allow(source) {
		eventsRejected.WithLabelValues("rate_limited").Inc()
		return nil, apperrors.RateLimited("telemetry rate limit exceeded")
	}

	return s.record(ctx, &models.TelemetryEvent{
		ID:         uuid.NewString(),
		AppID:      req.AppID,
		EventType:  req.EventType,
		UserID:     req.UserID,
		Meta:       req.Meta,
		OccurredAt: time.Now().UTC(),
	})
}

// RecordOpen appends a server-originated open event. Server events bypass the
// per-source limiter; they are already bounded by the HTTP layer.
func (s *Service) RecordOpen(ctx context.Context, appID string) {
	_, err := s.record(ctx, &models.TelemetryEvent{
		ID:         uuid.NewString(),
		AppID:      appID,
		EventType:  models.EventTypeOpen,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		// Opens must succeed even when the event log is down.
		logging.CtxErr(ctx, err).
			Str("component", "telemetry").
			Str("app_id", appID).
			Msg("Failed to record open event")
	}
}

func (s *Service) record(ctx context.Context, event *models.TelemetryEvent) (*models.TelemetryEvent, error) {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.store.InsertTelemetryEvent(ctx, event)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			eventsRejected.WithLabelValues("breaker_open").Inc()
			return nil, apperrors.Wrap(apperrors.KindInternal, "event store temporarily unavailable", err)
		}
		if apperrors.KindOf(err) == apperrors.KindValidation {
			eventsRejected.WithLabelValues("bad_meta").Inc()
			return nil, err
		}
		eventsRejected.WithLabelValues("store_error").Inc()
		return nil, apperrors.Wrap(apperrors.KindInternal, "failed to persist event", err)
	}

	eventsIngested.WithLabelValues(event.EventType).Inc()
	if s.broadcaster != nil {
		s.broadcaster.BroadcastEvent(event)
	}
	return event, nil
}

// allow consults the per-source limiter without blocking.
func (s *Service) allow(source string) bool {
	if s.cfg.RateLimitDisabled || s.cfg.RatePerMin <= 0 {
		return true
	}

	s.mu.Lock()
	limiter, ok := s.limiters[source]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(s.cfg.RatePerMin)), s.cfg.Burst)
		s.limiters[source] = limiter
	}
	s.mu.Unlock()

	return limiter.Allow()
}
