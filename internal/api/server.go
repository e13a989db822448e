// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aldrich0129/automation-suite/internal/apperrors"
	"github.com/Aldrich0129/automation-suite/internal/auth"
	"github.com/Aldrich0129/automation-suite/internal/cache"
	"github.com/Aldrich0129/automation-suite/internal/config"
	"github.com/Aldrich0129/automation-suite/internal/database"
	"github.com/Aldrich0129/automation-suite/internal/middleware"
	"github.com/Aldrich0129/automation-suite/internal/telemetry"
	"github.com/Aldrich0129/automation-suite/internal/websocket"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Server wires the service layer to the HTTP surface.
type Server struct {
	cfg       *config.Config
	db        *database.DB
	auth      *auth.Service
	telemetry *telemetry.Service
	hub       *websocket.Hub
	cache     *cache.Cache
	started   time.Time
}

// NewServer builds the HTTP layer. hub may be nil when the live feed is
// disabled (tests).
func NewServer(cfg *config.Config, db *database.DB, authSvc *auth.Service, teleSvc *telemetry.Service, hub *websocket.Hub, catalogCache *cache.Cache) *Server {
	return &Server{
		cfg:       cfg,
		db:        db,
		auth:      authSvc,
		telemetry: teleSvc,
		hub:       hub,
		cache:     catalogCache,
		started:   time.Now(),
	}
}

// Router assembles the full route tree under /api/v1 plus /metrics.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.AccessLog)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Telemetry-Token", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Liveness gets a deliberately permissive limit so monitoring
		// never trips the general budget.
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(1000, time.Minute))
			r.Get("/health", s.handleHealth)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(s.cfg.Security.LoginRateLimitReqs, s.cfg.Security.LoginRateLimitWindow))
			r.Post("/auth/login", s.handleLogin)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit(s.cfg.Security.RateLimitReqs, s.cfg.Security.RateLimitWindow))

			r.Get("/apps", s.handleCatalog)
			r.Post("/apps/{id}/open", s.handleOpen)
			r.Post("/telemetry", s.handleTelemetryIngest)

			r.Group(func(r chi.Router) {
				r.Use(RequireSession(s.auth))

				r.Post("/auth/logout", s.handleLogout)
				r.Get("/auth/me", s.handleMe)

				r.Get("/admin/apps", s.handleAdminListApps)
				r.Post("/admin/apps", s.handleAdminCreateApp)
				r.Patch("/admin/apps/{id}", s.handleAdminUpdateApp)
				r.Delete("/admin/apps/{id}", s.handleAdminDeleteApp)
				r.Post("/admin/apps/{id}/password", s.handleAdminSetPassword)
				r.Delete("/admin/apps/{id}/password", s.handleAdminRemovePassword)
				r.Post("/admin/apps/{id}/toggle", s.handleAdminToggleApp)

				r.Get("/admin/schedules/{id}", s.handleAdminGetSchedule)
				r.Post("/admin/schedules/{id}", s.handleAdminSetSchedule)
				r.Delete("/admin/schedules/{id}", s.handleAdminClearSchedule)

				r.Get("/admin/stats/summary", s.handleStatsSummary)
				r.Get("/admin/stats/app/{id}", s.handleStatsApp)

				r.Get("/admin/events/ws", s.handleEventsWS)
			})
		})
	})

	return r
}

// rateLimit builds a per-IP fixed-window limiter. Disabled globally via
// config for load tests.
func (s *Server) rateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	if s.cfg.Security.RateLimitDisabled || requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, r, apperrors.RateLimited("rate limit exceeded"))
		}),
	)
}
