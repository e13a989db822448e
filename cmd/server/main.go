// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

// Package main is the entry point for the Automation Suite server.
//
// Automation Suite is a self-hosted catalog for a team's internal tools. It
// serves the public tool catalog, enforces per-app access rules (enable
// toggles, schedules, passwords), records usage telemetry into DuckDB, and
// exposes an authenticated admin API with a live event feed over websocket.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 sources (defaults, YAML file, env vars)
//  2. Logging: zerolog, configured from the loaded settings
//  3. Database: DuckDB with the catalog, admin, and telemetry schema
//  4. Authentication: JWT sessions with a Badger-backed revocation store
//  5. Telemetry: ingest service with per-source rate limits and a breaker
//  6. Websocket hub: live telemetry feed for admin dashboards
//  7. Supervisor tree: suture manages the HTTP listener and the hub
//
// # Configuration
//
// All settings have environment variable equivalents with the AUTOSUITE_
// prefix, e.g. AUTOSUITE_SERVER_PORT=8601 or AUTOSUITE_SECURITY_JWT_SECRET.
// An optional config.yaml is read from the working directory.
//
// # Signal Handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the listener stops accepting
// connections, in-flight requests get the configured timeout to finish, then
// the hub, revocation store, and database are closed.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Aldrich0129/automation-suite/internal/api"
	"github.com/Aldrich0129/automation-suite/internal/auth"
	"github.com/Aldrich0129/automation-suite/internal/cache"
	"github.com/Aldrich0129/automation-suite/internal/config"
	"github.com/Aldrich0129/automation-suite/internal/database"
	"github.com/Aldrich0129/automation-suite/internal/logging"
	"github.com/Aldrich0129/automation-suite/internal/supervisor"
	"github.com/Aldrich0129/automation-suite/internal/supervisor/services"
	"github.com/Aldrich0129/automation-suite/internal/telemetry"
	ws "github.com/Aldrich0129/automation-suite/internal/websocket"
)

// revocationCleanupInterval controls how often expired revoked session IDs
// are purged from the store.
const revocationCleanupInterval = time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet, so this uses the default logger.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Msg("Starting Automation Suite")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}

	revocationStore, err := auth.NewRevocationStore(cfg.Security.RevocationStorePath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session revocation store")
	}
	defer func() {
		if err := revocationStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing revocation store")
		}
	}()
	stopCleanup := auth.StartRevocationCleanup(revocationStore, revocationCleanupInterval)
	defer close(stopCleanup)

	authSvc := auth.NewService(db, jwtManager, revocationStore)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := auth.EnsureDefaultAdmin(ctx, db, cfg.Security.AdminUsername, cfg.Security.AdminPassword); err != nil {
		logging.Fatal().Err(err).Msg("Failed to seed admin account")
	}

	hub := ws.NewHub()

	teleSvc := telemetry.NewService(db, hub, telemetry.Config{
		Token:             cfg.Telemetry.Token,
		RatePerMin:        cfg.Telemetry.RatePerMin,
		Burst:             cfg.Telemetry.Burst,
		RateLimitDisabled: cfg.Telemetry.RateLimitDisabled,
	})

	catalogCache := cache.New(cfg.Cache.CatalogTTL, cfg.Cache.CleanupInterval)
	defer catalogCache.Stop()

	server := api.NewServer(cfg, db, authSvc, teleSvc, hub, catalogCache)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  2 * cfg.Server.Timeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.Timeout
	tree := supervisor.NewTree(logging.NewSlogLogger(), treeCfg)
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.Timeout))
	tree.AddMessagingService(services.NewHubService(hub))

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Server listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree terminated")
		os.Exit(1)
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service ignored shutdown")
		}
	}

	logging.Info().Msg("Shutdown complete")
}
