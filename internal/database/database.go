// Automation Suite - Internal Tool Catalog and Usage Telemetry
// Copyright 2026 Aldrich (Aldrich0129)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Aldrich0129/automation-suite

// Package database provides DuckDB-backed persistence for the application
// registry, admin accounts, and the telemetry event log.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/Aldrich0129/automation-suite/internal/config"
	"github.com/Aldrich0129/automation-suite/internal/logging"
)

const (
	// DuckDB is embedded and single-process; a small pool is plenty.
	maxOpenConns    = 4
	maxIdleConns    = 2
	connMaxLifetime = time.Hour

	schemaTimeout = 60 * time.Second
)

// DB wraps the DuckDB connection pool and exposes the typed store methods
// the service layer uses. All methods are safe for concurrent use.
type DB struct {
	conn *sql.DB
	path string
}

// New opens (or creates) the DuckDB database at cfg.Path and initializes the
// schema. An empty path or ":memory:" opens an in-memory database, which is
// what the tests use.
func New(cfg *config.DatabaseConfig) (*DB, error) {
	connStr, err := buildConnString(cfg)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(maxOpenConns)
	conn.SetMaxIdleConns(maxIdleConns)
	conn.SetConnMaxLifetime(connMaxLifetime)

	db := &DB{conn: conn, path: cfg.Path}

	ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if err := db.createTables(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("component", "database").
		Str("path", displayPath(cfg.Path)).
		Msg("Database ready")

	return db, nil
}

// buildConnString assembles the DuckDB DSN. Known-extension autoloading is
// disabled so the server never reaches out to the network at open time.
func buildConnString(cfg *config.DatabaseConfig) (string, error) {
	if inMemory(cfg.Path) {
		return ":memory:?autoinstall_known_extensions=false&autoload_known_extensions=false", nil
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}

	params := url.Values{}
	params.Set("access_mode", "read_write")
	params.Set("autoinstall_known_extensions", "false")
	params.Set("autoload_known_extensions", "false")
	if cfg.Threads > 0 {
		params.Set("threads", fmt.Sprintf("%d", cfg.Threads))
	}
	if cfg.MaxMemory != "" {
		params.Set("max_memory", cfg.MaxMemory)
	}

	return cfg.Path + "?" + params.Encode(), nil
}

func inMemory(path string) bool {
	return path == "" || path == ":memory:"
}

func displayPath(path string) string {
	if inMemory(path) {
		return ":memory:"
	}
	return path
}

// Ping verifies database connectivity. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Conn exposes the underlying pool for callers that need raw access.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Close releases the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// withTx runs fn inside a transaction, rolling back on error.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logging.Warn().
				Str("component", "database").
				Err(rbErr).
				Msg("Transaction rollback failed")
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
