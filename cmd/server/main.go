// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

// Package main is the entry point for the Pulsegate server.
//
// Pulsegate ingests uploads from 4G wearable health monitors and serves
// aggregated dashboard data. Device firmware POSTs to six fixed /4g
// endpoints; every upload is acknowledged immediately and persisted to
// MongoDB in the background, so a slow or dead database never delays a
// device.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: environment variables and optional YAML file (Koanf v2)
//  2. Logging: global zerolog logger
//  3. Store: MongoDB connection; failure degrades to disabled, never aborts
//  4. Writer: bounded queue plus worker pool for background persistence
//  5. Aggregator and health reporter
//  6. HTTP server: Chi router with the /4g, /api, /health and /metrics routes
//
// # Configuration
//
// Key environment variables:
//   - MONGODB_URL: connection string; empty starts with recording disabled
//   - MONGODB_DATABASE: database name (default "pulsegate")
//   - SERVER_PORT: listen port (default 8000)
//   - LOG_LEVEL: trace|debug|info|warn|error (default info)
//
// # Signal Handling
//
// On SIGINT/SIGTERM the server stops accepting connections, waits for
// in-flight requests, drains the persistence queue, then disconnects from
// MongoDB.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulsegate/pulsegate/internal/aggregate"
	"github.com/pulsegate/pulsegate/internal/api"
	"github.com/pulsegate/pulsegate/internal/config"
	"github.com/pulsegate/pulsegate/internal/health"
	"github.com/pulsegate/pulsegate/internal/ingest"
	"github.com/pulsegate/pulsegate/internal/logging"
	"github.com/pulsegate/pulsegate/internal/store"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Pulsegate")
	if cfg.MongoDB.URL == "" {
		logging.Info().Msg("Configuration loaded (no MongoDB URL, recording disabled)")
	} else {
		logging.Info().
			Str("database", cfg.MongoDB.Database).
			Str("addr", cfg.Server.Addr()).
			Msg("Configuration loaded")
	}

	// Store construction never fails: an unreachable MongoDB yields a
	// disabled store and the server keeps acknowledging uploads.
	st := store.New(context.Background(), &cfg.MongoDB)

	writer := ingest.NewWriter(st, &cfg.Ingest)
	aggregator := aggregate.New(st, cfg.API.HistoryLimit)
	reporter := health.NewReporter(st, version)

	handler := api.NewHandler(writer, aggregator, reporter)
	router := api.NewRouter(handler, &cfg.API)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	// Shutdown order matters: stop producing (HTTP), drain the queue
	// (writer), then drop the connection (store).
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Ingest.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	writer.Close()

	if err := st.Close(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Error disconnecting from MongoDB")
	}

	logging.Info().Msg("Application stopped gracefully")
}
