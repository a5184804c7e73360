// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

// Package health answers the liveness endpoint. Readiness is about the
// process, not the store: a process with an unreachable store is still
// ready — it serves every endpoint with degraded results.
package health

import (
	"time"

	"github.com/pulsegate/pulsegate/internal/models"
	"github.com/pulsegate/pulsegate/internal/store"
)

// Reporter snapshots process liveness and store state for the health check.
type Reporter struct {
	store     *store.Store
	startedAt time.Time
	version   string
}

// NewReporter returns a reporter over the given store. startedAt marks
// completed startup.
func NewReporter(s *store.Store, version string) *Reporter {
	return &Reporter{
		store:     s,
		startedAt: time.Now(),
		version:   version,
	}
}

// Ready reports whether the process completed startup. Construction of the
// reporter is the last startup step, so this is always true once reachable
// over HTTP.
func (r *Reporter) Ready() bool {
	return true
}

// StoreReachable reflects the store's current state machine position.
func (r *Reporter) StoreReachable() bool {
	return r.store.Reachable()
}

// Uptime is the elapsed time since startup completed.
func (r *Reporter) Uptime() time.Duration {
	return time.Since(r.startedAt)
}

// Status builds the health-check response body.
func (r *Reporter) Status() *models.HealthStatus {
	return &models.HealthStatus{
		Status:         "ok",
		StoreReachable: r.store.Reachable(),
		StoreState:     r.store.State().String(),
		UptimeSeconds:  r.Uptime().Seconds(),
		Version:        r.version,
	}
}
