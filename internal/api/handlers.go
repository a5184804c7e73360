// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

// Package api serves the HTTP surface: the six fixed device upload
// endpoints, the dashboard read endpoints, the health check, and the
// Prometheus scrape endpoint.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/pulsegate/pulsegate/internal/aggregate"
	"github.com/pulsegate/pulsegate/internal/health"
	"github.com/pulsegate/pulsegate/internal/logging"
	"github.com/pulsegate/pulsegate/internal/models"
)

// Enqueuer is the slice of the ingestion writer the handlers need.
type Enqueuer interface {
	Enqueue(rec *models.UploadRecord) bool
}

// Handler bundles the collaborators behind the HTTP surface.
type Handler struct {
	writer     Enqueuer
	aggregator *aggregate.Aggregator
	reporter   *health.Reporter
}

// NewHandler creates the HTTP handler set.
func NewHandler(writer Enqueuer, aggregator *aggregate.Aggregator, reporter *health.Reporter) *Handler {
	return &Handler{
		writer:     writer,
		aggregator: aggregator,
		reporter:   reporter,
	}
}

// Health answers the health check. This is the one endpoint that exposes
// absolute store state; it returns 200 even with the store disabled,
// because process readiness does not depend on persistence.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(h.reporter.Status()); err != nil {
		logging.Error().Err(err).Msg("Failed to write health response")
	}
}

// Devices lists the distinct device identifiers seen across all uploads,
// each with a per-kind count and last-seen summary.
func (h *Handler) Devices(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	devices := h.aggregator.ListDevices(r.Context())
	if devices == nil {
		devices = []string{}
	}
	summaries := h.aggregator.DeviceSummaries(r.Context())
	if summaries == nil {
		summaries = []models.DeviceSummary{}
	}
	respondSuccess(w, map[string]interface{}{
		"devices":   devices,
		"summaries": summaries,
		"count":     len(devices),
	}, start)
}

// Stats serves the system-wide statistics snapshot.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, h.aggregator.SystemStats(r.Context()), start)
}

// DeviceHealth serves a device's recent health records.
func (h *Handler) DeviceHealth(w http.ResponseWriter, r *http.Request) {
	h.deviceRecords(w, r, h.aggregator.DeviceHealth)
}

// DeviceAlarms serves a device's recent alarm records.
func (h *Handler) DeviceAlarms(w http.ResponseWriter, r *http.Request) {
	h.deviceRecords(w, r, h.aggregator.DeviceAlarms)
}

// DeviceSOS serves a device's recent SOS/call-log records.
func (h *Handler) DeviceSOS(w http.ResponseWriter, r *http.Request) {
	h.deviceRecords(w, r, h.aggregator.DeviceSOS)
}

// deviceRecords is the shared shape of the three per-device history
// endpoints. A device with no matching records gets an empty list, not a
// 404 — device existence is implicit in upload history, so absence of
// records is a valid answer.
func (h *Handler) deviceRecords(w http.ResponseWriter, r *http.Request,
	query func(ctx context.Context, deviceID string) []models.UploadRecord,
) {
	start := time.Now()
	deviceID := chi.URLParam(r, "id")

	records := query(r.Context(), deviceID)
	if records == nil {
		records = []models.UploadRecord{}
	}
	respondSuccess(w, map[string]interface{}{
		"device_id": deviceID,
		"records":   records,
		"count":     len(records),
	}, start)
}

// NotFound is the router's fallback for unknown paths.
func (h *Handler) NotFound(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
}

// MethodNotAllowed is the router's fallback for known paths with wrong
// methods.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
}
