// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

// Package aggregate composes store queries into dashboard-shaped responses.
// It is strictly read-only and never fails on absence of data: every method
// propagates the store's empty-on-disabled behavior, so a dashboard against
// a dead database sees empty lists and zero counts, not errors.
package aggregate

import (
	"context"
	"sort"

	"github.com/pulsegate/pulsegate/internal/models"
)

// UploadStore is the read slice of the store the aggregator consumes.
type UploadStore interface {
	FindByDevice(ctx context.Context, deviceID string, kinds []models.Kind, limit int) []models.UploadRecord
	CountByKind(ctx context.Context) map[models.Kind]int64
	DistinctDevices(ctx context.Context) []string
	SummarizeDevices(ctx context.Context) []models.DeviceSummary
	LatestUpload(ctx context.Context) *models.UploadRecord
	Reachable() bool
}

// Aggregator answers the dashboard read endpoints.
type Aggregator struct {
	store UploadStore

	// historyLimit is N, the fixed number of most-recent records returned
	// by the per-device endpoints.
	historyLimit int
}

// New returns an aggregator reading through store, returning at most
// historyLimit records per device query.
func New(store UploadStore, historyLimit int) *Aggregator {
	return &Aggregator{store: store, historyLimit: historyLimit}
}

// ListDevices returns the distinct device identifiers seen across all
// persisted uploads, sorted lexicographically. There is no device registry:
// device existence is implicit in upload history, and an empty device_id
// (unidentified devices) lists like any other.
func (a *Aggregator) ListDevices(ctx context.Context) []string {
	devices := a.store.DistinctDevices(ctx)
	sort.Strings(devices)
	return devices
}

// DeviceSummaries returns one summary per known device (per-kind counts and
// last-seen timestamp), sorted by device id.
func (a *Aggregator) DeviceSummaries(ctx context.Context) []models.DeviceSummary {
	summaries := a.store.SummarizeDevices(ctx)
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].DeviceID < summaries[j].DeviceID
	})
	return summaries
}

// DeviceHealth returns the most recent health records for one device:
// raw health blobs plus the structured device-info, status, and sleep
// reports.
func (a *Aggregator) DeviceHealth(ctx context.Context, deviceID string) []models.UploadRecord {
	return a.store.FindByDevice(ctx, deviceID, models.HealthKinds(), a.historyLimit)
}

// DeviceAlarms returns the most recent alarm records for one device.
func (a *Aggregator) DeviceAlarms(ctx context.Context, deviceID string) []models.UploadRecord {
	return a.store.FindByDevice(ctx, deviceID, []models.Kind{models.KindAlarm}, a.historyLimit)
}

// DeviceSOS returns the most recent call-log/SOS records for one device.
func (a *Aggregator) DeviceSOS(ctx context.Context, deviceID string) []models.UploadRecord {
	return a.store.FindByDevice(ctx, deviceID, []models.Kind{models.KindCallLog}, a.historyLimit)
}

// SystemStats returns the system-wide statistics snapshot. Counts are
// zero-filled for every kind so the dashboard always sees a complete map,
// including with zero persisted records or an unreachable store.
func (a *Aggregator) SystemStats(ctx context.Context) *models.SystemStats {
	stats := &models.SystemStats{
		CountsByKind:   make(map[models.Kind]int64, len(models.AllKinds())),
		StoreReachable: a.store.Reachable(),
	}
	for _, kind := range models.AllKinds() {
		stats.CountsByKind[kind] = 0
	}

	for kind, count := range a.store.CountByKind(ctx) {
		stats.CountsByKind[kind] = count
		stats.TotalRecords += count
	}
	stats.DistinctDevices = int64(len(a.store.DistinctDevices(ctx)))

	if latest := a.store.LatestUpload(ctx); latest != nil {
		t := latest.ReceivedAt
		stats.LastUploadAt = &t
	}
	return stats
}
