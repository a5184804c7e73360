// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

package models

import "time"

// DeviceSummary aggregates a device's upload history for the dashboard
// device listing. Derived on read; never stored.
type DeviceSummary struct {
	DeviceID  string         `json:"device_id"`
	LastSeen  *time.Time     `json:"last_seen,omitempty"`
	ByKind    map[Kind]int64 `json:"by_kind,omitempty"`
	Total     int64          `json:"total"`
}

// SystemStats is the system-wide statistics snapshot served by the stats
// endpoint. Derived on read; zero values when the store is unreachable.
type SystemStats struct {
	CountsByKind    map[Kind]int64 `json:"counts_by_kind"`
	TotalRecords    int64          `json:"total_records"`
	DistinctDevices int64          `json:"distinct_devices"`
	LastUploadAt    *time.Time     `json:"last_upload_at,omitempty"`
	StoreReachable  bool           `json:"store_reachable"`
}

// HealthStatus is the health-check endpoint body. The health check is the
// only place absolute store state is exposed; every other read path degrades
// to empty results instead.
type HealthStatus struct {
	Status         string  `json:"status"`
	StoreReachable bool    `json:"store_reachable"`
	StoreState     string  `json:"store_state"`
	UptimeSeconds  float64 `json:"uptime_seconds"`
	Version        string  `json:"version"`
}
