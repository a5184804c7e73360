// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

// Package metrics defines the Prometheus instrumentation for Pulsegate:
// upload ingestion throughput, background writer queue health, store
// operation latency, and API endpoint latency.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics
	UploadsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsegate_uploads_received_total",
			Help: "Total device uploads received, by payload kind",
		},
		[]string{"kind"},
	)

	UploadBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulsegate_upload_bytes",
			Help:    "Size of device upload bodies in bytes",
			Buckets: []float64{0, 64, 256, 1024, 4096, 16384, 65536, 262144},
		},
		[]string{"kind"},
	)

	UploadsUnparsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsegate_uploads_unparsed_total",
			Help: "Structured uploads whose JSON body failed to parse (stored raw)",
		},
		[]string{"kind"},
	)

	// Writer queue metrics
	IngestQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulsegate_ingest_queue_depth",
			Help: "Current number of records waiting in the persistence queue",
		},
	)

	IngestDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulsegate_ingest_dropped_total",
			Help: "Records dropped because the persistence queue was full",
		},
	)

	IngestPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulsegate_ingest_persisted_total",
			Help: "Records successfully persisted by the background writer",
		},
	)

	IngestFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulsegate_ingest_failed_total",
			Help: "Persist attempts that failed (logged and dropped, never retried)",
		},
	)

	// Store metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulsegate_store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsegate_store_operation_errors_total",
			Help: "Total document store operation errors",
		},
		[]string{"operation"},
	)

	StoreReachable = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulsegate_store_reachable",
			Help: "1 when the document store is reachable, 0 otherwise",
		},
	)

	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsegate_api_requests_total",
			Help: "Total API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulsegate_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulsegate_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)
)

// RecordUpload records an accepted device upload.
func RecordUpload(kind string, sizeBytes int) {
	UploadsReceived.WithLabelValues(kind).Inc()
	UploadBytes.WithLabelValues(kind).Observe(float64(sizeBytes))
}

// RecordStoreOperation records a store operation's duration and outcome.
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation).Inc()
	}
}

// SetStoreReachable updates the store reachability gauge.
func SetStoreReachable(reachable bool) {
	if reachable {
		StoreReachable.Set(1)
	} else {
		StoreReachable.Set(0)
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
