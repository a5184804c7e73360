// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

package ingest

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pulsegate/pulsegate/internal/config"
	"github.com/pulsegate/pulsegate/internal/logging"
	"github.com/pulsegate/pulsegate/internal/metrics"
	"github.com/pulsegate/pulsegate/internal/models"
	"github.com/pulsegate/pulsegate/internal/store"
)

// Inserter is the slice of the store the writer needs.
type Inserter interface {
	Insert(ctx context.Context, rec *models.UploadRecord) error
}

// WriterStats is a point-in-time snapshot of writer counters.
type WriterStats struct {
	Enqueued  uint64 `json:"enqueued"`
	Dropped   uint64 `json:"dropped"`
	Persisted uint64 `json:"persisted"`
	Failed    uint64 `json:"failed"`
	Skipped   uint64 `json:"skipped"`
	QueueLen  int    `json:"queue_len"`
}

// Writer persists records through a bounded queue and a fixed worker pool.
//
// Enqueue never blocks: when the queue is full the record is dropped and
// counted. A persist failure is logged and dropped too — at-most-once is
// the contract end to end. Workers run until Close drains the queue or the
// drain timeout expires.
type Writer struct {
	inserter      Inserter
	queue         chan *models.UploadRecord
	insertTimeout time.Duration
	drainTimeout  time.Duration

	enqueued  atomic.Uint64
	dropped   atomic.Uint64
	persisted atomic.Uint64
	failed    atomic.Uint64
	skipped   atomic.Uint64

	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    atomic.Bool
}

// NewWriter starts cfg.Workers persistence workers over a queue of
// cfg.QueueSize records.
func NewWriter(inserter Inserter, cfg *config.IngestConfig) *Writer {
	w := &Writer{
		inserter:      inserter,
		queue:         make(chan *models.UploadRecord, cfg.QueueSize),
		insertTimeout: cfg.InsertTimeout,
		drainTimeout:  cfg.ShutdownTimeout,
	}

	w.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go w.worker()
	}

	logging.Info().
		Int("workers", cfg.Workers).
		Int("queue_size", cfg.QueueSize).
		Msg("Ingestion writer started")
	return w
}

// Enqueue hands a record to the background workers. It returns immediately:
// true when the record was queued, false when it was dropped (queue full or
// writer closed). The caller acks the device either way.
func (w *Writer) Enqueue(rec *models.UploadRecord) bool {
	if w.closed.Load() {
		w.dropped.Add(1)
		metrics.IngestDropped.Inc()
		return false
	}

	select {
	case w.queue <- rec:
		w.enqueued.Add(1)
		metrics.IngestQueueDepth.Set(float64(len(w.queue)))
		return true
	default:
		w.dropped.Add(1)
		metrics.IngestDropped.Inc()
		logging.Warn().
			Str("record_id", rec.RecordID).
			Str("kind", string(rec.Kind)).
			Msg("Persistence queue full, record dropped")
		return false
	}
}

func (w *Writer) worker() {
	defer w.wg.Done()
	for rec := range w.queue {
		w.persist(rec)
		metrics.IngestQueueDepth.Set(float64(len(w.queue)))
	}
}

func (w *Writer) persist(rec *models.UploadRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), w.insertTimeout)
	defer cancel()

	err := w.inserter.Insert(ctx, rec)
	switch {
	case err == nil:
		w.persisted.Add(1)
		metrics.IngestPersisted.Inc()
	case errors.Is(err, store.ErrRecordingDisabled):
		// Expected steady state when the store never came up; keep quiet.
		w.skipped.Add(1)
	default:
		w.failed.Add(1)
		metrics.IngestFailed.Inc()
		logging.Err(err).
			Str("record_id", rec.RecordID).
			Str("device", rec.DeviceID).
			Str("kind", string(rec.Kind)).
			Msg("Failed to persist upload, record dropped")
	}
}

// Stats returns the current counter values.
func (w *Writer) Stats() WriterStats {
	return WriterStats{
		Enqueued:  w.enqueued.Load(),
		Dropped:   w.dropped.Load(),
		Persisted: w.persisted.Load(),
		Failed:    w.failed.Load(),
		Skipped:   w.skipped.Load(),
		QueueLen:  len(w.queue),
	}
}

// Close stops accepting records and waits for the workers to drain the
// queue, up to the configured drain timeout. Records still queued when the
// timeout fires are abandoned (counted as enqueued, never persisted).
//
// The HTTP server must be stopped before Close: Enqueue must not race the
// queue close.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		w.closed.Store(true)
		close(w.queue)

		done := make(chan struct{})
		go func() {
			w.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			logging.Info().
				Uint64("persisted", w.persisted.Load()).
				Uint64("dropped", w.dropped.Load()).
				Msg("Ingestion writer drained")
		case <-time.After(w.drainTimeout):
			logging.Warn().
				Int("remaining", len(w.queue)).
				Msg("Ingestion writer drain timed out")
		}
	})
}
