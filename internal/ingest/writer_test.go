// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

package ingest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pulsegate/pulsegate/internal/config"
	"github.com/pulsegate/pulsegate/internal/models"
	"github.com/pulsegate/pulsegate/internal/store"
)

// fakeInserter records inserts and can fail, block, or simulate a disabled
// store.
type fakeInserter struct {
	mu       sync.Mutex
	records  []*models.UploadRecord
	err      error
	blockFor time.Duration
}

func (f *fakeInserter) Insert(_ context.Context, rec *models.UploadRecord) error {
	if f.blockFor > 0 {
		time.Sleep(f.blockFor)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, rec)
	return nil
}

func (f *fakeInserter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

func testIngestConfig() *config.IngestConfig {
	return &config.IngestConfig{
		QueueSize:       16,
		Workers:         2,
		InsertTimeout:   time.Second,
		ShutdownTimeout: 2 * time.Second,
	}
}

func TestWriterPersistsEnqueuedRecords(t *testing.T) {
	t.Parallel()

	ins := &fakeInserter{}
	w := NewWriter(ins, testIngestConfig())

	for i := 0; i < 5; i++ {
		rec := Normalize(models.KindPB, "dev-1", "", []byte{byte(i)})
		if !w.Enqueue(rec) {
			t.Fatalf("Enqueue %d returned false", i)
		}
	}
	w.Close()

	if got := ins.count(); got != 5 {
		t.Errorf("persisted %d records, want 5", got)
	}
	stats := w.Stats()
	if stats.Enqueued != 5 || stats.Persisted != 5 {
		t.Errorf("stats = %+v, want 5 enqueued and persisted", stats)
	}
	if stats.Dropped != 0 || stats.Failed != 0 {
		t.Errorf("stats = %+v, want no drops or failures", stats)
	}
}

func TestWriterDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	// One slow worker and a tiny queue force drops.
	ins := &fakeInserter{blockFor: 200 * time.Millisecond}
	cfg := testIngestConfig()
	cfg.QueueSize = 1
	cfg.Workers = 1
	w := NewWriter(ins, cfg)
	defer w.Close()

	dropped := 0
	for i := 0; i < 10; i++ {
		if !w.Enqueue(Normalize(models.KindAlarm, "dev-1", "", []byte{0x01})) {
			dropped++
		}
	}
	if dropped == 0 {
		t.Error("expected drops with a full queue, got none")
	}
	if got := w.Stats().Dropped; got != uint64(dropped) {
		t.Errorf("Stats().Dropped = %d, want %d", got, dropped)
	}
}

func TestWriterEnqueueNeverBlocks(t *testing.T) {
	t.Parallel()

	ins := &fakeInserter{blockFor: time.Second}
	cfg := testIngestConfig()
	cfg.QueueSize = 1
	cfg.Workers = 1
	w := NewWriter(ins, cfg)
	defer w.Close()

	start := time.Now()
	for i := 0; i < 50; i++ {
		w.Enqueue(Normalize(models.KindStatus, "dev-1", "", []byte(`{}`)))
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("50 Enqueue calls took %v with a blocked worker", elapsed)
	}
}

func TestWriterCountsFailures(t *testing.T) {
	t.Parallel()

	ins := &fakeInserter{err: errors.New("write concern error")}
	w := NewWriter(ins, testIngestConfig())

	w.Enqueue(Normalize(models.KindPB, "dev-1", "", []byte{0x01}))
	w.Close()

	stats := w.Stats()
	if stats.Failed != 1 {
		t.Errorf("Stats().Failed = %d, want 1", stats.Failed)
	}
	if stats.Persisted != 0 {
		t.Errorf("Stats().Persisted = %d, want 0", stats.Persisted)
	}
}

func TestWriterSkipsDisabledStore(t *testing.T) {
	t.Parallel()

	ins := &fakeInserter{err: store.ErrRecordingDisabled}
	w := NewWriter(ins, testIngestConfig())

	for i := 0; i < 3; i++ {
		w.Enqueue(Normalize(models.KindSleep, "dev-1", "", []byte(`{}`)))
	}
	w.Close()

	stats := w.Stats()
	if stats.Skipped != 3 {
		t.Errorf("Stats().Skipped = %d, want 3", stats.Skipped)
	}
	if stats.Failed != 0 {
		t.Errorf("disabled store must not count as failure, got %d", stats.Failed)
	}
}

func TestWriterEnqueueAfterClose(t *testing.T) {
	t.Parallel()

	w := NewWriter(&fakeInserter{}, testIngestConfig())
	w.Close()

	if w.Enqueue(Normalize(models.KindPB, "dev-1", "", []byte{0x01})) {
		t.Error("Enqueue after Close returned true")
	}
	if got := w.Stats().Dropped; got != 1 {
		t.Errorf("Stats().Dropped = %d, want 1", got)
	}
}

func TestWriterCloseIdempotent(t *testing.T) {
	t.Parallel()

	w := NewWriter(&fakeInserter{}, testIngestConfig())
	w.Close()
	w.Close() // must not panic
}
