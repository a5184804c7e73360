// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

// Package store is the persistence boundary over the MongoDB uploads
// collection. It is the exclusive owner of persisted upload records:
// the ingestion writer appends through it and the aggregator reads
// through it, nothing else touches the collection.
//
// The store degrades gracefully. Connection state follows a one-way
// machine:
//
//	UNINITIALIZED -> CONNECTING -> READY
//	                           \-> DISABLED (terminal)
//
// A store that fails its first connection attempt enters DISABLED for the
// process lifetime: writes become logged no-ops and reads return empty
// results. There is no reconnection loop — restart the process to retry.
// This keeps device-facing endpoints serving even with no reachable
// database.
package store

import (
	"context"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pulsegate/pulsegate/internal/config"
	"github.com/pulsegate/pulsegate/internal/logging"
	"github.com/pulsegate/pulsegate/internal/metrics"
)

// uploadsCollection is the single collection holding all canonical records,
// one document per accepted upload, tagged by kind.
const uploadsCollection = "uploads"

// State is the store's position in its connection state machine.
type State int32

const (
	StateUninitialized State = iota
	StateConnecting
	StateReady
	StateDisabled
)

// String returns the lowercase state name used in logs and the health check.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// Store provides append and query operations over the uploads collection.
// All methods are safe for concurrent use; concurrency safety of the
// underlying connection pool is the driver's responsibility, and no
// multi-document transactions are used.
type Store struct {
	client  *mongo.Client
	uploads *mongo.Collection
	state   atomic.Int32
}

// New connects to MongoDB and returns a ready store. Connection failure is
// not fatal: the returned store is in DISABLED state and every operation
// no-ops, so the caller can keep serving HTTP traffic. An empty URL skips
// the connection attempt entirely (recording deliberately disabled).
func New(ctx context.Context, cfg *config.MongoDBConfig) *Store {
	s := &Store{}
	s.state.Store(int32(StateUninitialized))

	if cfg.URL == "" {
		logging.Warn().Msg("No MongoDB URL configured, recording disabled")
		s.disable()
		return s
	}

	s.state.Store(int32(StateConnecting))

	client, err := mongo.Connect(options.Client().
		ApplyURI(cfg.URL).
		SetConnectTimeout(cfg.ConnectTimeout))
	if err != nil {
		logging.Warn().Err(err).Msg("MongoDB client construction failed, recording disabled")
		s.disable()
		return s
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		logging.Warn().Err(err).Str("database", cfg.Database).Msg("MongoDB unreachable, recording disabled")
		// Best-effort teardown of the half-open client.
		_ = client.Disconnect(context.Background())
		s.disable()
		return s
	}

	s.client = client
	s.uploads = client.Database(cfg.Database).Collection(uploadsCollection)

	if err := s.ensureIndexes(ctx); err != nil {
		// Queries still work without indexes, just slower. Not a reason
		// to refuse recording.
		logging.Warn().Err(err).Msg("Failed to create upload indexes")
	}

	s.state.Store(int32(StateReady))
	metrics.SetStoreReachable(true)
	logging.Info().Str("database", cfg.Database).Msg("Connected to MongoDB")
	return s
}

// ensureIndexes bootstraps the query indexes used by the read side.
func (s *Store) ensureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "device_id", Value: 1},
			{Key: "kind", Value: 1},
			{Key: "received_at", Value: -1},
		}},
		{Keys: bson.D{
			{Key: "received_at", Value: -1},
		}},
	}
	_, err := s.uploads.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *Store) disable() {
	s.state.Store(int32(StateDisabled))
	metrics.SetStoreReachable(false)
}

// State returns the current state machine position.
func (s *Store) State() State {
	return State(s.state.Load())
}

// Reachable reports whether the store accepts reads and writes.
func (s *Store) Reachable() bool {
	return s.State() == StateReady
}

// Ping verifies connectivity. Returns ErrRecordingDisabled when the store
// never came up.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Reachable() {
		return ErrRecordingDisabled
	}
	return s.client.Ping(ctx, nil)
}

// Close disconnects from MongoDB. Safe to call on a disabled store.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// observe records operation metrics the same way for every store call.
func observe(operation string, start time.Time, err error) {
	metrics.RecordStoreOperation(operation, time.Since(start), err)
}
