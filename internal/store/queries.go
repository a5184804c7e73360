// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/pulsegate/pulsegate/internal/logging"
	"github.com/pulsegate/pulsegate/internal/models"
)

// Insert appends one upload record. On a disabled store it returns
// ErrRecordingDisabled without touching the network. Connectivity failures
// are returned to the caller (the background writer), which logs and drops
// the record — there is no retry path anywhere.
func (s *Store) Insert(ctx context.Context, rec *models.UploadRecord) error {
	if !s.Reachable() {
		return ErrRecordingDisabled
	}

	start := time.Now()
	_, err := s.uploads.InsertOne(ctx, rec)
	observe("insert", start, err)
	if err != nil {
		return fmt.Errorf("insert upload %s: %w", rec.RecordID, err)
	}
	return nil
}

// FindByDevice returns records for one device matching any of the given
// kinds, most recent first, bounded by limit. A disabled store or a query
// failure yields an empty result set, never an error: read paths degrade
// to "no data" by design.
func (s *Store) FindByDevice(ctx context.Context, deviceID string, kinds []models.Kind, limit int) []models.UploadRecord {
	if !s.Reachable() || limit <= 0 || len(kinds) == 0 {
		return nil
	}

	filter := bson.D{
		{Key: "device_id", Value: deviceID},
		{Key: "kind", Value: bson.D{{Key: "$in", Value: kinds}}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "received_at", Value: -1}}).
		SetLimit(int64(limit))

	start := time.Now()
	cur, err := s.uploads.Find(ctx, filter, opts)
	if err != nil {
		observe("find_by_device", start, err)
		logging.Err(err).Str("device", deviceID).Msg("Upload query failed")
		return nil
	}

	var records []models.UploadRecord
	err = cur.All(ctx, &records)
	observe("find_by_device", start, err)
	if err != nil {
		logging.Err(err).Str("device", deviceID).Msg("Upload cursor decode failed")
		return nil
	}
	return records
}

// CountByKind returns the number of persisted records per kind. Kinds with
// no records are absent from the map; a disabled store yields an empty map.
func (s *Store) CountByKind(ctx context.Context) map[models.Kind]int64 {
	if !s.Reachable() {
		return nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$kind"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	start := time.Now()
	cur, err := s.uploads.Aggregate(ctx, pipeline)
	if err != nil {
		observe("count_by_kind", start, err)
		logging.Err(err).Msg("Count aggregation failed")
		return nil
	}

	var rows []struct {
		Kind  models.Kind `bson:"_id"`
		Count int64       `bson:"count"`
	}
	err = cur.All(ctx, &rows)
	observe("count_by_kind", start, err)
	if err != nil {
		logging.Err(err).Msg("Count cursor decode failed")
		return nil
	}

	counts := make(map[models.Kind]int64, len(rows))
	for _, row := range rows {
		counts[row.Kind] = row.Count
	}
	return counts
}

// SummarizeDevices returns one summary per distinct device: per-kind record
// counts and the most recent received_at. Built from a single group
// aggregation over (device_id, kind).
func (s *Store) SummarizeDevices(ctx context.Context) []models.DeviceSummary {
	if !s.Reachable() {
		return nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{
				{Key: "device", Value: "$device_id"},
				{Key: "kind", Value: "$kind"},
			}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "last", Value: bson.D{{Key: "$max", Value: "$received_at"}}},
		}}},
	}

	start := time.Now()
	cur, err := s.uploads.Aggregate(ctx, pipeline)
	if err != nil {
		observe("summarize_devices", start, err)
		logging.Err(err).Msg("Device summary aggregation failed")
		return nil
	}

	var rows []struct {
		ID struct {
			Device string      `bson:"device"`
			Kind   models.Kind `bson:"kind"`
		} `bson:"_id"`
		Count int64     `bson:"count"`
		Last  time.Time `bson:"last"`
	}
	err = cur.All(ctx, &rows)
	observe("summarize_devices", start, err)
	if err != nil {
		logging.Err(err).Msg("Device summary cursor decode failed")
		return nil
	}

	byDevice := make(map[string]*models.DeviceSummary)
	for _, row := range rows {
		sum := byDevice[row.ID.Device]
		if sum == nil {
			sum = &models.DeviceSummary{
				DeviceID: row.ID.Device,
				ByKind:   make(map[models.Kind]int64),
			}
			byDevice[row.ID.Device] = sum
		}
		sum.ByKind[row.ID.Kind] = row.Count
		sum.Total += row.Count
		if sum.LastSeen == nil || row.Last.After(*sum.LastSeen) {
			last := row.Last
			sum.LastSeen = &last
		}
	}

	summaries := make([]models.DeviceSummary, 0, len(byDevice))
	for _, sum := range byDevice {
		summaries = append(summaries, *sum)
	}
	return summaries
}

// DistinctDevices returns every distinct device_id among persisted records,
// including the empty string used for unidentified devices.
func (s *Store) DistinctDevices(ctx context.Context) []string {
	if !s.Reachable() {
		return nil
	}

	start := time.Now()
	res := s.uploads.Distinct(ctx, "device_id", bson.D{})

	var devices []string
	err := res.Decode(&devices)
	observe("distinct_devices", start, err)
	if err != nil {
		logging.Err(err).Msg("Distinct device query failed")
		return nil
	}
	return devices
}

// LatestUpload returns the most recently received record across all devices
// and kinds, or nil when the collection is empty or the store disabled.
func (s *Store) LatestUpload(ctx context.Context) *models.UploadRecord {
	if !s.Reachable() {
		return nil
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "received_at", Value: -1}})

	start := time.Now()
	var rec models.UploadRecord
	err := s.uploads.FindOne(ctx, bson.D{}, opts).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		observe("latest_upload", start, nil)
		return nil
	}
	observe("latest_upload", start, err)
	if err != nil {
		logging.Err(err).Msg("Latest upload query failed")
		return nil
	}
	return &rec
}
