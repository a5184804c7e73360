// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

// Package ingest turns raw device upload bodies into canonical records and
// persists them in the background.
//
// The pipeline is deliberately lossy-on-overload: normalization never
// rejects an upload, and the writer drops records rather than block the
// device-facing handler. Wearable firmware retries nothing and tolerates
// nothing but an immediate ack, so latency always wins over durability
// here.
package ingest

import (
	"encoding/hex"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/pulsegate/pulsegate/internal/metrics"
	"github.com/pulsegate/pulsegate/internal/models"
)

// Normalize converts one raw upload body into a canonical record. It is
// total: any byte sequence, including empty, yields a record.
//
// Opaque kinds keep their body hex-encoded. Structured kinds (device info,
// status) are parsed as a JSON object into Fields; a body that is not a
// JSON object is kept hex-encoded with Unparsed set, so malformed firmware
// output is preserved for inspection rather than rejected.
func Normalize(kind models.Kind, deviceID, contentType string, body []byte) *models.UploadRecord {
	rec := &models.UploadRecord{
		RecordID:    uuid.New().String(),
		DeviceID:    deviceID,
		Kind:        kind,
		ReceivedAt:  time.Now().UTC(),
		ContentType: contentType,
		SizeBytes:   len(body),
	}

	if kind.Structured() {
		var fields map[string]interface{}
		if err := json.Unmarshal(body, &fields); err == nil && fields != nil {
			rec.Payload.Fields = fields
		} else {
			rec.Payload.RawHex = hex.EncodeToString(body)
			rec.Payload.Unparsed = true
			metrics.UploadsUnparsed.WithLabelValues(string(kind)).Inc()
		}
	} else {
		rec.Payload.RawHex = hex.EncodeToString(body)
	}

	metrics.RecordUpload(string(kind), len(body))
	return rec
}
