// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

// Package models defines the canonical data structures shared between the
// ingestion pipeline, the store, and the HTTP API.
package models

import (
	"time"
)

// Kind identifies one of the six fixed device-payload categories.
type Kind string

// The six upload kinds accepted from device firmware. The wire paths are
// fixed by the firmware; the kind value is the storage-side tag.
const (
	KindPB         Kind = "pb"          // health data protobuf blob
	KindAlarm      Kind = "alarm"       // alarm notification
	KindCallLog    Kind = "call_log"    // call log / SOS event
	KindDeviceInfo Kind = "device_info" // device info (battery, firmware, model)
	KindStatus     Kind = "status"      // periodic status notification
	KindSleep      Kind = "sleep"       // sleep health report
)

// AllKinds lists every upload kind in a stable order.
func AllKinds() []Kind {
	return []Kind{KindPB, KindAlarm, KindCallLog, KindDeviceInfo, KindStatus, KindSleep}
}

// HealthKinds lists the kinds that make up a device's health history as
// served by the dashboard: raw health blobs plus the structured device
// info, status, and sleep reports.
func HealthKinds() []Kind {
	return []Kind{KindPB, KindDeviceInfo, KindStatus, KindSleep}
}

// Valid reports whether k is one of the six known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindPB, KindAlarm, KindCallLog, KindDeviceInfo, KindStatus, KindSleep:
		return true
	}
	return false
}

// Structured reports whether uploads of this kind carry a JSON object body
// that the normalizer attempts to parse. Opaque kinds are stored verbatim.
func (k Kind) Structured() bool {
	return k == KindDeviceInfo || k == KindStatus
}

// Payload is the normalized body of an upload, a tagged union with exactly
// one primary representation:
//
//   - Structured kinds that parsed cleanly: Fields holds the key/value
//     mapping, RawHex is empty.
//   - Opaque kinds: RawHex holds the hex-encoded body, Fields is nil.
//   - Structured kinds that failed to parse: Unparsed is true and RawHex
//     preserves the original body. The record is still accepted — ingestion
//     never rejects a device.
type Payload struct {
	Fields   map[string]interface{} `bson:"fields,omitempty" json:"fields,omitempty"`
	RawHex   string                 `bson:"raw_hex,omitempty" json:"raw_hex,omitempty"`
	Unparsed bool                   `bson:"unparsed,omitempty" json:"unparsed,omitempty"`
}

// UploadRecord is the canonical, storage-ready representation of one
// accepted device upload. Records are immutable once constructed and are
// persisted at most once; a failed persist is logged and dropped, never
// requeued.
//
// DeviceID may be empty: unauthenticated devices are still recorded.
// ReceivedAt is server-assigned at handler entry and monotonic within a
// process, but not globally unique — records never form a strict sequence.
type UploadRecord struct {
	RecordID    string    `bson:"record_id" json:"record_id"`
	DeviceID    string    `bson:"device_id" json:"device_id"`
	Kind        Kind      `bson:"kind" json:"kind"`
	ReceivedAt  time.Time `bson:"received_at" json:"received_at"`
	ContentType string    `bson:"content_type,omitempty" json:"content_type,omitempty"`
	SizeBytes   int       `bson:"size_bytes" json:"size_bytes"`
	Payload     Payload   `bson:"payload" json:"payload"`
}
