// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

package store

import "errors"

// ErrRecordingDisabled indicates the store entered DISABLED state and the
// requested write was skipped. It is informational on the write path — the
// background writer logs it and moves on — and is never surfaced to device
// callers.
var ErrRecordingDisabled = errors.New("store: recording disabled")
