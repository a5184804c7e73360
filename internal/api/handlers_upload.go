// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

package api

import (
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/pulsegate/pulsegate/internal/ingest"
	"github.com/pulsegate/pulsegate/internal/logging"
	"github.com/pulsegate/pulsegate/internal/models"
)

// deviceIDHeader is the fixed header name device firmware sends its
// identity in. Absence is not an error: uploads without it are recorded
// with an empty device id.
const deviceIDHeader = "DeviceId"

// uploadAck is the fixed single-byte acknowledgment expected by the
// firmware on five of the six endpoints. The sleep endpoint instead
// expects a JSON envelope (see ackSleep).
var uploadAck = []byte{0x00}

// Upload returns the ingestion handler for one payload kind. All six
// device endpoints share this code path and differ only in kind and ack
// format.
//
// The handler acknowledges unconditionally once a record could be built:
// the ack never waits on, and never reflects, persistence. The only 4xx
// is a transport-level body read failure.
func (h *Handler) Upload(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			respondError(w, http.StatusBadRequest, "REQUEST_BODY_ERROR", "Failed to read request body", err)
			return
		}

		deviceID := r.Header.Get(deviceIDHeader)

		rec := ingest.Normalize(kind, deviceID, r.Header.Get("Content-Type"), body)
		if rec.DeviceID == "" {
			// Some firmware revisions put the id in the JSON body instead
			// of the header.
			rec.DeviceID = deviceIDFromFields(rec.Payload.Fields)
		}

		h.writer.Enqueue(rec)

		logging.Ctx(r.Context()).Debug().
			Str("kind", string(kind)).
			Str("device", sanitizeLogValue(rec.DeviceID)).
			Int("bytes", rec.SizeBytes).
			Msg("Upload accepted")

		if kind == models.KindSleep {
			ackSleep(w, body)
			return
		}
		ackByte(w)
	}
}

// deviceIDFromFields pulls a device identifier out of a parsed structured
// payload, trying both casings firmware is known to send.
func deviceIDFromFields(fields map[string]interface{}) string {
	for _, key := range []string{"deviceid", "DeviceId"} {
		if id, ok := fields[key].(string); ok && id != "" {
			return id
		}
	}
	return ""
}

// ackByte writes the single-byte octet-stream acknowledgment.
func ackByte(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(uploadAck); err != nil {
		logging.Error().Err(err).Msg("Failed to write upload ack")
	}
}

// ackSleep writes the sleep endpoint's JSON acknowledgment: ReturnCode 0
// echoing the report when the body was a JSON object, empty Data otherwise.
func ackSleep(w http.ResponseWriter, body []byte) {
	var fields map[string]interface{}
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		fields = map[string]interface{}{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(models.SleepAck{ReturnCode: 0, Data: fields}); err != nil {
		logging.Error().Err(err).Msg("Failed to write sleep ack")
	}
}
