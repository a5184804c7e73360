// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

package models

import (
	"time"
)

// APIResponse is the standardized envelope for all dashboard (GET) endpoints.
// Device upload acknowledgments are raw bytes fixed by the firmware contract
// and do not use this envelope.
//
// Status is "success" or "error"; Error is populated only for errors.
//
// Example:
//
//	{
//	  "status": "success",
//	  "data": {"total_records": 12},
//	  "metadata": {"timestamp": "2026-08-23T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries response metadata for observability.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError is a structured error body with a machine-readable code.
//
// Codes used by this service: REQUEST_BODY_ERROR, NOT_FOUND,
// METHOD_NOT_ALLOWED, INTERNAL_ERROR.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SleepAck is the acknowledgment body for sleep uploads. Unlike the other
// five endpoints (which ack with a single 0x00 byte), the sleep endpoint
// firmware expects a JSON envelope with ReturnCode 0 echoing the accepted
// report.
type SleepAck struct {
	ReturnCode int                    `json:"ReturnCode"`
	Data       map[string]interface{} `json:"Data"`
}
