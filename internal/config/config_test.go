// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

package config

import (
	"testing"
	"time"
)

func TestDefaultsValidate(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}

	if cfg.MongoDB.Database != "pulsegate" {
		t.Errorf("default database = %q, want pulsegate", cfg.MongoDB.Database)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("default port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.API.HistoryLimit != 100 {
		t.Errorf("default history limit = %d, want 100", cfg.API.HistoryLimit)
	}
	// Empty Mongo URL is valid: the store starts disabled.
	if cfg.MongoDB.URL != "" {
		t.Errorf("default mongo URL should be empty, got %q", cfg.MongoDB.URL)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero history limit", func(c *Config) { c.API.HistoryLimit = 0 }},
		{"huge history limit", func(c *Config) { c.API.HistoryLimit = 100000 }},
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port overflow", func(c *Config) { c.Server.Port = 70000 }},
		{"empty database", func(c *Config) { c.MongoDB.Database = "" }},
		{"zero workers", func(c *Config) { c.Ingest.Workers = 0 }},
		{"zero queue", func(c *Config) { c.Ingest.QueueSize = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }},
		{"tiny insert timeout", func(c *Config) { c.Ingest.InsertTimeout = time.Millisecond }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MONGODB_URL", "mongodb://db.example:27017")
	t.Setenv("MONGODB_DATABASE", "iwown_health")
	t.Setenv("SERVER_PORT", "9100")
	t.Setenv("API_HISTORY_LIMIT", "25")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("API_CORS_ORIGINS", "https://dash.example, https://ops.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.MongoDB.URL != "mongodb://db.example:27017" {
		t.Errorf("mongo URL = %q", cfg.MongoDB.URL)
	}
	if cfg.MongoDB.Database != "iwown_health" {
		t.Errorf("database = %q", cfg.MongoDB.Database)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.API.HistoryLimit != 25 {
		t.Errorf("history limit = %d", cfg.API.HistoryLimit)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q", cfg.Logging.Level)
	}
	want := []string{"https://dash.example", "https://ops.example"}
	if len(cfg.API.CORSOrigins) != len(want) {
		t.Fatalf("cors origins = %v, want %v", cfg.API.CORSOrigins, want)
	}
	for i := range want {
		if cfg.API.CORSOrigins[i] != want[i] {
			t.Errorf("cors origin[%d] = %q, want %q", i, cfg.API.CORSOrigins[i], want[i])
		}
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"MONGODB_URL", "mongodb.url"},
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"INGEST_WORKERS", "ingest.workers"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestAddr(t *testing.T) {
	t.Parallel()

	cfg := ServerConfig{Host: "127.0.0.1", Port: 8000}
	if got := cfg.Addr(); got != "127.0.0.1:8000" {
		t.Errorf("Addr() = %q", got)
	}
}
