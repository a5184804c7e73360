// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

// Package config loads and validates application configuration.
//
// Configuration is layered via Koanf v2 (highest priority wins):
//
//  1. Built-in defaults
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Environment variables (MONGODB_URL, SERVER_PORT, LOG_LEVEL, ...)
//
// The MONGODB_URL and MONGODB_DATABASE variable names are kept for
// compatibility with existing deployments.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root application configuration.
type Config struct {
	MongoDB MongoDBConfig `koanf:"mongodb"`
	Server  ServerConfig  `koanf:"server"`
	API     APIConfig     `koanf:"api"`
	Ingest  IngestConfig  `koanf:"ingest"`
	Logging LoggingConfig `koanf:"logging"`
}

// MongoDBConfig configures the document store collaborator.
//
// URL may be empty: the process then starts with recording disabled and
// serves every endpoint with empty/default results (graceful degradation).
type MongoDBConfig struct {
	URL            string        `koanf:"url"`
	Database       string        `koanf:"database" validate:"required"`
	ConnectTimeout time.Duration `koanf:"connect_timeout" validate:"min=1s"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host    string        `koanf:"host" validate:"required"`
	Port    int           `koanf:"port" validate:"min=1,max=65535"`
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`
}

// APIConfig configures the dashboard read endpoints.
type APIConfig struct {
	// HistoryLimit is N, the fixed number of records returned by the
	// per-device history endpoints.
	HistoryLimit int `koanf:"history_limit" validate:"min=1,max=1000"`

	// CORSOrigins lists allowed dashboard origins.
	CORSOrigins []string `koanf:"cors_origins"`
}

// IngestConfig configures the background persistence writer.
type IngestConfig struct {
	// QueueSize bounds the in-process persistence queue. When the queue is
	// full, new records are dropped with a logged warning — never blocking
	// the device-facing response.
	QueueSize int `koanf:"queue_size" validate:"min=1"`

	// Workers is the number of concurrent insert workers.
	Workers int `koanf:"workers" validate:"min=1,max=64"`

	// InsertTimeout bounds a single store insert attempt.
	InsertTimeout time.Duration `koanf:"insert_timeout" validate:"min=1s"`

	// ShutdownTimeout bounds queue draining at shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
}

// LoggingConfig configures the global logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error fatal disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and environment variables.
func defaultConfig() *Config {
	return &Config{
		MongoDB: MongoDBConfig{
			URL:            "", // No default: empty URL starts the store disabled
			Database:       "pulsegate",
			ConnectTimeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8000,
			Timeout: 30 * time.Second,
		},
		API: APIConfig{
			HistoryLimit: 100,
			CORSOrigins:  []string{"*"},
		},
		Ingest: IngestConfig{
			QueueSize:       1024,
			Workers:         4,
			InsertTimeout:   30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Validate checks the configuration against the struct validation tags.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
