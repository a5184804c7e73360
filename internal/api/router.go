// Pulsegate - Wearable Health Device Ingestion and Dashboard API
// Copyright 2026 Pulsegate Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pulsegate/pulsegate

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulsegate/pulsegate/internal/config"
	"github.com/pulsegate/pulsegate/internal/middleware"
	"github.com/pulsegate/pulsegate/internal/models"
)

// Router builds the HTTP surface over a handler set.
type Router struct {
	handler *Handler
	cfg     *config.APIConfig
}

// NewRouter creates a router serving h.
func NewRouter(h *Handler, cfg *config.APIConfig) *Router {
	return &Router{handler: h, cfg: cfg}
}

// Setup wires all routes using Chi.
//
// The /4g paths and methods are fixed by the device firmware and must
// never change. The /api group carries the dashboard read endpoints.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	// Device upload endpoints. No CORS: callers are firmware, not
	// browsers.
	r.Route("/4g", func(r chi.Router) {
		r.Post("/pb/upload", router.handler.Upload(models.KindPB))
		r.Post("/alarm/upload", router.handler.Upload(models.KindAlarm))
		r.Post("/call_log/upload", router.handler.Upload(models.KindCallLog))
		r.Post("/deviceinfo/upload", router.handler.Upload(models.KindDeviceInfo))
		r.Post("/status/notify", router.handler.Upload(models.KindStatus))
		r.Post("/health/sleep", router.handler.Upload(models.KindSleep))
	})

	r.Get("/health", router.handler.Health)

	// Dashboard read endpoints. CORS is global to the group so browser
	// dashboards can call from another origin.
	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: router.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))

		r.Get("/devices", router.handler.Devices)
		r.Get("/stats", router.handler.Stats)
		r.Route("/device/{id}", func(r chi.Router) {
			r.Get("/health", router.handler.DeviceHealth)
			r.Get("/alarms", router.handler.DeviceAlarms)
			r.Get("/sos", router.handler.DeviceSOS)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.NotFound(router.handler.NotFound)
	r.MethodNotAllowed(router.handler.MethodNotAllowed)

	return r
}
