// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tripgrid/tripgrid/internal/config"
	"github.com/tripgrid/tripgrid/internal/middleware"
)

// NewRouter wires the routes. Methods other than the ones registered here
// answer 405 through the router's MethodNotAllowed handler.
func NewRouter(h *Handler, cfg config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack, applied in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	if cfg.RequestsPerMinute > 0 {
		r.Use(httprate.LimitByIP(cfg.RequestsPerMinute, time.Minute))
	}

	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		NewResponseWriter(w, req).Error(http.StatusMethodNotAllowed,
			ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Post("/trips/", h.IngestTrip)

	r.Route("/query", func(r chi.Router) {
		r.Get("/trip_count_right_now/", h.CurrentTripCount)
		r.Post("/trip_count_at_time_t/", h.TripCountAtInstant)
		r.Post("/trips_passed_through/", h.TripsPassedThrough)
		r.Post("/trips_start_stop/", h.TripsStartStop)
	})

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
