// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tripgrid/tripgrid/internal/query"
	"github.com/tripgrid/tripgrid/internal/store"
	"github.com/tripgrid/tripgrid/internal/tripindex"
)

// Handler holds the HTTP handlers and their dependencies.
type Handler struct {
	writer    *tripindex.Writer
	planner   *query.Planner
	store     store.Store
	validate  *validator.Validate
	startTime time.Time
}

// NewHandler creates a Handler over the index writer and query planner.
func NewHandler(w *tripindex.Writer, p *query.Planner, s store.Store) *Handler {
	return &Handler{
		writer:    w,
		planner:   p,
		store:     s,
		validate:  validator.New(),
		startTime: time.Now(),
	}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startTime).String(),
	})
}

// HealthReady reports readiness to serve, which requires the store to
// answer.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if err := h.store.Ping(r.Context()); err != nil {
		rw.Error(http.StatusServiceUnavailable, ErrCodeStoreError, "store unreachable")
		return
	}
	rw.Success(map[string]interface{}{"status": "ready"})
}
