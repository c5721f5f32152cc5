// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package api

import (
	"errors"
	"net/http"

	"github.com/tripgrid/tripgrid/internal/geo"
	"github.com/tripgrid/tripgrid/internal/query"
)

// CountResult is the payload of the two trip-count queries.
type CountResult struct {
	Count int64 `json:"count"`

	// Message carries the advisory note when the index holds no data for
	// the queried instant. The count is still a valid zero.
	Message string `json:"message,omitempty"`
}

// CurrentTripCount answers how many trips are in progress right now.
func (h *Handler) CurrentTripCount(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	count, err := h.planner.CurrentCount(r.Context())
	if err != nil {
		rw.StoreError(err)
		return
	}
	rw.Success(CountResult{Count: count})
}

// TripCountAtInstant answers how many trips were in progress at a past
// instant, given as a "time_instant" form field in UTC.
func (h *Handler) TripCountAtInstant(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	raw := r.PostFormValue("time_instant")
	if raw == "" {
		rw.InputError(ErrCodeInvalidTime, "Please enter a time")
		return
	}
	instant, err := query.ParseInstant(raw)
	if err != nil {
		rw.InputError(ErrCodeInvalidTime, "Please enter a valid time in format YYYY-MM-DD HH:MM:SS")
		return
	}

	count, found, err := h.planner.CountAtInstant(r.Context(), instant)
	if err != nil {
		rw.StoreError(err)
		return
	}
	result := CountResult{Count: count}
	if !found {
		// The day bucket has aged out or never existed. Zero with a note,
		// not an error.
		result.Message = "No info available for this time"
	}
	rw.Success(result)
}

// TripsPassedThrough answers how many trips touched cells inside a bounding
// box over a trailing window.
func (h *Handler) TripsPassedThrough(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	box, window, err := parseBoundingBoxForm(r)
	if err != nil {
		var formErr *bboxFormError
		if errors.As(err, &formErr) {
			rw.InputError(formErr.code, formErr.message)
			return
		}
		rw.InputError(ErrCodeInvalidCoordinate, err.Error())
		return
	}

	count, err := h.planner.TripsPassedThrough(r.Context(), box, window)
	if err != nil {
		h.queryError(rw, err)
		return
	}
	rw.Success(CountResult{Count: count})
}

// TripsStartStop answers how many trips started and ended inside a bounding
// box over a trailing window, and the fare sum of the ended ones.
func (h *Handler) TripsStartStop(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	box, window, err := parseBoundingBoxForm(r)
	if err != nil {
		var formErr *bboxFormError
		if errors.As(err, &formErr) {
			rw.InputError(formErr.code, formErr.message)
			return
		}
		rw.InputError(ErrCodeInvalidCoordinate, err.Error())
		return
	}

	totals, err := h.planner.TripsStartStop(r.Context(), box, window)
	if err != nil {
		h.queryError(rw, err)
		return
	}
	rw.Success(totals)
}

// queryError maps a planner failure onto the envelope: coordinate problems
// are input errors on a 200, anything else is a store failure.
func (h *Handler) queryError(rw *ResponseWriter, err error) {
	if errors.Is(err, geo.ErrInvalidCoordinate) {
		rw.InputError(ErrCodeInvalidCoordinate, err.Error())
		return
	}
	rw.StoreError(err)
}
