// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tripgrid/tripgrid/internal/logging"
	"github.com/tripgrid/tripgrid/internal/models"
)

// IngestTrip accepts one trip event and applies it to the index. The
// arrival time is the server clock; events carry no client timestamp. A
// successful ingest returns an empty 200 so the publisher can fire and
// forget.
func (h *Handler) IngestTrip(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req TripEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest(ErrCodeMalformedEvent, "invalid JSON body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		rw.BadRequest(ErrCodeMalformedEvent, "event is missing required fields or has out-of-range coordinates")
		return
	}

	if err := h.writer.Apply(r.Context(), req.ToEvent(), time.Now().UTC()); err != nil {
		if errors.Is(err, models.ErrMalformedEvent) {
			rw.BadRequest(ErrCodeMalformedEvent, err.Error())
			return
		}
		rw.StoreError(err)
		return
	}

	logging.Ctx(r.Context()).Debug().Int64("trip_id", *req.TripID).Msg("event ingested")
	w.WriteHeader(http.StatusOK)
}
