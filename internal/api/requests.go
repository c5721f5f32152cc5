// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package api

import (
	"net/http"
	"strconv"

	"github.com/tripgrid/tripgrid/internal/models"
	"github.com/tripgrid/tripgrid/internal/query"
)

// TripEventRequest is the JSON body of an ingested trip event. Pointer
// fields distinguish an absent field from a zero value; a lat of 0 is a
// valid coordinate.
type TripEventRequest struct {
	TripID *int64   `json:"tripId" validate:"required"`
	Event  *string  `json:"event" validate:"required"`
	Lat    *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng    *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
	Fare   *float64 `json:"fare"`
}

// ToEvent converts a validated request into the domain event.
func (req *TripEventRequest) ToEvent() models.TripEvent {
	return models.TripEvent{
		TripID: *req.TripID,
		Event:  models.EventKind(*req.Event),
		Lat:    *req.Lat,
		Lng:    *req.Lng,
		Fare:   req.Fare,
	}
}

// bboxFormError carries the error code and message for a rejected bounding
// box form.
type bboxFormError struct {
	code    string
	message string
}

func (e *bboxFormError) Error() string { return e.message }

// parseBoundingBoxForm reads the lat1/lng1/lat2/lng2/days_back form fields
// shared by the two rectangle queries. Field-level failures come back as a
// bboxFormError so the handler can map them onto the error envelope.
func parseBoundingBoxForm(r *http.Request) (query.BoundingBox, query.Window, error) {
	var box query.BoundingBox

	coords := []struct {
		field string
		dst   *float64
	}{
		{"lat1", &box.Lat1},
		{"lng1", &box.Lng1},
		{"lat2", &box.Lat2},
		{"lng2", &box.Lng2},
	}
	for _, c := range coords {
		raw := r.PostFormValue(c.field)
		if raw == "" {
			return box, query.Window{}, &bboxFormError{ErrCodeInvalidCoordinate, "Please enter all lat/lng values"}
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return box, query.Window{}, &bboxFormError{ErrCodeInvalidCoordinate, "Please enter correct values for " + c.field}
		}
		*c.dst = v
	}

	raw := r.PostFormValue("days_back")
	if raw == "" {
		return box, query.Window{}, &bboxFormError{ErrCodeInvalidWindow, "Please enter how far back do you want to look into"}
	}
	window, err := query.ParseWindow(raw)
	if err != nil {
		return box, query.Window{}, &bboxFormError{ErrCodeInvalidWindow, "Lookback must be of the form Nd or Nw"}
	}
	return box, window, nil
}
