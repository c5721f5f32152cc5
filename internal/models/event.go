// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

// Package models defines the domain types shared by the index writer, the
// query planner, and the HTTP surface.
package models

import (
	"errors"
	"fmt"
)

// EventKind identifies what a trip event reports.
type EventKind string

const (
	// EventBegin marks the start of a trip.
	EventBegin EventKind = "begin"

	// EventUpdate is a position report for a trip in progress.
	EventUpdate EventKind = "update"

	// EventEnd marks the completion of a trip and carries its fare.
	EventEnd EventKind = "end"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventBegin, EventUpdate, EventEnd:
		return true
	}
	return false
}

// ErrMalformedEvent reports an event that fails structural validation. No
// store mutation happens for such events.
var ErrMalformedEvent = errors.New("malformed trip event")

// TripEvent is one element of the telemetry stream. Events carry no client
// timestamp; the server stamps them with its own UTC clock at arrival.
type TripEvent struct {
	TripID int64     `json:"tripId"`
	Event  EventKind `json:"event"`
	Lat    float64   `json:"lat"`
	Lng    float64   `json:"lng"`

	// Fare is required when and only when Event is EventEnd.
	Fare *float64 `json:"fare,omitempty"`
}

// Validate checks the structural rules the writer relies on. Coordinate
// range checking happens at encoding time.
func (e *TripEvent) Validate() error {
	if !e.Event.Valid() {
		return fmt.Errorf("%w: unknown event kind %q", ErrMalformedEvent, e.Event)
	}
	if e.Event == EventEnd && e.Fare == nil {
		return fmt.Errorf("%w: fare missing in end event", ErrMalformedEvent)
	}
	return nil
}

// StartStopTotals is the answer to the start/stop/fare rectangle query.
type StartStopTotals struct {
	StartCount int64   `json:"start_count"`
	StopCount  int64   `json:"stop_count"`
	FareSum    float64 `json:"fare_sum"`
}
