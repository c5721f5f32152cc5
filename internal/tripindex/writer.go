// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

// Package tripindex applies trip events to the backing store, maintaining
// four key families: the global trip counter with per-second snapshots,
// per-day and per-week aggregate counters per geohash cell, per-day and
// per-week trip-id sets per cell, and the prefix-to-geohash index the query
// planner enumerates.
package tripindex

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tripgrid/tripgrid/internal/geo"
	"github.com/tripgrid/tripgrid/internal/logging"
	"github.com/tripgrid/tripgrid/internal/metrics"
	"github.com/tripgrid/tripgrid/internal/models"
	"github.com/tripgrid/tripgrid/internal/store"
)

// Writer applies events to the store. It is safe for concurrent use; the
// only cross-request critical section is the counter pair, which the store
// guards with an optimistic transaction. All other writes are commutative.
type Writer struct {
	store       store.Store
	snapshotTTL time.Duration
}

// NewWriter creates a Writer. snapshotTTL bounds the lifetime of counter
// snapshots and the per-day snapshot-timestamp index (90 days in the
// standard configuration).
func NewWriter(s store.Store, snapshotTTL time.Duration) *Writer {
	return &Writer{store: s, snapshotTTL: snapshotTTL}
}

// Apply indexes one event stamped with the given arrival time. Malformed
// events are rejected before any mutation; store failures surface to the
// caller. Individual sub-writes are idempotent under replay except the
// counter pair, which the store transaction guards.
func (w *Writer) Apply(ctx context.Context, event models.TripEvent, arrival time.Time) error {
	if err := event.Validate(); err != nil {
		metrics.EventsRejected.Inc()
		return err
	}

	gh, err := geo.Encode(event.Lat, event.Lng)
	if err != nil {
		metrics.EventsRejected.Inc()
		return fmt.Errorf("%w: %v", models.ErrMalformedEvent, err)
	}

	arrival = arrival.UTC()
	day := store.Day(arrival)
	week := store.Week(arrival)
	ts := arrival.Unix()
	tripID := strconv.FormatInt(event.TripID, 10)

	// The trip touches this cell in both time resolutions. Set semantics
	// collapse repeated updates within a cell to one membership.
	dayBucket := store.DayBucket(day)
	weekBucket := store.WeekBucket(week)
	if err := w.store.ZAdd(ctx, store.KeyTripSet(gh, dayBucket), 0, tripID); err != nil {
		return err
	}
	if err := w.store.ZAdd(ctx, store.KeyTripSet(gh, weekBucket), 0, tripID); err != nil {
		return err
	}

	switch event.Event {
	case models.EventBegin:
		if err := w.applyBoundary(ctx, gh, dayBucket, weekBucket, day, ts, 1); err != nil {
			return err
		}
	case models.EventEnd:
		if err := w.applyBoundary(ctx, gh, dayBucket, weekBucket, day, ts, -1); err != nil {
			return err
		}
		for _, key := range []string{store.KeyFareCounter(gh, dayBucket), store.KeyFareCounter(gh, weekBucket)} {
			if err := w.store.IncrByFloat(ctx, key, *event.Fare); err != nil {
				return err
			}
		}
	case models.EventUpdate:
		// Position reports touch only the trip-id sets and the prefix index.
	}

	if err := w.indexPrefixes(ctx, gh, ts); err != nil {
		return err
	}

	metrics.EventsIngested.WithLabelValues(string(event.Event)).Inc()
	logging.Ctx(ctx).Debug().
		Str("event", string(event.Event)).
		Int64("trip_id", event.TripID).
		Str("geohash", gh).
		Int64("ts", ts).
		Msg("event applied")
	return nil
}

// applyBoundary handles the begin/end-only writes: the atomic counter pair,
// the start/stop aggregates, and the snapshot-timestamp index.
func (w *Writer) applyBoundary(ctx context.Context, gh, dayBucket, weekBucket, day string, ts int64, delta int64) error {
	// Read-modify-write of the running counter publishes the new value to
	// both current_trips_counter and the per-second snapshot atomically, so
	// any reader that observes the snapshot sees a value consistent with
	// exactly the events that arrived at or before ts.
	if _, err := w.store.UpdateCounterPair(ctx, store.KeyCurrentTrips, store.KeySnapshot(ts), delta, w.snapshotTTL); err != nil {
		return err
	}

	counterKey := store.KeyStartCounter
	if delta < 0 {
		counterKey = store.KeyStopCounter
	}
	if err := w.store.Incr(ctx, counterKey(gh, dayBucket)); err != nil {
		return err
	}
	if err := w.store.Incr(ctx, counterKey(gh, weekBucket)); err != nil {
		return err
	}

	// Record the snapshot timestamp so countAtInstant can run a predecessor
	// search when no snapshot exists at the exact queried second.
	eventTimesKey := store.KeyEventTimes(day)
	if err := w.store.ZAdd(ctx, eventTimesKey, float64(ts), strconv.FormatInt(ts, 10)); err != nil {
		return err
	}
	return w.store.Expire(ctx, eventTimesKey, w.snapshotTTL)
}

// indexPrefixes registers the full geohash under every proper prefix. The
// arrival timestamp is the score, which lets the sweeper expire members by
// age.
func (w *Writer) indexPrefixes(ctx context.Context, gh string, ts int64) error {
	for k := 1; k < len(gh); k++ {
		if err := w.store.ZAdd(ctx, store.KeyPrefix(gh[:k]), float64(ts), gh); err != nil {
			return err
		}
	}
	return nil
}
