// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package query

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/tripgrid/tripgrid/internal/geo"
	"github.com/tripgrid/tripgrid/internal/metrics"
	"github.com/tripgrid/tripgrid/internal/models"
	"github.com/tripgrid/tripgrid/internal/store"
)

// InstantLayout is the wire format of a queried time instant, interpreted as
// UTC.
const InstantLayout = "2006-01-02 15:04:05"

// ErrInvalidTime reports a time instant that does not parse as
// InstantLayout.
var ErrInvalidTime = errors.New("invalid time instant")

// ParseInstant parses a queried time instant in UTC.
func ParseInstant(s string) (time.Time, error) {
	t, err := time.ParseInLocation(InstantLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidTime
	}
	return t, nil
}

// BoundingBox is a geographic rectangle given by two opposite corners.
type BoundingBox struct {
	Lat1, Lng1 float64
	Lat2, Lng2 float64
}

// Planner answers the analytic queries by reading the index the writer
// maintains. It never mutates the store.
type Planner struct {
	store store.Store

	// now is swapped in tests to pin the window buckets.
	now func() time.Time
}

// NewPlanner creates a Planner over the given store.
func NewPlanner(s store.Store) *Planner {
	return &Planner{store: s, now: time.Now}
}

// CurrentCount returns the number of trips in progress right now. A store
// with no recorded events reports zero.
func (p *Planner) CurrentCount(ctx context.Context) (int64, error) {
	defer metrics.ObserveQuery("current_count", time.Now())

	count, _, err := p.store.GetInt(ctx, store.KeyCurrentTrips)
	return count, err
}

// CountAtInstant returns the number of trips in progress at the given past
// instant. found is false when the index holds no information for that
// instant's day, in which case the count is zero; that is an answer, not an
// error. There is no fallback into earlier days.
func (p *Planner) CountAtInstant(ctx context.Context, t time.Time) (count int64, found bool, err error) {
	defer metrics.ObserveQuery("count_at_instant", time.Now())

	t = t.UTC()
	ts := t.Unix()

	// Exact hit: a counter snapshot exists for this very second.
	count, found, err = p.store.GetInt(ctx, store.KeySnapshot(ts))
	if err != nil || found {
		return count, found, err
	}

	// Otherwise the answer is the snapshot at the latest event time at or
	// before ts within the same day bucket. An absent bucket has aged out
	// or never existed; there is no fallback into earlier days.
	eventTimesKey := store.KeyEventTimes(store.Day(t))
	exists, err := p.store.Exists(ctx, eventTimesKey)
	if err != nil || !exists {
		return 0, false, err
	}

	member, found, err := p.store.ZPredecessor(ctx, eventTimesKey, ts)
	if err != nil || !found {
		return 0, false, err
	}
	prevTS, err := strconv.ParseInt(member, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return p.store.GetInt(ctx, store.KeySnapshot(prevTS))
}

// TripsPassedThrough returns how many trip-cell touches fall inside the
// bounding box over the window. A trip crossing several cells in the box is
// counted once per cell; within a single cell repeated events count once.
func (p *Planner) TripsPassedThrough(ctx context.Context, box BoundingBox, w Window) (int64, error) {
	start := time.Now()
	defer metrics.ObserveQuery("trips_passed_through", start)

	targets, err := p.resolveTargets(ctx, box)
	if err != nil {
		return 0, err
	}
	metrics.QueryCellsProbed.WithLabelValues("trips_passed_through").Observe(float64(len(targets)))

	var count int64
	for _, bucket := range w.Buckets(p.now()) {
		for _, gh := range targets {
			n, err := p.store.ZCard(ctx, store.KeyTripSet(gh, bucket))
			if err != nil {
				return 0, err
			}
			count += n
		}
	}
	return count, nil
}

// TripsStartStop returns how many trips started and ended inside the
// bounding box over the window, and the sum of the fares of the ended ones.
// Cells with no recorded activity contribute zero.
func (p *Planner) TripsStartStop(ctx context.Context, box BoundingBox, w Window) (models.StartStopTotals, error) {
	start := time.Now()
	defer metrics.ObserveQuery("trips_start_stop", start)

	var totals models.StartStopTotals

	targets, err := p.resolveTargets(ctx, box)
	if err != nil {
		return totals, err
	}
	metrics.QueryCellsProbed.WithLabelValues("trips_start_stop").Observe(float64(len(targets)))

	for _, bucket := range w.Buckets(p.now()) {
		for _, gh := range targets {
			starts, _, err := p.store.GetInt(ctx, store.KeyStartCounter(gh, bucket))
			if err != nil {
				return totals, err
			}
			totals.StartCount += starts

			stops, _, err := p.store.GetInt(ctx, store.KeyStopCounter(gh, bucket))
			if err != nil {
				return totals, err
			}
			totals.StopCount += stops

			fares, _, err := p.store.GetFloat(ctx, store.KeyFareCounter(gh, bucket))
			if err != nil {
				return totals, err
			}
			totals.FareSum += fares
		}
	}
	return totals, nil
}

// resolveTargets reduces the box to the geohash cells that saw activity: the
// corners' common prefix selects one prefix set, whose members are the full
// geohashes recorded inside it. A box so large that its corners share no
// prefix falls back to scanning every length-1 prefix.
func (p *Planner) resolveTargets(ctx context.Context, box BoundingBox) ([]string, error) {
	a, err := geo.Encode(box.Lat1, box.Lng1)
	if err != nil {
		return nil, err
	}
	b, err := geo.Encode(box.Lat2, box.Lng2)
	if err != nil {
		return nil, err
	}

	prefix := geo.CommonPrefix(a, b)
	if prefix == "" {
		var targets []string
		for _, c := range geo.Alphabet {
			members, err := p.store.ZMembers(ctx, store.KeyPrefix(string(c)))
			if err != nil {
				return nil, err
			}
			targets = append(targets, members...)
		}
		return targets, nil
	}
	return p.store.ZMembers(ctx, store.KeyPrefix(prefix))
}
