// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package tripindex

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/tripgrid/tripgrid/internal/geo"
	"github.com/tripgrid/tripgrid/internal/models"
	"github.com/tripgrid/tripgrid/internal/store"
)

func newTestWriter(t *testing.T) (*Writer, store.Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	st := store.NewWithClient(client, 5*time.Second)
	return NewWriter(st, 90*24*time.Hour), st, mr
}

var baseArrival = time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

func beginEvent(tripID int64, lat, lng float64) models.TripEvent {
	return models.TripEvent{TripID: tripID, Event: models.EventBegin, Lat: lat, Lng: lng}
}

func endEvent(tripID int64, lat, lng, fare float64) models.TripEvent {
	return models.TripEvent{TripID: tripID, Event: models.EventEnd, Lat: lat, Lng: lng, Fare: &fare}
}

func TestApplyRejectsMalformedBeforeMutation(t *testing.T) {
	w, st, mr := newTestWriter(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		event models.TripEvent
	}{
		{"end without fare", models.TripEvent{TripID: 1, Event: models.EventEnd, Lat: 37.8, Lng: -122.4}},
		{"unknown kind", models.TripEvent{TripID: 1, Event: "teleport", Lat: 37.8, Lng: -122.4}},
		{"latitude out of range", beginEvent(1, 91, 0)},
		{"longitude out of range", beginEvent(1, 0, -181)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := w.Apply(ctx, tt.event, baseArrival)
			if !errors.Is(err, models.ErrMalformedEvent) {
				t.Fatalf("Apply error = %v, want ErrMalformedEvent", err)
			}
		})
	}

	// No mutation happened for any rejected event.
	if keys := mr.Keys(); len(keys) != 0 {
		t.Errorf("store contains %v after rejected events, want empty", keys)
	}
	if _, found, _ := st.GetInt(ctx, store.KeyCurrentTrips); found {
		t.Error("counter was created by a rejected event")
	}
}

func TestCounterAccounting(t *testing.T) {
	// For any sequence of begin/end events with no mismatched end, the
	// current count equals #begin - #end.
	w, st, _ := newTestWriter(t)
	ctx := context.Background()

	arrival := baseArrival
	apply := func(ev models.TripEvent) {
		t.Helper()
		if err := w.Apply(ctx, ev, arrival); err != nil {
			t.Fatalf("Apply error = %v", err)
		}
		arrival = arrival.Add(time.Second)
	}

	apply(beginEvent(1, 37.8025, -122.4058))
	apply(beginEvent(2, 37.80164, -122.402244))
	apply(models.TripEvent{TripID: 1, Event: models.EventUpdate, Lat: 37.801, Lng: -122.403})
	apply(endEvent(1, 37.800619, -122.401782, 20))
	apply(beginEvent(3, 37.790789, -122.431812))

	current, found, err := st.GetInt(ctx, store.KeyCurrentTrips)
	if err != nil || !found {
		t.Fatalf("GetInt current = (%d, %v, %v)", current, found, err)
	}
	if current != 2 {
		t.Errorf("current count = %d, want 2 (3 begins - 1 end)", current)
	}
}

func TestSnapshotMonotonicityOnBeginStream(t *testing.T) {
	// K begins at increasing timestamps yield snapshot i at ts_i.
	w, st, _ := newTestWriter(t)
	ctx := context.Background()

	const k = 5
	for i := 0; i < k; i++ {
		arrival := baseArrival.Add(time.Duration(i) * time.Second)
		if err := w.Apply(ctx, beginEvent(int64(100+i), 37.8, -122.4), arrival); err != nil {
			t.Fatalf("Apply error = %v", err)
		}
	}

	for i := 0; i < k; i++ {
		ts := baseArrival.Add(time.Duration(i) * time.Second).Unix()
		value, found, err := st.GetInt(ctx, store.KeySnapshot(ts))
		if err != nil || !found {
			t.Fatalf("snapshot at ts_%d = (%d, %v, %v)", i, value, found, err)
		}
		if value != int64(i+1) {
			t.Errorf("snapshot at ts_%d = %d, want %d", i, value, i+1)
		}
	}
}

func TestPrefixContainment(t *testing.T) {
	// Every proper prefix of the event's geohash contains the full geohash.
	w, st, _ := newTestWriter(t)
	ctx := context.Background()

	if err := w.Apply(ctx, beginEvent(123, 37.8025, -122.4058), baseArrival); err != nil {
		t.Fatalf("Apply error = %v", err)
	}
	gh, err := geo.Encode(37.8025, -122.4058)
	if err != nil {
		t.Fatal(err)
	}

	for k := 1; k < len(gh); k++ {
		members, err := st.ZMembers(ctx, store.KeyPrefix(gh[:k]))
		if err != nil {
			t.Fatalf("ZMembers(%q) error = %v", gh[:k], err)
		}
		contains := false
		for _, m := range members {
			if m == gh {
				contains = true
			}
		}
		if !contains {
			t.Errorf("prefix set %q does not contain %q", gh[:k], gh)
		}
	}
}

func TestIdempotentCellMembership(t *testing.T) {
	// K updates for one trip in one cell yield a singleton set.
	w, st, _ := newTestWriter(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		ev := models.TripEvent{TripID: 42, Event: models.EventUpdate, Lat: 37.8025, Lng: -122.4058}
		if err := w.Apply(ctx, ev, baseArrival.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("Apply error = %v", err)
		}
	}

	gh, _ := geo.Encode(37.8025, -122.4058)
	day := store.DayBucket(store.Day(baseArrival))
	n, err := st.ZCard(ctx, store.KeyTripSet(gh, day))
	if err != nil {
		t.Fatalf("ZCard error = %v", err)
	}
	if n != 1 {
		t.Errorf("cell membership cardinality = %d, want 1", n)
	}
}

func TestAggregateCountersAndFares(t *testing.T) {
	w, st, _ := newTestWriter(t)
	ctx := context.Background()

	lat, lng := 37.8025, -122.4058
	if err := w.Apply(ctx, beginEvent(1, lat, lng), baseArrival); err != nil {
		t.Fatal(err)
	}
	if err := w.Apply(ctx, beginEvent(2, lat, lng), baseArrival.Add(time.Second)); err != nil {
		t.Fatal(err)
	}
	if err := w.Apply(ctx, endEvent(1, lat, lng, 17.5), baseArrival.Add(2*time.Second)); err != nil {
		t.Fatal(err)
	}

	gh, _ := geo.Encode(lat, lng)
	for _, bucket := range []string{
		store.DayBucket(store.Day(baseArrival)),
		store.WeekBucket(store.Week(baseArrival)),
	} {
		starts, _, err := st.GetInt(ctx, store.KeyStartCounter(gh, bucket))
		if err != nil {
			t.Fatal(err)
		}
		if starts != 2 {
			t.Errorf("bucket %q start counter = %d, want 2", bucket, starts)
		}
		stops, _, err := st.GetInt(ctx, store.KeyStopCounter(gh, bucket))
		if err != nil {
			t.Fatal(err)
		}
		if stops != 1 {
			t.Errorf("bucket %q stop counter = %d, want 1", bucket, stops)
		}
		fares, _, err := st.GetFloat(ctx, store.KeyFareCounter(gh, bucket))
		if err != nil {
			t.Fatal(err)
		}
		if fares != 17.5 {
			t.Errorf("bucket %q fare counter = %v, want 17.5", bucket, fares)
		}
	}
}

func TestUpdateEventDoesNotTouchCounters(t *testing.T) {
	w, st, mr := newTestWriter(t)
	ctx := context.Background()

	ev := models.TripEvent{TripID: 7, Event: models.EventUpdate, Lat: 37.8, Lng: -122.4}
	if err := w.Apply(ctx, ev, baseArrival); err != nil {
		t.Fatalf("Apply error = %v", err)
	}

	if _, found, _ := st.GetInt(ctx, store.KeyCurrentTrips); found {
		t.Error("update event created the trip counter")
	}
	if _, found, _ := st.GetInt(ctx, store.KeySnapshot(baseArrival.Unix())); found {
		t.Error("update event created a counter snapshot")
	}
	if mr.Exists(store.KeyEventTimes(store.Day(baseArrival))) {
		t.Error("update event wrote the snapshot-timestamp index")
	}
}

func TestSnapshotAndEventTimesTTL(t *testing.T) {
	w, _, mr := newTestWriter(t)
	ctx := context.Background()

	if err := w.Apply(ctx, beginEvent(9, 37.8, -122.4), baseArrival); err != nil {
		t.Fatalf("Apply error = %v", err)
	}

	want := 90 * 24 * time.Hour
	if ttl := mr.TTL(store.KeySnapshot(baseArrival.Unix())); ttl != want {
		t.Errorf("snapshot TTL = %v, want %v", ttl, want)
	}
	if ttl := mr.TTL(store.KeyEventTimes(store.Day(baseArrival))); ttl != want {
		t.Errorf("event_times TTL = %v, want %v", ttl, want)
	}
}

func TestEventTimesMemberScoredByTimestamp(t *testing.T) {
	w, st, _ := newTestWriter(t)
	ctx := context.Background()

	if err := w.Apply(ctx, beginEvent(9, 37.8, -122.4), baseArrival); err != nil {
		t.Fatal(err)
	}

	ts := baseArrival.Unix()
	member, found, err := st.ZPredecessor(ctx, store.KeyEventTimes(store.Day(baseArrival)), ts)
	if err != nil || !found {
		t.Fatalf("ZPredecessor = (%q, %v, %v)", member, found, err)
	}
	if member != strconv.FormatInt(ts, 10) {
		t.Errorf("event_times member = %q, want %d", member, ts)
	}
}
