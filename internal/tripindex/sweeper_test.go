// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package tripindex

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alicebob/miniredis/v2"

	"github.com/tripgrid/tripgrid/internal/store"
)

func newTestSweeper(t *testing.T, retention time.Duration) (*Sweeper, store.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	st := store.NewWithClient(client, 5*time.Second)
	return NewSweeper(st, time.Hour, retention), st
}

func TestSweepRemovesAgedPrefixMembers(t *testing.T) {
	s, st := newTestSweeper(t, 90*24*time.Hour)
	ctx := context.Background()

	fresh := time.Now().UTC().Add(-time.Hour).Unix()
	stale := time.Now().UTC().Add(-120 * 24 * time.Hour).Unix()

	key := store.KeyPrefix("9q8y")
	if err := st.ZAdd(ctx, key, float64(fresh), "9q8yyk8ytpxr"); err != nil {
		t.Fatal(err)
	}
	if err := st.ZAdd(ctx, key, float64(stale), "9q8yym901000"); err != nil {
		t.Fatal(err)
	}

	if err := s.sweep(ctx); err != nil {
		t.Fatalf("sweep error = %v", err)
	}

	members, err := st.ZMembers(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 1 || members[0] != "9q8yyk8ytpxr" {
		t.Errorf("members after sweep = %v, want only the fresh geohash", members)
	}
}

func TestSweepLeavesOtherKeyFamiliesAlone(t *testing.T) {
	s, st := newTestSweeper(t, time.Hour)
	ctx := context.Background()

	old := float64(time.Now().UTC().Add(-48 * time.Hour).Unix())
	tripSet := store.KeyTripSet("9q8yyk8ytpxr", "days:2026-8-24")
	if err := st.ZAdd(ctx, tripSet, old, "42"); err != nil {
		t.Fatal(err)
	}

	if err := s.sweep(ctx); err != nil {
		t.Fatalf("sweep error = %v", err)
	}

	n, err := st.ZCard(ctx, tripSet)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("trip set cardinality after sweep = %d, want 1", n)
	}
}

func TestSweepEmptyStore(t *testing.T) {
	s, _ := newTestSweeper(t, time.Hour)
	if err := s.sweep(context.Background()); err != nil {
		t.Fatalf("sweep on empty store error = %v", err)
	}
}
