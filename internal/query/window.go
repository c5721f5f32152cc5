// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

// Package query answers the four analytic questions over the trip index:
// the live trip count, the trip count at a past instant, and the
// passed-through and start/stop/fare aggregates over a bounding box and
// trailing time window.
package query

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tripgrid/tripgrid/internal/store"
)

// ErrInvalidWindow reports a lookback string that is not of the form "Nd" or
// "Nw" with a non-negative N.
var ErrInvalidWindow = errors.New("invalid lookback window")

// WindowUnit is the bucket resolution of a lookback window.
type WindowUnit byte

const (
	// UnitDay selects per-day buckets.
	UnitDay WindowUnit = 'd'

	// UnitWeek selects per-week buckets.
	UnitWeek WindowUnit = 'w'
)

// Window is a trailing lookback of N days or weeks ending now. N of zero
// means the current period only.
type Window struct {
	N    int
	Unit WindowUnit
}

// ParseWindow parses a lookback of the form "Nd" or "Nw".
func ParseWindow(s string) (Window, error) {
	if len(s) < 2 {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	unit := WindowUnit(s[len(s)-1])
	if unit != UnitDay && unit != UnitWeek {
		return Window{}, fmt.Errorf("%w: %q must end in 'd' or 'w'", ErrInvalidWindow, s)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s[:len(s)-1]))
	if err != nil || n < 0 {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, s)
	}
	return Window{N: n, Unit: unit}, nil
}

// Buckets returns the time-bucket fragments the window covers, newest first.
// A zero N yields just the bucket containing now; otherwise the window covers
// the N periods ending with the current one.
func (w Window) Buckets(now time.Time) []string {
	now = now.UTC()
	n := w.N
	if n == 0 {
		n = 1
	}
	buckets := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch w.Unit {
		case UnitDay:
			day := store.Day(now.AddDate(0, 0, -i))
			buckets = append(buckets, store.DayBucket(day))
		case UnitWeek:
			week := store.Week(now.AddDate(0, 0, -7*i))
			buckets = append(buckets, store.WeekBucket(week))
		}
	}
	return buckets
}
