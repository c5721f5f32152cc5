// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package store

import (
	"fmt"
	"strconv"
	"time"
)

// Key schema. All keys are composed from these builders so the writer and
// the query planner cannot drift apart:
//
//	current_trips_counter                                  global open-trip counter
//	trips_counter:<epoch_s>                                counter snapshot at that second
//	event_times:<YYYY-M-D>                                 sorted set of snapshot timestamps per day
//	geohash:<gh>:days:<YYYY-M-D>:tripids                   trips touching a cell on a day
//	geohash:<gh>:weeks:<WW>:tripids                        trips touching a cell in a week
//	geohash:<gh>:{days:<d>|weeks:<w>}:tot_start_counter    begins in a cell bucket
//	geohash:<gh>:{days:<d>|weeks:<w>}:tot_stop_counter     ends in a cell bucket
//	geohash:<gh>:{days:<d>|weeks:<w>}:tot_fare_counter     fare sum in a cell bucket
//	geohash_prefixes:<prefix>                              full geohashes under a prefix

// KeyCurrentTrips holds the count of trips with a begin seen and no end yet.
const KeyCurrentTrips = "current_trips_counter"

// KeySnapshot returns the key of the counter snapshot at the given second.
func KeySnapshot(ts int64) string {
	return "trips_counter:" + strconv.FormatInt(ts, 10)
}

// KeyEventTimes returns the key of the per-day snapshot-timestamp index.
func KeyEventTimes(day string) string {
	return "event_times:" + day
}

// KeyTripSet returns the trip-id set key for a cell and time bucket.
func KeyTripSet(gh, bucket string) string {
	return "geohash:" + gh + ":" + bucket + ":tripids"
}

// KeyStartCounter returns the begin-count key for a cell and time bucket.
func KeyStartCounter(gh, bucket string) string {
	return "geohash:" + gh + ":" + bucket + ":tot_start_counter"
}

// KeyStopCounter returns the end-count key for a cell and time bucket.
func KeyStopCounter(gh, bucket string) string {
	return "geohash:" + gh + ":" + bucket + ":tot_stop_counter"
}

// KeyFareCounter returns the fare-sum key for a cell and time bucket.
func KeyFareCounter(gh, bucket string) string {
	return "geohash:" + gh + ":" + bucket + ":tot_fare_counter"
}

// KeyPrefix returns the prefix-index key for a geohash prefix.
func KeyPrefix(prefix string) string {
	return "geohash_prefixes:" + prefix
}

// PrefixKeyPattern matches every prefix-index key; the sweeper scans it.
const PrefixKeyPattern = "geohash_prefixes:*"

// Day formats a UTC day as YYYY-M-D without zero padding, the form used in
// day-bucketed keys.
func Day(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%d-%d-%d", t.Year(), int(t.Month()), t.Day())
}

// Week formats the ISO week number of a UTC instant as a two-digit string,
// the form used in week-bucketed keys.
func Week(t time.Time) string {
	_, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%02d", week)
}

// DayBucket returns the day sub-key used between the geohash and the metric
// name, e.g. "days:2026-8-24".
func DayBucket(day string) string {
	return "days:" + day
}

// WeekBucket returns the week sub-key, e.g. "weeks:35".
func WeekBucket(week string) string {
	return "weeks:" + week
}
