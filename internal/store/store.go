// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

// Package store provides the ordered-set/counter substrate backing the trip
// index. The Store interface covers exactly the operations the index writer,
// query planner, and sweeper require; the production implementation talks to
// Redis, tests run the same implementation against miniredis.
package store

import (
	"context"
	"time"
)

// Store is the narrow contract the trip index needs from the key-value
// engine. Implementations must map a missing key to found=false rather than
// an error; every other failure is a store error and surfaces to the caller.
type Store interface {
	// GetInt reads an integer value. found is false when the key is absent.
	GetInt(ctx context.Context, key string) (value int64, found bool, err error)

	// GetFloat reads a float value. found is false when the key is absent.
	GetFloat(ctx context.Context, key string) (value float64, found bool, err error)

	// Exists reports whether a key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// Incr increments an integer key by one, creating it at 1 when absent.
	Incr(ctx context.Context, key string) error

	// IncrByFloat adds delta to a float key, creating it when absent.
	IncrByFloat(ctx context.Context, key string, delta float64) error

	// ZAdd inserts or updates a member of a sorted set.
	ZAdd(ctx context.Context, key string, score float64, member string) error

	// ZMembers returns all members of a sorted set in score order.
	// An absent key yields an empty slice.
	ZMembers(ctx context.Context, key string) ([]string, error)

	// ZCard returns the cardinality of a sorted set; 0 when absent.
	ZCard(ctx context.Context, key string) (int64, error)

	// ZPredecessor returns the member with the greatest score <= max,
	// i.e. a reverse range-by-score limited to one element.
	// found is false when the set is absent or no member qualifies.
	ZPredecessor(ctx context.Context, key string, max int64) (member string, found bool, err error)

	// ZRemRangeByScore removes members with scores in [min, max] given as
	// Redis score bounds ("-inf", "(123", ...); returns the removed count.
	ZRemRangeByScore(ctx context.Context, key, min, max string) (int64, error)

	// Expire sets or refreshes a key's TTL.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// ScanKeys returns all keys matching a glob pattern.
	ScanKeys(ctx context.Context, pattern string) ([]string, error)

	// UpdateCounterPair atomically publishes the running counter and its
	// per-second snapshot: it reads currentKey (absent reads as 0), adds
	// delta, then writes currentKey and snapshotKey to the result in one
	// transaction, with ttl applied to snapshotKey only. The update uses
	// optimistic concurrency and retries until it commits without
	// interference or ctx is done. Returns the published value.
	UpdateCounterPair(ctx context.Context, currentKey, snapshotKey string, delta int64, ttl time.Duration) (int64, error)

	// Ping verifies connectivity to the engine.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}
