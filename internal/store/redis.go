// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tripgrid/tripgrid/internal/config"
	"github.com/tripgrid/tripgrid/internal/metrics"
)

// Redis implements Store on a go-redis client. Every operation runs under a
// bounded timeout taken from the configuration; exceeding it surfaces as a
// store error.
type Redis struct {
	client    *redis.Client
	opTimeout time.Duration
}

var _ Store = (*Redis)(nil)

// New connects a Redis store using the given configuration. The connection
// is lazy; call Ping to verify reachability at startup.
func New(cfg config.RedisConfig) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		DB:          cfg.DB,
		Password:    cfg.Password,
		DialTimeout: cfg.DialTimeout,
	})
	return &Redis{client: client, opTimeout: cfg.OpTimeout}
}

// NewWithClient wraps an existing client. Tests use this with a
// miniredis-backed client.
func NewWithClient(client *redis.Client, opTimeout time.Duration) *Redis {
	return &Redis{client: client, opTimeout: opTimeout}
}

func (r *Redis) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.opTimeout)
}

// GetInt implements Store.
func (r *Redis) GetInt(ctx context.Context, key string) (int64, bool, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer func(start time.Time) { metrics.ObserveStoreOp("get", start, nil) }(time.Now())

	value, err := r.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: get %s: %w", key, err)
	}
	return value, true, nil
}

// GetFloat implements Store.
func (r *Redis) GetFloat(ctx context.Context, key string) (float64, bool, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	defer func(start time.Time) { metrics.ObserveStoreOp("get", start, nil) }(time.Now())

	value, err := r.client.Get(ctx, key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: get %s: %w", key, err)
	}
	return value, true, nil
}

// Exists implements Store.
func (r *Redis) Exists(ctx context.Context, key string) (bool, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	n, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("store: exists %s: %w", key, err)
	}
	return n > 0, nil
}

// Incr implements Store.
func (r *Redis) Incr(ctx context.Context, key string) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	start := time.Now()

	err := r.client.Incr(ctx, key).Err()
	metrics.ObserveStoreOp("incr", start, err)
	if err != nil {
		return fmt.Errorf("store: incr %s: %w", key, err)
	}
	return nil
}

// IncrByFloat implements Store.
func (r *Redis) IncrByFloat(ctx context.Context, key string, delta float64) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	start := time.Now()

	err := r.client.IncrByFloat(ctx, key, delta).Err()
	metrics.ObserveStoreOp("incrbyfloat", start, err)
	if err != nil {
		return fmt.Errorf("store: incrbyfloat %s: %w", key, err)
	}
	return nil
}

// ZAdd implements Store.
func (r *Redis) ZAdd(ctx context.Context, key string, score float64, member string) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	start := time.Now()

	err := r.client.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
	metrics.ObserveStoreOp("zadd", start, err)
	if err != nil {
		return fmt.Errorf("store: zadd %s: %w", key, err)
	}
	return nil
}

// ZMembers implements Store.
func (r *Redis) ZMembers(ctx context.Context, key string) ([]string, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	start := time.Now()

	members, err := r.client.ZRange(ctx, key, 0, -1).Result()
	metrics.ObserveStoreOp("zrange", start, err)
	if err != nil {
		return nil, fmt.Errorf("store: zrange %s: %w", key, err)
	}
	return members, nil
}

// ZCard implements Store.
func (r *Redis) ZCard(ctx context.Context, key string) (int64, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	start := time.Now()

	n, err := r.client.ZCard(ctx, key).Result()
	metrics.ObserveStoreOp("zcard", start, err)
	if err != nil {
		return 0, fmt.Errorf("store: zcard %s: %w", key, err)
	}
	return n, nil
}

// ZPredecessor implements Store using a reverse range-by-score limited to a
// single element. This avoids the insert-probe/rank/remove pattern that
// engines without a reverse range need.
func (r *Redis) ZPredecessor(ctx context.Context, key string, max int64) (string, bool, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	start := time.Now()

	members, err := r.client.ZRevRangeByScore(ctx, key, &redis.ZRangeBy{
		Min:    "-inf",
		Max:    strconv.FormatInt(max, 10),
		Offset: 0,
		Count:  1,
	}).Result()
	metrics.ObserveStoreOp("zrevrangebyscore", start, err)
	if err != nil {
		return "", false, fmt.Errorf("store: zrevrangebyscore %s: %w", key, err)
	}
	if len(members) == 0 {
		return "", false, nil
	}
	return members[0], true, nil
}

// ZRemRangeByScore implements Store.
func (r *Redis) ZRemRangeByScore(ctx context.Context, key, min, max string) (int64, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	start := time.Now()

	removed, err := r.client.ZRemRangeByScore(ctx, key, min, max).Result()
	metrics.ObserveStoreOp("zremrangebyscore", start, err)
	if err != nil {
		return 0, fmt.Errorf("store: zremrangebyscore %s: %w", key, err)
	}
	return removed, nil
}

// Expire implements Store.
func (r *Redis) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	start := time.Now()

	err := r.client.Expire(ctx, key, ttl).Err()
	metrics.ObserveStoreOp("expire", start, err)
	if err != nil {
		return fmt.Errorf("store: expire %s: %w", key, err)
	}
	return nil
}

// ScanKeys implements Store.
func (r *Redis) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()
	start := time.Now()

	var keys []string
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	err := iter.Err()
	metrics.ObserveStoreOp("scan", start, err)
	if err != nil {
		return nil, fmt.Errorf("store: scan %s: %w", pattern, err)
	}
	return keys, nil
}

// UpdateCounterPair implements Store with the read-under-WATCH, write-in-MULTI
// pattern: the current counter is read while watched, the successor value is
// queued as two SETs plus the snapshot TTL, and EXEC publishes both keys
// together. A conflicting writer aborts the EXEC and the whole sequence
// retries from the read.
func (r *Redis) UpdateCounterPair(ctx context.Context, currentKey, snapshotKey string, delta int64, ttl time.Duration) (int64, error) {
	start := time.Now()

	var next int64
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, currentKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		// An absent counter reads as 0, so the first begin publishes 1
		// and a stray end publishes -1.
		next = current + delta

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, currentKey, next, 0)
			pipe.Set(ctx, snapshotKey, next, ttl)
			return nil
		})
		return err
	}

	for {
		opCtx, cancel := r.opCtx(ctx)
		err := r.client.Watch(opCtx, txf, currentKey)
		cancel()
		if err == nil {
			metrics.ObserveStoreOp("counter_tx", start, nil)
			return next, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			// Another writer moved the counter; retry from the read.
			metrics.CounterTxRetries.Inc()
			if ctx.Err() != nil {
				metrics.ObserveStoreOp("counter_tx", start, ctx.Err())
				return 0, fmt.Errorf("store: counter transaction: %w", ctx.Err())
			}
			continue
		}
		metrics.ObserveStoreOp("counter_tx", start, err)
		return 0, fmt.Errorf("store: counter transaction: %w", err)
	}
}

// Ping implements Store.
func (r *Redis) Ping(ctx context.Context) error {
	ctx, cancel := r.opCtx(ctx)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("store: ping: %w", err)
	}
	return nil
}

// Close implements Store.
func (r *Redis) Close() error {
	return r.client.Close()
}
