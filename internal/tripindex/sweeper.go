// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

package tripindex

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tripgrid/tripgrid/internal/logging"
	"github.com/tripgrid/tripgrid/internal/metrics"
	"github.com/tripgrid/tripgrid/internal/store"
)

// Sweeper bounds the growth of the prefix index. Day and week buckets age
// out through their TTLs, but prefix sets only ever gain members; the
// sweeper removes members whose last-seen score is older than the retention
// window.
//
// Sweeper implements suture.Service and is meant to run under the root
// supervisor.
type Sweeper struct {
	store     store.Store
	interval  time.Duration
	retention time.Duration
	log       zerolog.Logger
}

// NewSweeper creates a Sweeper that runs a pass every interval, removing
// prefix-index members older than retention.
func NewSweeper(s store.Store, interval, retention time.Duration) *Sweeper {
	return &Sweeper{
		store:     s,
		interval:  interval,
		retention: retention,
		log:       logging.WithComponent("sweeper"),
	}
}

// Serve runs sweep passes until ctx is done.
func (s *Sweeper) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.sweep(ctx); err != nil {
				// A failed pass is retried on the next tick; the index
				// stays correct, only larger than necessary.
				s.log.Warn().Err(err).Msg("sweep pass failed")
			}
		}
	}
}

// String names the service in supervisor logs.
func (s *Sweeper) String() string {
	return "prefix-sweeper"
}

// sweep removes aged members from every prefix-index set.
func (s *Sweeper) sweep(ctx context.Context) error {
	start := time.Now()
	defer func() { metrics.SweepDuration.Observe(time.Since(start).Seconds()) }()

	keys, err := s.store.ScanKeys(ctx, store.PrefixKeyPattern)
	if err != nil {
		return err
	}

	cutoff := time.Now().UTC().Add(-s.retention).Unix()
	maxScore := fmt.Sprintf("%d", cutoff)

	var removed int64
	for _, key := range keys {
		n, err := s.store.ZRemRangeByScore(ctx, key, "-inf", maxScore)
		if err != nil {
			return err
		}
		removed += n
	}

	metrics.SweepMembersRemoved.Add(float64(removed))
	s.log.Info().
		Int("prefix_sets", len(keys)).
		Int64("members_removed", removed).
		Dur("elapsed", time.Since(start)).
		Msg("sweep pass complete")
	return nil
}
