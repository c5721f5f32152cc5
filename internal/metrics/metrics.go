// Tripgrid - Geospatial Trip Telemetry Ingestion and Analytics
// Copyright 2026 Tripgrid Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/tripgrid/tripgrid

// Package metrics provides Prometheus instrumentation for ingestion
// throughput, store latency, query latency, and the HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics

	EventsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripgrid_events_ingested_total",
			Help: "Total trip events applied to the index, by event kind",
		},
		[]string{"event"},
	)

	EventsRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tripgrid_events_rejected_total",
			Help: "Total trip events rejected as malformed before any store mutation",
		},
	)

	CounterTxRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tripgrid_counter_tx_retries_total",
			Help: "Retries of the optimistic counter-pair transaction after a WATCH conflict",
		},
	)

	// Store metrics

	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripgrid_store_op_duration_seconds",
			Help:    "Duration of individual store operations in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5},
		},
		[]string{"op"},
	)

	StoreOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripgrid_store_op_errors_total",
			Help: "Total failed store operations",
		},
		[]string{"op"},
	)

	// Query metrics

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripgrid_query_duration_seconds",
			Help:    "Duration of analytic queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query"},
	)

	QueryCellsProbed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripgrid_query_cells_probed",
			Help:    "Number of geohash cells probed per bounding-box query",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
		[]string{"query"},
	)

	// API metrics

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripgrid_api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripgrid_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tripgrid_api_active_requests",
			Help: "Current number of in-flight HTTP requests",
		},
	)

	// Sweeper metrics

	SweepMembersRemoved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tripgrid_sweep_members_removed_total",
			Help: "Prefix-index members removed by the retention sweeper",
		},
	)

	SweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tripgrid_sweep_duration_seconds",
			Help:    "Duration of full sweeper passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// ObserveStoreOp records the outcome of a single store operation.
func ObserveStoreOp(op string, start time.Time, err error) {
	StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreOpErrors.WithLabelValues(op).Inc()
	}
}

// ObserveQuery records the duration of an analytic query.
func ObserveQuery(query string, start time.Time) {
	QueryDuration.WithLabelValues(query).Observe(time.Since(start).Seconds())
}

// RecordAPIRequest records a completed HTTP request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
