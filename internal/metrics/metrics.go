// Plan - Player Analytics Persistence
// Copyright 2026 Plan Player Analytics contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/plan-player-analytics/Plan-sub001

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the persistence layer:
// - statement execution (latency, errors, pool usage)
// - schema migration progress
// - the single-writer queue and its circuit breaker
// - mailbox maintenance

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "plan_db_query_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_db_query_errors_total",
			Help: "Total number of failed store operations",
		},
		[]string{"operation", "error_type"},
	)

	DBPoolInUse = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plan_db_pool_in_use",
			Help: "Number of pooled connections currently held by an operation",
		},
	)

	DBBenignConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_db_benign_conflicts_total",
			Help: "Duplicate natural-key inserts resolved by re-selecting the existing row",
		},
		[]string{"table"},
	)

	// Migration Metrics
	SchemaVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plan_schema_version",
			Help: "Schema version of the open store",
		},
	)

	MigrationSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_migration_steps_total",
			Help: "Migration steps processed",
		},
		[]string{"step", "result"}, // result: "applied", "skipped", "failed", "deferred"
	)

	BackfillRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_backfill_rows_total",
			Help: "Rows rewritten by background migration backfills",
		},
	)

	// Writer Metrics
	WriterQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "plan_writer_queue_depth",
			Help: "Transactions waiting for the single writer",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plan_writer_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_writer_breaker_requests_total",
			Help: "Total number of transactions passed through the circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plan_writer_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Mailbox Metrics
	MailboxPurged = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "plan_mailbox_purged_total",
			Help: "Expired mailbox entries removed by the sweeper",
		},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "plan_app_info",
			Help: "Application version and store dialect",
		},
		[]string{"version", "dialect"},
	)
)

// RecordDBQuery records a store operation metric
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, errorType(err)).Inc()
	}
}

// TrackPoolConnection tracks connections held by operations
func TrackPoolConnection(acquired bool) {
	if acquired {
		DBPoolInUse.Inc()
	} else {
		DBPoolInUse.Dec()
	}
}

// RecordMigrationStep records the outcome of one migration step
func RecordMigrationStep(step, result string) {
	MigrationSteps.WithLabelValues(step, result).Inc()
}

// RecordCircuitBreakerState maps a breaker state name to the gauge value
// and counts the transition.
func RecordCircuitBreakerState(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	var value float64
	switch to {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(value)
}

// errorType keeps label cardinality bounded by truncating driver messages.
func errorType(err error) string {
	msg := err.Error()
	if len(msg) > 50 {
		msg = msg[:50]
	}
	return msg
}
