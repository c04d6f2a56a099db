// Package observability provides metrics and tracing primitives for the application.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkwell_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostViewsRecorded counts accepted view increments.
	PostViewsRecorded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_post_views_recorded_total",
		Help: "Total number of post view increments applied",
	})

	// PostViewsDropped counts view increments lost to storage failures.
	// Losing a view is accepted; losing it silently is not.
	PostViewsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "inkwell_post_views_dropped_total",
		Help: "Total number of post view increments dropped on storage failure",
	})

	// ToggleConflictsResolved counts toggle races absorbed by the uniqueness
	// constraint, by relation kind.
	ToggleConflictsResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkwell_toggle_conflicts_resolved_total",
		Help: "Total number of follow/save toggle races resolved as already-desired state",
	}, []string{"relation"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
