// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "teammatch"

var (
	// CacheOperations counts suggestion cache lookups and writes.
	// Labels: op (get, set, invalidate), result (hit, miss, ok, error)
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Suggestion cache operations by result",
		},
		[]string{"op", "result"},
	)

	// SuggestionSource counts where each suggestion list came from.
	// Labels: source (cache, oracle, skills)
	SuggestionSource = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "suggestions_total",
			Help:      "Suggestion lists served by candidate source",
		},
		[]string{"source"},
	)

	// SuggestDuration tracks end-to-end ranking latency.
	SuggestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "matching",
			Name:      "suggest_duration_seconds",
			Help:      "Duration of candidate ranking in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)

	// OracleFailures counts embedding oracle calls that failed and fell back.
	// Labels: op (similarity, find_similar, index, remove)
	OracleFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "embedding",
			Name:      "failures_total",
			Help:      "Embedding oracle calls that failed",
		},
		[]string{"op"},
	)

	// RequestTransitions counts request state changes.
	// Labels: status (pending, accepted, rejected, cancelled, expired)
	RequestTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "transitions_total",
			Help:      "Request status transitions",
		},
		[]string{"status"},
	)

	// ExpiredBySweep counts requests expired by the background sweep.
	ExpiredBySweep = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "requests",
			Name:      "sweep_expired_total",
			Help:      "Pending requests persisted as expired by the sweep",
		},
	)

	// LedgerConflicts counts membership mutations rejected by an invariant.
	// Labels: code
	LedgerConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "conflicts_total",
			Help:      "Ledger mutations rejected with a conflict",
		},
		[]string{"code"},
	)

	// LedgerRetries counts optimistic-concurrency retries of ledger mutations.
	LedgerRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "version_retries_total",
			Help:      "Ledger mutations retried after a version conflict",
		},
	)

	// NotificationFailures counts publish attempts that failed.
	NotificationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notification",
			Name:      "publish_failures_total",
			Help:      "Notifications that could not be published",
		},
	)

	// JobRuns counts background job executions.
	// Labels: job, result (ok, error)
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Background job runs by result",
		},
		[]string{"job", "result"},
	)
)
