// Package metrics defines the Prometheus collectors for the data-access layer.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Store Operation Metrics
var (
	// StoreOpsTotal tracks store operations by operation and status.
	StoreOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaskit_store_operations_total",
			Help: "Total store operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// StoreCommitsTotal tracks atomic commits by outcome.
	StoreCommitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaskit_store_commits_total",
			Help: "Atomic commit outcomes (ok/conflict/error)",
		},
		[]string{"status"},
	)
)

// Repository Metrics
var (
	// CommitConflictsTotal tracks optimistic conflicts surfaced per entity.
	CommitConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaskit_commit_conflicts_total",
			Help: "Optimistic commit conflicts by entity",
		},
		[]string{"entity"},
	)

	// VoteRetriesTotal tracks vote transactions that lost a race and retried.
	VoteRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaskit_vote_retries_total",
			Help: "Vote read-modify-write attempts that were retried",
		},
		[]string{"operation"},
	)

	// AnalyticsEventsTotal tracks fire-and-forget event posts by status.
	AnalyticsEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saaskit_analytics_events_total",
			Help: "Analytics event posts by status (ok/failed)",
		},
		[]string{"status"},
	)
)

// Commit outcome labels for ObserveStoreCommit.
const (
	CommitOK       = "ok"
	CommitConflict = "conflict"
	CommitError    = "error"
)

// ObserveStoreOp records one read-path store operation.
func ObserveStoreOp(operation string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StoreOpsTotal.WithLabelValues(operation, status).Inc()
}

// ObserveStoreCommit records one atomic commit outcome.
func ObserveStoreCommit(outcome string) {
	StoreCommitsTotal.WithLabelValues(outcome).Inc()
}
