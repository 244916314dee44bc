// Package metrics registers the Prometheus collectors the store,
// block-state manager and execution session report through. It plays the
// role core/state/snapshot gives its package-level metrics.Meter
// variables (snapshotCleanHitMeter and friends), re-grounded on the
// Prometheus client.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// StoreGetTotal counts store adapter Get calls by outcome ("hit" or "miss").
	StoreGetTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_get_total",
		Help: "Store adapter Get calls by cache outcome.",
	}, []string{"outcome"})

	// StoreCommitDuration observes commit(batch) latency against the backend.
	StoreCommitDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "store_commit_duration_seconds",
		Help:    "Latency of store adapter Commit calls.",
		Buckets: prometheus.DefBuckets,
	})

	// BlockstateFinalizeTotal counts manager.Finalize calls.
	BlockstateFinalizeTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blockstate_finalize_total",
		Help: "Number of Finalize calls completed.",
	})

	// BlockstatePrunedBlocksTotal counts blocks removed as orphans.
	BlockstatePrunedBlocksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blockstate_pruned_blocks_total",
		Help: "Number of blocks discarded as orphan siblings/descendants.",
	})

	// SessionWitnessEntriesTotal counts witness entries recorded across sessions.
	SessionWitnessEntriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "session_witness_entries_total",
		Help: "Number of witness entries recorded by execution sessions.",
	})
)

// Registry is the collector registry used by this module's binaries.
// Tests and library consumers may ignore it entirely; nothing in
// internal/ or cmd/ panics if it's never registered against.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(
		StoreGetTotal,
		StoreCommitDuration,
		BlockstateFinalizeTotal,
		BlockstatePrunedBlocksTotal,
		SessionWitnessEntriesTotal,
	)
}
