package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	GraphNodes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lattice_graph_nodes_total",
		Help: "Current number of live nodes in the store.",
	})

	GraphEdges = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lattice_graph_edges_total",
		Help: "Current number of live edges in the store.",
	})

	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lattice_mutations_total",
		Help: "Total number of replayed mutations by operation and outcome.",
	}, []string{"operation", "outcome"})

	ReplayDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lattice_replay_seconds",
		Help:    "Time spent replaying an action batch into a snapshot.",
		Buckets: prometheus.DefBuckets,
	})

	SnapshotBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lattice_snapshot_bytes",
		Help:    "Size of encoded snapshots.",
		Buckets: prometheus.ExponentialBuckets(256, 4, 8),
	})

	WatcherEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lattice_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)
