// Package metrics provides Prometheus metrics for the tick data engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ingestion
	TicksIngested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nsedata",
		Subsystem: "ingest",
		Name:      "ticks_total",
		Help:      "Tick rows written by the bulk ingestion pipeline",
	})
	BatchesCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nsedata",
		Subsystem: "ingest",
		Name:      "batches_completed_total",
		Help:      "Ingestion batches committed successfully",
	})
	BatchesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nsedata",
		Subsystem: "ingest",
		Name:      "batches_failed_total",
		Help:      "Ingestion batches that failed as a whole",
	})

	// Purchases
	PurchasesPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nsedata",
		Subsystem: "purchase",
		Name:      "placed_total",
		Help:      "Purchase orders recorded",
	})
	LiquidityRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nsedata",
		Subsystem: "purchase",
		Name:      "liquidity_rejections_total",
		Help:      "Purchases rejected for exceeding remaining quantity",
	})

	// Read cache
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nsedata",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Purchase listing pages served from cache",
	})
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nsedata",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Purchase listing reads that went to the database",
	})
	CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nsedata",
		Subsystem: "cache",
		Name:      "evictions_total",
		Help:      "Cached entries evicted as corrupt or schema-incompatible",
	})

	// Broadcaster
	SnapshotPushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nsedata",
		Subsystem: "broadcast",
		Name:      "pushes_total",
		Help:      "Snapshot pages pushed to subscribers",
	})
	SnapshotPushErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "nsedata",
		Subsystem: "broadcast",
		Name:      "push_errors_total",
		Help:      "Failed snapshot pushes (subscriber removed)",
	})
)

// StartMetricsServer serves the Prometheus endpoint on addr in the
// background.
func StartMetricsServer(addr, path string) {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	go func() {
		_ = http.ListenAndServe(addr, mux)
	}()
}
