// Package telemetry exposes the Genome engine's own operational
// metrics over Prometheus, separate from the risk metrics the engine
// computes about the repository it scans (RiskLens, in
// internal/subsystems).
//
// Grounded on the teacher's cmd/cie ingestion pipeline
// (pkg/ingestion/metrics.go's once-initialized counter/histogram set,
// cmd/cie/index.go's promhttp.Handler mount), narrowed to the three
// operations SPEC_FULL.md calls out: scan, query, and context-assembly
// latency, plus query cache hit rate.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	scanDuration    prometheus.Histogram
	queryDuration   prometheus.Histogram
	contextDuration prometheus.Histogram

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	scansTotal  *prometheus.CounterVec
	queryTotal  *prometheus.CounterVec
)

var buckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// Init registers every collector exactly once. Safe to call from
// multiple command entry points; the underlying sync.Once absorbs
// repeat calls.
func Init() {
	once.Do(func() {
		scanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "genome_scan_duration_seconds", Help: "Time spent building or updating a Genome snapshot.", Buckets: buckets,
		})
		queryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "genome_query_duration_seconds", Help: "Time spent answering one query predicate.", Buckets: buckets,
		})
		contextDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "genome_context_duration_seconds", Help: "Time spent assembling one context pack.", Buckets: buckets,
		})
		cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "genome_query_cache_hits_total", Help: "Query cache lookups served from cache.",
		})
		cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "genome_query_cache_misses_total", Help: "Query cache lookups that missed and recomputed.",
		})
		scansTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "genome_scans_total", Help: "Completed scans, partitioned by outcome.",
		}, []string{"outcome"})
		queryTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "genome_queries_total", Help: "Completed queries, partitioned by outcome.",
		}, []string{"outcome"})

		prometheus.MustRegister(
			scanDuration, queryDuration, contextDuration,
			cacheHits, cacheMisses, scansTotal, queryTotal,
		)
	})
}

// ObserveScan records one scan's wall-clock duration and outcome.
// outcome is typically "ok", "partial", or "error".
func ObserveScan(d time.Duration, outcome string) {
	if scanDuration == nil {
		return
	}
	scanDuration.Observe(d.Seconds())
	scansTotal.WithLabelValues(outcome).Inc()
}

// ObserveQuery records one query's duration and outcome.
func ObserveQuery(d time.Duration, outcome string) {
	if queryDuration == nil {
		return
	}
	queryDuration.Observe(d.Seconds())
	queryTotal.WithLabelValues(outcome).Inc()
}

// ObserveContext records one context-assembly call's duration.
func ObserveContext(d time.Duration) {
	if contextDuration == nil {
		return
	}
	contextDuration.Observe(d.Seconds())
}

// RecordCacheHit and RecordCacheMiss track the query cache's hit rate.
func RecordCacheHit() {
	if cacheHits != nil {
		cacheHits.Inc()
	}
}

func RecordCacheMiss() {
	if cacheMisses != nil {
		cacheMisses.Inc()
	}
}
