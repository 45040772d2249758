// Package telemetry holds hashver's Prometheus metrics and OpenTelemetry
// tracer.
//
// Metrics are registered on the default registry. A one-shot CLI run can
// export them to a node_exporter textfile with WriteMetrics.
package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ModulesHashed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hashver_modules_hashed_total",
		Help: "Total number of modules whose own hash was computed.",
	})

	FilesHashed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hashver_files_hashed_total",
		Help: "Total number of files fed to a content digest.",
	})

	BytesHashed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hashver_bytes_hashed_total",
		Help: "Total number of file bytes read by the content hasher.",
	})

	OwnHashDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "hashver_own_hash_seconds",
		Help:    "Time spent computing the own hash of a module.",
		Buckets: prometheus.DefBuckets,
	})

	ComputeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hashver_compute_seconds",
		Help:    "Time spent in each hashversion computation pass.",
		Buckets: prometheus.DefBuckets,
	}, []string{"pass"})

	AncestorFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hashver_ancestor_fallbacks_total",
		Help: "Total number of ancestors hashed by coordinates because no descriptor was available.",
	})

	DBLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hashver_db_lookups_total",
		Help: "Total number of existence database lookups by result.",
	}, []string{"result"})

	ProbeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hashver_probe_requests_total",
		Help: "Total number of artifact existence probes by method and result.",
	}, []string{"method", "result"})

	ProbeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hashver_probe_seconds",
		Help:    "Latency of a single artifact existence probe.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	WatcherEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hashver_watcher_events_total",
		Help: "Total number of file system events received by the watcher.",
	})
)

// Result label values.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultError = "error"
)

// WriteMetrics writes all registered metrics to path in the Prometheus text
// exposition format. An empty path is a no-op.
func WriteMetrics(path string) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}
