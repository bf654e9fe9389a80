package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/coherentnotebook/entropy/internal/cache"
	"github.com/coherentnotebook/entropy/internal/propagation"
)

// Namespace is the Prometheus metric namespace shared by every
// collector this package registers.
const Namespace = "notebook_entropy"

// Metrics bundles the counters and gauges this package registers for
// the propagation worker and catalog cache. Construct one with
// NewMetrics and register it with a prometheus.Registerer (or
// prometheus.DefaultRegisterer).
type Metrics struct {
	jobsProcessed  prometheus.Gauge
	entriesUpdated prometheus.Gauge
	jobsSkipped    prometheus.Gauge
	jobsFailed     prometheus.Gauge
	queueDepth     prometheus.Gauge

	cacheTotal   prometheus.Gauge
	cacheFresh   prometheus.Gauge
	cacheStale   prometheus.Gauge
	cacheExpired prometheus.Gauge
}

// NewMetrics constructs the collectors, unregistered.
func NewMetrics() *Metrics {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      name,
			Help:      help,
		})
	}

	return &Metrics{
		jobsProcessed:  gauge("propagation_jobs_processed", "Total propagation jobs successfully applied."),
		entriesUpdated: gauge("propagation_entries_updated", "Total entries whose cumulative_cost was updated."),
		jobsSkipped:    gauge("propagation_jobs_skipped", "Total propagation jobs skipped due to idempotency."),
		jobsFailed:     gauge("propagation_jobs_failed", "Total propagation jobs that failed after retries."),
		queueDepth:     gauge("propagation_queue_depth", "Current number of pending propagation jobs."),

		cacheTotal:   gauge("catalog_cache_entries_total", "Total cached catalog entries."),
		cacheFresh:   gauge("catalog_cache_entries_fresh", "Cached catalog entries currently fresh."),
		cacheStale:   gauge("catalog_cache_entries_stale", "Cached catalog entries currently stale."),
		cacheExpired: gauge("catalog_cache_entries_expired", "Cached catalog entries currently expired."),
	}
}

// Collectors returns every collector in m, for bulk registration:
// registerer.MustRegister(m.Collectors()...).
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.jobsProcessed, m.entriesUpdated, m.jobsSkipped, m.jobsFailed, m.queueDepth,
		m.cacheTotal, m.cacheFresh, m.cacheStale, m.cacheExpired,
	}
}

// ObserveWorker copies a propagation worker's current stats and queue
// depth into the registered gauges. Call on a ticker or after each
// drain cycle.
func (m *Metrics) ObserveWorker(w *propagation.Worker) {
	stats := w.Stats()
	m.jobsProcessed.Set(float64(stats.JobsProcessed))
	m.entriesUpdated.Set(float64(stats.EntriesUpdated))
	m.jobsSkipped.Set(float64(stats.JobsSkipped))
	m.jobsFailed.Set(float64(stats.JobsFailed))
	m.queueDepth.Set(float64(w.QueueDepth()))
}

// ObserveCache copies a catalog cache's current status partition into
// the registered gauges.
func (m *Metrics) ObserveCache(c *cache.Cache) {
	stats := c.Stats()
	m.cacheTotal.Set(float64(stats.Total))
	m.cacheFresh.Set(float64(stats.Fresh))
	m.cacheStale.Set(float64(stats.Stale))
	m.cacheExpired.Set(float64(stats.Expired))
}
