// Package metrics exposes Prometheus counters for the file event pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record classification results.
const (
	ResultClassified  = "classified"
	ResultUnsupported = "unsupported"
	ResultParseError  = "parse_error"
)

// Metrics provides observability for the pipeline. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// Raw records by classification result
	Records *prometheus.CounterVec

	// Classified events by kind and processing outcome
	Events *prometheus.CounterVec

	// Events dropped because the post-processing queue was full
	QueueDropped prometheus.Counter

	// Events dropped by common post-processing (bad timestamp)
	PostProcessDropped prometheus.Counter

	// Handle cache evictions at capacity
	CacheEvictions prometheus.Counter

	// Renames whose handle was not in the cache
	RenameUncorrelated prometheus.Counter

	// Subscriber failures by subscriber name
	SubscriberErrors *prometheus.CounterVec

	factory promauto.Factory
}

// New creates the pipeline metrics and registers them with reg.
// A nil reg creates unregistered collectors.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Records: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "file_tracer_records_total",
			Help: "Raw trace records seen by the classifier, by result",
		}, []string{"result"}),

		Events: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "file_tracer_events_total",
			Help: "Classified file events by kind and processing outcome",
		}, []string{"kind", "outcome"}),

		QueueDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "file_tracer_queue_dropped_total",
			Help: "Events dropped because the post-processing queue was full",
		}),

		PostProcessDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "file_tracer_postprocess_dropped_total",
			Help: "Events dropped by common post-processing",
		}),

		CacheEvictions: factory.NewCounter(prometheus.CounterOpts{
			Name: "file_tracer_cache_evictions_total",
			Help: "Handle cache entries evicted at capacity",
		}),

		RenameUncorrelated: factory.NewCounter(prometheus.CounterOpts{
			Name: "file_tracer_rename_uncorrelated_total",
			Help: "Rename events whose file object was not found in the handle cache",
		}),

		SubscriberErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "file_tracer_subscriber_errors_total",
			Help: "Errors returned or panics raised by event subscribers",
		}, []string{"subscriber"}),

		factory: factory,
	}
}

// IncRecord counts a raw record by classification result.
func (m *Metrics) IncRecord(result string) {
	if m != nil {
		m.Records.WithLabelValues(result).Inc()
	}
}

// IncEvent counts a processed event.
func (m *Metrics) IncEvent(kind, outcome string) {
	if m != nil {
		m.Events.WithLabelValues(kind, outcome).Inc()
	}
}

// IncQueueDropped counts an event lost to a full queue.
func (m *Metrics) IncQueueDropped() {
	if m != nil {
		m.QueueDropped.Inc()
	}
}

// IncPostProcessDropped counts an event rejected by common post-processing.
func (m *Metrics) IncPostProcessDropped() {
	if m != nil {
		m.PostProcessDropped.Inc()
	}
}

// IncCacheEviction counts a handle cache eviction.
func (m *Metrics) IncCacheEviction() {
	if m != nil {
		m.CacheEvictions.Inc()
	}
}

// WatchCacheSize exports size as the file_tracer_cache_entries gauge,
// sampled at scrape time.
func (m *Metrics) WatchCacheSize(size func() int) {
	if m == nil {
		return
	}
	m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "file_tracer_cache_entries",
		Help: "Handles currently held by the handle cache",
	}, func() float64 {
		return float64(size())
	})
}

// IncRenameUncorrelated counts a rename without a cached old path.
func (m *Metrics) IncRenameUncorrelated() {
	if m != nil {
		m.RenameUncorrelated.Inc()
	}
}

// IncSubscriberError counts a subscriber failure.
func (m *Metrics) IncSubscriberError(subscriber string) {
	if m != nil {
		m.SubscriberErrors.WithLabelValues(subscriber).Inc()
	}
}
