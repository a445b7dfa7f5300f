// Package metrics exposes Prometheus instruments for the store locator.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors used across modules. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	storeFetches  *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	locations     *prometheus.CounterVec
	sessions      *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		storeFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storelocator",
			Name:      "store_fetches_total",
			Help:      "Store directory fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storelocator",
			Name:      "store_fetch_duration_seconds",
			Help:      "Latency of store directory fetches.",
			Buckets:   prometheus.DefBuckets,
		}),
		locations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storelocator",
			Name:      "location_resolutions_total",
			Help:      "Reference coordinate resolutions by source.",
		}, []string{"source"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storelocator",
			Name:      "sessions_total",
			Help:      "Locator sessions by final state.",
		}, []string{"state"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storelocator",
			Name:      "store_cache_lookups_total",
			Help:      "Store payload cache lookups by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.storeFetches,
		m.fetchDuration,
		m.locations,
		m.sessions,
		m.cacheLookups,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one store fetch.
func (m *Metrics) ObserveFetch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.storeFetches.WithLabelValues(outcome).Inc()
	m.fetchDuration.Observe(elapsed.Seconds())
}

// ObserveLocation records where a reference coordinate came from.
func (m *Metrics) ObserveLocation(source string) {
	if m == nil {
		return
	}
	m.locations.WithLabelValues(source).Inc()
}

// ObserveSession records the state a session ended in.
func (m *Metrics) ObserveSession(state string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(state).Inc()
}

// ObserveCache records a cache hit or miss.
func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
