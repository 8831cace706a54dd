// Package prometheus exposes the platform's operational metrics.  A single
// Metrics value owns a private registry so tests can construct as many
// instances as they like without hitting duplicate-registration panics from
// the default global registry.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every metric the apiserver emits.
type Metrics struct {
	registry *prometheus.Registry

	// Refresh pipeline
	RefreshCyclesTotal   *prometheus.CounterVec
	RefreshCycleDuration prometheus.Histogram
	SnapshotCountries    prometheus.Gauge
	GlobalThreatIndex    prometheus.Gauge
	ActiveAnomalies      prometheus.Gauge
	DegradedCountries    prometheus.Counter

	// Enrichment cache
	BriefCacheHits   prometheus.Counter
	BriefCacheMisses prometheus.Counter

	// Collaborators
	LLMRequestsTotal   *prometheus.CounterVec
	LLMRequestDuration prometheus.Histogram
	HeadlineFetches    *prometheus.CounterVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Alert fan-out
	AlertsPublished *prometheus.CounterVec
}

// New constructs a Metrics instance with all collectors registered on a
// fresh registry under the "sentinel" namespace.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		RefreshCyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "refresh_cycles_total",
			Help:      "Completed refresh cycles by outcome.",
		}, []string{"status"}),
		RefreshCycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sentinel",
			Name:      "refresh_cycle_duration_seconds",
			Help:      "Wall-clock duration of a full snapshot rebuild.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		SnapshotCountries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sentinel",
			Name:      "snapshot_countries",
			Help:      "Countries present in the published snapshot.",
		}),
		GlobalThreatIndex: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sentinel",
			Name:      "global_threat_index",
			Help:      "Global threat index of the published snapshot.",
		}),
		ActiveAnomalies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "sentinel",
			Name:      "active_anomalies",
			Help:      "Countries flagged anomalous in the published snapshot.",
		}),
		DegradedCountries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "degraded_countries_total",
			Help:      "Countries scored with the neutral default because the classifier was unavailable.",
		}),
		BriefCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "brief_cache_hits_total",
			Help:      "Enrichment requests served from the brief cache.",
		}),
		BriefCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "brief_cache_misses_total",
			Help:      "Enrichment requests that regenerated the brief.",
		}),
		LLMRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "llm_requests_total",
			Help:      "Narrative generation calls by outcome.",
		}, []string{"status"}),
		LLMRequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sentinel",
			Name:      "llm_request_duration_seconds",
			Help:      "Latency of narrative generation calls.",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}),
		HeadlineFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "headline_fetches_total",
			Help:      "Headline fetches by outcome.",
		}, []string{"status"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sentinel",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		AlertsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel",
			Name:      "alerts_published_total",
			Help:      "Escalation alerts published to the broker by type.",
		}, []string{"type"}),
	}

	reg.MustRegister(
		m.RefreshCyclesTotal,
		m.RefreshCycleDuration,
		m.SnapshotCountries,
		m.GlobalThreatIndex,
		m.ActiveAnomalies,
		m.DegradedCountries,
		m.BriefCacheHits,
		m.BriefCacheMisses,
		m.LLMRequestsTotal,
		m.LLMRequestDuration,
		m.HeadlineFetches,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AlertsPublished,
	)
	return m
}

// Handler returns the HTTP handler serving this instance's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one served HTTP request.
func (m *Metrics) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveRefresh records one completed refresh cycle and updates the
// snapshot-level gauges.
func (m *Metrics) ObserveRefresh(status string, elapsed time.Duration, countries, gti, anomalies int) {
	m.RefreshCyclesTotal.WithLabelValues(status).Inc()
	m.RefreshCycleDuration.Observe(elapsed.Seconds())
	m.SnapshotCountries.Set(float64(countries))
	m.GlobalThreatIndex.Set(float64(gti))
	m.ActiveAnomalies.Set(float64(anomalies))
}
