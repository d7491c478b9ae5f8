package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service's Prometheus series. All methods are safe on a
// nil receiver so components can run without instrumentation.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	SummaryRequests  *prometheus.CounterVec
}

// New registers the service metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_upstream_requests_total",
				Help: "Total forecast provider calls by outcome",
			},
			[]string{"provider", "outcome"},
		),
		UpstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "weather_upstream_latency_seconds",
				Help:    "Forecast provider call latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),
		SummaryRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "weather_summary_requests_total",
				Help: "Total summary lookups by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// ObserveUpstream records one provider call.
func (m *Metrics) ObserveUpstream(provider, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(provider, outcome).Inc()
	m.UpstreamLatency.WithLabelValues(provider).Observe(took.Seconds())
}

// ObserveSummary records the outcome of one summary lookup.
func (m *Metrics) ObserveSummary(outcome string) {
	if m == nil {
		return
	}
	m.SummaryRequests.WithLabelValues(outcome).Inc()
}

// CacheStats is the subset of cache counters exported as metrics.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Coalesced int64
	Evictions int64
	Entries   int
}

// RegisterCache exports cache counters read from stats at scrape time.
func RegisterCache(reg prometheus.Registerer, stats func() CacheStats) {
	factory := promauto.With(reg)
	counter := func(name, help string, pick func(CacheStats) int64) {
		factory.NewCounterFunc(prometheus.CounterOpts{Name: name, Help: help}, func() float64 {
			return float64(pick(stats()))
		})
	}

	counter("weather_cache_hits_total", "Summary cache hits",
		func(s CacheStats) int64 { return s.Hits })
	counter("weather_cache_misses_total", "Summary cache misses that triggered a computation",
		func(s CacheStats) int64 { return s.Misses })
	counter("weather_cache_coalesced_total", "Summary lookups that shared a computation",
		func(s CacheStats) int64 { return s.Coalesced })
	counter("weather_cache_evictions_total", "Summary cache entries dropped by TTL or capacity",
		func(s CacheStats) int64 { return s.Evictions })

	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "weather_cache_entries",
		Help: "Summary cache entries currently stored",
	}, func() float64 {
		return float64(stats().Entries)
	})
}
