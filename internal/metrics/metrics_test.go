package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveUpstream("openweathermap", "ok", 120*time.Millisecond)
	m.ObserveUpstream("openweathermap", "ok", 80*time.Millisecond)
	m.ObserveUpstream("openweathermap", "error", time.Second)
	m.ObserveSummary("ok")
	m.ObserveSummary("not_found")

	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("openweathermap", "ok")); got != 2 {
		t.Errorf("expected 2 successful upstream calls, got %v", got)
	}
	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("openweathermap", "error")); got != 1 {
		t.Errorf("expected 1 failed upstream call, got %v", got)
	}
	if got := testutil.ToFloat64(m.SummaryRequests.WithLabelValues("not_found")); got != 1 {
		t.Errorf("expected 1 not_found lookup, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveUpstream("p", "ok", time.Second)
	m.ObserveSummary("ok")
}

func TestRegisterCache(t *testing.T) {
	reg := prometheus.NewRegistry()
	stats := CacheStats{Hits: 3, Misses: 2, Coalesced: 1, Evictions: 4, Entries: 7}
	RegisterCache(reg, func() CacheStats { return stats })

	count, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if count != 5 {
		t.Fatalf("expected 5 cache series, got %d", count)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	values := make(map[string]float64)
	for _, mf := range families {
		metric := mf.GetMetric()[0]
		if c := metric.GetCounter(); c != nil {
			values[mf.GetName()] = c.GetValue()
		}
		if g := metric.GetGauge(); g != nil {
			values[mf.GetName()] = g.GetValue()
		}
	}

	want := map[string]float64{
		"weather_cache_hits_total":      3,
		"weather_cache_misses_total":    2,
		"weather_cache_coalesced_total": 1,
		"weather_cache_evictions_total": 4,
		"weather_cache_entries":         7,
	}
	for name, v := range want {
		if values[name] != v {
			t.Errorf("%s = %v, want %v", name, values[name], v)
		}
	}
}
