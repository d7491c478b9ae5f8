package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/i474232898/weather-summary/internal/metrics"
	"github.com/i474232898/weather-summary/internal/weather"
)

func TestOpenWeatherForecaster_Fetch(t *testing.T) {
	const body = `{"city":{"name":"London"},"list":[]}`

	var gotPath, gotCity, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCity = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("appid")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	p := NewOpenWeatherForecaster(srv.Client(), srv.URL+"/", "secret", nil)
	raw, err := p.Fetch(context.Background(), "  São Paulo, BR ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(raw) != body {
		t.Errorf("expected raw body %q, got %q", body, raw)
	}
	if gotPath != "/data/2.5/forecast" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotCity != "  São Paulo, BR " {
		t.Errorf("expected city passed verbatim, got %q", gotCity)
	}
	if gotKey != "secret" {
		t.Errorf("expected appid secret, got %q", gotKey)
	}
}

func TestOpenWeatherForecaster_EmptyCityIsSent(t *testing.T) {
	var hasQ bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasQ = r.URL.Query()["q"]
	}))
	defer srv.Close()

	p := NewOpenWeatherForecaster(srv.Client(), srv.URL, "secret", nil)
	raw, err := p.Fetch(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasQ {
		t.Error("expected q parameter to be present even when empty")
	}
	if len(raw) != 0 {
		t.Errorf("expected empty body, got %q", raw)
	}
}

func TestOpenWeatherForecaster_NonSuccessStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"not found", http.StatusNotFound, errUnexpected},
		{"unauthorized", http.StatusUnauthorized, errUnexpected},
		{"rate limited", http.StatusTooManyRequests, errRateLimited},
		{"server error", http.StatusBadGateway, errServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(`{"cod":"error"}`))
			}))
			defer srv.Close()

			p := NewOpenWeatherForecaster(srv.Client(), srv.URL, "secret", nil)
			_, err := p.Fetch(context.Background(), "Paris")

			if weather.KindOf(err) != weather.KindExternalFailure {
				t.Fatalf("expected KindExternalFailure, got %v", err)
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected cause %v, got %v", tc.wantErr, errors.Unwrap(err))
			}
			if err.Error() != "Error fetching data for city: Paris" {
				t.Errorf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestOpenWeatherForecaster_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	p := NewOpenWeatherForecaster(http.DefaultClient, url, "secret", nil)
	_, err := p.Fetch(context.Background(), "Oslo")
	if weather.KindOf(err) != weather.KindExternalFailure {
		t.Fatalf("expected KindExternalFailure, got %v", err)
	}
	if errors.Unwrap(err) == nil {
		t.Error("expected transport cause to be attached")
	}
}

func TestOpenWeatherForecaster_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	p := NewOpenWeatherForecaster(srv.Client(), srv.URL, "secret", m)

	for range breakerTripAfter {
		if _, err := p.Fetch(context.Background(), "Lima"); !errors.Is(err, errServerError) {
			t.Fatalf("expected server error, got %v", err)
		}
	}

	_, err := p.Fetch(context.Background(), "Lima")
	if !errors.Is(err, errCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if weather.KindOf(err) != weather.KindExternalFailure {
		t.Errorf("expected KindExternalFailure, got %v", weather.KindOf(err))
	}
	if got := hits.Load(); got != breakerTripAfter {
		t.Errorf("expected %d upstream hits, got %d", breakerTripAfter, got)
	}

	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("openweathermap", "circuit_open")); got != 1 {
		t.Errorf("expected 1 circuit_open observation, got %v", got)
	}
	if got := testutil.ToFloat64(m.UpstreamRequests.WithLabelValues("openweathermap", "server_error")); got != breakerTripAfter {
		t.Errorf("expected %d server_error observations, got %v", breakerTripAfter, got)
	}
}

func TestOpenWeatherForecaster_NoClient(t *testing.T) {
	p := NewOpenWeatherForecaster(nil, "", "secret", nil)
	_, err := p.Fetch(context.Background(), "Quito")
	if !errors.Is(err, errNoHTTPClient) {
		t.Fatalf("expected errNoHTTPClient, got %v", err)
	}
}

func TestOpenWeatherForecaster_ClientErrorsDoNotOpenCircuit(t *testing.T) {
	var londonHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "London" {
			londonHits.Add(1)
			_, _ = w.Write([]byte(`{"city":{"name":"London"},"list":[]}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherForecaster(srv.Client(), srv.URL, "secret", nil)

	for range breakerTripAfter + 1 {
		_, err := p.Fetch(context.Background(), "Nowhereville")
		if weather.KindOf(err) != weather.KindExternalFailure {
			t.Fatalf("expected KindExternalFailure, got %v", err)
		}
		if !errors.Is(err, errUnexpected) {
			t.Fatalf("expected unexpected status cause, got %v", errors.Unwrap(err))
		}
	}

	if _, err := p.Fetch(context.Background(), "London"); err != nil {
		t.Fatalf("expected London to be fetched, got %v", err)
	}
	if got := londonHits.Load(); got != 1 {
		t.Errorf("expected 1 outbound call for London, got %d", got)
	}
}
