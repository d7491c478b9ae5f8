package providers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-summary/internal/metrics"
	"github.com/i474232898/weather-summary/internal/weather"
)

const (
	// DefaultOpenWeatherBaseURL is the public OpenWeatherMap API host.
	DefaultOpenWeatherBaseURL = "https://api.openweathermap.org"

	forecastPath = "/data/2.5/forecast"
)

// OpenWeatherForecaster implements weather.Fetcher for the OpenWeatherMap
// five-day forecast endpoint.
type OpenWeatherForecaster struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewOpenWeatherForecaster builds a forecaster against baseURL
// (DefaultOpenWeatherBaseURL when empty). m may be nil.
func NewOpenWeatherForecaster(client *http.Client, baseURL, apiKey string, m *metrics.Metrics) *OpenWeatherForecaster {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	return &OpenWeatherForecaster{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newCircuitBreaker("openweather-forecast"),
		metrics: m,
	}
}

func (p *OpenWeatherForecaster) Name() string {
	return p.name
}

// Fetch returns the raw forecast document for city. The city is sent as-is.
// A successful response with an empty body yields an empty slice and no error.
func (p *OpenWeatherForecaster) Fetch(ctx context.Context, city string) ([]byte, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("q", city)
		values.Set("appid", p.apiKey)

		return http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+forecastPath+"?"+values.Encode(), nil)
	}

	start := time.Now()
	body, err := doRequest(ctx, p.client, p.circuit, buildRequest)
	p.metrics.ObserveUpstream(p.name, outcomeOf(err), time.Since(start))
	if err != nil {
		return nil, weather.ExternalFailure(city, err)
	}
	return body, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errCircuitOpen):
		return "circuit_open"
	case errors.Is(err, errRateLimited):
		return "rate_limited"
	case errors.Is(err, errServerError):
		return "server_error"
	case errors.Is(err, errUnexpected):
		return "unexpected_status"
	default:
		return "transport_error"
	}
}
