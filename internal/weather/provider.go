package weather

import "context"

// Fetcher retrieves the raw forecast document for a city
// (e.g. OpenWeatherMap's five-day forecast).
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, city string) ([]byte, error)
}

// Cache is the contract the summary cache must satisfy.
// Keys are raw city strings; no normalization is applied.
type Cache interface {
	GetOrCompute(key string, compute func() (Summary, error)) (Summary, error)
	Recompute(key string, compute func() (Summary, error)) (Summary, error)
}

// Recorder observes lookup outcomes ("ok" or an ErrorKind name).
type Recorder interface {
	ObserveSummary(outcome string)
}
