package weather

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/i474232898/weather-summary/internal/logger"
)

// Service produces forecast summaries, memoized per raw city string.
type Service struct {
	fetcher  Fetcher
	cache    Cache
	recorder Recorder
	log      *logger.Logger
}

// NewService creates a new Service. recorder may be nil.
func NewService(fetcher Fetcher, cache Cache, recorder Recorder, log *logger.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		cache:    cache,
		recorder: recorder,
		log:      log,
	}
}

// GetSummary returns the summary for city, computing it on a cache miss.
// On failure nothing is cached.
func (s *Service) GetSummary(ctx context.Context, city string) (Summary, error) {
	// The computation may be shared with other callers waiting on the same
	// key, so one caller giving up must not cancel it.
	detached := context.WithoutCancel(ctx)

	summary, err := s.cache.GetOrCompute(city, func() (Summary, error) {
		return s.compute(detached, city)
	})
	s.observe(err)
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}

// Refresh recomputes the summary for city regardless of the cached value and
// overwrites the cache entry on success. It shares an in-flight computation
// for city with concurrent lookups.
func (s *Service) Refresh(ctx context.Context, city string) (Summary, error) {
	detached := context.WithoutCancel(ctx)
	return s.cache.Recompute(city, func() (Summary, error) {
		return s.compute(detached, city)
	})
}

// compute runs one fetch and aggregate cycle for city.
func (s *Service) compute(ctx context.Context, city string) (Summary, error) {
	s.log.Debug("fetching forecast", slog.String("city", city), slog.String("provider", s.fetcher.Name()))

	raw, err := s.fetcher.Fetch(ctx, city)
	if err != nil {
		var werr *Error
		if !errors.As(err, &werr) {
			err = ExternalFailure(city, err)
		}
		s.log.Error("forecast fetch failed", slog.String("city", city), logger.Err(errors.Unwrap(err)))
		return Summary{}, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return Summary{}, NotFound(city)
	}

	summary, err := Aggregate(raw)
	if err != nil {
		s.log.Warn("forecast aggregation failed", slog.String("city", city), logger.Err(err))
		return Summary{}, AggregationFailure(city, err)
	}

	s.log.Debug("forecast aggregated", slog.String("city", city), slog.String("reported_city", summary.City))
	return summary, nil
}

func (s *Service) observe(err error) {
	if s.recorder == nil {
		return
	}
	if err == nil {
		s.recorder.ObserveSummary("ok")
		return
	}
	s.recorder.ObserveSummary(KindOf(err).String())
}
