package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-summary/internal/logger"
	"github.com/i474232898/weather-summary/internal/weather"
)

// refreshTimeout bounds each background refresh.
const refreshTimeout = 30 * time.Second

// Refresher recomputes and re-caches the summary for a city.
type Refresher interface {
	Refresh(ctx context.Context, city string) (weather.Summary, error)
}

// Purger drops expired cache entries.
type Purger interface {
	PurgeExpired() int
}

// Config selects which background jobs run. Zero intervals disable a job.
type Config struct {
	WarmCities    []string
	WarmInterval  time.Duration
	PurgeInterval time.Duration
}

// Scheduler periodically warms configured cities and purges expired entries.
type Scheduler struct {
	scheduler *gocron.Scheduler
	refresher Refresher
	purger    Purger
	cfg       Config
	log       *logger.Logger
}

// New creates a new Scheduler. purger may be nil when the cache has no TTL.
func New(cfg Config, refresher Refresher, purger Purger, log *logger.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		refresher: refresher,
		purger:    purger,
		cfg:       cfg,
		log:       log,
	}
}

// Start schedules the configured jobs and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	jobs := 0

	if len(s.cfg.WarmCities) > 0 && s.cfg.WarmInterval > 0 {
		if _, err := s.scheduler.Every(s.cfg.WarmInterval).SingletonMode().Do(s.warm); err != nil {
			return err
		}
		jobs++
	}

	if s.purger != nil && s.cfg.PurgeInterval > 0 {
		// Purging right away is pointless, the cache starts empty.
		if _, err := s.scheduler.Every(s.cfg.PurgeInterval).WaitForSchedule().Do(s.purge); err != nil {
			return err
		}
		jobs++
	}

	if jobs == 0 {
		s.log.Info("scheduler: no jobs configured; nothing to schedule")
		return nil
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// warm refreshes every configured city concurrently.
func (s *Scheduler) warm() {
	s.log.Info("scheduler: running warm-up job", slog.Int("cities", len(s.cfg.WarmCities)))

	var wg sync.WaitGroup
	for _, city := range s.cfg.WarmCities {
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()

			if _, err := s.refresher.Refresh(ctx, city); err != nil {
				s.log.Warn("scheduler: refresh failed", slog.String("city", city), logger.Err(err))
			}
		}()
	}
	wg.Wait()
	s.log.Info("scheduler: completed warm-up job")
}

func (s *Scheduler) purge() {
	if removed := s.purger.PurgeExpired(); removed > 0 {
		s.log.Debug("scheduler: purged expired summaries", slog.Int("removed", removed))
	}
}
