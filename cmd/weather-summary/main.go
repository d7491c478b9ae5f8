package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/weather-summary/internal/api/http"
	"github.com/i474232898/weather-summary/internal/config"
	"github.com/i474232898/weather-summary/internal/logger"
	"github.com/i474232898/weather-summary/internal/metrics"
	"github.com/i474232898/weather-summary/internal/scheduler"
	"github.com/i474232898/weather-summary/internal/store"
	"github.com/i474232898/weather-summary/internal/weather"
	"github.com/i474232898/weather-summary/internal/weather/providers"
	"github.com/i474232898/weather-summary/internal/worker"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", logger.Err(err))
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log.Logger)

	// Metrics registry served on /metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// In-memory summary cache with configured retention.
	cache := store.NewMemoryCache(cfg.CacheMaxEntries, cfg.CacheTTL)
	metrics.RegisterCache(reg, func() metrics.CacheStats {
		return metrics.CacheStats(cache.Stats())
	})

	forecaster := providers.NewOpenWeatherForecaster(httpClient, cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey, m)
	service := weather.NewService(forecaster, cache, m, log)

	pool := worker.NewPool(worker.Config{Workers: cfg.WorkerCount, QueueSize: cfg.WorkerQueueSize})
	defer pool.Stop()

	var purger scheduler.Purger
	if cfg.CacheTTL > 0 {
		purger = cache
	}
	sched := scheduler.New(scheduler.Config{
		WarmCities:    cfg.WarmCities,
		WarmInterval:  cfg.WarmInterval,
		PurgeInterval: cfg.CachePurgeInterval,
	}, service, purger, log)
	if err := sched.Start(); err != nil {
		log.Error("failed to start scheduler", logger.Err(err))
		os.Exit(1)
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.Options{
		Service:   service,
		Pool:      pool,
		Logger:    log,
		Metrics:   promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AccessLog: true,
	})

	go func() {
		log.Info("starting server", slog.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", logger.Err(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", logger.Err(err))
	}
}
