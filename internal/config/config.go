package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-summary/internal/logger"
)

var validate = validator.New()

type AppConfig struct {
	OpenWeatherAPIKey  string `validate:"required"`
	OpenWeatherBaseURL string `validate:"required,url"`

	// HTTPTimeout bounds each outbound provider call (0 = no timeout).
	HTTPTimeout time.Duration `validate:"gte=0"`

	// Summary cache retention.
	CacheTTL           time.Duration `validate:"gte=0"` // 0 = never expire
	CacheMaxEntries    int           `validate:"gte=0"` // 0 = unlimited
	CachePurgeInterval time.Duration `validate:"gte=0"`

	// Worker pool running fetch and aggregate cycles.
	WorkerCount     int `validate:"gt=0"`
	WorkerQueueSize int `validate:"gte=0"`

	// Cities refreshed in the background, used as raw cache keys.
	WarmCities   []string
	WarmInterval time.Duration `validate:"gte=0"`

	LogLevel slog.Level

	Port string `validate:"required,numeric"`
}

// Load reads configuration from the environment (and a .env file when one
// exists) with sensible defaults, then validates it.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", logger.Err(err))
	}
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org")
	cfg.Port = getenvDefault("PORT", "8080")
	cfg.WarmCities = splitCities(os.Getenv("WARM_CITIES"))

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CachePurgeInterval, err = getenvDuration("CACHE_PURGE_INTERVAL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.WarmInterval, err = getenvDuration("WARM_INTERVAL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheMaxEntries, err = getenvInt("CACHE_MAX_ENTRIES", 1000); err != nil {
		return nil, err
	}
	if cfg.WorkerCount, err = getenvInt("WORKER_COUNT", 8); err != nil {
		return nil, err
	}
	if cfg.WorkerQueueSize, err = getenvInt("WORKER_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = logger.ParseLevel(os.Getenv("LOG_LEVEL")); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// splitCities splits a comma-separated list. Entries are kept verbatim apart
// from dropping empty ones, since they become case-sensitive cache keys.
func splitCities(s string) []string {
	var cities []string
	for _, c := range strings.Split(s, ",") {
		if strings.TrimSpace(c) == "" {
			continue
		}
		cities = append(cities, c)
	}
	return cities
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
