package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the monitoring backend.
// MLServiceURL is the single source of truth for the forecast service
// address; every call site consumes this value.
type Config struct {
	DatabaseURL     string
	MLServiceURL    string
	Port            string
	AppEnv          string
	LogLevel        slog.Level
	ChartTimezone   *time.Location
	RefreshInterval time.Duration
	ForecastMaxAge  time.Duration
	RefreshStations []int
	DefaultDays     int
}

// Load reads configuration from environment variables (optionally .env),
// applying defaults where unset.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MLServiceURL:    getEnv("ML_SERVICE_URL", "http://localhost:8000"),
		Port:            getEnv("PORT", "8080"),
		AppEnv:          getEnv("APP_ENV", "development"),
		ChartTimezone:   time.Local,
		RefreshInterval: 15 * time.Minute,
		ForecastMaxAge:  24 * time.Hour,
		DefaultDays:     1,
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if tz := os.Getenv("CHART_TIMEZONE"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid CHART_TIMEZONE %q: %w", tz, err)
		}
		cfg.ChartTimezone = loc
	}

	if v := os.Getenv("REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid REFRESH_INTERVAL %q", v)
		}
		cfg.RefreshInterval = d
	}

	if v := os.Getenv("FORECAST_MAX_AGE_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid FORECAST_MAX_AGE_HOURS %q", v)
		}
		cfg.ForecastMaxAge = time.Duration(hours) * time.Hour
	}

	if v := os.Getenv("REFRESH_STATIONS"); v != "" {
		ids, err := parseStationIDs(v)
		if err != nil {
			return nil, err
		}
		cfg.RefreshStations = ids
	}

	if v := os.Getenv("DEFAULT_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil || days <= 0 {
			return nil, fmt.Errorf("invalid DEFAULT_DAYS %q", v)
		}
		cfg.DefaultDays = days
	}

	if cfg.MLServiceURL == "" {
		return nil, errors.New("ML_SERVICE_URL must not be empty")
	}

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c *Config) ListenAddr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func parseStationIDs(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid station id %q in REFRESH_STATIONS", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
