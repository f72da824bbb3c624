package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.MLServiceURL)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 24*time.Hour, cfg.ForecastMaxAge)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, 1, cfg.DefaultDays)
	assert.Empty(t, cfg.RefreshStations)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ML_SERVICE_URL", "http://ml:9000")
	t.Setenv("PORT", "3001")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("FORECAST_MAX_AGE_HOURS", "48")
	t.Setenv("REFRESH_STATIONS", "2, 3,5")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "http://ml:9000", cfg.MLServiceURL)
	assert.Equal(t, ":3001", cfg.ListenAddr())
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 48*time.Hour, cfg.ForecastMaxAge)
	assert.Equal(t, []int{2, 3, 5}, cfg.RefreshStations)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad interval", "REFRESH_INTERVAL", "soon"},
		{"negative max age", "FORECAST_MAX_AGE_HOURS", "-1"},
		{"bad station id", "REFRESH_STATIONS", "2,x"},
		{"bad timezone", "CHART_TIMEZONE", "Mars/Olympus"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
