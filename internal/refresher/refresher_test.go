package refresher

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swfm/backend/internal/domain"
	"github.com/swfm/backend/internal/observability"
	"github.com/swfm/backend/internal/repository/postgres"
	"github.com/swfm/backend/internal/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func level(v float64) *float64 { return &v }

func newTestDeps(t *testing.T, handler http.HandlerFunc) (*postgres.MockRepository, *service.ForecastService) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	repo := postgres.NewMockRepository()
	bridge := service.NewForecastBridge(srv.URL, observability.NewMetricsForTesting())
	return repo, service.NewForecastService(repo, bridge, testLogger())
}

func TestRunOnceGeneratesAndPrunes(t *testing.T) {
	var calls atomic.Int32
	repo, forecasts := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(domain.GenerateForecastResponse{Success: true})
	})

	now := time.Date(2024, 5, 17, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	_, err := repo.InsertForecasts(ctx, []domain.ForecastRow{
		{StationID: 1, TargetDate: now, WaterLevel: level(1.0), ForecastDate: now.Add(-48 * time.Hour)},
		{StationID: 1, TargetDate: now, WaterLevel: level(1.1), ForecastDate: now.Add(-1 * time.Hour)},
	})
	require.NoError(t, err)

	r := New(repo, forecasts, testLogger(), observability.NewMetricsForTesting(), 15*time.Minute, 24*time.Hour, []int{1, 2})
	r.SetClock(clockwork.NewFakeClockAt(now))
	r.RunOnce(ctx)

	assert.Equal(t, int32(2), calls.Load(), "one generate call per configured station")

	remaining, err := repo.CountForecasts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining, "only the forecast inside the retention window survives")
}

func TestRunOnceFallsBackToAllStations(t *testing.T) {
	var calls atomic.Int32
	repo, forecasts := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(domain.GenerateForecastResponse{Success: true})
	})

	ctx := context.Background()
	for _, name := range []string{"P.1", "P.67", "P.75"} {
		_, err := repo.CreateStation(ctx, domain.Station{Name: name})
		require.NoError(t, err)
	}

	r := New(repo, forecasts, testLogger(), observability.NewMetricsForTesting(), 15*time.Minute, 24*time.Hour, nil)
	r.RunOnce(ctx)

	assert.Equal(t, int32(3), calls.Load())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo, forecasts := newTestDeps(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.GenerateForecastResponse{Success: true})
	})

	r := New(repo, forecasts, testLogger(), observability.NewMetricsForTesting(), time.Hour, 24*time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("refresher did not stop after context cancellation")
	}
}
