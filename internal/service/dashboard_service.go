package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/swfm/backend/internal/domain"
)

// DashboardSummary aggregates the tallies and health indicators shown on
// the landing dashboard.
type DashboardSummary struct {
	StationCount     int                   `json:"station_count"`
	MeasurementCount int                   `json:"measurement_count"`
	ForecastCount    int                   `json:"forecast_count"`
	MLService        domain.MLHealthStatus `json:"ml_service"`
	Timestamp        time.Time             `json:"timestamp"`
}

// DashboardService assembles the dashboard from independent fetches.
type DashboardService struct {
	repo   domain.DataRepository
	bridge *ForecastBridge
	logger *slog.Logger
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(repo domain.DataRepository, bridge *ForecastBridge, logger *slog.Logger) *DashboardService {
	return &DashboardService{repo: repo, bridge: bridge, logger: logger}
}

// GetSummary fetches all dashboard tallies concurrently and joins them.
// Individual fetch errors are logged and leave a zero value; the summary
// itself always succeeds so one slow or broken dependency cannot blank
// the whole dashboard.
func (s *DashboardService) GetSummary(ctx context.Context) DashboardSummary {
	var (
		summary DashboardSummary
		wg      sync.WaitGroup
		mu      sync.Mutex
	)

	fetch := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				s.logger.Warn("dashboard fetch failed", "part", name, "error", err)
			}
		}()
	}

	fetch("stations", func() error {
		stations, err := s.repo.ListStations(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		summary.StationCount = len(stations)
		mu.Unlock()
		return nil
	})

	fetch("measurements", func() error {
		count, err := s.repo.CountMeasurements(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		summary.MeasurementCount = count
		mu.Unlock()
		return nil
	})

	fetch("forecasts", func() error {
		count, err := s.repo.CountForecasts(ctx)
		if err != nil {
			return err
		}
		mu.Lock()
		summary.ForecastCount = count
		mu.Unlock()
		return nil
	})

	fetch("ml_health", func() error {
		health := s.bridge.Health(ctx)
		mu.Lock()
		summary.MLService = health
		mu.Unlock()
		return nil
	})

	wg.Wait()
	summary.Timestamp = time.Now()
	return summary
}
