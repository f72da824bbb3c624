package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/swfm/backend/internal/domain"
)

// defaultHorizons are the forecast lead times requested when the caller
// does not specify any, in minutes.
var defaultHorizons = []int{60, 180, 360, 720, 1440}

// ForecastService orchestrates forecast generation across stations.
type ForecastService struct {
	repo   domain.DataRepository
	bridge *ForecastBridge
	logger *slog.Logger
}

// NewForecastService creates a new forecast service
func NewForecastService(repo domain.DataRepository, bridge *ForecastBridge, logger *slog.Logger) *ForecastService {
	return &ForecastService{repo: repo, bridge: bridge, logger: logger}
}

// GenerateForStation asks the forecast service to generate and persist
// forecasts for one station.
func (s *ForecastService) GenerateForStation(ctx context.Context, stationID int, horizons []int) (domain.GenerateForecastResponse, error) {
	if len(horizons) == 0 {
		horizons = defaultHorizons
	}
	req := domain.GenerateForecastRequest{
		StationID:       &stationID,
		HorizonsMinutes: horizons,
		SaveToDB:        true,
	}
	return s.bridge.GenerateForecasts(ctx, req)
}

// GenerateAll runs forecast generation for every given station. One
// station failing never stops the batch; the result tallies successes and
// failures so the caller can report partial completion.
func (s *ForecastService) GenerateAll(ctx context.Context, stationIDs []int, horizons []int) domain.BatchResult {
	var result domain.BatchResult
	for _, id := range stationIDs {
		if _, err := s.GenerateForStation(ctx, id, horizons); err != nil {
			s.logger.Warn("forecast generation failed", "station_id", id, "error", err)
			result.FailCount++
			result.Errors = append(result.Errors, fmt.Sprintf("station %d: %v", id, err))
			continue
		}
		result.SuccessCount++
	}
	return result
}

// AllStationIDs lists the station IDs known to the store, used when a
// batch run is requested without an explicit station list.
func (s *ForecastService) AllStationIDs(ctx context.Context) ([]int, error) {
	stations, err := s.repo.ListStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	ids := make([]int, 0, len(stations))
	for _, st := range stations {
		ids = append(ids, st.ID)
	}
	return ids, nil
}
