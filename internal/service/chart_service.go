package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/swfm/backend/internal/domain"
	"github.com/swfm/backend/internal/observability"
	"github.com/swfm/backend/internal/timeseries"
)

// ErrSuperseded is returned when a chart fetch finishes after a newer
// fetch for the same station has already been issued. The caller must
// discard the result instead of overwriting fresher data.
var ErrSuperseded = errors.New("chart fetch superseded by a newer request")

// minChartPoints is the threshold below which a series is reported as
// insufficient rather than rendered from too little data.
const minChartPoints = 3

// ChartMode selects how forecast rows are aligned with actual points.
type ChartMode string

const (
	// ChartModeLabeled joins actual and forecast rows sharing a time
	// label (forecast-comparison view).
	ChartModeLabeled ChartMode = "labeled"
	// ChartModeRaw keeps every forecast row as its own point
	// (long-range history view).
	ChartModeRaw ChartMode = "raw"
)

// ChartRequest describes one chart series build.
type ChartRequest struct {
	StationID    int
	Days         int
	HorizonHours int
	Mode         ChartMode
	End          time.Time // zero means now
}

// ChartSeries is the assembled response for one chart instance.
type ChartSeries struct {
	StationID        int                 `json:"station_id"`
	Days             int                 `json:"days"`
	Granularity      string              `json:"granularity"`
	Points           []domain.ChartPoint `json:"points"`
	Ticks            []string            `json:"ticks"`
	InsufficientData bool                `json:"insufficient_data"`
	ForecastError    string              `json:"forecast_error,omitempty"`
}

// ChartService turns raw station telemetry and stored forecasts into
// display series. Fetches are guarded by a per-station generation counter
// so a slow, stale fetch can never overwrite a newer one.
type ChartService struct {
	repo    domain.DataRepository
	loc     *time.Location
	logger  *slog.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	nextGen uint64
	latest  map[int]uint64
}

// NewChartService creates a chart service bucketing in the given location.
func NewChartService(repo domain.DataRepository, loc *time.Location, logger *slog.Logger, metrics *observability.Metrics) *ChartService {
	if loc == nil {
		loc = time.Local
	}
	return &ChartService{
		repo:    repo,
		loc:     loc,
		logger:  logger,
		metrics: metrics,
		latest:  make(map[int]uint64),
	}
}

// BuildSeries fetches, aggregates, and merges one chart series.
//
// Actual measurements and stored forecasts are fetched independently: a
// forecast fetch failure degrades the series (ForecastError set, forecast
// side empty) while the actual side still renders. Returns ErrSuperseded
// when a newer fetch for the same station was issued while this one was
// in flight.
func (s *ChartService) BuildSeries(ctx context.Context, req ChartRequest) (ChartSeries, error) {
	if req.Days <= 0 {
		req.Days = 1
	}
	gen := s.begin(req.StationID)

	end := req.End
	if end.IsZero() {
		end = time.Now()
	}
	start := end.AddDate(0, 0, -req.Days)

	measurements, err := s.repo.FetchMeasurements(ctx, domain.MeasurementQuery{
		StationID: req.StationID,
		From:      start,
		To:        end,
	})
	if err != nil {
		return ChartSeries{}, fmt.Errorf("chart: fetch measurements: %w", err)
	}

	granularity := timeseries.GranularityForDays(req.Days)
	aggStart := time.Now()
	actuals := timeseries.Aggregate(measurements, granularity, s.loc)
	if s.metrics != nil {
		s.metrics.AggregationDuration.Observe(time.Since(aggStart).Seconds())
		s.metrics.ChartRequests.WithLabelValues(string(granularity)).Inc()
	}

	series := ChartSeries{
		StationID:   req.StationID,
		Days:        req.Days,
		Granularity: string(granularity),
	}

	forecastEnd := end
	if req.HorizonHours > 0 {
		forecastEnd = end.Add(time.Duration(req.HorizonHours) * time.Hour)
	}
	forecasts, err := s.repo.FetchForecasts(ctx, domain.MeasurementQuery{
		StationID: req.StationID,
		From:      start,
		To:        forecastEnd,
	})
	if err != nil {
		// Partial failure is absorbed per-series: the actual side still
		// renders, the forecast side is empty and the error is surfaced.
		s.logger.Warn("forecast fetch failed, rendering actuals only",
			"station_id", req.StationID, "error", err)
		series.ForecastError = err.Error()
		forecasts = nil
	}

	if req.Mode == ChartModeRaw {
		series.Points = timeseries.MergeByTimestamp(actuals, forecasts, req.Days, s.loc)
	} else {
		series.Points = timeseries.MergeByLabel(actuals, forecasts, req.Days, s.loc)
	}
	series.Ticks = timeseries.Ticks(series.Points, req.Days, s.loc)

	if len(actuals) < minChartPoints {
		series.InsufficientData = true
	}

	if !s.current(req.StationID, gen) {
		if s.metrics != nil {
			s.metrics.StaleChartResponses.Inc()
		}
		return ChartSeries{}, ErrSuperseded
	}
	return series, nil
}

// begin allocates the next generation for a station and marks it latest.
func (s *ChartService) begin(stationID int) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextGen++
	s.latest[stationID] = s.nextGen
	return s.nextGen
}

// current reports whether gen is still the latest issued for the station.
func (s *ChartService) current(stationID int, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[stationID] == gen
}
