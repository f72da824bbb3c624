package domain

import (
	"context"
	"time"
)

// StationRepository defines persistence for station metadata.
// The domain owns the interface; postgres (or the mock) implements it.
type StationRepository interface {
	ListStations(ctx context.Context) ([]Station, error)
	GetStation(ctx context.Context, id int) (*Station, error)
	CreateStation(ctx context.Context, s Station) (int, error)
	UpdateStation(ctx context.Context, s Station) error
	DeleteStation(ctx context.Context, id int) error
}

// MeasurementQuery filters a range read of station telemetry.
type MeasurementQuery struct {
	StationID int
	From      time.Time
	To        time.Time
	Limit     int
}

// MeasurementRepository defines persistence for telemetry rows.
type MeasurementRepository interface {
	// FetchMeasurements returns rows in [From, To] ordered ascending by time.
	FetchMeasurements(ctx context.Context, q MeasurementQuery) ([]Measurement, error)
	InsertMeasurements(ctx context.Context, rows []Measurement) (int, error)
	LatestMeasurement(ctx context.Context, stationID int) (*Measurement, error)
	CountMeasurements(ctx context.Context) (int, error)
}

// ForecastRepository defines persistence for stored forecast rows.
type ForecastRepository interface {
	// FetchForecasts returns rows with target_date in [From, To] ordered
	// ascending by target_date, then forecast_date.
	FetchForecasts(ctx context.Context, q MeasurementQuery) ([]ForecastRow, error)
	InsertForecasts(ctx context.Context, rows []ForecastRow) (int, error)
	CountForecasts(ctx context.Context) (int, error)
	// DeleteForecastsOlderThan removes rows whose forecast_date is older than
	// the cutoff and returns how many were deleted.
	DeleteForecastsOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// ConfigRepository defines upsert-by-key persistence for preprocessing knobs.
type ConfigRepository interface {
	ListConfigs(ctx context.Context, enabledOnly bool) ([]PreprocessingConfig, error)
	GetConfig(ctx context.Context, methodID string) (*PreprocessingConfig, error)
	UpsertConfig(ctx context.Context, cfg PreprocessingConfig) error
}

// DataRepository bundles all store access behind one dependency.
type DataRepository interface {
	StationRepository
	MeasurementRepository
	ForecastRepository
	ConfigRepository

	// Health checks store connectivity.
	Health(ctx context.Context) error
}
