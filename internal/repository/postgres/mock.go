package postgres

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/swfm/backend/internal/domain"
)

// MockRepository implements domain.DataRepository in memory for demo mode,
// used when the database is unreachable at startup, and as a test double.
type MockRepository struct {
	mu           sync.RWMutex
	nextID       int
	stations     map[int]domain.Station
	measurements []domain.Measurement
	forecasts    []domain.ForecastRow
	configs      map[string]domain.PreprocessingConfig
}

// NewMockRepository creates an empty in-memory repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		nextID:   1,
		stations: make(map[int]domain.Station),
		configs:  make(map[string]domain.PreprocessingConfig),
	}
}

// ListStations returns all stations ordered by id.
func (r *MockRepository) ListStations(ctx context.Context) ([]domain.Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Station, 0, len(r.stations))
	for _, s := range r.stations {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetStation returns one station, or nil when absent.
func (r *MockRepository) GetStation(ctx context.Context, id int) (*domain.Station, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stations[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// CreateStation stores a station and returns its assigned id.
func (r *MockRepository) CreateStation(ctx context.Context, s domain.Station) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = r.nextID
	s.CreatedAt = time.Now()
	r.nextID++
	r.stations[s.ID] = s
	return s.ID, nil
}

// UpdateStation replaces an existing station.
func (r *MockRepository) UpdateStation(ctx context.Context, s domain.Station) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stations[s.ID]; !ok {
		return fmt.Errorf("mock: station %d not found", s.ID)
	}
	r.stations[s.ID] = s
	return nil
}

// DeleteStation removes a station.
func (r *MockRepository) DeleteStation(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stations[id]; !ok {
		return fmt.Errorf("mock: station %d not found", id)
	}
	delete(r.stations, id)
	return nil
}

// FetchMeasurements returns measurements in the query range, ascending by time.
func (r *MockRepository) FetchMeasurements(ctx context.Context, q domain.MeasurementQuery) ([]domain.Measurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Measurement, 0)
	for _, m := range r.measurements {
		if m.StationID != q.StationID {
			continue
		}
		if !q.From.IsZero() && m.MeasuredAt.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && m.MeasuredAt.After(q.To) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MeasuredAt.Before(out[j].MeasuredAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

// InsertMeasurements appends telemetry rows.
func (r *MockRepository) InsertMeasurements(ctx context.Context, rows []domain.Measurement) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.measurements = append(r.measurements, rows...)
	return len(rows), nil
}

// LatestMeasurement returns the newest measurement for a station, or nil.
func (r *MockRepository) LatestMeasurement(ctx context.Context, stationID int) (*domain.Measurement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.Measurement
	for i := range r.measurements {
		m := r.measurements[i]
		if m.StationID != stationID {
			continue
		}
		if latest == nil || m.MeasuredAt.After(latest.MeasuredAt) {
			latest = &m
		}
	}
	return latest, nil
}

// CountMeasurements returns the number of stored measurements.
func (r *MockRepository) CountMeasurements(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.measurements), nil
}

// FetchForecasts returns forecast rows with target_date in the query range,
// ordered by target_date then forecast_date.
func (r *MockRepository) FetchForecasts(ctx context.Context, q domain.MeasurementQuery) ([]domain.ForecastRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ForecastRow, 0)
	for _, f := range r.forecasts {
		if f.StationID != q.StationID {
			continue
		}
		if !q.From.IsZero() && f.TargetDate.Before(q.From) {
			continue
		}
		if !q.To.IsZero() && f.TargetDate.After(q.To) {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TargetDate.Equal(out[j].TargetDate) {
			return out[i].ForecastDate.Before(out[j].ForecastDate)
		}
		return out[i].TargetDate.Before(out[j].TargetDate)
	})
	return out, nil
}

// InsertForecasts appends forecast rows.
func (r *MockRepository) InsertForecasts(ctx context.Context, rows []domain.ForecastRow) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.forecasts = append(r.forecasts, rows...)
	return len(rows), nil
}

// CountForecasts returns the number of stored forecast rows.
func (r *MockRepository) CountForecasts(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.forecasts), nil
}

// DeleteForecastsOlderThan removes rows generated before the cutoff.
func (r *MockRepository) DeleteForecastsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.forecasts[:0]
	deleted := 0
	for _, f := range r.forecasts {
		if f.ForecastDate.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, f)
	}
	r.forecasts = kept
	return deleted, nil
}

// ListConfigs returns stored preprocessing configurations.
func (r *MockRepository) ListConfigs(ctx context.Context, enabledOnly bool) ([]domain.PreprocessingConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.PreprocessingConfig, 0, len(r.configs))
	for _, c := range r.configs {
		if enabledOnly && !c.Enabled {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MethodID < out[j].MethodID })
	return out, nil
}

// GetConfig returns one configuration, or nil when absent.
func (r *MockRepository) GetConfig(ctx context.Context, methodID string) (*domain.PreprocessingConfig, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.configs[methodID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// UpsertConfig writes a configuration keyed by method_id.
func (r *MockRepository) UpsertConfig(ctx context.Context, cfg domain.PreprocessingConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg.UpdatedAt = time.Now()
	r.configs[cfg.MethodID] = cfg
	return nil
}

// Health always reports healthy in mock mode.
func (r *MockRepository) Health(ctx context.Context) error {
	return nil
}
