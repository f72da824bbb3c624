package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"

	"github.com/swfm/backend/internal/domain"
)

const measurementsBase = `
	SELECT station_id, measured_at, water_level, rainfall
	FROM measurements
	WHERE station_id = $1
`

// FetchMeasurements returns measurements for a station restricted to
// [From, To], ordered ascending by time.
func (r *Repository) FetchMeasurements(ctx context.Context, q domain.MeasurementQuery) ([]domain.Measurement, error) {
	args := []any{q.StationID}
	clause := ""
	argPos := 2
	if !q.From.IsZero() {
		clause += " AND measured_at >= $" + strconv.Itoa(argPos)
		args = append(args, q.From)
		argPos++
	}
	if !q.To.IsZero() {
		clause += " AND measured_at <= $" + strconv.Itoa(argPos)
		args = append(args, q.To)
		argPos++
	}
	limit := ""
	if q.Limit > 0 {
		limit = " LIMIT $" + strconv.Itoa(argPos)
		args = append(args, q.Limit)
	}

	sql := measurementsBase + clause + " ORDER BY measured_at" + limit

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query measurements: %w", err)
	}
	defer rows.Close()

	measurements := make([]domain.Measurement, 0)
	for rows.Next() {
		var m domain.Measurement
		if err := rows.Scan(&m.StationID, &m.MeasuredAt, &m.WaterLevel, &m.Rainfall); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan measurement row: %w", err)
		}
		measurements = append(measurements, m)
	}
	return measurements, rows.Err()
}

// InsertMeasurements bulk-inserts telemetry rows and returns the count written.
func (r *Repository) InsertMeasurements(ctx context.Context, rows []domain.Measurement) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, m := range rows {
		batch.Queue(
			`INSERT INTO measurements (station_id, measured_at, water_level, rainfall)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (station_id, measured_at) DO NOTHING`,
			m.StationID, m.MeasuredAt, m.WaterLevel, m.Rainfall,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range rows {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("postgres: failed to insert measurement: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// LatestMeasurement returns the most recent measurement for a station, or
// nil when none exist.
func (r *Repository) LatestMeasurement(ctx context.Context, stationID int) (*domain.Measurement, error) {
	query := measurementsBase + " ORDER BY measured_at DESC LIMIT 1"

	var m domain.Measurement
	err := r.pool.QueryRow(ctx, query, stationID).Scan(&m.StationID, &m.MeasuredAt, &m.WaterLevel, &m.Rainfall)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get latest measurement: %w", err)
	}
	return &m, nil
}

// CountMeasurements returns the total number of stored measurements.
func (r *Repository) CountMeasurements(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM measurements`).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: failed to count measurements: %w", err)
	}
	return count, nil
}
