package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/swfm/backend/internal/domain"
)

// FetchForecasts returns stored forecast rows with target_date in
// [From, To], ordered by target_date then forecast_date. Duplicate rows
// for the same target_date are returned as-is; the merge layer decides
// how to display them.
func (r *Repository) FetchForecasts(ctx context.Context, q domain.MeasurementQuery) ([]domain.ForecastRow, error) {
	base := `
		SELECT station_id, target_date, water_level, forecast_date, COALESCE(model_name, '')
		FROM forecasts
		WHERE station_id = $1
	`

	args := []any{q.StationID}
	clause := ""
	argPos := 2
	if !q.From.IsZero() {
		clause += " AND target_date >= $" + strconv.Itoa(argPos)
		args = append(args, q.From)
		argPos++
	}
	if !q.To.IsZero() {
		clause += " AND target_date <= $" + strconv.Itoa(argPos)
		args = append(args, q.To)
	}

	sql := base + clause + " ORDER BY target_date, forecast_date"

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query forecasts: %w", err)
	}
	defer rows.Close()

	forecasts := make([]domain.ForecastRow, 0)
	for rows.Next() {
		var f domain.ForecastRow
		if err := rows.Scan(&f.StationID, &f.TargetDate, &f.WaterLevel, &f.ForecastDate, &f.ModelName); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan forecast row: %w", err)
		}
		forecasts = append(forecasts, f)
	}
	return forecasts, rows.Err()
}

// InsertForecasts bulk-inserts forecast rows and returns the count written.
func (r *Repository) InsertForecasts(ctx context.Context, rows []domain.ForecastRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, f := range rows {
		batch.Queue(
			`INSERT INTO forecasts (station_id, target_date, water_level, forecast_date, model_name)
			 VALUES ($1, $2, $3, $4, $5)`,
			f.StationID, f.TargetDate, f.WaterLevel, f.ForecastDate, f.ModelName,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range rows {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("postgres: failed to insert forecast: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// CountForecasts returns the total number of stored forecast rows.
func (r *Repository) CountForecasts(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM forecasts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("postgres: failed to count forecasts: %w", err)
	}
	return count, nil
}

// DeleteForecastsOlderThan removes forecast rows generated before the
// cutoff and returns the number deleted.
func (r *Repository) DeleteForecastsOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM forecasts WHERE forecast_date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to delete stale forecasts: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
