package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/swfm/backend/internal/domain"
)

// ListStations returns all stations ordered by id.
func (r *Repository) ListStations(ctx context.Context) ([]domain.Station, error) {
	query := `
		SELECT id, name, river, latitude, longitude, alarm_level, flood_level, created_at
		FROM stations
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query stations: %w", err)
	}
	defer rows.Close()

	stations := make([]domain.Station, 0)
	for rows.Next() {
		var s domain.Station
		if err := rows.Scan(
			&s.ID, &s.Name, &s.River, &s.Latitude, &s.Longitude,
			&s.AlarmLevel, &s.FloodLevel, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan station row: %w", err)
		}
		stations = append(stations, s)
	}
	return stations, rows.Err()
}

// GetStation returns one station by id, or nil when it does not exist.
func (r *Repository) GetStation(ctx context.Context, id int) (*domain.Station, error) {
	query := `
		SELECT id, name, river, latitude, longitude, alarm_level, flood_level, created_at
		FROM stations
		WHERE id = $1
	`

	var s domain.Station
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Name, &s.River, &s.Latitude, &s.Longitude,
		&s.AlarmLevel, &s.FloodLevel, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get station %d: %w", id, err)
	}
	return &s, nil
}

// CreateStation inserts a station and returns its generated id.
func (r *Repository) CreateStation(ctx context.Context, s domain.Station) (int, error) {
	query := `
		INSERT INTO stations (name, river, latitude, longitude, alarm_level, flood_level)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int
	err := r.pool.QueryRow(ctx, query,
		s.Name, s.River, s.Latitude, s.Longitude, s.AlarmLevel, s.FloodLevel,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to create station: %w", err)
	}
	return id, nil
}

// UpdateStation updates station metadata and thresholds.
func (r *Repository) UpdateStation(ctx context.Context, s domain.Station) error {
	query := `
		UPDATE stations
		SET name = $2, river = $3, latitude = $4, longitude = $5,
		    alarm_level = $6, flood_level = $7
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		s.ID, s.Name, s.River, s.Latitude, s.Longitude, s.AlarmLevel, s.FloodLevel,
	)
	if err != nil {
		return fmt.Errorf("postgres: failed to update station %d: %w", s.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: station %d not found", s.ID)
	}
	return nil
}

// DeleteStation removes a station.
func (r *Repository) DeleteStation(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete station %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: station %d not found", id)
	}
	return nil
}
