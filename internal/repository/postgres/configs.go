package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/swfm/backend/internal/domain"
)

// ListConfigs returns preprocessing configurations, optionally only the
// enabled ones.
func (r *Repository) ListConfigs(ctx context.Context, enabledOnly bool) ([]domain.PreprocessingConfig, error) {
	query := `
		SELECT method_id, enabled, parameters, updated_at
		FROM preprocessing_configs
	`
	if enabledOnly {
		query += " WHERE enabled"
	}
	query += " ORDER BY method_id"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query preprocessing configs: %w", err)
	}
	defer rows.Close()

	configs := make([]domain.PreprocessingConfig, 0)
	for rows.Next() {
		var c domain.PreprocessingConfig
		if err := rows.Scan(&c.MethodID, &c.Enabled, &c.Parameters, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("postgres: failed to scan config row: %w", err)
		}
		configs = append(configs, c)
	}
	return configs, rows.Err()
}

// GetConfig returns one preprocessing configuration, or nil when the
// method is unknown.
func (r *Repository) GetConfig(ctx context.Context, methodID string) (*domain.PreprocessingConfig, error) {
	query := `
		SELECT method_id, enabled, parameters, updated_at
		FROM preprocessing_configs
		WHERE method_id = $1
	`

	var c domain.PreprocessingConfig
	err := r.pool.QueryRow(ctx, query, methodID).Scan(&c.MethodID, &c.Enabled, &c.Parameters, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to get config %q: %w", methodID, err)
	}
	return &c, nil
}

// UpsertConfig writes a preprocessing configuration keyed by method_id.
func (r *Repository) UpsertConfig(ctx context.Context, cfg domain.PreprocessingConfig) error {
	query := `
		INSERT INTO preprocessing_configs (method_id, enabled, parameters, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (method_id)
		DO UPDATE SET enabled = EXCLUDED.enabled, parameters = EXCLUDED.parameters, updated_at = now()
	`

	if _, err := r.pool.Exec(ctx, query, cfg.MethodID, cfg.Enabled, cfg.Parameters); err != nil {
		return fmt.Errorf("postgres: failed to upsert config %q: %w", cfg.MethodID, err)
	}
	return nil
}
