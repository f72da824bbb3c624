package domain

import (
	"encoding/json"
	"time"
)

// PreprocessingConfig is one upsert-by-key row controlling a step of the
// external preprocessing pipeline (lag_features, rolling_statistics,
// rate_of_change, time_features, rainfall_features, ...). The numeric work
// happens in the forecast service; this system only stores the knobs.
type PreprocessingConfig struct {
	MethodID   string          `json:"method_id"`
	Enabled    bool            `json:"enabled"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
