package domain

// PredictionRequest is the body sent to the forecast service's
// POST /predict/{model_name} endpoint.
type PredictionRequest struct {
	StationID    int       `json:"station_id"`
	HorizonHours int       `json:"horizon_hours"`
	InputData    []float64 `json:"input_data,omitempty"`
}

// ForecastPoint is one predicted value on the wire, with optional
// confidence bounds.
type ForecastPoint struct {
	Timestamp  string   `json:"timestamp"`
	Value      float64  `json:"value"`
	LowerBound *float64 `json:"lower_bound,omitempty"`
	UpperBound *float64 `json:"upper_bound,omitempty"`
}

// PredictionResponse is the forecast service's reply to a predict call.
type PredictionResponse struct {
	Success      bool            `json:"success"`
	ModelName    string          `json:"model_name"`
	ModelVersion string          `json:"model_version"`
	StationID    int             `json:"station_id"`
	GeneratedAt  string          `json:"generated_at"`
	HorizonHours int             `json:"horizon_hours"`
	Forecasts    []ForecastPoint `json:"forecasts"`
}

// GenerateForecastRequest triggers server-side forecast generation for a
// station; the forecast service writes resulting rows into the store when
// SaveToDB is set.
type GenerateForecastRequest struct {
	StationID       *int  `json:"station_id"`
	HorizonsMinutes []int `json:"horizons_minutes"`
	SaveToDB        bool  `json:"save_to_db"`
}

// GenerateForecastResponse reports how many forecasts were generated.
type GenerateForecastResponse struct {
	Success            bool             `json:"success"`
	Message            string           `json:"message"`
	StationID          *int             `json:"station_id"`
	ForecastsGenerated int              `json:"forecasts_generated"`
	Forecasts          []map[string]any `json:"forecasts,omitempty"`
}

// MLHealth is the three-state availability of the forecast service.
type MLHealth string

const (
	MLHealthy     MLHealth = "healthy"
	MLUnhealthy   MLHealth = "unhealthy"
	MLUnreachable MLHealth = "unreachable"
)

// MLHealthStatus carries the health indicator plus the raw upstream fields.
type MLHealthStatus struct {
	Status MLHealth `json:"status"`
	MLflow string   `json:"mlflow,omitempty"`
}

// BatchResult reports the outcome of a batch operation that completes even
// when individual items fail.
type BatchResult struct {
	SuccessCount int      `json:"success_count"`
	FailCount    int      `json:"fail_count"`
	Errors       []string `json:"errors,omitempty"`
}
