package domain

import "time"

// Measurement is a single time-stamped telemetry reading for a station.
// WaterLevel and Rainfall are pointers because the telemetry feed reports
// gaps as nulls; a nil level contributes to no aggregation bucket.
type Measurement struct {
	StationID  int       `json:"station_id"`
	MeasuredAt time.Time `json:"measured_at"`
	WaterLevel *float64  `json:"water_level"`
	Rainfall   *float64  `json:"rainfall,omitempty"`
}

// ForecastRow is a stored prediction: TargetDate is the instant being
// predicted, ForecastDate is when the prediction was generated. Multiple
// rows may exist for the same TargetDate, generated at different times.
type ForecastRow struct {
	StationID    int       `json:"station_id"`
	TargetDate   time.Time `json:"target_date"`
	WaterLevel   *float64  `json:"water_level"`
	ForecastDate time.Time `json:"forecast_date"`
	ModelName    string    `json:"model_name,omitempty"`
}

// ChartPoint is the unified per-instant record for plotting: an optional
// actual measurement and an optional forecast value. A nil field means no
// source row supplied a value for that instant; renderers must break the
// line there instead of interpolating.
type ChartPoint struct {
	TimeLabel string   `json:"time_label"`
	Timestamp int64    `json:"timestamp"`
	Actual    *float64 `json:"actual"`
	Forecast  *float64 `json:"forecast"`
}
