package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swfm/backend/internal/domain"
)

func TestMergeByLabelJoinsMatchingBuckets(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	actuals := []Point{{Timestamp: ts, Value: 2.2}}
	forecasts := []domain.ForecastRow{
		{StationID: 7, TargetDate: ts, WaterLevel: level(2.5), ForecastDate: ts.Add(-time.Hour)},
	}

	out := MergeByLabel(actuals, forecasts, 1, time.UTC)

	require.Len(t, out, 1)
	require.NotNil(t, out[0].Actual)
	require.NotNil(t, out[0].Forecast)
	assert.Equal(t, 2.2, *out[0].Actual)
	assert.Equal(t, 2.5, *out[0].Forecast)
	assert.Equal(t, "10:30", out[0].TimeLabel)
}

func TestMergeByLabelKeepsUnmatchedForecasts(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	future := time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC)
	actuals := []Point{{Timestamp: ts, Value: 2.2}}
	forecasts := []domain.ForecastRow{
		{StationID: 7, TargetDate: future, WaterLevel: level(2.6), ForecastDate: ts},
	}

	out := MergeByLabel(actuals, forecasts, 1, time.UTC)

	require.Len(t, out, 2)
	assert.Nil(t, out[0].Forecast)
	assert.Nil(t, out[1].Actual)
	assert.Equal(t, 2.6, *out[1].Forecast)
}

func TestMergeByLabelDuplicateForecastLastWins(t *testing.T) {
	target := time.Date(2024, 1, 1, 11, 30, 0, 0, time.UTC)
	forecasts := []domain.ForecastRow{
		{StationID: 7, TargetDate: target, WaterLevel: level(2.4), ForecastDate: target.Add(-2 * time.Hour)},
		{StationID: 7, TargetDate: target, WaterLevel: level(2.7), ForecastDate: target.Add(-time.Hour)},
	}

	out := MergeByLabel(nil, forecasts, 1, time.UTC)

	require.Len(t, out, 1)
	assert.Equal(t, 2.7, *out[0].Forecast)
}

func TestMergeNeverFabricatesValues(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	actuals := []Point{{Timestamp: ts, Value: 2.2}}
	forecasts := []domain.ForecastRow{
		// Nil-level forecast rows supply nothing and must not set a value.
		{StationID: 7, TargetDate: ts, WaterLevel: nil, ForecastDate: ts},
	}

	labeled := MergeByLabel(actuals, forecasts, 1, time.UTC)
	require.Len(t, labeled, 1)
	assert.Nil(t, labeled[0].Forecast)

	raw := MergeByTimestamp(actuals, forecasts, 1, time.UTC)
	require.Len(t, raw, 1)
	assert.Nil(t, raw[0].Forecast)
	require.NotNil(t, raw[0].Actual)
}

func TestMergeByTimestampNeverJoins(t *testing.T) {
	ts := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	actuals := []Point{{Timestamp: ts, Value: 2.2}}
	forecasts := []domain.ForecastRow{
		// Same label, same instant: raw mode still emits a separate point.
		{StationID: 7, TargetDate: ts, WaterLevel: level(2.5), ForecastDate: ts},
	}

	out := MergeByTimestamp(actuals, forecasts, 1, time.UTC)

	require.Len(t, out, 2)
	assert.NotNil(t, out[0].Actual)
	assert.Nil(t, out[0].Forecast)
	assert.Nil(t, out[1].Actual)
	assert.NotNil(t, out[1].Forecast)
}

func TestMergeSortsByTimestamp(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	actuals := []Point{
		{Timestamp: base.Add(3 * time.Hour), Value: 1},
		{Timestamp: base.Add(1 * time.Hour), Value: 2},
	}
	forecasts := []domain.ForecastRow{
		{StationID: 1, TargetDate: base.Add(2 * time.Hour), WaterLevel: level(3), ForecastDate: base},
	}

	out := MergeByLabel(actuals, forecasts, 1, time.UTC)

	require.Len(t, out, 3)
	for i := 1; i < len(out); i++ {
		assert.LessOrEqual(t, out[i-1].Timestamp, out[i].Timestamp)
	}
}

func TestMergeEmptyForecastContribution(t *testing.T) {
	// A failed forecast fetch yields an empty contribution; all actual
	// points survive with a nil forecast side.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var actuals []Point
	for h := 0; h < 24; h++ {
		actuals = append(actuals, Point{Timestamp: base.Add(time.Duration(h) * time.Hour), Value: float64(h)})
	}

	out := MergeByLabel(actuals, nil, 1, time.UTC)

	require.Len(t, out, 24)
	for _, p := range out {
		assert.NotNil(t, p.Actual)
		assert.Nil(t, p.Forecast)
	}
}

func TestLabelGranularityMapping(t *testing.T) {
	ts := time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		days  int
		point string
	}{
		{1, "14:30"},
		{7, "14:30"},
		{10, "17/05"},
		{30, "17 May"},
		{45, "17 May"},
		{200, "17 May"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.point, PointLabel(ts, tt.days, time.UTC), "point label for %d days", tt.days)
	}

	assert.Equal(t, "14:30", TickLabel(ts, 1, time.UTC))
	assert.Equal(t, "Fri 14:30", TickLabel(ts, 7, time.UTC))
	assert.Equal(t, "17/05", TickLabel(ts, 10, time.UTC))
	assert.Equal(t, "17 May", TickLabel(ts, 30, time.UTC))
	assert.Equal(t, "May '24", TickLabel(ts, 45, time.UTC))
	assert.Equal(t, "May '24", TickLabel(ts, 200, time.UTC))
}
