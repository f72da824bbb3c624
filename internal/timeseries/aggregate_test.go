package timeseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swfm/backend/internal/domain"
)

func level(v float64) *float64 { return &v }

func measurementsAt(stationID int, start time.Time, step time.Duration, levels []*float64) []domain.Measurement {
	out := make([]domain.Measurement, 0, len(levels))
	for i, l := range levels {
		out = append(out, domain.Measurement{
			StationID:  stationID,
			MeasuredAt: start.Add(time.Duration(i) * step),
			WaterLevel: l,
		})
	}
	return out
}

func TestGranularityForDays(t *testing.T) {
	assert.Equal(t, GranularityRaw, GranularityForDays(1))
	assert.Equal(t, GranularityHourly, GranularityForDays(2))
	assert.Equal(t, GranularityHourly, GranularityForDays(7))
	assert.Equal(t, GranularityDaily, GranularityForDays(8))
	assert.Equal(t, GranularityDaily, GranularityForDays(90))
}

func TestAggregateHourlyMean(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	input := measurementsAt(7, start, 15*time.Minute, []*float64{level(2.0), level(2.2), level(2.4)})

	out := Aggregate(input, GranularityHourly, time.UTC)

	require.Len(t, out, 1)
	assert.Equal(t, 2.20, out[0].Value)
	// Hourly buckets are centered on the half hour.
	assert.Equal(t, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), out[0].Timestamp)
}

func TestAggregateDailyTimestampAtNoon(t *testing.T) {
	start := time.Date(2024, 3, 5, 6, 0, 0, 0, time.UTC)
	input := measurementsAt(3, start, 4*time.Hour, []*float64{level(1.0), level(3.0)})

	out := Aggregate(input, GranularityDaily, time.UTC)

	require.Len(t, out, 1)
	assert.Equal(t, 2.0, out[0].Value)
	assert.Equal(t, time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC), out[0].Timestamp)
}

func TestAggregateNullSkip(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	input := measurementsAt(7, start, 15*time.Minute, []*float64{level(2.0), nil, level(4.0), nil})

	out := Aggregate(input, GranularityHourly, time.UTC)

	require.Len(t, out, 1)
	assert.Equal(t, 3.0, out[0].Value) // nil rows are not counted in the mean
}

func TestAggregateOnlyNullsIsEmpty(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	input := measurementsAt(7, start, time.Hour, []*float64{nil, nil, nil})

	assert.Empty(t, Aggregate(input, GranularityHourly, time.UTC))
	assert.Empty(t, Aggregate(input, GranularityRaw, time.UTC))
	assert.Empty(t, Aggregate(nil, GranularityDaily, time.UTC))
}

func TestAggregateBucketCountInvariant(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	levels := make([]*float64, 0, 50)
	nonNull := 0
	for i := 0; i < 50; i++ {
		if i%5 == 0 {
			levels = append(levels, nil)
			continue
		}
		levels = append(levels, level(float64(i)))
		nonNull++
	}
	input := measurementsAt(2, start, 20*time.Minute, levels)

	out := Aggregate(input, GranularityHourly, time.UTC)

	assert.LessOrEqual(t, len(out), nonNull)
	// Distinct hour keys among non-null rows must match the bucket count.
	hours := map[string]bool{}
	for _, m := range input {
		if m.WaterLevel != nil {
			hours[m.MeasuredAt.UTC().Format("2006-01-02-15")] = true
		}
	}
	assert.Equal(t, len(hours), len(out))
}

func TestAggregateSortedRegardlessOfInputOrder(t *testing.T) {
	// Feed hours in reverse so map iteration has something to scramble.
	var input []domain.Measurement
	for h := 23; h >= 0; h-- {
		input = append(input, domain.Measurement{
			StationID:  1,
			MeasuredAt: time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC),
			WaterLevel: level(float64(h)),
		})
	}

	out := Aggregate(input, GranularityHourly, time.UTC)

	require.Len(t, out, 24)
	for i := 1; i < len(out); i++ {
		assert.True(t, out[i-1].Timestamp.Before(out[i].Timestamp),
			"output must be ascending at index %d", i)
	}
}

func TestAggregateRawPassthrough(t *testing.T) {
	// One day of 15-minute cadence: 96 rows, 2 of them null.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	levels := make([]*float64, 96)
	for i := range levels {
		levels[i] = level(5.0 + float64(i)*0.01)
	}
	levels[10] = nil
	levels[40] = nil
	input := measurementsAt(7, start, 15*time.Minute, levels)

	out := Aggregate(input, GranularityRaw, time.UTC)

	require.Len(t, out, 94)
	// No averaging: values pass through untouched.
	assert.Equal(t, 5.0, out[0].Value)
	assert.Equal(t, start, out[0].Timestamp)
}

func TestAggregateThreeDaysHourly(t *testing.T) {
	// Three days at 15-minute cadence: 288 rows into at most 72 buckets,
	// each the mean of up to 4 contributing rows.
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	levels := make([]*float64, 288)
	for i := range levels {
		levels[i] = level(2.0)
	}
	input := measurementsAt(7, start, 15*time.Minute, levels)

	out := Aggregate(input, GranularityHourly, time.UTC)

	require.Len(t, out, 72)
	for _, p := range out {
		assert.Equal(t, 2.0, p.Value)
		assert.Equal(t, 30, p.Timestamp.Minute())
	}
}

func TestAggregateLocalWallClockBuckets(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	// 23:30 UTC on Jan 1 is 06:30 Jan 2 local; daily bucketing must follow
	// the local calendar day.
	input := []domain.Measurement{
		{StationID: 1, MeasuredAt: time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC), WaterLevel: level(4.0)},
	}

	out := Aggregate(input, GranularityDaily, loc)

	require.Len(t, out, 1)
	assert.Equal(t, time.Date(2024, 1, 2, 12, 0, 0, 0, loc), out[0].Timestamp)
}
