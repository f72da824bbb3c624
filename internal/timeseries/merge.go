package timeseries

import (
	"sort"
	"time"

	"github.com/swfm/backend/internal/domain"
)

// MergeByLabel aligns aggregated actual points with forecast rows into one
// chronological chart series, joining rows that share a time label into a
// single point. This is the mode used by the forecast-comparison view,
// where both series are bucketed at the same display resolution.
//
// A forecast row whose label matches an existing point fills that point's
// forecast field; duplicate forecasts for the same label overwrite earlier
// ones (input is ordered by target_date then forecast_date, so the latest
// generation wins). Rows with no matching label become their own points
// with a nil actual. Values are never invented: a nil field stays nil.
func MergeByLabel(actuals []Point, forecasts []domain.ForecastRow, days int, loc *time.Location) []domain.ChartPoint {
	points := make([]domain.ChartPoint, 0, len(actuals)+len(forecasts))
	index := make(map[string]int, len(actuals))

	for _, p := range actuals {
		v := p.Value
		label := PointLabel(p.Timestamp, days, loc)
		index[label] = len(points)
		points = append(points, domain.ChartPoint{
			TimeLabel: label,
			Timestamp: p.Timestamp.UnixMilli(),
			Actual:    &v,
		})
	}

	for _, f := range forecasts {
		if f.WaterLevel == nil {
			continue
		}
		v := *f.WaterLevel
		label := PointLabel(f.TargetDate, days, loc)
		if i, ok := index[label]; ok {
			points[i].Forecast = &v
			continue
		}
		index[label] = len(points)
		points = append(points, domain.ChartPoint{
			TimeLabel: label,
			Timestamp: f.TargetDate.UnixMilli(),
			Forecast:  &v,
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	return points
}

// MergeByTimestamp builds the chart series for the long-range history view.
// No label joining happens: every forecast row becomes its own point and
// the client aligns points purely by numeric timestamp on a continuous
// time axis.
func MergeByTimestamp(actuals []Point, forecasts []domain.ForecastRow, days int, loc *time.Location) []domain.ChartPoint {
	points := make([]domain.ChartPoint, 0, len(actuals)+len(forecasts))

	for _, p := range actuals {
		v := p.Value
		points = append(points, domain.ChartPoint{
			TimeLabel: PointLabel(p.Timestamp, days, loc),
			Timestamp: p.Timestamp.UnixMilli(),
			Actual:    &v,
		})
	}
	for _, f := range forecasts {
		if f.WaterLevel == nil {
			continue
		}
		v := *f.WaterLevel
		points = append(points, domain.ChartPoint{
			TimeLabel: PointLabel(f.TargetDate, days, loc),
			Timestamp: f.TargetDate.UnixMilli(),
			Forecast:  &v,
		})
	}

	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })
	return points
}
