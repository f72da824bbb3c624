package timeseries

import (
	"sort"
	"time"

	"github.com/swfm/backend/internal/domain"
	"github.com/swfm/backend/pkg/utils"
)

// Granularity is the time-bucket size chosen for display.
type Granularity string

const (
	GranularityRaw    Granularity = "raw"
	GranularityHourly Granularity = "hourly"
	GranularityDaily  Granularity = "daily"
)

// GranularityForDays picks the display granularity for a requested window:
// up to one day raw, up to a week hourly, beyond that daily. The caller
// decides; the aggregator just executes.
func GranularityForDays(days int) Granularity {
	switch {
	case days <= 1:
		return GranularityRaw
	case days <= 7:
		return GranularityHourly
	default:
		return GranularityDaily
	}
}

// Point is one aggregated (timestamp, value) pair.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type bucket struct {
	ts    time.Time
	sum   float64
	count int
}

// Aggregate reduces measurements into one averaged point per bucket.
//
// Bucket keys are the local wall-clock calendar fields of each measurement
// (year-month-day-hour for hourly, year-month-day for daily), so a repeated
// or skipped hour across a DST transition merges or omits a bucket. That is
// accepted behavior. Rows with a nil water level contribute to no bucket.
//
// Each bucket's value is the arithmetic mean of its rows rounded to two
// decimals. Hourly buckets are timestamped at :30 and daily buckets at
// 12:00 local, centering the aggregate within the period it represents.
// Output is sorted ascending by timestamp; map iteration order is never
// relied upon.
func Aggregate(measurements []domain.Measurement, g Granularity, loc *time.Location) []Point {
	if loc == nil {
		loc = time.Local
	}

	if g == GranularityRaw {
		out := make([]Point, 0, len(measurements))
		for _, m := range measurements {
			if m.WaterLevel == nil {
				continue
			}
			out = append(out, Point{Timestamp: m.MeasuredAt, Value: *m.WaterLevel})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
		return out
	}

	buckets := make(map[string]*bucket)
	for _, m := range measurements {
		if m.WaterLevel == nil {
			continue
		}
		lt := m.MeasuredAt.In(loc)

		var key string
		var ts time.Time
		switch g {
		case GranularityHourly:
			key = lt.Format("2006-01-02-15")
			ts = time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), 30, 0, 0, loc)
		default: // daily
			key = lt.Format("2006-01-02")
			ts = time.Date(lt.Year(), lt.Month(), lt.Day(), 12, 0, 0, 0, loc)
		}

		b, ok := buckets[key]
		if !ok {
			b = &bucket{ts: ts}
			buckets[key] = b
		}
		b.sum += *m.WaterLevel
		b.count++
	}

	out := make([]Point, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, Point{Timestamp: b.ts, Value: utils.RoundTo(b.sum/float64(b.count), 2)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}
