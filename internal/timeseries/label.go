package timeseries

import (
	"time"

	"github.com/swfm/backend/internal/domain"
)

// PointLabel formats a chart point's time label for the requested window.
// The same rule drives the merge key in labeled-bucket mode, so actual and
// forecast rows that land in the same bucket share one visual point.
func PointLabel(t time.Time, days int, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	switch {
	case days <= 7:
		return lt.Format("15:04")
	case days <= 14:
		return lt.Format("02/01")
	default:
		return lt.Format("2 Jan")
	}
}

// Ticks produces axis tick text for an assembled series, one entry per
// point.
func Ticks(points []domain.ChartPoint, days int, loc *time.Location) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = TickLabel(time.UnixMilli(p.Timestamp), days, loc)
	}
	return out
}

// TickLabel formats axis tick text for the requested window. Ticks diverge
// from point labels on the widest windows, where point labels stay at day
// resolution but ticks collapse to month + two-digit year.
func TickLabel(t time.Time, days int, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	lt := t.In(loc)
	switch {
	case days <= 1:
		return lt.Format("15:04")
	case days <= 7:
		return lt.Format("Mon 15:04")
	case days <= 14:
		return lt.Format("02/01")
	case days <= 30:
		return lt.Format("2 Jan")
	default:
		return lt.Format("Jan '06")
	}
}
