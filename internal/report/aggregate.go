// Package report derives "this month" figures from ascending metric series.
package report

import (
	"time"

	"github.com/jmehdipour/tenant-console/internal/model"
)

// StartOfMonth is midnight on the first day of now's month, in now's location.
func StartOfMonth(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

// ParseDate reads a series date. Plain YYYY-MM-DD dates are taken as local
// midnight in loc; RFC 3339 timestamps keep their own offset.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if t, err := time.ParseInLocation(time.DateOnly, s, loc); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// MonthDelta returns last - first of value over the points dated on or after
// the start of now's month. Fewer than two such points yield 0. Points with
// unparsable dates are skipped.
func MonthDelta[P any](points []P, now time.Time, date func(P) string, value func(P) float64) float64 {
	start := StartOfMonth(now)

	var first, last P
	n := 0
	for _, p := range points {
		d, ok := ParseDate(date(p), now.Location())
		if !ok || d.Before(start) {
			continue
		}
		if n == 0 {
			first = p
		}
		last = p
		n++
	}

	if n == 0 {
		return 0
	}
	return value(last) - value(first)
}

// Summary is the set of month-to-date deltas shown on the overview page.
type Summary struct {
	NewUsers  int64
	NewTrips  int64
	StorageGB float64
}

// ThisMonth computes the overview deltas of a tenant report.
func ThisMonth(r model.TenantReport, now time.Time) Summary {
	date := func(p model.MetricPoint) string { return p.Date }

	return Summary{
		NewUsers:  int64(MonthDelta(r.Metrics, now, date, func(p model.MetricPoint) float64 { return float64(p.Users) })),
		NewTrips:  int64(MonthDelta(r.Metrics, now, date, func(p model.MetricPoint) float64 { return float64(p.Trips) })),
		StorageGB: MonthDelta(r.Metrics, now, date, func(p model.MetricPoint) float64 { return p.StorageGB }),
	}
}

func UsersThisMonth(points []model.UserMetricPoint, now time.Time) int64 {
	return int64(MonthDelta(points, now,
		func(p model.UserMetricPoint) string { return p.Date },
		func(p model.UserMetricPoint) float64 { return float64(p.TotalUsers) }))
}

func TripsThisMonth(points []model.TripMetricPoint, now time.Time) int64 {
	return int64(MonthDelta(points, now,
		func(p model.TripMetricPoint) string { return p.Date },
		func(p model.TripMetricPoint) float64 { return float64(p.TotalTrips) }))
}

func MediaThisMonth(points []model.MediaMetricPoint, now time.Time) int64 {
	return int64(MonthDelta(points, now,
		func(p model.MediaMetricPoint) string { return p.Date },
		func(p model.MediaMetricPoint) float64 { return float64(p.TotalMedia) }))
}

func StorageThisMonth(points []model.MediaMetricPoint, now time.Time) float64 {
	return MonthDelta(points, now,
		func(p model.MediaMetricPoint) string { return p.Date },
		func(p model.MediaMetricPoint) float64 { return p.StorageGB })
}

func InteractionsThisMonth(points []model.SocialMetricPoint, now time.Time) int64 {
	return int64(MonthDelta(points, now,
		func(p model.SocialMetricPoint) string { return p.Date },
		func(p model.SocialMetricPoint) float64 { return float64(p.TotalInteractions) }))
}
