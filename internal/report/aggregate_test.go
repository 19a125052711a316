package report

import (
	"testing"
	"time"

	"github.com/jmehdipour/tenant-console/internal/model"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

func TestStartOfMonth(t *testing.T) {
	now := time.Date(2024, time.February, 29, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC), StartOfMonth(now))
}

func TestThisMonth_UserDelta(t *testing.T) {
	r := model.TenantReport{Metrics: []model.MetricPoint{
		{Date: "2024-01-15", Users: 10},
		{Date: "2024-01-31", Users: 25},
	}}

	got := ThisMonth(r, day(2024, time.January, 31))
	assert.Equal(t, int64(15), got.NewUsers)
}

func TestThisMonth_NothingInCurrentMonth(t *testing.T) {
	r := model.TenantReport{Metrics: []model.MetricPoint{
		{Date: "2023-12-01", Users: 1, Trips: 1, StorageGB: 1},
		{Date: "2023-12-31", Users: 9, Trips: 5, StorageGB: 4},
	}}

	assert.Equal(t, Summary{}, ThisMonth(r, day(2024, time.January, 10)))
}

func TestThisMonth_SinglePointIsZero(t *testing.T) {
	r := model.TenantReport{Metrics: []model.MetricPoint{
		{Date: "2023-12-31", Users: 3},
		{Date: "2024-01-02", Users: 40, Trips: 8, StorageGB: 2.5},
	}}

	assert.Equal(t, Summary{}, ThisMonth(r, day(2024, time.January, 2)))
}

func TestThisMonth_IgnoresEarlierMonths(t *testing.T) {
	r := model.TenantReport{Metrics: []model.MetricPoint{
		{Date: "2023-12-20", Users: 1, Trips: 1, StorageGB: 0.5},
		{Date: "2024-01-01", Users: 20, Trips: 4, StorageGB: 1.25},
		{Date: "2024-01-10", Users: 26, Trips: 9, StorageGB: 2.0},
		{Date: "2024-01-20", Users: 31, Trips: 15, StorageGB: 3.75},
	}}

	got := ThisMonth(r, day(2024, time.January, 20))
	assert.Equal(t, int64(11), got.NewUsers)
	assert.Equal(t, int64(11), got.NewTrips)
	assert.InDelta(t, 2.5, got.StorageGB, 1e-9)
}

func TestThisMonth_SameMonthSameResult(t *testing.T) {
	r := model.TenantReport{Metrics: []model.MetricPoint{
		{Date: "2024-03-01", Users: 5},
		{Date: "2024-03-09", Users: 12},
	}}

	a := ThisMonth(r, time.Date(2024, time.March, 9, 0, 0, 1, 0, time.Local))
	b := ThisMonth(r, time.Date(2024, time.March, 31, 23, 0, 0, 0, time.Local))
	assert.Equal(t, a, b)
}

func TestMonthDelta_SkipsUnparsableDates(t *testing.T) {
	pts := []model.UserMetricPoint{
		{Date: "garbage", TotalUsers: 1000},
		{Date: "2024-05-02", TotalUsers: 50},
		{Date: "2024-05-03T12:00:00Z", TotalUsers: 58},
		{Date: "", TotalUsers: 9000},
	}

	assert.Equal(t, int64(8), UsersThisMonth(pts, day(2024, time.May, 3)))
}

func TestDomainSeries(t *testing.T) {
	now := day(2024, time.June, 30)

	trips := []model.TripMetricPoint{{Date: "2024-06-01", TotalTrips: 3}, {Date: "2024-06-30", TotalTrips: 10}}
	assert.Equal(t, int64(7), TripsThisMonth(trips, now))

	media := []model.MediaMetricPoint{
		{Date: "2024-05-31", TotalMedia: 1, StorageGB: 0.1},
		{Date: "2024-06-01", TotalMedia: 4, StorageGB: 1.0},
		{Date: "2024-06-15", TotalMedia: 9, StorageGB: 1.75},
	}
	assert.Equal(t, int64(5), MediaThisMonth(media, now))
	assert.InDelta(t, 0.75, StorageThisMonth(media, now), 1e-9)

	social := []model.SocialMetricPoint{{Date: "2024-06-10", TotalInteractions: 100}, {Date: "2024-06-20", TotalInteractions: 160}}
	assert.Equal(t, int64(60), InteractionsThisMonth(social, now))

	assert.Zero(t, InteractionsThisMonth(nil, now))
}
