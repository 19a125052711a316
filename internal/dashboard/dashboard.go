// Package dashboard assembles the data behind each console page: it resolves
// the tenant from the session, fetches through the typed client and derives
// the stat cards.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jmehdipour/tenant-console/internal/model"
	"github.com/jmehdipour/tenant-console/internal/report"
	"github.com/jmehdipour/tenant-console/internal/session"
)

// Reports is the subset of client.Client the pages read from.
type Reports interface {
	GetTenantReport(ctx context.Context, tenantID string, days int) (*model.TenantReport, error)
	GetUserMetrics(ctx context.Context, tenantID string, days int) (*model.UserMetrics, error)
	GetTripMetrics(ctx context.Context, tenantID string, days int) (*model.TripMetrics, error)
	GetMediaMetrics(ctx context.Context, tenantID string, days int) (*model.MediaMetrics, error)
	GetSocialMetrics(ctx context.Context, tenantID string, days int) (*model.SocialMetrics, error)
	GetPricing(ctx context.Context, tenantID string) (*model.Pricing, error)
}

type StatCard struct {
	Title  string `json:"title"`
	Value  string `json:"value"`
	Change string `json:"change,omitempty"`
}

// Page is one rendered dashboard view.
type Page struct {
	Title       string     `json:"title"`
	TenantID    string     `json:"tenantId"`
	LastUpdated string     `json:"lastUpdated"`
	Cards       []StatCard `json:"cards"`
	Warnings    []string   `json:"warnings,omitempty"`
}

type Loader struct {
	reports Reports
	days    int
	now     func() time.Time
}

// NewLoader reads windowed metrics over days (30 when <= 0).
func NewLoader(r Reports, days int) *Loader {
	if days <= 0 {
		days = model.DefaultDays
	}
	return &Loader{reports: r, days: days, now: time.Now}
}

// WithClock overrides the clock used for month boundaries.
func (l *Loader) WithClock(now func() time.Time) *Loader {
	l.now = now
	return l
}

func (l *Loader) Overview(ctx context.Context, s session.Session) (*Page, error) {
	tenantID, err := s.Require()
	if err != nil {
		return nil, err
	}
	r, err := l.reports.GetTenantReport(ctx, tenantID, l.days)
	if err != nil {
		return nil, err
	}

	month := report.ThisMonth(*r, l.now())

	return &Page{
		Title:       "Dashboard Overview",
		TenantID:    tenantID,
		LastUpdated: r.LastUpdated,
		Cards: []StatCard{
			{Title: "Active Users", Value: count(r.ActiveUsers), Change: thisMonth(month.NewUsers)},
			{Title: "Total Trips", Value: count(r.TotalTrips), Change: thisMonth(month.NewTrips)},
			{Title: "Storage", Value: fmt.Sprintf("%.2f GB", r.TotalStorageGB), Change: fmt.Sprintf("%+.2f GB this month", month.StorageGB)},
			{Title: "Monthly Cost", Value: money(r.MonthlyCost), Change: "Current billing period"},
		},
	}, nil
}

func (l *Loader) Users(ctx context.Context, s session.Session) (*Page, error) {
	tenantID, err := s.Require()
	if err != nil {
		return nil, err
	}
	m, err := l.reports.GetUserMetrics(ctx, tenantID, l.days)
	if err != nil {
		return nil, err
	}

	return &Page{
		Title:       "Users",
		TenantID:    tenantID,
		LastUpdated: m.LastUpdated,
		Cards: []StatCard{
			{Title: "Total Users", Value: count(m.TotalUsers), Change: thisMonth(report.UsersThisMonth(m.Metrics, l.now()))},
			{Title: fmt.Sprintf("Active Users (%d days)", l.days), Value: count(m.ActiveUsers)},
			{Title: "New Users This Month", Value: count(m.NewUsersThisMonth)},
			{Title: fmt.Sprintf("New Users (last %d days)", l.days), Value: count(m.NewUsersInPeriod)},
		},
	}, nil
}

func (l *Loader) Trips(ctx context.Context, s session.Session) (*Page, error) {
	tenantID, err := s.Require()
	if err != nil {
		return nil, err
	}
	m, err := l.reports.GetTripMetrics(ctx, tenantID, l.days)
	if err != nil {
		return nil, err
	}

	return &Page{
		Title:       "Trips",
		TenantID:    tenantID,
		LastUpdated: m.LastUpdated,
		Cards: []StatCard{
			{Title: "Total Trips", Value: count(m.TotalTrips), Change: thisMonth(report.TripsThisMonth(m.Metrics, l.now()))},
			{Title: "Trips This Month", Value: count(m.TripsThisMonth)},
			{Title: fmt.Sprintf("Trips (last %d days)", l.days), Value: count(m.TripsInPeriod)},
		},
	}, nil
}

func (l *Loader) Media(ctx context.Context, s session.Session) (*Page, error) {
	tenantID, err := s.Require()
	if err != nil {
		return nil, err
	}
	m, err := l.reports.GetMediaMetrics(ctx, tenantID, l.days)
	if err != nil {
		return nil, err
	}

	now := l.now()
	return &Page{
		Title:       "Media",
		TenantID:    tenantID,
		LastUpdated: m.LastUpdated,
		Cards: []StatCard{
			{Title: "Total Media Files", Value: count(m.TotalMedia), Change: thisMonth(report.MediaThisMonth(m.Metrics, now))},
			{Title: "Media This Month", Value: count(m.MediaThisMonth)},
			{
				Title:  "Total Storage",
				Value:  fmt.Sprintf("%.2f GB", m.TotalStorageGB),
				Change: fmt.Sprintf("%+.2f GB this month", report.StorageThisMonth(m.Metrics, now)),
			},
			{Title: fmt.Sprintf("Media (last %d days)", l.days), Value: count(m.MediaInPeriod)},
		},
	}, nil
}

func (l *Loader) Social(ctx context.Context, s session.Session) (*Page, error) {
	tenantID, err := s.Require()
	if err != nil {
		return nil, err
	}
	m, err := l.reports.GetSocialMetrics(ctx, tenantID, l.days)
	if err != nil {
		return nil, err
	}

	return &Page{
		Title:       "Social",
		TenantID:    tenantID,
		LastUpdated: m.LastUpdated,
		Cards: []StatCard{
			{Title: "Total Likes", Value: count(m.TotalLikes)},
			{Title: "Total Comments", Value: count(m.TotalComments)},
			{Title: "Total Interactions", Value: count(m.TotalInteractions), Change: thisMonth(report.InteractionsThisMonth(m.Metrics, l.now()))},
			{Title: "This Month", Value: count(m.InteractionsThisMonth)},
			{Title: fmt.Sprintf("Interactions (last %d days)", l.days), Value: count(m.InteractionsInPeriod)},
		},
	}, nil
}

func (l *Loader) Pricing(ctx context.Context, s session.Session) (*Page, error) {
	tenantID, err := s.Require()
	if err != nil {
		return nil, err
	}
	pr, err := l.reports.GetPricing(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	b := pr.CostBreakdown
	p := &Page{
		Title:       "Pricing & Billing",
		TenantID:    tenantID,
		LastUpdated: pr.LastUpdated,
		Cards: []StatCard{
			{Title: "Base Cost", Value: money(pr.BaseCost) + "/month"},
			{Title: "Per User", Value: money(pr.CostPerUser) + "/user"},
			{Title: "Per GB Storage", Value: money(pr.CostPerGB) + "/GB"},
			{Title: "Per 1000 API Calls", Value: money(pr.CostPer1000APICalls) + "/1k"},
			{Title: "User Cost", Value: money(b.UserCost), Change: count(b.TotalUsers) + " users"},
			{Title: "Storage Cost", Value: money(b.StorageCost), Change: fmt.Sprintf("%.2f GB", b.TotalStorageGB)},
			{Title: "API Cost", Value: money(b.APICost), Change: count(b.TotalAPICalls) + " calls"},
			{Title: "Current Monthly Cost", Value: money(pr.CurrentMonthlyCost)},
			{Title: "All-time Total Cost", Value: money(pr.TotalCost)},
		},
	}
	if !b.Consistent(pr.CurrentMonthlyCost) {
		p.Warnings = append(p.Warnings, fmt.Sprintf(
			"cost breakdown sums to %s but monthly cost is %s", money(b.Sum()), money(pr.CurrentMonthlyCost)))
	}
	return p, nil
}

func thisMonth(n int64) string { return fmt.Sprintf("%+d this month", n) }

func count(n int64) string { return fmt.Sprintf("%d", n) }

func money(v float64) string { return fmt.Sprintf("$%.2f", v) }
