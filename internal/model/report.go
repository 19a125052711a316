package model

import "math"

// TenantReport is the aggregate snapshot for one tenant. Metrics are ordered
// by ascending date.
type TenantReport struct {
	TenantID       string        `json:"tenantId"`
	TotalUsers     int64         `json:"totalUsers"`
	ActiveUsers    int64         `json:"activeUsers"`
	TotalTrips     int64         `json:"totalTrips"`
	TotalStorageGB float64       `json:"totalStorageGB"`
	TotalAPICalls  int64         `json:"totalApiCalls"`
	MonthlyCost    float64       `json:"monthlyCost"`
	TotalCost      float64       `json:"totalCost"`
	LastUpdated    string        `json:"lastUpdated"`
	Metrics        []MetricPoint `json:"metrics"`
}

type MetricPoint struct {
	Date      string  `json:"date"`
	Users     int64   `json:"users"`
	Trips     int64   `json:"trips"`
	StorageGB float64 `json:"storageGB"`
	Cost      float64 `json:"cost"`
}

type UserMetrics struct {
	TenantID          string            `json:"tenantId"`
	TotalUsers        int64             `json:"totalUsers"`
	ActiveUsers       int64             `json:"activeUsers"`
	NewUsersThisMonth int64             `json:"newUsersThisMonth"`
	NewUsersInPeriod  int64             `json:"newUsersInPeriod"`
	LastUpdated       string            `json:"lastUpdated"`
	Metrics           []UserMetricPoint `json:"metrics"`
}

type UserMetricPoint struct {
	Date        string `json:"date"`
	TotalUsers  int64  `json:"totalUsers"`
	ActiveUsers int64  `json:"activeUsers"`
	NewUsers    int64  `json:"newUsers"`
}

type TripMetrics struct {
	TenantID       string            `json:"tenantId"`
	TotalTrips     int64             `json:"totalTrips"`
	TripsThisMonth int64             `json:"tripsThisMonth"`
	TripsInPeriod  int64             `json:"tripsInPeriod"`
	LastUpdated    string            `json:"lastUpdated"`
	Metrics        []TripMetricPoint `json:"metrics"`
}

type TripMetricPoint struct {
	Date       string `json:"date"`
	TotalTrips int64  `json:"totalTrips"`
	NewTrips   int64  `json:"newTrips"`
}

type MediaMetrics struct {
	TenantID       string             `json:"tenantId"`
	TotalMedia     int64              `json:"totalMedia"`
	MediaThisMonth int64              `json:"mediaThisMonth"`
	MediaInPeriod  int64              `json:"mediaInPeriod"`
	TotalStorageGB float64            `json:"totalStorageGB"`
	LastUpdated    string             `json:"lastUpdated"`
	Metrics        []MediaMetricPoint `json:"metrics"`
}

type MediaMetricPoint struct {
	Date       string  `json:"date"`
	TotalMedia int64   `json:"totalMedia"`
	NewMedia   int64   `json:"newMedia"`
	StorageGB  float64 `json:"storageGB"`
}

type SocialMetrics struct {
	TenantID              string              `json:"tenantId"`
	TotalLikes            int64               `json:"totalLikes"`
	TotalComments         int64               `json:"totalComments"`
	TotalInteractions     int64               `json:"totalInteractions"`
	InteractionsThisMonth int64               `json:"interactionsThisMonth"`
	InteractionsInPeriod  int64               `json:"interactionsInPeriod"`
	LastUpdated           string              `json:"lastUpdated"`
	Metrics               []SocialMetricPoint `json:"metrics"`
}

type SocialMetricPoint struct {
	Date              string `json:"date"`
	Likes             int64  `json:"likes"`
	Comments          int64  `json:"comments"`
	TotalInteractions int64  `json:"totalInteractions"`
}

type Pricing struct {
	TenantID            string        `json:"tenantId"`
	BaseCost            float64       `json:"baseCost"`
	CostPerUser         float64       `json:"costPerUser"`
	CostPerGB           float64       `json:"costPerGB"`
	CostPer1000APICalls float64       `json:"costPer1000ApiCalls"`
	CurrentMonthlyCost  float64       `json:"currentMonthlyCost"`
	TotalCost           float64       `json:"totalCost"`
	CostBreakdown       CostBreakdown `json:"costBreakdown"`
	LastUpdated         string        `json:"lastUpdated"`
}

type CostBreakdown struct {
	BaseCost       float64 `json:"baseCost"`
	UserCost       float64 `json:"userCost"`
	StorageCost    float64 `json:"storageCost"`
	APICost        float64 `json:"apiCost"`
	TotalUsers     int64   `json:"totalUsers"`
	TotalStorageGB float64 `json:"totalStorageGB"`
	TotalAPICalls  int64   `json:"totalApiCalls"`
}

// BreakdownTolerance is the rounding slack allowed between the summed
// breakdown and the reported monthly cost.
const BreakdownTolerance = 0.01

// Sum adds up the four cost components.
func (b CostBreakdown) Sum() float64 {
	return b.BaseCost + b.UserCost + b.StorageCost + b.APICost
}

// Consistent reports whether the components add up to monthly.
func (b CostBreakdown) Consistent(monthly float64) bool {
	return math.Abs(b.Sum()-monthly) <= BreakdownTolerance
}
