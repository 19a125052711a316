package model

type MetricType string

const (
	MetricUsers   MetricType = "users"
	MetricTrips   MetricType = "trips"
	MetricMedia   MetricType = "media"
	MetricSocial  MetricType = "social"
	MetricPricing MetricType = "pricing"
)

// DefaultDays is the lookback window applied when the caller gives none.
const DefaultDays = 30

func (t MetricType) String() string { return string(t) }

// ParseMetricType accepts exactly the five known metric types. Matching is
// case-sensitive and nothing is trimmed.
func ParseMetricType(s string) (MetricType, bool) {
	t := MetricType(s)
	return t, t.Valid()
}

func (t MetricType) Valid() bool {
	switch t {
	case MetricUsers, MetricTrips, MetricMedia, MetricSocial, MetricPricing:
		return true
	default:
		return false
	}
}

// Windowed reports whether the metric accepts a days lookback. Pricing is a
// point-in-time figure.
func (t MetricType) Windowed() bool {
	return t.Valid() && t != MetricPricing
}
