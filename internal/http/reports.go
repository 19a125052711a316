package http

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jmehdipour/tenant-console/internal/metrics"
	"github.com/jmehdipour/tenant-console/internal/model"
	"github.com/jmehdipour/tenant-console/internal/upstream"
	echo "github.com/labstack/echo/v4"
)

var defaultDays = strconv.Itoa(model.DefaultDays)

func tenantReportHandler(api *upstream.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID := pathParam(c, "tenantId")

		_, err := relay(c, call{
			api:      api,
			route:    "reports.tenant",
			tenantID: tenantID,
			fallback: "Failed to fetch tenant report",
			method:   http.MethodGet,
			path:     "/reports/tenant/" + url.PathEscape(tenantID),
			query:    url.Values{"days": {daysParam(c)}},
			header:   tenantHeader(tenantID),
			status:   http.StatusOK,
		})
		return err
	}
}

// metricHandler serves users|trips|media|social|pricing. Unknown types are
// refused before any upstream call.
func metricHandler(api *upstream.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID := pathParam(c, "tenantId")
		raw := pathParam(c, "metricType")

		mt, ok := model.ParseMetricType(raw)
		if !ok {
			metrics.UpstreamRequests.WithLabelValues("reports.metric", metrics.OutcomeInvalid).Inc()
			return writeError(c, http.StatusBadRequest, fmt.Sprintf("Invalid metric type: %s", raw))
		}

		var q url.Values
		if mt.Windowed() {
			q = url.Values{"days": {daysParam(c)}}
		}

		_, err := relay(c, call{
			api:      api,
			route:    "reports." + mt.String(),
			tenantID: tenantID,
			fallback: fmt.Sprintf("Failed to fetch %s metrics", mt),
			method:   http.MethodGet,
			path:     "/reports/tenant/" + url.PathEscape(tenantID) + "/" + mt.String(),
			query:    q,
			header:   tenantHeader(tenantID),
			status:   http.StatusOK,
		})
		return err
	}
}

// daysParam forwards the caller's days value as given, or the default window.
func daysParam(c echo.Context) string {
	if d := c.QueryParam("days"); d != "" {
		return d
	}
	return defaultDays
}

func tenantHeader(tenantID string) http.Header {
	h := http.Header{}
	h.Set(upstream.TenantIDHeader, tenantID)
	return h
}
