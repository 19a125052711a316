package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmehdipour/tenant-console/internal/logger"
	"github.com/jmehdipour/tenant-console/internal/metrics"
	"github.com/jmehdipour/tenant-console/internal/upstream"
	"github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const unavailableSuffix = ". The API server may be unavailable."

var errMalformedBody = errors.New("upstream returned a non-JSON success body")

type errorBody struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, status int, msg string) error {
	return c.JSON(status, errorBody{Error: msg})
}

// call is one proxied upstream request.
type call struct {
	api      *upstream.Client
	route    string // metrics label
	tenantID string // for logs, empty on list/create
	fallback string // canned message, e.g. "Failed to fetch tenants"
	method   string
	path     string // escaped, relative to the upstream prefix
	query    url.Values
	header   http.Header
	body     []byte
	status   int // status written on success
}

// relay performs the call and writes the browser response. On success it
// returns the upstream body; on failure the error envelope has already been
// written and the returned body is nil.
func relay(c echo.Context, in call) ([]byte, error) {
	// An abandoned browser request does not cancel the upstream call; the
	// client timeout still bounds it.
	ctx := context.WithoutCancel(c.Request().Context())

	start := time.Now()
	res, err := in.api.Do(ctx, in.method, in.path, in.query, in.header, in.body)
	metrics.UpstreamDuration.WithLabelValues(in.route).Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, unavailable(c, in, err)
	}

	if !res.OK() {
		metrics.UpstreamRequests.WithLabelValues(in.route, metrics.OutcomeRejected).Inc()
		msg := upstreamMessage(res.Body, in.fallback)
		logger.Log.Warn("upstream rejected request",
			zap.String("route", in.route),
			zap.String("upstream", in.api.Name()),
			zap.Int("status", res.Status),
			zap.String("error", msg),
			zap.String("tenant_id", in.tenantID),
			zap.String("request_id", requestID(c)),
		)
		return nil, writeError(c, res.Status, msg)
	}

	if !gjson.ValidBytes(res.Body) {
		return nil, unavailable(c, in, errMalformedBody)
	}

	metrics.UpstreamRequests.WithLabelValues(in.route, metrics.OutcomeOK).Inc()
	return res.Body, c.JSONBlob(in.status, res.Body)
}

func unavailable(c echo.Context, in call, err error) error {
	metrics.UpstreamRequests.WithLabelValues(in.route, metrics.OutcomeUnavailable).Inc()
	logger.Log.Error("upstream call failed",
		zap.String("route", in.route),
		zap.String("upstream", in.api.Name()),
		zap.String("tenant_id", in.tenantID),
		zap.String("request_id", requestID(c)),
		zap.Error(err),
	)
	return writeError(c, http.StatusServiceUnavailable, in.fallback+unavailableSuffix)
}

// upstreamMessage extracts the upstream's own error text. Bodies that are not
// JSON, or carry no usable message, yield fallback.
func upstreamMessage(body []byte, fallback string) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}
	for _, key := range []string{"message", "error"} {
		r := gjson.GetBytes(body, key)
		if r.Type == gjson.String && strings.TrimSpace(r.Str) != "" {
			return r.Str
		}
	}
	return fallback
}

// pathParam returns the decoded value of a route parameter. echo leaves
// parameters escaped when the request path carries escapes.
func pathParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
