package http

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/jmehdipour/tenant-console/internal/audit"
	"github.com/jmehdipour/tenant-console/internal/logger"
	"github.com/jmehdipour/tenant-console/internal/metrics"
	"github.com/jmehdipour/tenant-console/internal/upstream"
	echo "github.com/labstack/echo/v4"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

func listTenantsHandler(api *upstream.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		_, err := relay(c, call{
			api:      api,
			route:    "tenants.list",
			fallback: "Failed to fetch tenants",
			method:   http.MethodGet,
			path:     "/tenants",
			status:   http.StatusOK,
		})
		return err
	}
}

func getTenantHandler(api *upstream.Client) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID := pathParam(c, "tenantId")

		_, err := relay(c, call{
			api:      api,
			route:    "tenants.get",
			tenantID: tenantID,
			fallback: "Failed to fetch tenant",
			method:   http.MethodGet,
			path:     "/tenants/" + url.PathEscape(tenantID),
			status:   http.StatusOK,
		})
		return err
	}
}

// createTenantHandler forwards {name, description?} untouched.
func createTenantHandler(api *upstream.Client, pub audit.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, ok := readJSONBody(c)
		if !ok {
			metrics.UpstreamRequests.WithLabelValues("tenants.create", metrics.OutcomeInvalid).Inc()
			return writeError(c, http.StatusBadRequest, "invalid request body")
		}

		created, err := relay(c, call{
			api:      api,
			route:    "tenants.create",
			fallback: "Failed to create tenant",
			method:   http.MethodPost,
			path:     "/tenants",
			body:     body,
			status:   http.StatusCreated,
		})
		if created != nil {
			publish(c, pub, audit.TypeTenantCreated, gjson.GetBytes(created, "tenantId").String())
		}
		return err
	}
}

// createTenantAdminHandler forwards {email, password, displayName} untouched.
func createTenantAdminHandler(api *upstream.Client, pub audit.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		tenantID := pathParam(c, "tenantId")

		body, ok := readJSONBody(c)
		if !ok {
			metrics.UpstreamRequests.WithLabelValues("tenants.admin", metrics.OutcomeInvalid).Inc()
			return writeError(c, http.StatusBadRequest, "invalid request body")
		}

		created, err := relay(c, call{
			api:      api,
			route:    "tenants.admin",
			tenantID: tenantID,
			fallback: "Failed to create admin user",
			method:   http.MethodPost,
			path:     "/tenants/" + url.PathEscape(tenantID) + "/admin",
			body:     body,
			status:   http.StatusCreated,
		})
		if created != nil {
			publish(c, pub, audit.TypeTenantAdminCreated, tenantID)
		}
		return err
	}
}

func readJSONBody(c echo.Context) ([]byte, bool) {
	b, err := io.ReadAll(c.Request().Body)
	if err != nil || !gjson.ValidBytes(b) {
		return nil, false
	}
	return b, true
}

func publish(c echo.Context, pub audit.Publisher, typ, tenantID string) {
	ev := audit.NewEvent(typ, tenantID, requestID(c))
	if err := pub.Publish(context.WithoutCancel(c.Request().Context()), ev); err != nil {
		logger.Log.Warn("audit publish failed",
			zap.String("type", typ),
			zap.String("tenant_id", tenantID),
			zap.Error(err),
		)
	}
}
