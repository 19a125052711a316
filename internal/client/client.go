// Package client is the typed Go client for the console's /api routes. It
// decodes responses into model shapes without checking which fields were
// present: anything the upstream omits comes back as a zero value.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmehdipour/tenant-console/internal/model"
	"github.com/tidwall/gjson"
)

// ErrEmptyTenantID is returned before any request when no tenant is given.
var ErrEmptyTenantID = errors.New("tenant id is required")

// APIError is any non-2xx answer from the console.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string { return e.Message }

type Client struct {
	baseURL  string
	http     *http.Client
	validate *validator.Validate
}

type Option func(*Client)

// WithTimeout replaces the default 15s client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// New builds a client for the console served at baseURL (e.g. http://localhost:3000).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: 15 * time.Second},
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ---- Reports ----

func (c *Client) GetTenantReport(ctx context.Context, tenantID string, days int) (*model.TenantReport, error) {
	if tenantID == "" {
		return nil, ErrEmptyTenantID
	}
	var out model.TenantReport
	err := c.get(ctx, "/api/reports/tenant/"+url.PathEscape(tenantID), windowQuery(days), "Failed to fetch tenant report", &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetUserMetrics(ctx context.Context, tenantID string, days int) (*model.UserMetrics, error) {
	return getMetric[model.UserMetrics](ctx, c, tenantID, model.MetricUsers, days, "Failed to fetch user metrics")
}

func (c *Client) GetTripMetrics(ctx context.Context, tenantID string, days int) (*model.TripMetrics, error) {
	return getMetric[model.TripMetrics](ctx, c, tenantID, model.MetricTrips, days, "Failed to fetch trip metrics")
}

func (c *Client) GetMediaMetrics(ctx context.Context, tenantID string, days int) (*model.MediaMetrics, error) {
	return getMetric[model.MediaMetrics](ctx, c, tenantID, model.MetricMedia, days, "Failed to fetch media metrics")
}

func (c *Client) GetSocialMetrics(ctx context.Context, tenantID string, days int) (*model.SocialMetrics, error) {
	return getMetric[model.SocialMetrics](ctx, c, tenantID, model.MetricSocial, days, "Failed to fetch social metrics")
}

// GetPricing has no lookback window.
func (c *Client) GetPricing(ctx context.Context, tenantID string) (*model.Pricing, error) {
	return getMetric[model.Pricing](ctx, c, tenantID, model.MetricPricing, 0, "Failed to fetch pricing")
}

func getMetric[T any](ctx context.Context, c *Client, tenantID string, mt model.MetricType, days int, fallback string) (*T, error) {
	if tenantID == "" {
		return nil, ErrEmptyTenantID
	}
	var q url.Values
	if mt.Windowed() {
		q = windowQuery(days)
	}
	var out T
	if err := c.get(ctx, "/api/reports/tenant/"+url.PathEscape(tenantID)+"/"+mt.String(), q, fallback, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func windowQuery(days int) url.Values {
	if days <= 0 {
		days = model.DefaultDays
	}
	return url.Values{"days": {strconv.Itoa(days)}}
}

// ---- Tenants ----

func (c *Client) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	var out []model.Tenant
	if err := c.get(ctx, "/api/tenants", nil, "Failed to fetch tenants", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetTenant(ctx context.Context, tenantID string) (*model.Tenant, error) {
	if tenantID == "" {
		return nil, ErrEmptyTenantID
	}
	var out model.Tenant
	if err := c.get(ctx, "/api/tenants/"+url.PathEscape(tenantID), nil, "Failed to fetch tenant", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTenant validates req locally, then submits it once. It does not
// deduplicate repeated calls.
func (c *Client) CreateTenant(ctx context.Context, req model.CreateTenantRequest) (*model.Tenant, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid tenant: %w", err)
	}
	var out model.Tenant
	if err := c.post(ctx, "/api/tenants", req, "Failed to create tenant", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTenantAdmin provisions the admin user of a tenant. The created user
// is returned as the raw upstream JSON.
func (c *Client) CreateTenantAdmin(ctx context.Context, tenantID string, req model.CreateAdminUserRequest) (json.RawMessage, error) {
	if tenantID == "" {
		return nil, ErrEmptyTenantID
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid admin user: %w", err)
	}
	var out json.RawMessage
	if err := c.post(ctx, "/api/tenants/"+url.PathEscape(tenantID)+"/admin", req, "Failed to create admin user", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ---- transport ----

func (c *Client) get(ctx context.Context, path string, q url.Values, fallback string, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	return c.do(req, fallback, out)
}

func (c *Client) post(ctx context.Context, path string, in any, fallback string, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, fallback, out)
}

func (c *Client) do(req *http.Request, fallback string, out any) error {
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", fallback, err)
	}

	if res.StatusCode/100 != 2 {
		return &APIError{Status: res.StatusCode, Message: errorMessage(body, fallback, res.StatusCode)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode: %w", fallback, err)
	}
	return nil
}

// errorMessage reads the {"error": ...} envelope. An unparsable body yields
// fallback; a parsable one without a message yields fallback plus the status
// text.
func errorMessage(body []byte, fallback string, status int) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}
	for _, key := range []string{"error", "message"} {
		r := gjson.GetBytes(body, key)
		if r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}
	return fmt.Sprintf("%s: %s", fallback, http.StatusText(status))
}
