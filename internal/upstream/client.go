package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// TenantIDHeader carries the tenant scope on reporting calls.
const TenantIDHeader = "X-Tenant-Id"

// maxBodyBytes caps how much of an upstream body is read into memory.
const maxBodyBytes = 16 << 20

// Response is a fully read upstream answer.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool { return r.Status/100 == 2 }

// TransportError means the upstream never produced a complete response:
// dial/DNS failures, timeouts, resets, truncated bodies.
type TransportError struct {
	Upstream string
	Method   string
	URL      string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("upstream=%s %s %s: %v", e.Upstream, e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Client issues requests against one upstream REST service. It never retries.
type Client struct {
	name    string
	baseURL string
	prefix  string
	client  *http.Client
}

func NewClient(name, baseURL, prefix string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		name:    name,
		baseURL: baseURL,
		prefix:  prefix,
		client:  &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return c.name }

// URL builds the absolute upstream URL for path (already escaped) and query.
func (c *Client) URL(path string, query url.Values) string {
	u := c.baseURL + c.prefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do performs one round trip. A non-2xx status is not an error; only failures
// to obtain a full response are, and those are always *TransportError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, header http.Header, body []byte) (*Response, error) {
	target := c.URL(path, query)

	var rdr io.Reader
	if body != nil {
		rdr = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, &TransportError{Upstream: c.name, Method: method, URL: target, Err: err}
	}

	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	res, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Upstream: c.name, Method: method, URL: target, Err: err}
	}

	defer res.Body.Close()

	b, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Upstream: c.name, Method: method, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	return &Response{Status: res.StatusCode, Body: b}, nil
}
