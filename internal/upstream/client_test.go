package upstream

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_URL(t *testing.T) {
	c := NewClient("reports", "http://localhost:8084", "/rest/v1", time.Second)

	assert.Equal(t, "http://localhost:8084/rest/v1/reports/tenant/acme", c.URL("/reports/tenant/acme", nil))
	assert.Equal(t, "http://localhost:8084/rest/v1/reports/tenant/acme/users?days=7",
		c.URL("/reports/tenant/acme/users", url.Values{"days": {"7"}}))
}

func TestClient_Do_PassesHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/rest/v1/tenants", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		assert.Equal(t, "acme", r.Header.Get(TenantIDHeader))

		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"acme"}`, string(b))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"tenantId":"acme-1"}`))
	}))
	defer srv.Close()

	c := NewClient("tenants", srv.URL, "/rest/v1", time.Second)
	hdr := http.Header{}
	hdr.Set(TenantIDHeader, "acme")

	res, err := c.Do(context.Background(), http.MethodPost, "/tenants", nil, hdr, []byte(`{"name":"acme"}`))
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, http.StatusCreated, res.Status)
	assert.Equal(t, `{"tenantId":"acme-1"}`, string(res.Body))
}

func TestClient_Do_NonSuccessIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient("tenants", srv.URL, "", time.Second)

	res, err := c.Do(context.Background(), http.MethodGet, "/tenants/missing", nil, nil, nil)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestClient_Do_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient("tenants", base, "/rest/v1", time.Second)

	_, err := c.Do(context.Background(), http.MethodGet, "/tenants", nil, nil, nil)
	require.Error(t, err)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "tenants", te.Upstream)
	assert.Equal(t, http.MethodGet, te.Method)
}

func TestClient_Do_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient("reports", srv.URL, "", 50*time.Millisecond)

	_, err := c.Do(context.Background(), http.MethodGet, "/slow", nil, nil, nil)

	var te *TransportError
	require.True(t, errors.As(err, &te))
}
