package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	echo "github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, int) {
	t.Helper()

	e := echo.New()
	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]string{"ok": "true"})
	}
	e.Add(req.Method, req.URL.Path, h, mw)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, calls
}

func TestNoStore(t *testing.T) {
	rec, calls := serve(t, NoStore(), httptest.NewRequest(http.MethodGet, "/api/tenants", nil))

	require.Equal(t, 1, calls)
	assert.Equal(t, "no-store, max-age=0", rec.Header().Get(echo.HeaderCacheControl))
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
}

func TestRateLimit_DisabledWithoutRedis(t *testing.T) {
	mw := RateLimitMiddleware(RateLimitConfig{DefaultRPS: 1})

	for i := 0; i < 3; i++ {
		rec, calls := serve(t, mw, httptest.NewRequest(http.MethodGet, "/api/tenants", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 1, calls)
	}
}

func TestInFlightGuard_PassThrough(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"header without redis", "abc-123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/tenants", nil)
			if tt.header != "" {
				req.Header.Set(IdempotencyKeyHeader, tt.header)
			}

			rec, calls := serve(t, InFlightGuard(InFlightConfig{}), req)
			assert.Equal(t, http.StatusCreated, rec.Code)
			assert.Equal(t, 1, calls)
		})
	}
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{
		Addr:        mr.Addr(),
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// guarded mounts h behind the in-flight guard on the create routes and counts
// how often it runs.
type guarded struct {
	e     *echo.Echo
	calls int
}

func newGuarded(rdb *redis.Client, h func(c echo.Context)) *guarded {
	g := &guarded{e: echo.New()}
	mw := InFlightGuard(InFlightConfig{Redis: rdb, KeyPrefix: "inflight:", TTL: time.Minute})
	handler := func(c echo.Context) error {
		g.calls++
		if h != nil {
			h(c)
		}
		return c.JSON(http.StatusCreated, map[string]string{"ok": "true"})
	}
	g.e.POST("/api/tenants", handler, mw)
	g.e.POST("/api/tenants/:tenantId/admin", handler, mw)
	return g
}

func (g *guarded) post(target, idem string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, nil)
	req.Header.Set(IdempotencyKeyHeader, idem)
	rec := httptest.NewRecorder()
	g.e.ServeHTTP(rec, req)
	return rec
}

func TestInFlightGuard_HeldKeyConflicts(t *testing.T) {
	mr, rdb := newRedis(t)
	g := newGuarded(rdb, nil)

	key := "inflight:POST:/api/tenants:abc-123"
	require.NoError(t, mr.Set(key, "01HZZZOTHERREQUEST"))

	rec := g.post("/api/tenants", "abc-123")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.JSONEq(t, `{"error":"request already in progress"}`, rec.Body.String())
	assert.Equal(t, 0, g.calls)

	mr.Del(key)

	rec = g.post("/api/tenants", "abc-123")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, g.calls)
}

func TestInFlightGuard_ReleasedAfterCompletion(t *testing.T) {
	mr, rdb := newRedis(t)
	key := "inflight:POST:/api/tenants:abc-123"

	var heldDuringRequest bool
	g := newGuarded(rdb, func(echo.Context) { heldDuringRequest = mr.Exists(key) })

	rec := g.post("/api/tenants", "abc-123")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, heldDuringRequest)
	assert.False(t, mr.Exists(key))

	rec = g.post("/api/tenants", "abc-123")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 2, g.calls)
}

func TestInFlightGuard_KeyedByRequestPath(t *testing.T) {
	mr, rdb := newRedis(t)
	g := newGuarded(rdb, nil)

	require.NoError(t, mr.Set("inflight:POST:/api/tenants/acme/admin:abc-123", "01HZZZOTHERREQUEST"))

	assert.Equal(t, http.StatusConflict, g.post("/api/tenants/acme/admin", "abc-123").Code)
	assert.Equal(t, http.StatusCreated, g.post("/api/tenants/globex/admin", "abc-123").Code)
	assert.Equal(t, 1, g.calls)
}

func TestInFlightGuard_KeepsNewerHolder(t *testing.T) {
	mr, rdb := newRedis(t)
	key := "inflight:POST:/api/tenants:abc-123"

	// the key expires mid-request and a resubmission takes it over
	g := newGuarded(rdb, func(echo.Context) { _ = mr.Set(key, "01HZZZNEWERHOLDER") })

	rec := g.post("/api/tenants", "abc-123")
	require.Equal(t, http.StatusCreated, rec.Code)

	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "01HZZZNEWERHOLDER", got)
}

func TestInFlightGuard_RedisDownFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	g := newGuarded(rdb, nil)
	mr.Close()

	rec := g.post("/api/tenants", "abc-123")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, g.calls)
}

func TestRateLimit_FixedWindow(t *testing.T) {
	_, rdb := newRedis(t)

	e := echo.New()
	calls := 0
	mw := RateLimitMiddleware(RateLimitConfig{Redis: rdb, DefaultRPS: 2, Window: time.Hour, RetryAfterHint: true})
	e.GET("/api/tenants", func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	}, mw)

	get := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/tenants", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusOK, get("198.51.100.7").Code)
	require.Equal(t, http.StatusOK, get("198.51.100.7").Code)

	rec := get("198.51.100.7")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, retryAfter, 1)
	assert.Equal(t, 2, calls)

	// other clients have their own window
	assert.Equal(t, http.StatusOK, get("198.51.100.8").Code)
	assert.Equal(t, 3, calls)
}

func TestRateLimit_RedisDownFailsOpen(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()

	mw := RateLimitMiddleware(RateLimitConfig{Redis: rdb, DefaultRPS: 1, Window: time.Hour})
	for i := 0; i < 3; i++ {
		rec, calls := serve(t, mw, httptest.NewRequest(http.MethodGet, "/api/tenants", nil))
		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, 1, calls)
	}
}
