package http

import (
	"context"
	"net/http"

	"github.com/jmehdipour/tenant-console/internal/audit"
	"github.com/jmehdipour/tenant-console/internal/config"
	"github.com/jmehdipour/tenant-console/internal/http/middleware"
	"github.com/jmehdipour/tenant-console/internal/logger"
	"github.com/jmehdipour/tenant-console/internal/metrics"
	"github.com/jmehdipour/tenant-console/internal/upstream"
	"github.com/jmehdipour/tenant-console/internal/util"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Options carries the optional collaborators of the server. Zero values
// disable the matching feature.
type Options struct {
	Redis    *redis.Client        // rate limit + in-flight guard
	Audit    audit.Publisher      // lifecycle events
	Registry *prometheus.Registry // defaults to a private registry
}

type Server struct{ e *echo.Echo }

func NewServer(cfg config.Config, opts Options) *Server {
	// upstreams
	tenantAPI := upstream.NewClient("tenant-api", cfg.Upstream.TenantAPI.BaseURL, cfg.Upstream.PathPrefix, cfg.Upstream.Timeout)
	reportAPI := upstream.NewClient("report-api", cfg.Upstream.ReportAPI.BaseURL, cfg.Upstream.PathPrefix, cfg.Upstream.Timeout)

	pub := opts.Audit
	if pub == nil {
		pub = audit.Nop{}
	}

	bodyLimit := cfg.HTTP.BodyLimit
	if bodyLimit == "" {
		bodyLimit = "1M"
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	metrics.MustRegister(reg)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(
		echoMid.Recover(),
		echoMid.RequestIDWithConfig(echoMid.RequestIDConfig{Generator: util.NewID}),
		requestLogger(),
	)

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// middlewares
	rlMW := middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		Redis:          opts.Redis,
		DefaultRPS:     cfg.RateLimit.RPS,
		KeyPrefix:      "rl:client:",
		Window:         cfg.RateLimit.Window,
		RetryAfterHint: true,
	})
	guardMW := middleware.InFlightGuard(middleware.InFlightConfig{
		Redis:     opts.Redis,
		KeyPrefix: "inflight:",
		TTL:       cfg.Idempotency.TTL,
	})

	// routes
	api := e.Group("/api", middleware.NoStore(), echoMid.BodyLimit(bodyLimit), rlMW)

	api.GET("/tenants", listTenantsHandler(tenantAPI))
	api.POST("/tenants", createTenantHandler(tenantAPI, pub), guardMW)
	api.GET("/tenants/:tenantId", getTenantHandler(tenantAPI))
	api.POST("/tenants/:tenantId/admin", createTenantAdminHandler(tenantAPI, pub), guardMW)

	api.GET("/reports/tenant/:tenantId", tenantReportHandler(reportAPI))
	api.GET("/reports/tenant/:tenantId/:metricType", metricHandler(reportAPI))

	return &Server{e: e}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	logger.Log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}
func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }

func requestLogger() echo.MiddlewareFunc {
	return echoMid.RequestLoggerWithConfig(echoMid.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echoMid.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			logger.Log.Info("request", fields...)
			return nil
		},
	})
}
