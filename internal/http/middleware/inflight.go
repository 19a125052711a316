package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jmehdipour/tenant-console/internal/logger"
	"github.com/jmehdipour/tenant-console/internal/util"
	echo "github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader lets a browser tag one logical submission.
const IdempotencyKeyHeader = "Idempotency-Key"

// releaseScript deletes the key only while it still holds our token, so a
// request that outlived its TTL never frees a newer holder's key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type InFlightConfig struct {
	Redis     *redis.Client
	KeyPrefix string        // e.g. "inflight:"
	TTL       time.Duration // upper bound on how long a key is held
}

// InFlightGuard rejects a request with 409 while another request carrying the
// same Idempotency-Key is still being handled on the same method and path.
// Requests without the header, or without Redis, pass straight through. The
// key is released when the first request finishes, so a later resubmission is
// forwarded again.
func InFlightGuard(cfg InFlightConfig) echo.MiddlewareFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "inflight:"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			idem := strings.TrimSpace(c.Request().Header.Get(IdempotencyKeyHeader))
			if idem == "" || cfg.Redis == nil || len(idem) > 128 {
				return next(c)
			}

			req := c.Request()
			key := cfg.KeyPrefix + req.Method + ":" + req.URL.EscapedPath() + ":" + idem
			ctx := req.Context()

			token := c.Response().Header().Get(echo.HeaderXRequestID)
			if token == "" {
				token = util.NewID()
			}

			acquired, err := cfg.Redis.SetNX(ctx, key, token, cfg.TTL).Result()
			if err != nil {
				logger.Log.Warn("in-flight guard unavailable", zap.Error(err))
				return next(c)
			}
			if !acquired {
				return c.JSON(http.StatusConflict, map[string]string{"error": "request already in progress"})
			}

			defer func() {
				err := releaseScript.Run(context.WithoutCancel(ctx), cfg.Redis, []string{key}, token).Err()
				if err != nil {
					logger.Log.Warn("in-flight guard release failed", zap.String("key", key), zap.Error(err))
				}
			}()

			return next(c)
		}
	}
}
