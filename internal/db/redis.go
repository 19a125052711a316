package db

import (
	"context"
	"time"

	"github.com/jmehdipour/tenant-console/internal/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient dials and pings Redis. Callers check cfg.Enabled() first.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = 5 * time.Second
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: dial,
	})

	ctx, cancel := context.WithTimeout(ctx, dial)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return rdb, nil
}
