package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmehdipour/tenant-console/internal/audit"
	"github.com/jmehdipour/tenant-console/internal/db"
	httpSrv "github.com/jmehdipour/tenant-console/internal/http"
	"github.com/jmehdipour/tenant-console/internal/kafka"
	"github.com/jmehdipour/tenant-console/internal/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the console HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		opts := httpSrv.Options{Audit: audit.Nop{}}

		var redisClient *redis.Client
		if cfg.Redis.Enabled() {
			redisClient, err = db.NewRedisClient(cmd.Context(), cfg.Redis)
			if err != nil {
				return fmt.Errorf("redis connect: %w", err)
			}
			defer func() { _ = redisClient.Close() }()
			opts.Redis = redisClient
		}

		if cfg.Audit.Enabled() {
			producer := kafka.NewProducerFromConfig(kafka.Config{
				Brokers:      cfg.Audit.Brokers,
				Topic:        cfg.Audit.Topic,
				WriteTimeout: cfg.Audit.WriteTimeout,
			})
			opts.Audit = audit.NewStreamPublisher(producer, cfg.Audit.WriteTimeout)
		}
		defer func() { _ = opts.Audit.Close() }()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		opts.Registry = reg

		server := httpSrv.NewServer(cfg, opts)

		logger.Log.Info("serve: upstreams resolved",
			zap.String("tenant_api", cfg.Upstream.TenantAPI.BaseURL),
			zap.String("report_api", cfg.Upstream.ReportAPI.BaseURL),
			zap.Bool("redis", opts.Redis != nil),
			zap.Bool("audit", cfg.Audit.Enabled()),
		)

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.Start(cfg.HTTP.Addr)
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			logger.Log.Info("signal received, shutting down", zap.String("signal", sig.String()))
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Log.Error("http server exited", zap.Error(err))
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)

		return nil
	},
}
