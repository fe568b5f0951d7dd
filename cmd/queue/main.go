package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	appservice "github.com/cubr/queue/internal/application/service"
	"github.com/cubr/queue/internal/config"
	"github.com/cubr/queue/internal/infrastructure/cache"
	"github.com/cubr/queue/internal/infrastructure/metrics"
	"github.com/cubr/queue/internal/infrastructure/persistence/postgres"
	natstransport "github.com/cubr/queue/internal/infrastructure/transport/nats"
	"github.com/cubr/queue/internal/logging"
)

func main() {
	root := buildRootCommand()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCommand() *cobra.Command {
	var logLevel, logFormat string

	root := &cobra.Command{
		Use:   "cubr-queue",
		Short: "Render farm queue control plane",
		Long:  "cubr-queue assigns render jobs to workers and drives the render lifecycle from bus events.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(logLevel, logFormat)
		},
	}

	root.Flags().StringVar(&logLevel, "log-level", "", "overrides LOG_LEVEL (debug, info, warn, error)")
	root.Flags().StringVar(&logFormat, "log-format", "", "overrides LOG_FORMAT (text, json)")

	return root
}

func run(logLevelFlag, logFormatFlag string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if logLevelFlag != "" {
		cfg.LogLevel = logLevelFlag
	}
	if logFormatFlag != "" {
		cfg.LogFormat = logFormatFlag
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.Info("starting cubr-queue", "env", cfg.Env, "nats_url", cfg.NATSURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDBWithContext(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info("connected to database")

	if err := postgres.Migrate(db.DB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations applied")

	natsConn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return fmt.Errorf("connect to nats: %w", err)
	}
	defer natsConn.Close()
	logger.Info("connected to nats")

	var scaleCache *cache.ScaleTargetCache
	if cfg.ScaleTargetCacheURL != "" {
		scaleCache, err = cache.New(cfg.ScaleTargetCacheURL, cfg.ScaleTargetCacheTTL)
		if err != nil {
			return fmt.Errorf("connect scale target cache: %w", err)
		}
		defer scaleCache.Close()
		logger.Info("scale target cache enabled")
	} else {
		scaleCache = cache.NewNoop()
		logger.Info("scale target cache disabled")
	}

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	renderRepo := postgres.NewRenderRepository(db.DB)
	jobRepo := postgres.NewJobRepository(db.DB)
	publisher := metrics.WrapPublisher(natstransport.NewPublisher(natsConn), collector)

	svc := appservice.New(renderRepo, jobRepo, publisher, logger)
	router := appservice.NewRouter(svc)

	eventListener := natstransport.NewEventListener(natsConn, router, logger)
	rpcServer := natstransport.NewRPCServer(natsConn, svc, logger, collector, scaleCache)

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()
	go func() {
		if err := metrics.Serve(metricsCtx, cfg.MetricsAddr, reg); err != nil {
			logger.Error("metrics server error", "error", err)
		}
	}()
	logger.Info("metrics server listening", "addr", cfg.MetricsAddr)

	errCh := make(chan error, 2)
	go func() { errCh <- eventListener.Listen(ctx) }()
	go func() { errCh <- rpcServer.Listen(ctx) }()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != context.Canceled {
			logger.Error("listener exited unexpectedly", "error", err)
		}
		stop()
	}

	logger.Info("cubr-queue stopped")
	return nil
}
