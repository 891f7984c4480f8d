package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/devkarki/shopveda-backend/internal/orders"
	"github.com/devkarki/shopveda-backend/internal/shipping"
	"github.com/devkarki/shopveda-backend/pkg/carrier"
	"github.com/devkarki/shopveda-backend/pkg/config"
	"github.com/devkarki/shopveda-backend/pkg/db"
	"github.com/devkarki/shopveda-backend/pkg/logger"
	"github.com/devkarki/shopveda-backend/pkg/metrics"
	"github.com/devkarki/shopveda-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "tracking-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "tracking-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	carrierMetrics := metrics.NewCarrierMetrics(registry)
	jobMetrics := metrics.NewJobMetrics(registry)

	carrierClient, err := carrier.NewClient(cfg.Carrier, logg, carrier.WithMetrics(carrierMetrics))
	if err != nil {
		logg.Error(context.Background(), "failed to create carrier client", err)
		os.Exit(1)
	}

	accountStore := carrier.NewAccountStore(dbClient.DB(), cfg.Carrier.Email)
	tokenManager, err := carrier.NewManager(carrierClient, accountStore, redisClient, cfg.Carrier.TokenTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create carrier token manager", err)
		os.Exit(1)
	}

	shippingSvc, err := shipping.NewService(shipping.ServiceParams{
		Repo:    shipping.NewRepository(dbClient.DB()),
		Orders:  orders.NewRepository(dbClient.DB()),
		Carrier: carrierClient,
		Tokens:  tokenManager,
		Config:  cfg.Carrier,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	holder := os.Getenv("WORKER_ID")
	if holder == "" {
		holder = "tracking-" + uuid.NewString()
	}

	worker, err := newPoller(shippingSvc, redisClient, cfg.Tracking, holder, jobMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create tracking poller", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runCtx := logg.WithFields(ctx, map[string]any{
		"env":           cfg.App.Env,
		"holder":        holder,
		"poll_interval": cfg.Tracking.PollInterval.String(),
		"batch_size":    cfg.Tracking.BatchSize,
	})
	logg.Info(runCtx, "starting tracking worker")

	worker.run(ctx)

	logg.Info(runCtx, "tracking worker shutting down gracefully")
}
