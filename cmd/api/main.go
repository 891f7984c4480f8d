package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/devkarki/shopveda-backend/api/routes"
	"github.com/devkarki/shopveda-backend/internal/fulfillment"
	"github.com/devkarki/shopveda-backend/internal/inventory"
	"github.com/devkarki/shopveda-backend/internal/orders"
	"github.com/devkarki/shopveda-backend/internal/payments"
	"github.com/devkarki/shopveda-backend/internal/shipping"
	"github.com/devkarki/shopveda-backend/pkg/carrier"
	"github.com/devkarki/shopveda-backend/pkg/config"
	"github.com/devkarki/shopveda-backend/pkg/db"
	"github.com/devkarki/shopveda-backend/pkg/logger"
	"github.com/devkarki/shopveda-backend/pkg/metrics"
	"github.com/devkarki/shopveda-backend/pkg/migrate"
	"github.com/devkarki/shopveda-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

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
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(registry)

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

	ordersRepo := orders.NewRepository(dbClient.DB())
	inventoryRepo := inventory.NewRepository(dbClient.DB())

	shippingSvc, err := shipping.NewService(shipping.ServiceParams{
		Repo:    shipping.NewRepository(dbClient.DB()),
		Orders:  ordersRepo,
		Carrier: carrierClient,
		Tokens:  tokenManager,
		Config:  cfg.Carrier,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create shipping service", err)
		os.Exit(1)
	}

	reconciler, err := inventory.NewReconciler(inventory.ReconcilerParams{
		DB:     dbClient,
		Repo:   inventoryRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory reconciler", err)
		os.Exit(1)
	}

	verifier := payments.NewVerifier(cfg.Razorpay)

	ordersParams := orders.ServiceParams{Repo: ordersRepo, Logger: logg}
	var gateway *payments.Gateway
	if cfg.Razorpay.KeyID != "" && cfg.Razorpay.KeySecret != "" {
		gateway, err = payments.NewGateway(cfg.Razorpay, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create payment gateway", err)
			os.Exit(1)
		}
		ordersParams.Gateway = gateway
	} else {
		logg.Warn(context.Background(), "razorpay keys not configured, refunds and prepaid orders disabled")
	}

	ordersSvc, err := orders.NewService(ordersParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	orchestrator, err := fulfillment.NewOrchestrator(fulfillment.OrchestratorParams{
		Orders:      ordersRepo,
		Products:    inventoryRepo,
		Verifier:    verifier,
		Provisioner: shippingSvc,
		Reconciler:  reconciler,
		Pricing:     cfg.Fulfillment,
		Metrics:     fulfillmentMetrics,
		Logger:      logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment orchestrator", err)
		os.Exit(1)
	}

	deps := routes.Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		Orchestrator:    orchestrator,
		Verifier:        verifier,
		Orders:          ordersSvc,
		Shipments:       shippingSvc,
		MetricsGatherer: registry,
	}
	if gateway != nil {
		deps.Gateway = gateway
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(deps),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeout, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeout); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
