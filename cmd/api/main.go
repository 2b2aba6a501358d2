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

	"github.com/twoflytrading/wholesale-backend/api/controllers"
	"github.com/twoflytrading/wholesale-backend/api/routes"
	"github.com/twoflytrading/wholesale-backend/internal/catalog"
	"github.com/twoflytrading/wholesale-backend/internal/finance"
	"github.com/twoflytrading/wholesale-backend/internal/inventory"
	"github.com/twoflytrading/wholesale-backend/internal/orders"
	"github.com/twoflytrading/wholesale-backend/internal/pricing"
	"github.com/twoflytrading/wholesale-backend/internal/profiles"
	"github.com/twoflytrading/wholesale-backend/internal/reports"
	"github.com/twoflytrading/wholesale-backend/pkg/config"
	"github.com/twoflytrading/wholesale-backend/pkg/db"
	"github.com/twoflytrading/wholesale-backend/pkg/logger"
	"github.com/twoflytrading/wholesale-backend/pkg/metrics"
	"github.com/twoflytrading/wholesale-backend/pkg/migrate"
	"github.com/twoflytrading/wholesale-backend/pkg/redis"
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

	rateTable, err := pricing.NewStaticRateTable(cfg.Courier)
	if err != nil {
		logg.Error(context.Background(), "failed to parse courier rates", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), redisClient, cfg.Cache.CatalogTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	inventoryService, err := inventory.NewService(inventory.NewRepository(dbClient.DB()), catalogService)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory service", err)
		os.Exit(1)
	}

	profilesRepo := profiles.NewRepository(dbClient.DB())

	ordersService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		catalogService,
		inventoryService,
		profilesRepo,
		rateTable,
		dbClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	reportsService, err := reports.NewService(
		reports.NewRepository(dbClient.DB()),
		profilesRepo,
		finance.NewRepository(dbClient.DB()),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create reports service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)

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
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config: cfg,
			Logger: logg,
			Pingers: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			CatalogService:   catalogService,
			InventoryService: inventoryService,
			OrdersService:    ordersService,
			ReportsService:   reportsService,
			OrderMetrics:     orderMetrics,
			Gatherer:         registry,
		}),
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			if closeErr := server.Close(); closeErr != nil {
				logg.Error(ctx, "forced close failed", closeErr)
			}
		}
	}
}
