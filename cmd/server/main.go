package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swfm/backend/internal/config"
	"github.com/swfm/backend/internal/delivery/http"
	"github.com/swfm/backend/internal/domain"
	"github.com/swfm/backend/internal/observability"
	"github.com/swfm/backend/internal/refresher"
	"github.com/swfm/backend/internal/repository/postgres"
	"github.com/swfm/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	// Database connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var repo domain.DataRepository
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err == nil {
		err = pool.Ping(ctx)
	}
	if err != nil {
		logger.Warn("could not connect to database, running with in-memory store", "error", err)
		repo = postgres.NewMockRepository()
	} else {
		defer pool.Close()
		logger.Info("connected to PostgreSQL")
		repo = postgres.NewRepository(pool)
	}

	// Dependency Injection: Services
	bridge := service.NewForecastBridge(cfg.MLServiceURL, metrics)
	charts := service.NewChartService(repo, cfg.ChartTimezone, logger, metrics)
	dashboard := service.NewDashboardService(repo, bridge, logger)
	forecasts := service.NewForecastService(repo, bridge, logger)

	// Fiber App
	app := http.NewApp()
	http.SetupRoutes(app, http.NewHandler(repo, charts, dashboard, forecasts, bridge, logger, cfg.ChartTimezone, cfg.DefaultDays))

	// Background forecast refresh
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	ref := refresher.New(repo, forecasts, logger, metrics,
		cfg.RefreshInterval, cfg.ForecastMaxAge, cfg.RefreshStations)
	go ref.Run(refreshCtx)

	// Graceful shutdown
	go func() {
		logger.Info("server starting", "addr", cfg.ListenAddr())
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")
	stopRefresh()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	logger.Info("server exited gracefully")
}
