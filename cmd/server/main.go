package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ceemowww/comtrack2/internal/bootstrap"
	"github.com/ceemowww/comtrack2/internal/infrastructure/cache"
	"github.com/ceemowww/comtrack2/internal/infrastructure/config"
	"github.com/ceemowww/comtrack2/internal/infrastructure/logger"
	"github.com/ceemowww/comtrack2/internal/infrastructure/telemetry"
	"github.com/ceemowww/comtrack2/internal/interfaces/http/handler"
	"github.com/ceemowww/comtrack2/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx := context.Background()

	logProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry)
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}
	log := logger.New(cfg.Log, logProvider.Core(logger.ParseLevel(cfg.Log.Level)))
	defer func() {
		_ = log.Sync()
	}()
	zap.ReplaceGlobals(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	log.Info("Starting commission ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}
	meter := meterProvider.Meter(cfg.Telemetry.ServiceName)

	ledger, err := bootstrap.NewLedger(ctx, cfg, log, meter)
	if err != nil {
		log.Fatal("Failed to initialize ledger", zap.Error(err))
	}
	log.Info("Database connected successfully")

	idempotency, err := cache.NewIdempotencyStoreFactory(cfg.Redis,
		cache.WithLogger(log),
		cache.WithInMemoryFallback(cfg.App.Env != "production"),
	).CreateStore(ctx)
	if err != nil {
		log.Fatal("Failed to initialize idempotency store", zap.Error(err))
	}

	checks := map[string]handler.ReadinessCheck{
		"database": ledger.DB.Ping,
	}
	if pinger, ok := idempotency.(interface{ Ping(context.Context) error }); ok {
		checks["redis"] = pinger.Ping
	}

	engine, err := router.NewEngine(router.EngineConfig{
		Config:      cfg,
		Logger:      log,
		Meter:       meter,
		Idempotency: idempotency,
		Handlers: router.Handlers{
			System:      handler.NewSystemHandler(cfg.App.Name, version, checks),
			SalesOrders: handler.NewSalesOrderHandler(ledger.SalesOrders),
			Commission:  handler.NewCommissionHandler(ledger.Payments, ledger.Allocations, ledger.Reports),
			Exports:     handler.NewExportHandler(ledger.Exports),
		},
	})
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	if err := ledger.Bus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if closer, ok := idempotency.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warn("Error closing idempotency store", zap.Error(err))
		}
	}
	if err := ledger.Close(shutdownCtx); err != nil {
		log.Error("Error closing ledger", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing metrics", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing traces", zap.Error(err))
	}
	if err := logProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Error flushing logs", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
