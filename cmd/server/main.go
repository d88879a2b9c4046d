package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	grpcapi "toolcrib-backend/internal/api/grpc"
	httpapi "toolcrib-backend/internal/api/http"
	"toolcrib-backend/internal/app"
	"toolcrib-backend/internal/config"
	"toolcrib-backend/internal/logger"
	"toolcrib-backend/internal/metrics"
	"toolcrib-backend/internal/security"
	"toolcrib-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Tool Crib Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Storage configuration", "type", cfg.Storage.Type)

	// Initialize metrics
	meterProvider := sdkmetric.NewMeterProvider()
	otel.SetMeterProvider(meterProvider)
	recorder, err := metrics.NewRecorder(otel.GetMeterProvider().Meter("toolcrib"))
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	// Initialize storage
	storage, err := app.OpenStorage(cfg, recorder)
	if err != nil {
		logger.Error("Failed to open storage", "error", err)
		log.Fatalf("Failed to open storage: %v", err)
	}
	defer storage.Close()
	store := storage.Repos

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Audience, cfg.AccessTokenTTL())

	// Initialize Services
	policy := app.LendingPolicy(cfg)
	emailSvc := service.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	requestSvc := service.NewToolRequestService(store, emailSvc, service.SystemClock(), policy, recorder)
	inventorySvc := service.NewInventoryService(store, service.SystemClock())
	reportSvc := service.NewReportService(store, policy)
	noteSvc := service.NewNotificationService(store.Notifications)

	// Set up HTTP server
	handler := httpapi.NewHandler(requestSvc, inventorySvc, reportSvc, noteSvc)
	httpServer := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           httpapi.NewRouter(handler, tokenManager),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up gRPC health server
	var healthSrv *grpcapi.HealthServer
	if addr := cfg.GetGRPCAddress(); addr != "" {
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			logger.Error("Failed to listen", "error", err, "address", addr)
			log.Fatalf("Failed to listen: %v", err)
		}
		healthSrv = grpcapi.NewHealthServer()
		go healthSrv.Watch(ctx, storage.Ping, 15*time.Second)
		go func() {
			logger.Info("gRPC health server listening", "address", addr)
			if err := healthSrv.Server.Serve(lis); err != nil {
				logger.Error("Failed to serve gRPC", "error", err)
			}
		}()
	}

	go func() {
		logger.Info("HTTP server listening", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	// Graceful shutdown
	logger.Info("Shutting down servers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if healthSrv != nil {
		healthSrv.Shutdown()
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Meter provider shutdown error", "error", err)
	}
	logger.Info("Servers stopped. Goodbye!")
}
