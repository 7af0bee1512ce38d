// Package main is the entry point for the circulation HTTP service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jsamuelsen/library-circulation/internal/adapters/http"
	"github.com/jsamuelsen/library-circulation/internal/adapters/http/handlers"
	"github.com/jsamuelsen/library-circulation/internal/platform/config"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
	"github.com/jsamuelsen/library-circulation/internal/platform/telemetry"
	"github.com/jsamuelsen/library-circulation/internal/ports"
	"github.com/jsamuelsen/library-circulation/internal/wiring"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD)"
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Load and validate configuration for the APP_ENVIRONMENT profile
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 2. Logging
	logger := logging.New(wiring.LoggingConfig(cfg))
	logging.SetDefault(logger)

	logger.Info("starting circulation service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("payment_provider", cfg.Payment.Provider),
	)

	// 3. Telemetry (noop when disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:         cfg.Telemetry.Enabled,
		Endpoint:        cfg.Telemetry.Endpoint,
		Insecure:        cfg.Telemetry.Insecure,
		ServiceName:     cfg.Telemetry.ServiceName,
		Version:         Version,
		Environment:     cfg.App.Environment,
		SamplingRate:    cfg.Telemetry.SamplingRate,
		StorageDriver:   cfg.Storage.Driver,
		PaymentProvider: cfg.Payment.Provider,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	// 4. Store, payment gateway and services
	components, err := wiring.Build(ctx, cfg, logger, wiring.Options{})
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := components.Close(); closeErr != nil {
			logger.Error("closing library store", slog.Any("error", closeErr))
		}
	}()

	// 5. Readiness checks for the store and gateway
	healthRegistry := ports.NewHealthRegistry()
	if err := components.RegisterHealth(healthRegistry); err != nil {
		return err
	}

	// 6. Handlers
	buildInfo := handlers.NewBuildInfo(cfg.App.Name, Version, Commit, BuildTime)

	routerCfg := http.NewDefaultRouterConfig(logger, &cfg.App,
		handlers.NewHealthHandler(healthRegistry, buildInfo))
	routerCfg.Catalog = handlers.NewCatalogHandler(components.Catalog)
	routerCfg.Circulation = handlers.NewCirculationHandler(components.Circulation, components.Reports)
	routerCfg.Payments = handlers.NewPaymentHandler(components.Payments, components.Gateway)

	// 7. Server
	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), routerCfg)

	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

// waitForShutdown blocks until SIGINT/SIGTERM or a server error, then
// drains in-flight requests within shutdownTimeout.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
