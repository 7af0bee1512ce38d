// Package wiring assembles the library store, payment gateway and
// application services from configuration. The HTTP service and the
// librarian CLI share it so both run the same circulation rules.
package wiring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/library-circulation/internal/adapters/clients"
	"github.com/jsamuelsen/library-circulation/internal/adapters/clients/acl"
	"github.com/jsamuelsen/library-circulation/internal/adapters/payments"
	"github.com/jsamuelsen/library-circulation/internal/adapters/storage/memory"
	"github.com/jsamuelsen/library-circulation/internal/adapters/storage/sqlstore"
	"github.com/jsamuelsen/library-circulation/internal/app"
	"github.com/jsamuelsen/library-circulation/internal/platform/config"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

// Gateway is a payment gateway that can also report its health.
type Gateway interface {
	ports.PaymentGateway
	ports.HealthChecker
}

// Components is a fully wired application.
type Components struct {
	Store   ports.LibraryStore
	Gateway Gateway

	Catalog     *app.CatalogService
	Circulation *app.CirculationService
	Reports     *app.ReportService
	Payments    *app.PaymentService

	// Checkers are the components with a readiness check.
	Checkers []ports.HealthChecker

	closers []func() error
}

// Options tweak Build for callers other than the service.
type Options struct {
	// Clock overrides the system clock, e.g. for the CLI's --as-of flag.
	Clock app.Clock

	// Store replaces the configured store. Build does not close it.
	Store ports.LibraryStore
}

// Build opens the configured store and gateway and creates the services.
// Close releases what Build opened.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*Components, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Components{}

	store := opts.Store
	if store == nil {
		var err error

		store, err = openStore(ctx, &cfg.Storage, logger)
		if err != nil {
			return nil, err
		}

		if db, ok := store.(*sqlstore.Store); ok {
			c.closers = append(c.closers, db.Close)
		}
	}

	c.Store = store

	if checker, ok := store.(ports.HealthChecker); ok {
		c.Checkers = append(c.Checkers, checker)
	}

	gateway, err := NewGateway(&cfg.Payment, &cfg.Client, logger)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Gateway = gateway
	c.Checkers = append(c.Checkers, gateway)

	metrics, err := app.NewMetrics(nil)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("creating metrics: %w", err)
	}

	c.Catalog = app.NewCatalogService(app.CatalogServiceConfig{Store: store, Logger: logger})
	c.Circulation = app.NewCirculationService(app.CirculationServiceConfig{
		Store:   store,
		Clock:   opts.Clock,
		Metrics: metrics,
		Logger:  logger,
	})
	c.Reports = app.NewReportService(app.ReportServiceConfig{Store: store, Clock: opts.Clock, Logger: logger})
	c.Payments = app.NewPaymentService(app.PaymentServiceConfig{
		Circulation: c.Circulation,
		Store:       store,
		Metrics:     metrics,
		Logger:      logger,
	})

	return c, nil
}

// RegisterHealth adds every checker to registry.
func (c *Components) RegisterHealth(registry ports.HealthRegistry) error {
	for _, checker := range c.Checkers {
		if err := registry.Register(checker); err != nil {
			return fmt.Errorf("registering %s health check: %w", checker.Name(), err)
		}
	}

	return nil
}

// Close releases the store connection pool, if any.
func (c *Components) Close() error {
	var errs []error
	for _, closeFn := range c.closers {
		errs = append(errs, closeFn())
	}

	return errors.Join(errs...)
}

func openStore(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (ports.LibraryStore, error) {
	if cfg.Driver == config.StorageDriverMemory {
		logger.Warn("using in-memory library store; data is lost on exit")
		return memory.New(), nil
	}

	store, err := sqlstore.Open(ctx, sqlstore.Config{
		Driver:          cfg.Driver,
		DSN:             cfg.DSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
		CreateSchema:    cfg.CreateSchema,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening library store: %w", err)
	}

	return store, nil
}

// NewGateway builds the configured payment gateway: the in-process sandbox
// or the HTTP client behind retry and circuit breaking.
func NewGateway(cfg *config.PaymentConfig, clientCfg *config.ClientConfig, logger *slog.Logger) (Gateway, error) {
	switch cfg.Provider {
	case config.PaymentProviderSandbox:
		declineAbove := decimal.Zero
		if raw := strings.TrimSpace(cfg.DeclineAbove); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, fmt.Errorf("payment.decline_above: %w", err)
			}

			declineAbove = d
		}

		return payments.NewSandbox(payments.SandboxConfig{
			Name:         cfg.Name,
			DeclineAbove: declineAbove,
			Logger:       logger,
		}), nil

	case config.PaymentProviderHTTP:
		client, err := clients.New(&clients.Config{
			BaseURL:     cfg.BaseURL,
			ServiceName: cfg.Name,
			Timeout:     clientCfg.Timeout,
			Retry:       clientCfg.Retry,
			Circuit:     clientCfg.CircuitBreaker,
			Transport:   clientCfg.Transport,
			AuthFunc:    acl.BearerAuth(cfg.APIKey),
			Logger:      logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating payment gateway client: %w", err)
		}

		return acl.NewPaymentClient(acl.PaymentClientConfig{
			Client: client,
			Name:   cfg.Name,
			Logger: logger,
		}), nil

	default:
		return nil, fmt.Errorf("unknown payment provider %q", cfg.Provider)
	}
}

// LoggingConfig maps the log section of cfg onto a logging.Config.
func LoggingConfig(cfg *config.Config) *logging.Config {
	return &logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	}
}
