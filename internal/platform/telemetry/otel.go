// Package telemetry exports circulation traces and metrics over OTLP.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

const shutdownTimeout = 5 * time.Second

// Resource attribute keys describing how a circulation deployment is wired.
const (
	AttrStorageDriver   = attribute.Key("library.storage.driver")
	AttrPaymentProvider = attribute.Key("library.payment.provider")
)

type Config struct {
	Enabled      bool
	Endpoint     string
	Insecure     bool
	ServiceName  string
	Version      string
	Environment  string
	SamplingRate float64

	// StorageDriver and PaymentProvider are attached to every span and
	// metric so traces from sqlite and postgres deployments can be told apart.
	StorageDriver   string
	PaymentProvider string

	// ExportInterval overrides the periodic metric reader interval.
	ExportInterval time.Duration
}

// Provider owns the exporting tracer and meter providers. The zero value
// is a disabled Provider whose Shutdown is a no-op.
type Provider struct {
	tracerProvider *trace.TracerProvider
	meterProvider  *metric.MeterProvider
}

func (p *Provider) Enabled() bool {
	return p.tracerProvider != nil
}

// New installs OTLP/gRPC exporting providers as the otel globals. With
// telemetry disabled it returns a disabled Provider and leaves the no-op
// globals in place.
func New(ctx context.Context, cfg *Config) (*Provider, error) {
	if !cfg.Enabled {
		return &Provider{}, nil
	}

	res, err := newResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("building resource: %w", err)
	}

	tp, err := newTracerProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}

	mp, err := newMeterProvider(ctx, cfg, res)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	// Gateway calls carry traceparent and baggage so they join the inbound trace.
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return &Provider{tracerProvider: tp, meterProvider: mp}, nil
}

func newTracerProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*trace.TracerProvider, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("span exporter: %w", err)
	}

	sampler := trace.ParentBased(trace.TraceIDRatioBased(cfg.SamplingRate))

	return trace.NewTracerProvider(trace.WithResource(res), trace.WithBatcher(exp), trace.WithSampler(sampler)), nil
}

func newMeterProvider(ctx context.Context, cfg *Config, res *resource.Resource) (*metric.MeterProvider, error) {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("metric exporter: %w", err)
	}

	var readerOpts []metric.PeriodicReaderOption
	if cfg.ExportInterval > 0 {
		readerOpts = append(readerOpts, metric.WithInterval(cfg.ExportInterval))
	}

	return metric.NewMeterProvider(metric.WithResource(res), metric.WithReader(metric.NewPeriodicReader(exp, readerOpts...))), nil
}

func newResource(cfg *Config) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironmentName(cfg.Environment),
	}

	if cfg.StorageDriver != "" {
		attrs = append(attrs, AttrStorageDriver.String(cfg.StorageDriver))
	}

	if cfg.PaymentProvider != "" {
		attrs = append(attrs, AttrPaymentProvider.String(cfg.PaymentProvider))
	}

	return resource.Merge(resource.Default(), resource.NewWithAttributes(semconv.SchemaURL, attrs...))
}

// Shutdown flushes pending spans and metrics, giving up after five seconds.
func (p *Provider) Shutdown(ctx context.Context) error {
	if !p.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	return errors.Join(
		wrapShutdown("tracer", p.tracerProvider.Shutdown(ctx)),
		wrapShutdown("meter", p.meterProvider.Shutdown(ctx)),
	)
}

func wrapShutdown(what string, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%s provider shutdown: %w", what, err)
}
