package telemetry

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/jsamuelsen/library-circulation/internal/platform/telemetry"

	// HeaderTraceID echoes the trace of a request so a patron-facing error
	// can be matched to its span.
	HeaderTraceID = "X-Trace-ID"

	// AttrErrorKind is the circulation error kind of a failed request.
	AttrErrorKind = attribute.Key("library.error.kind")
)

// Metrics holds HTTP server metrics.
type Metrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
}

// NewMetrics creates HTTP server metrics on meter, or on the global meter
// provider when meter is nil.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("HTTP requests by route, status and error kind"),
	)
	if err != nil {
		return nil, err
	}

	activeRequests, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		activeRequests:  activeRequests,
	}, nil
}

type middlewareOptions struct {
	errorKindKey string
	meter        metric.Meter
}

// MiddlewareOption customizes Middleware.
type MiddlewareOption func(*middlewareOptions)

// WithErrorKindKey names the gin context key where handlers leave the
// error kind of a failed request. The kind is added to the span and to the
// request counter.
func WithErrorKindKey(key string) MiddlewareOption {
	return func(o *middlewareOptions) { o.errorKindKey = key }
}

// WithMeter records server metrics on meter instead of the global one.
func WithMeter(meter metric.Meter) MiddlewareOption {
	return func(o *middlewareOptions) { o.meter = meter }
}

// Middleware returns the otelgin tracing middleware followed by request
// metrics. Both are noops while the global providers are.
func Middleware(serviceName string, opts ...MiddlewareOption) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		otelgin.Middleware(serviceName),
		metricsMiddleware(opts...),
	}
}

func metricsMiddleware(opts ...MiddlewareOption) gin.HandlerFunc {
	var o middlewareOptions
	for _, opt := range opts {
		opt(&o)
	}

	metrics, err := NewMetrics(o.meter)
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		start := time.Now()
		ctx := c.Request.Context()

		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.method", c.Request.Method)

		if metrics != nil {
			metrics.activeRequests.Add(ctx, 1, metric.WithAttributes(method, route))
			defer metrics.activeRequests.Add(ctx, -1, metric.WithAttributes(method, route))
		}

		c.Next()

		span := trace.SpanFromContext(ctx)
		if span.SpanContext().HasTraceID() {
			c.Header(HeaderTraceID, span.SpanContext().TraceID().String())
		}

		attrs := []attribute.KeyValue{method, route, attribute.Int("http.status_code", c.Writer.Status())}

		if o.errorKindKey != "" {
			if kind := c.GetString(o.errorKindKey); kind != "" {
				attrs = append(attrs, AttrErrorKind.String(kind))
				span.SetAttributes(AttrErrorKind.String(kind))

				if c.Writer.Status() >= 500 {
					span.SetStatus(codes.Error, kind)
				}
			}
		}

		if metrics != nil {
			metrics.requestDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(attrs...))
			metrics.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
		}
	}
}
