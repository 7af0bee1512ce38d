package clients

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/library-circulation/internal/adapters/http/middleware"
	"github.com/jsamuelsen/library-circulation/internal/platform/config"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/library-circulation/internal/adapters/clients"

	defaultTimeout = 30 * time.Second
)

// Outcomes recorded on the request metrics.
const (
	resultOK          = "ok"
	resultStatus      = "status"
	resultError       = "error"
	resultCircuitOpen = "circuit_open"
	resultCanceled    = "canceled"
)

// Config configures a Client.
type Config struct {
	BaseURL string

	// ServiceName names the downstream in logs, spans and metrics.
	ServiceName string

	// Timeout bounds one attempt. Retries and backoff add to the total.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// AuthFunc sets credentials on every attempt, so a rotated gateway key
	// is picked up by retries.
	AuthFunc func(*http.Request)

	Logger *slog.Logger
}

// Client calls one downstream service. Calls pass through a circuit breaker
// and failed attempts are retried with backoff when that is safe.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	authFunc    func(*http.Request)
	policy      retryPolicy
	logger      *slog.Logger
	cb          *Breaker
	now         func() time.Time

	tracer          trace.Tracer
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	retryTotal      metric.Int64Counter
}

// New creates a Client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("downstream", cfg.ServiceName))

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of downstream calls including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Downstream calls by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	retryTotal, err := meter.Int64Counter("http.client.retry.total",
		metric.WithDescription("Attempts repeated after a transient failure"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating retry counter: %w", err)
	}

	c := &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        cfg.Transport.MaxIdleConns,
				MaxIdleConnsPerHost: cfg.Transport.MaxIdleConnsPerHost,
				IdleConnTimeout:     cfg.Transport.IdleConnTimeout,
			},
		},
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName:     cfg.ServiceName,
		authFunc:        cfg.AuthFunc,
		policy:          newRetryPolicy(cfg.Retry),
		logger:          logger,
		now:             time.Now,
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		retryTotal:      retryTotal,
	}

	c.cb = NewBreaker(BreakerConfig{
		MaxFailures: cfg.Circuit.MaxFailures,
		Cooldown:    cfg.Circuit.Timeout,
		Probes:      cfg.Circuit.HalfOpenLimit,
	}, func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	return c, nil
}

// Do sends req. A non-2xx answer that is not transient comes back as a
// response for the caller to interpret. Transient failures are retried
// only when replayable allows it and the body can be rewound.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	start := c.now()
	logger := logging.FromContextOr(ctx, c.logger).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if err := c.cb.Allow(); err != nil {
		c.recordMetrics(ctx, req.Method, 0, start, resultCircuitOpen)
		logger.Warn("call blocked by circuit breaker")

		return nil, err
	}

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	c.prepare(ctx, req)

	resp, err := c.send(ctx, req, logger)
	if err != nil {
		c.cb.Done(false)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		result := resultError
		if ctx.Err() != nil {
			result = resultCanceled
		}

		c.recordMetrics(ctx, req.Method, 0, start, result)
		logger.Error("downstream call failed",
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)

		return nil, err
	}

	c.cb.Done(true)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	result := resultOK
	if resp.StatusCode >= http.StatusBadRequest {
		result = resultStatus
		span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	c.recordMetrics(ctx, req.Method, resp.StatusCode, start, result)
	logger.Debug("downstream call completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	return resp, nil
}

// send runs the attempt loop. Every error it returns counts against the
// breaker.
func (c *Client) send(ctx context.Context, req *http.Request, logger *slog.Logger) (*http.Response, error) {
	var lastErr error

	attempts := c.policy.maxAttempts()

	for attempt := range attempts {
		if attempt > 0 {
			if err := c.backoff(ctx, req, attempt, lastErr, logger); err != nil {
				return nil, err
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))

		lastErr = c.transient(resp, err)
		if lastErr == nil {
			if err != nil {
				return nil, err
			}

			return resp, nil
		}

		if attempt+1 < attempts && !replayable(req) {
			return nil, fmt.Errorf("%w: %w", ErrNotReplayable, lastErr)
		}

		logger.Debug("attempt failed",
			slog.Int("attempt", attempt+1),
			slog.Any("error", lastErr),
		)
	}

	return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, lastErr)
}

// transient returns a non-nil error when the attempt failed in a way worth
// retrying. A transient response is closed here.
func (c *Client) transient(resp *http.Response, err error) error {
	if err != nil {
		if isRetryableError(err) {
			return err
		}

		return nil
	}

	if !retryableStatus(resp.StatusCode) {
		return nil
	}

	statusErr := &StatusError{
		StatusCode: resp.StatusCode,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), c.now()),
	}

	_ = resp.Body.Close()

	return statusErr
}

// backoff waits out the retry delay and readies req for another attempt.
func (c *Client) backoff(ctx context.Context, req *http.Request, attempt int, lastErr error, logger *slog.Logger) error {
	var retryAfter time.Duration

	var statusErr *StatusError
	if errors.As(lastErr, &statusErr) {
		retryAfter = statusErr.RetryAfter
	}

	wait := c.policy.backoff(attempt, retryAfter)
	logger.Debug("retrying downstream call",
		slog.Int("attempt", attempt+1),
		slog.Duration("backoff", wait),
	)

	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	if err := rewindBody(req); err != nil {
		return fmt.Errorf("%w: %w", err, lastErr)
	}

	if c.authFunc != nil {
		c.authFunc(req)
	}

	c.retryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("peer.service", c.serviceName),
		attribute.String("http.method", req.Method),
	))

	return nil
}

// Get sends a GET to path.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.Do(ctx, req)
}

// Post sends a JSON body to path. Pass an Idempotency-Key in headers to
// make the call retryable.
func (c *Client) Post(ctx context.Context, path string, body []byte, headers http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	return c.Do(ctx, req)
}

// CircuitState returns the breaker state.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// prepare sets tracing, request and correlation IDs and credentials.
func (c *Client) prepare(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	if c.authFunc != nil {
		c.authFunc(req)
	}
}

func (c *Client) buildURL(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return c.baseURL + path
}

func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, start time.Time, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	opt := metric.WithAttributes(attrs...)
	c.requestDuration.Record(ctx, time.Since(start).Seconds(), opt)
	c.requestTotal.Add(ctx, 1, opt)
}
