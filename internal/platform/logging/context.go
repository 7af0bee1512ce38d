package logging

import (
	"context"
	"log/slog"
)

// Attribute keys shared by every circulation log line. They are never
// redacted.
const (
	KeyRequestID     = "request_id"
	KeyTraceID       = "trace_id"
	KeyCorrelationID = "correlation_id"
	KeyPatronID      = "patron_id"
	KeyBookID        = "book_id"
	KeyTransactionID = "transaction_id"
)

type ctxKey struct{}

var defaultLogger = slog.Default()

// FromContext returns the request logger, or the package default.
func FromContext(ctx context.Context) *slog.Logger {
	return FromContextOr(ctx, nil)
}

// FromContextOr returns the request logger, or fallback when ctx has none.
// Services pass their own logger as fallback.
func FromContextOr(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return logger
		}
	}

	if fallback != nil {
		return fallback
	}

	return defaultLogger
}

func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// WithAttrs returns ctx carrying the request logger enriched with attrs.
func WithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	args := make([]any, len(attrs))
	for i, a := range attrs {
		args[i] = a
	}

	return WithContext(ctx, FromContext(ctx).With(args...))
}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return WithAttrs(ctx, slog.String(KeyRequestID, requestID))
}

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return WithAttrs(ctx, slog.String(KeyTraceID, traceID))
}

func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return WithAttrs(ctx, slog.String(KeyCorrelationID, correlationID))
}

// LoanAttrs identify the loan a borrow, return or fee line is about.
func LoanAttrs(patronID string, bookID int64) []any {
	return []any{slog.String(KeyPatronID, patronID), slog.Int64(KeyBookID, bookID)}
}

// SetDefault replaces both the package fallback and slog's default.
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}
