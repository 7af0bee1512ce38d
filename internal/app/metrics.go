package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/jsamuelsen/library-circulation/internal/domain"
)

const instrumentationName = "github.com/jsamuelsen/library-circulation/internal/app"

// Metrics counts circulation outcomes. The zero value records nothing.
type Metrics struct {
	borrows     metric.Int64Counter
	returns     metric.Int64Counter
	feePayments metric.Int64Counter
	refunds     metric.Int64Counter
}

// NewMetrics creates the circulation counters on meter, or on the global
// meter provider when meter is nil.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(instrumentationName)
	}

	borrows, err := meter.Int64Counter("library.borrows",
		metric.WithDescription("Borrow attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating borrows counter: %w", err)
	}

	returns, err := meter.Int64Counter("library.returns",
		metric.WithDescription("Return attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating returns counter: %w", err)
	}

	feePayments, err := meter.Int64Counter("library.fee_payments",
		metric.WithDescription("Late fee payment attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating fee payments counter: %w", err)
	}

	refunds, err := meter.Int64Counter("library.refunds",
		metric.WithDescription("Late fee refund attempts by outcome"))
	if err != nil {
		return nil, fmt.Errorf("creating refunds counter: %w", err)
	}

	return &Metrics{
		borrows:     borrows,
		returns:     returns,
		feePayments: feePayments,
		refunds:     refunds,
	}, nil
}

func outcome(err error) attribute.KeyValue {
	if err == nil {
		return attribute.String("outcome", "ok")
	}

	return attribute.String("outcome", string(domain.KindOf(err)))
}

func (m *Metrics) add(ctx context.Context, counter metric.Int64Counter, err error) {
	if m == nil || counter == nil {
		return
	}

	counter.Add(ctx, 1, metric.WithAttributes(outcome(err)))
}

func (m *Metrics) recordBorrow(ctx context.Context, err error) {
	if m != nil {
		m.add(ctx, m.borrows, err)
	}
}

func (m *Metrics) recordReturn(ctx context.Context, err error) {
	if m != nil {
		m.add(ctx, m.returns, err)
	}
}

func (m *Metrics) recordFeePayment(ctx context.Context, err error) {
	if m != nil {
		m.add(ctx, m.feePayments, err)
	}
}

func (m *Metrics) recordRefund(ctx context.Context, err error) {
	if m != nil {
		m.add(ctx, m.refunds, err)
	}
}
