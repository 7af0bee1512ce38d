// Package payments holds the in-process payment gateway used for local runs,
// demos and tests.
package payments

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
)

// DefaultName is the health check name of a sandbox without an explicit name.
const DefaultName = "payment-sandbox"

// SandboxConfig configures a Sandbox.
type SandboxConfig struct {
	// Name identifies the sandbox in health checks.
	Name string

	// DeclineAbove declines charges strictly above this amount. Zero disables it.
	DeclineAbove decimal.Decimal

	// NewID returns the suffix of issued transaction ids. Defaults to a random UUID.
	NewID func() string

	Logger *slog.Logger
}

// Sandbox is a PaymentGateway that settles everything in memory.
// It remembers charges so refunds can be checked against them.
type Sandbox struct {
	name         string
	declineAbove decimal.Decimal
	newID        func() string
	logger       *slog.Logger

	mu      sync.Mutex
	charges map[string]*settlement
}

type settlement struct {
	charged  decimal.Decimal
	refunded decimal.Decimal
}

// NewSandbox creates a sandbox gateway.
func NewSandbox(cfg SandboxConfig) *Sandbox {
	name := cfg.Name
	if name == "" {
		name = DefaultName
	}

	newID := cfg.NewID
	if newID == nil {
		newID = uuid.NewString
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Sandbox{
		name:         name,
		declineAbove: cfg.DeclineAbove,
		newID:        newID,
		logger:       logger.With(slog.String("component", "payments.Sandbox")),
		charges:      make(map[string]*settlement),
	}
}

// Charge approves any positive amount within the decline threshold.
func (s *Sandbox) Charge(ctx context.Context, patronID string, amount decimal.Decimal, description string) (domain.ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.ChargeResult{}, err
	}

	if !amount.IsPositive() {
		return domain.ChargeResult{Message: "Invalid amount"}, nil
	}

	if s.declineAbove.IsPositive() && amount.GreaterThan(s.declineAbove) {
		s.logger.InfoContext(ctx, "sandbox declined charge",
			slog.String(logging.KeyPatronID, patronID),
			slog.String("amount", amount.StringFixed(2)))

		return domain.ChargeResult{Message: "Payment declined: amount exceeds limit"}, nil
	}

	txnID := domain.TransactionIDPrefix + s.newID()

	s.mu.Lock()
	s.charges[txnID] = &settlement{charged: amount}
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "sandbox charge settled",
		slog.String(logging.KeyTransactionID, txnID),
		slog.String(logging.KeyPatronID, patronID),
		slog.String("description", description))

	return domain.ChargeResult{
		Approved:      true,
		TransactionID: txnID,
		Message:       fmt.Sprintf("Payment of $%s processed successfully", amount.StringFixed(2)),
	}, nil
}

// Refund approves refunds of known transactions up to the amount still held.
func (s *Sandbox) Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (domain.RefundResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.RefundResult{}, err
	}

	if !amount.IsPositive() {
		return domain.RefundResult{Message: "Invalid amount"}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.charges[transactionID]
	if !ok {
		return domain.RefundResult{Message: "Transaction not found"}, nil
	}

	if st.refunded.Add(amount).GreaterThan(st.charged) {
		return domain.RefundResult{Message: "Refund exceeds original charge"}, nil
	}

	st.refunded = st.refunded.Add(amount)

	return domain.RefundResult{
		Approved: true,
		Message:  fmt.Sprintf("Refund of $%s processed successfully", amount.StringFixed(2)),
	}, nil
}

// Name implements ports.HealthChecker.
func (s *Sandbox) Name() string {
	return s.name
}

// Optional implements ports.Optional.
func (s *Sandbox) Optional() bool {
	return true
}

// Check implements ports.HealthChecker. The sandbox is always reachable.
func (s *Sandbox) Check(context.Context) error {
	return nil
}
