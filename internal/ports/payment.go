package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/library-circulation/internal/domain"
)

// PaymentGateway is the external capability that moves money.
//
// A declined charge or refund is reported through the result's Approved
// flag, not as an error. Errors mean the gateway could not be reached or
// answered with something unintelligible.
type PaymentGateway interface {
	// Charge bills the patron for amount with a human-readable description.
	Charge(ctx context.Context, patronID string, amount decimal.Decimal, description string) (domain.ChargeResult, error)

	// Refund returns amount against a previously issued transaction.
	Refund(ctx context.Context, transactionID string, amount decimal.Decimal) (domain.RefundResult, error)
}
