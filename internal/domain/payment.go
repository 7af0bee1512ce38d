package domain

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// TransactionIDPrefix marks identifiers issued by the payment gateway.
const TransactionIDPrefix = "txn_"

// ChargeResult is the payment gateway's reply to a charge.
type ChargeResult struct {
	Approved      bool
	TransactionID string
	Message       string
}

// RefundResult is the payment gateway's reply to a refund.
type RefundResult struct {
	Approved bool
	Message  string
}

// IsValidTransactionID reports whether id is shaped like an issued id:
// txn_ followed by a token. Ids are compared as given, so surrounding or
// embedded whitespace makes them invalid.
func IsValidTransactionID(id string) bool {
	rest, ok := strings.CutPrefix(id, TransactionIDPrefix)

	return ok && rest != "" && !strings.ContainsFunc(rest, unicode.IsSpace)
}

// ValidateRefund checks a refund request in order: transaction id, positive
// amount, amount within the fee cap.
func ValidateRefund(transactionID string, amount decimal.Decimal) error {
	if !IsValidTransactionID(transactionID) {
		return invalidTransactionID(transactionID)
	}

	if !amount.IsPositive() {
		return NewValidationErrorWithValue(KindInvalidAmount, "amount",
			"refund amount must be greater than 0", amount.String())
	}

	if amount.GreaterThan(FeeCap) {
		return NewValidationErrorWithValue(KindAmountExceedsCap, "amount",
			"refund amount exceeds maximum late fee", amount.String())
	}

	return nil
}

// ParseAmount reads a money amount typed by a caller. Unparseable input
// is an invalid_amount error.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, NewValidationErrorWithValue(KindInvalidAmount, "amount",
			"amount must be a decimal number", raw)
	}

	return amount, nil
}

// ParseRefundAmount reads the amount of a refund typed by a caller. The
// transaction id is checked first so a request wrong in both places reports
// invalid_transaction_id, as ValidateRefund does.
func ParseRefundAmount(transactionID, rawAmount string) (decimal.Decimal, error) {
	if !IsValidTransactionID(transactionID) {
		return decimal.Zero, invalidTransactionID(transactionID)
	}

	return ParseAmount(rawAmount)
}

// LateFeeDescription is the charge description for fees on the named book.
func LateFeeDescription(title string) string {
	return "Late fees for '" + title + "'"
}

func invalidTransactionID(id string) error {
	return NewValidationErrorWithValue(KindInvalidTransactionID, "transaction_id", "invalid transaction ID", id)
}
