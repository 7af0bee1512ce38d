package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Late fee schedule.
var (
	// FeeCap is the maximum late fee for a single loan.
	FeeCap = decimal.RequireFromString("15.00")

	firstTierRate  = decimal.RequireFromString("0.50")
	secondTierRate = decimal.RequireFromString("1.00")
)

// FirstTierDays is the number of overdue days charged at the first tier rate.
const FirstTierDays = 7

// FeeStatus describes the outcome of a fee quote.
type FeeStatus string

// Fee quote statuses.
const (
	FeeNotOverdue   FeeStatus = "not-overdue"
	FeeOverdue      FeeStatus = "overdue"
	FeeNotFound     FeeStatus = "not-found"
	FeeInvalidInput FeeStatus = "invalid-input"
)

// FeeQuote is a derived late fee. It is never stored.
type FeeQuote struct {
	Amount      decimal.Decimal
	DaysOverdue int
	Status      FeeStatus
}

// IsOverdue reports whether the quote carries a positive overdue period.
func (q FeeQuote) IsOverdue() bool {
	return q.Status == FeeOverdue
}

// QuoteFee computes the late fee for a loan due at dueDate as observed at now.
// Whole days are floored; the amount is rounded to cents once, after capping.
func QuoteFee(dueDate, now time.Time) FeeQuote {
	days := DaysOverdue(dueDate, now)
	if days == 0 {
		return FeeQuote{Amount: decimal.Zero.Round(2), Status: FeeNotOverdue}
	}

	firstTier := min(days, FirstTierDays)
	secondTier := max(0, days-FirstTierDays)

	fee := firstTierRate.Mul(decimal.NewFromInt(int64(firstTier))).
		Add(secondTierRate.Mul(decimal.NewFromInt(int64(secondTier))))
	fee = decimal.Min(fee, FeeCap)

	return FeeQuote{Amount: fee.Round(2), DaysOverdue: days, Status: FeeOverdue}
}

// DaysOverdue returns the number of whole days now is past dueDate, or zero.
func DaysOverdue(dueDate, now time.Time) int {
	late := now.Sub(dueDate)
	if late <= 0 {
		return 0
	}

	return int(late / (24 * time.Hour))
}
