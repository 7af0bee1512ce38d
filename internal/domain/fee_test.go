package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestQuoteFee_Schedule(t *testing.T) {
	due := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		days     int
		expected string
		status   FeeStatus
	}{
		{0, "0.00", FeeNotOverdue},
		{1, "0.50", FeeOverdue},
		{7, "3.50", FeeOverdue},
		{8, "4.50", FeeOverdue},
		{18, "14.50", FeeOverdue},
		{20, "15.00", FeeOverdue},
		{21, "15.00", FeeOverdue},
		{100, "15.00", FeeOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			now := due.Add(time.Duration(tt.days) * 24 * time.Hour)

			quote := QuoteFee(due, now)

			assert.Equal(t, tt.expected, quote.Amount.StringFixed(2))
			assert.Equal(t, tt.days, quote.DaysOverdue)
			assert.Equal(t, tt.status, quote.Status)
		})
	}
}

func TestQuoteFee_FloorsPartialDays(t *testing.T) {
	due := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	quote := QuoteFee(due, due.Add(47*time.Hour+59*time.Minute))

	assert.Equal(t, 1, quote.DaysOverdue)
	assert.True(t, quote.Amount.Equal(decimal.RequireFromString("0.50")))
}

func TestQuoteFee_BeforeDueDate(t *testing.T) {
	due := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	quote := QuoteFee(due, due.Add(-72*time.Hour))

	assert.False(t, quote.IsOverdue())
	assert.Equal(t, 0, quote.DaysOverdue)
	assert.True(t, quote.Amount.IsZero())
}

func TestQuoteFee_LessThanOneDayLate(t *testing.T) {
	due := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	quote := QuoteFee(due, due.Add(23*time.Hour))

	assert.Equal(t, FeeNotOverdue, quote.Status)
}

func TestDueDateFor(t *testing.T) {
	borrowed := time.Date(2025, 1, 1, 9, 30, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC), DueDateFor(borrowed))
}
