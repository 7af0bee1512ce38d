package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Circulation policy.
const (
	PatronIDLength        = 6
	MaxOutstandingBorrows = 5
	LoanPeriod            = 14 * 24 * time.Hour
)

// IsValidPatronID reports whether id is exactly six ASCII digits.
func IsValidPatronID(id string) bool {
	return isDigits(id, PatronIDLength)
}

// ValidatePatronID returns an invalid_patron_id error for malformed ids.
func ValidatePatronID(id string) error {
	if !IsValidPatronID(id) {
		return NewValidationErrorWithValue(KindInvalidPatronID, "patron_id",
			"invalid patron ID: must be exactly 6 digits", id)
	}

	return nil
}

// BorrowRecord is one loan of one book to one patron.
// A nil ReturnDate marks the loan as outstanding.
type BorrowRecord struct {
	PatronID   string
	BookID     int64
	BorrowDate time.Time
	DueDate    time.Time
	ReturnDate *time.Time
}

// Outstanding reports whether the book has not been returned yet.
func (r BorrowRecord) Outstanding() bool {
	return r.ReturnDate == nil
}

// DueDateFor returns the due date of a loan starting at borrowDate.
func DueDateFor(borrowDate time.Time) time.Time {
	return borrowDate.Add(LoanPeriod)
}

// PatronBorrow is a borrow record joined with the borrowed book's details.
type PatronBorrow struct {
	BorrowRecord

	Title  string
	Author string
}

// CurrentLoan is a not-yet-overdue entry in a patron report.
type CurrentLoan struct {
	BookID     int64
	Title      string
	Author     string
	BorrowDate time.Time
	DueDate    time.Time
}

// OverdueLoan is an overdue entry in a patron report.
type OverdueLoan struct {
	CurrentLoan

	DaysOverdue int
	LateFee     decimal.Decimal
}

// PatronReport summarizes a patron's outstanding loans and fines.
type PatronReport struct {
	PatronID           string
	Current            []CurrentLoan
	Overdue            []OverdueLoan
	TotalFines         decimal.Decimal
	TotalBooksBorrowed int
	TotalOverdue       int
}
