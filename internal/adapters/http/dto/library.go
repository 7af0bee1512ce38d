package dto

import (
	"time"

	"github.com/jsamuelsen/library-circulation/internal/app"
	"github.com/jsamuelsen/library-circulation/internal/domain"
)

// DateLayout is the calendar-date format used in responses.
const DateLayout = time.DateOnly

// moneyPlaces is the number of decimal places money is rendered with.
const moneyPlaces = 2

// CreateBookRequest is the body of POST /books. Business validation
// (lengths, ISBN shape, copy count) is left to the catalog service.
type CreateBookRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	ISBN        string `json:"isbn"`
	TotalCopies int    `json:"total_copies"`
}

// ToInput converts the request to the catalog service input.
func (r *CreateBookRequest) ToInput() app.AddBookInput {
	return app.AddBookInput{
		Title:       r.Title,
		Author:      r.Author,
		ISBN:        r.ISBN,
		TotalCopies: r.TotalCopies,
	}
}

// SearchRequest holds GET /search query parameters.
type SearchRequest struct {
	Query string `form:"q"`
	Type  string `form:"type"`
}

// LoanRequest is the body of POST /borrow, POST /return and POST /payments.
type LoanRequest struct {
	PatronID string `json:"patron_id"`
	BookID   int64  `json:"book_id" validate:"required,gt=0"`
}

// RefundRequest is the body of POST /refunds. Amount is a decimal string;
// both fields are checked by the domain so the id is reported first.
type RefundRequest struct {
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
}

// BookResponse is a catalog entry.
type BookResponse struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	TotalCopies     int    `json:"total_copies"`
	AvailableCopies int    `json:"available_copies"`
}

// NewBookResponse converts a domain book.
func NewBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
	}
}

// NewBookListResponse converts a slice of domain books, never returning nil.
func NewBookListResponse(books []domain.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, NewBookResponse(&books[i]))
	}

	return out
}

// CreatedResponse reports the id of a newly added book.
type CreatedResponse struct {
	ID      int64  `json:"id"`
	Message string `json:"message"`
}

// BorrowResponse describes a successful loan.
type BorrowResponse struct {
	Message    string `json:"message"`
	PatronID   string `json:"patron_id"`
	BookID     int64  `json:"book_id"`
	Title      string `json:"title"`
	BorrowDate string `json:"borrow_date"`
	DueDate    string `json:"due_date"`
}

// NewBorrowResponse converts a borrow receipt.
func NewBorrowResponse(r app.BorrowReceipt) BorrowResponse {
	return BorrowResponse{
		Message:    "Successfully borrowed '" + r.Title + "'. Due date: " + r.DueDate.Format(DateLayout) + ".",
		PatronID:   r.PatronID,
		BookID:     r.BookID,
		Title:      r.Title,
		BorrowDate: r.BorrowDate.Format(DateLayout),
		DueDate:    r.DueDate.Format(DateLayout),
	}
}

// FeeResponse is a late fee quote. Amounts are decimal strings.
type FeeResponse struct {
	FeeAmount   string `json:"fee_amount"`
	DaysOverdue int    `json:"days_overdue"`
	Status      string `json:"status"`
}

// NewFeeResponse converts a fee quote.
func NewFeeResponse(q domain.FeeQuote) FeeResponse {
	return FeeResponse{
		FeeAmount:   q.Amount.StringFixed(moneyPlaces),
		DaysOverdue: q.DaysOverdue,
		Status:      string(q.Status),
	}
}

// ReturnResponse describes a successful return.
type ReturnResponse struct {
	Message    string      `json:"message"`
	PatronID   string      `json:"patron_id"`
	BookID     int64       `json:"book_id"`
	Title      string      `json:"title"`
	ReturnDate string      `json:"return_date"`
	Fee        FeeResponse `json:"fee"`
}

// NewReturnResponse converts a return receipt.
func NewReturnResponse(r app.ReturnReceipt) ReturnResponse {
	msg := "Successfully returned '" + r.Title + "'."
	if r.Fee.IsOverdue() {
		msg += " Late fee: $" + r.Fee.Amount.StringFixed(moneyPlaces) + "."
	}

	return ReturnResponse{
		Message:    msg,
		PatronID:   r.PatronID,
		BookID:     r.BookID,
		Title:      r.Title,
		ReturnDate: r.ReturnDate.Format(DateLayout),
		Fee:        NewFeeResponse(r.Fee),
	}
}

// LoanResponse is one outstanding loan in a patron report.
type LoanResponse struct {
	BookID      int64  `json:"book_id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	BorrowDate  string `json:"borrow_date"`
	DueDate     string `json:"due_date"`
	DaysOverdue int    `json:"days_overdue,omitempty"`
	LateFee     string `json:"late_fee,omitempty"`
}

// ReportResponse is a patron status report.
type ReportResponse struct {
	PatronID           string         `json:"patron_id"`
	CurrentlyBorrowed  []LoanResponse `json:"currently_borrowed"`
	OverdueBooks       []LoanResponse `json:"overdue_books"`
	TotalLateFees      string         `json:"total_late_fees"`
	TotalBooksBorrowed int            `json:"total_books_borrowed"`
	TotalOverdue       int            `json:"total_overdue"`
}

// NewReportResponse converts a patron report.
func NewReportResponse(r *domain.PatronReport) ReportResponse {
	current := make([]LoanResponse, 0, len(r.Current))
	for _, l := range r.Current {
		current = append(current, loanResponse(l))
	}

	overdue := make([]LoanResponse, 0, len(r.Overdue))
	for _, l := range r.Overdue {
		resp := loanResponse(l.CurrentLoan)
		resp.DaysOverdue = l.DaysOverdue
		resp.LateFee = l.LateFee.StringFixed(moneyPlaces)
		overdue = append(overdue, resp)
	}

	return ReportResponse{
		PatronID:           r.PatronID,
		CurrentlyBorrowed:  current,
		OverdueBooks:       overdue,
		TotalLateFees:      r.TotalFines.StringFixed(moneyPlaces),
		TotalBooksBorrowed: r.TotalBooksBorrowed,
		TotalOverdue:       r.TotalOverdue,
	}
}

func loanResponse(l domain.CurrentLoan) LoanResponse {
	return LoanResponse{
		BookID:     l.BookID,
		Title:      l.Title,
		Author:     l.Author,
		BorrowDate: l.BorrowDate.Format(DateLayout),
		DueDate:    l.DueDate.Format(DateLayout),
	}
}

// PaymentResponse describes a successful late fee charge.
type PaymentResponse struct {
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
}

// NewPaymentResponse converts a payment receipt.
func NewPaymentResponse(r app.PaymentReceipt) PaymentResponse {
	return PaymentResponse{
		Message:       r.Message,
		TransactionID: r.TransactionID,
		Amount:        r.Amount.StringFixed(moneyPlaces),
	}
}

// RefundResponse describes a successful refund.
type RefundResponse struct {
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id"`
	Amount        string `json:"amount"`
}

// NewRefundResponse converts a refund receipt.
func NewRefundResponse(r app.RefundReceipt) RefundResponse {
	return RefundResponse{
		Message:       r.Message,
		TransactionID: r.TransactionID,
		Amount:        r.Amount.StringFixed(moneyPlaces),
	}
}
