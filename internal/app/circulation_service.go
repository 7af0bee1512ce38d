package app

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/jsamuelsen/library-circulation/internal/app/reqctx"
	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

// CirculationService enforces borrowing policy and records loans and returns.
type CirculationService struct {
	store   ports.LibraryStore
	now     Clock
	metrics *Metrics
	logger  *slog.Logger
}

// CirculationServiceConfig contains the dependencies of the circulation service.
type CirculationServiceConfig struct {
	Store   ports.LibraryStore
	Clock   Clock
	Metrics *Metrics
	Logger  *slog.Logger
}

// NewCirculationService creates a circulation service. It panics without a store.
func NewCirculationService(cfg CirculationServiceConfig) *CirculationService {
	if cfg.Store == nil {
		panic("app: circulation service requires a library store")
	}

	return &CirculationService{
		store:   cfg.Store,
		now:     cfg.Clock.orSystem(),
		metrics: cfg.Metrics,
		logger:  defaultLogger(cfg.Logger, "app.CirculationService"),
	}
}

// BorrowReceipt describes a successful loan.
type BorrowReceipt struct {
	PatronID   string
	BookID     int64
	Title      string
	BorrowDate time.Time
	DueDate    time.Time
}

// ReturnReceipt describes a successful return and the fee it accrued.
type ReturnReceipt struct {
	PatronID   string
	BookID     int64
	Title      string
	ReturnDate time.Time
	Fee        domain.FeeQuote
}

// Borrow lends one copy of a book to a patron.
//
// Decision order: patron id, book exists, copy available, not already
// borrowed by this patron, patron below the outstanding limit.
func (s *CirculationService) Borrow(ctx context.Context, patronID string, bookID int64) (receipt BorrowReceipt, err error) {
	defer func() { s.metrics.recordBorrow(ctx, err) }()
	defer recoverStorage("borrow", &err)

	logger := logging.FromContextOr(ctx, s.logger).With(logging.LoanAttrs(patronID, bookID)...)

	if err := domain.ValidatePatronID(patronID); err != nil {
		return BorrowReceipt{}, err
	}

	book, err := lookupBook(ctx, s.store, bookID)
	if err != nil {
		return BorrowReceipt{}, err
	}

	if !book.IsAvailable() {
		return BorrowReceipt{}, bookUnavailable(book)
	}

	loan, err := outstandingLoan(ctx, s.store, patronID, bookID)
	if err != nil {
		return BorrowReceipt{}, err
	}

	if loan != nil {
		return BorrowReceipt{}, alreadyBorrowed(book)
	}

	count, err := s.store.GetPatronBorrowCount(ctx, patronID)
	if err != nil {
		return BorrowReceipt{}, storageFailure("get patron borrow count", err)
	}

	if count >= domain.MaxOutstandingBorrows {
		return BorrowReceipt{}, domain.NewConflictErrorWithDetails(domain.KindBorrowLimitExceeded, "patron",
			"you have reached the maximum borrowing limit of 5 books", strconv.Itoa(count))
	}

	borrowDate := s.now()
	dueDate := domain.DueDateFor(borrowDate)

	rc := reqctx.New(ctx)
	_ = rc.AddAction(reqctx.NewStep("decrement availability",
		func(ctx context.Context) error {
			return s.store.UpdateBookAvailability(ctx, bookID, -1)
		},
		func(ctx context.Context) error {
			return s.store.UpdateBookAvailability(ctx, bookID, 1)
		},
	))
	_ = rc.AddAction(reqctx.NewStep("insert borrow record",
		func(ctx context.Context) error {
			return s.store.InsertBorrowRecord(ctx, patronID, bookID, borrowDate, dueDate)
		},
		nil,
	))

	if err := rc.Commit(ctx); err != nil {
		if isNoRows(err) {
			return BorrowReceipt{}, bookUnavailable(book)
		}

		if isDuplicateLoan(err) {
			return BorrowReceipt{}, alreadyBorrowed(book)
		}

		logger.ErrorContext(ctx, "borrow writes failed", slog.Any("error", err))

		return BorrowReceipt{}, storageFailure("borrow", err)
	}

	logger.InfoContext(ctx, "book borrowed", slog.Time("due_date", dueDate))

	return BorrowReceipt{
		PatronID:   patronID,
		BookID:     bookID,
		Title:      book.Title,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	}, nil
}

func alreadyBorrowed(book *domain.Book) error {
	return domain.NewConflictErrorWithDetails(domain.KindAlreadyBorrowed, "borrow record",
		"you have already borrowed this book", book.Title)
}

func bookUnavailable(book *domain.Book) error {
	return domain.NewConflictErrorWithDetails(domain.KindBookUnavailable, "book",
		"this book is currently not available", book.Title)
}

// Return closes a patron's outstanding loan and quotes the late fee.
// Returning a book twice yields not_borrowed the second time.
func (s *CirculationService) Return(ctx context.Context, patronID string, bookID int64) (receipt ReturnReceipt, err error) {
	defer func() { s.metrics.recordReturn(ctx, err) }()
	defer recoverStorage("return", &err)

	logger := logging.FromContextOr(ctx, s.logger).With(logging.LoanAttrs(patronID, bookID)...)

	if err := domain.ValidatePatronID(patronID); err != nil {
		return ReturnReceipt{}, err
	}

	book, err := lookupBook(ctx, s.store, bookID)
	if err != nil {
		return ReturnReceipt{}, err
	}

	loan, err := outstandingLoan(ctx, s.store, patronID, bookID)
	if err != nil {
		return ReturnReceipt{}, err
	}

	if loan == nil {
		return ReturnReceipt{}, domain.NewConflictErrorWithDetails(domain.KindNotBorrowed, "borrow record",
			"this book was not borrowed by this patron", book.Title)
	}

	returnDate := s.now()

	rc := reqctx.New(ctx)
	_ = rc.AddAction(reqctx.NewStep("increment availability",
		func(ctx context.Context) error {
			return s.store.UpdateBookAvailability(ctx, bookID, 1)
		},
		func(ctx context.Context) error {
			return s.store.UpdateBookAvailability(ctx, bookID, -1)
		},
	))
	_ = rc.AddAction(reqctx.NewStep("set return date",
		func(ctx context.Context) error {
			return s.store.UpdateBorrowRecordReturnDate(ctx, patronID, bookID, returnDate)
		},
		nil,
	))

	if err := rc.Commit(ctx); err != nil {
		logger.ErrorContext(ctx, "return writes failed", slog.Any("error", err))

		return ReturnReceipt{}, storageFailure("return", err)
	}

	fee := domain.QuoteFee(loan.DueDate, returnDate)

	logger.InfoContext(ctx, "book returned",
		slog.Int("days_overdue", fee.DaysOverdue),
		slog.String("late_fee", fee.Amount.StringFixed(2)),
	)

	return ReturnReceipt{
		PatronID:   patronID,
		BookID:     bookID,
		Title:      book.Title,
		ReturnDate: returnDate,
		Fee:        fee,
	}, nil
}

// QuoteLateFee quotes the fee currently owed on a patron's outstanding loan.
// The returned quote carries FeeInvalidInput or FeeNotFound alongside the
// error when no fee can be computed.
func (s *CirculationService) QuoteLateFee(ctx context.Context, patronID string, bookID int64) (quote domain.FeeQuote, err error) {
	defer recoverStorage("quote late fee", &err)

	if err := domain.ValidatePatronID(patronID); err != nil {
		return domain.FeeQuote{Status: domain.FeeInvalidInput}, err
	}

	book, err := lookupBook(ctx, s.store, bookID)
	if err != nil {
		return domain.FeeQuote{Status: domain.FeeNotFound}, err
	}

	loan, err := outstandingLoan(ctx, s.store, patronID, bookID)
	if err != nil {
		return domain.FeeQuote{Status: domain.FeeNotFound}, err
	}

	if loan == nil {
		return domain.FeeQuote{Status: domain.FeeNotFound}, domain.NewNotFoundError(domain.KindFeeUnavailable,
			"outstanding loan of "+strconv.Quote(book.Title), "")
	}

	return domain.QuoteFee(loan.DueDate, s.now()), nil
}
