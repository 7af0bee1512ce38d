package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/mocks"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

func TestCirculationService_Borrow(t *testing.T) {
	f := newFixture(t)
	id := f.addBook(t, "Dune", "9780441172719", 2)

	receipt, err := f.circulation.Borrow(context.Background(), patronA, id)
	require.NoError(t, err)

	assert.Equal(t, "Dune", receipt.Title)
	assert.Equal(t, baseTime, receipt.BorrowDate)
	assert.True(t, domain.DueDateFor(baseTime).Equal(receipt.DueDate))
	assert.Equal(t, 1, f.available(t, id))

	count, err := f.store.GetPatronBorrowCount(context.Background(), patronA)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCirculationService_Borrow_DecisionOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	single := f.addBook(t, "Dune", "9780441172719", 1)
	shared := f.addBook(t, "Emma", "9780141439587", 3)

	_, err := f.circulation.Borrow(ctx, patronB, single)
	require.NoError(t, err)

	_, err = f.circulation.Borrow(ctx, patronA, shared)
	require.NoError(t, err)

	tests := []struct {
		name     string
		patronID string
		bookID   int64
		wantKind domain.ErrorKind
	}{
		{name: "invalid patron wins over missing book", patronID: "12345", bookID: 999, wantKind: domain.KindInvalidPatronID},
		{name: "non-digit patron", patronID: "12a456", bookID: shared, wantKind: domain.KindInvalidPatronID},
		{name: "missing book", patronID: patronA, bookID: 999, wantKind: domain.KindBookNotFound},
		{name: "no copies left", patronID: patronA, bookID: single, wantKind: domain.KindBookUnavailable},
		{name: "already borrowed", patronID: patronA, bookID: shared, wantKind: domain.KindAlreadyBorrowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.circulation.Borrow(ctx, tt.patronID, tt.bookID)

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
		})
	}

	assert.Equal(t, 0, f.available(t, single))
	assert.Equal(t, 2, f.available(t, shared))
}

func TestCirculationService_Borrow_Limit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := range domain.MaxOutstandingBorrows {
		id := f.addBook(t, fmt.Sprintf("Book %d", i), fmt.Sprintf("978000000000%d", i), 1)

		_, err := f.circulation.Borrow(ctx, patronA, id)
		require.NoError(t, err)
	}

	sixth := f.addBook(t, "Book 6", "9780000000009", 1)

	_, err := f.circulation.Borrow(ctx, patronA, sixth)
	require.Error(t, err)
	assert.Equal(t, domain.KindBorrowLimitExceeded, domain.KindOf(err))
	assert.Equal(t, 1, f.available(t, sixth))

	// Returning one frees a slot.
	books, err := f.catalog.ListBooks(ctx)
	require.NoError(t, err)

	_, err = f.circulation.Return(ctx, patronA, books[0].ID)
	require.NoError(t, err)

	_, err = f.circulation.Borrow(ctx, patronA, sixth)
	require.NoError(t, err)
}

func TestCirculationService_Borrow_RollsBackOnRecordFailure(t *testing.T) {
	book := &domain.Book{ID: 7, Title: "Dune", TotalCopies: 1, AvailableCopies: 1}

	store := mocks.NewMockLibraryStore(t)
	store.EXPECT().GetBookByID(mock.Anything, int64(7)).Return(book, nil)
	store.EXPECT().GetPatronBorrowedBooks(mock.Anything, patronA).Return(nil, nil)
	store.EXPECT().GetPatronBorrowCount(mock.Anything, patronA).Return(0, nil)
	store.EXPECT().UpdateBookAvailability(mock.Anything, int64(7), -1).Return(nil).Once()
	store.EXPECT().InsertBorrowRecord(mock.Anything, patronA, int64(7), baseTime, domain.DueDateFor(baseTime)).
		Return(errors.New("insert failed"))
	store.EXPECT().UpdateBookAvailability(mock.Anything, int64(7), 1).Return(nil).Once()

	svc := NewCirculationService(CirculationServiceConfig{
		Store:  store,
		Clock:  func() time.Time { return baseTime },
		Logger: discardLogger(),
	})

	_, err := svc.Borrow(context.Background(), patronA, 7)

	require.Error(t, err)
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))
}

func TestCirculationService_Borrow_LostRaceForSameLoan(t *testing.T) {
	book := &domain.Book{ID: 7, Title: "Dune", TotalCopies: 2, AvailableCopies: 2}

	store := mocks.NewMockLibraryStore(t)
	store.EXPECT().GetBookByID(mock.Anything, int64(7)).Return(book, nil)
	store.EXPECT().GetPatronBorrowedBooks(mock.Anything, patronA).Return(nil, nil)
	store.EXPECT().GetPatronBorrowCount(mock.Anything, patronA).Return(0, nil)
	store.EXPECT().UpdateBookAvailability(mock.Anything, int64(7), -1).Return(nil).Once()
	store.EXPECT().InsertBorrowRecord(mock.Anything, patronA, int64(7), baseTime, domain.DueDateFor(baseTime)).
		Return(fmt.Errorf("%w: patron %s book 7", ports.ErrDuplicateLoan, patronA))
	store.EXPECT().UpdateBookAvailability(mock.Anything, int64(7), 1).Return(nil).Once()

	svc := NewCirculationService(CirculationServiceConfig{
		Store:  store,
		Clock:  func() time.Time { return baseTime },
		Logger: discardLogger(),
	})

	_, err := svc.Borrow(context.Background(), patronA, 7)

	require.Error(t, err)
	assert.Equal(t, domain.KindAlreadyBorrowed, domain.KindOf(err))
}

func TestCirculationService_Borrow_LostRaceForLastCopy(t *testing.T) {
	book := &domain.Book{ID: 7, Title: "Dune", TotalCopies: 1, AvailableCopies: 1}

	store := mocks.NewMockLibraryStore(t)
	store.EXPECT().GetBookByID(mock.Anything, int64(7)).Return(book, nil)
	store.EXPECT().GetPatronBorrowedBooks(mock.Anything, patronA).Return(nil, nil)
	store.EXPECT().GetPatronBorrowCount(mock.Anything, patronA).Return(0, nil)
	store.EXPECT().UpdateBookAvailability(mock.Anything, int64(7), -1).Return(ports.ErrNoRowsAffected)

	svc := NewCirculationService(CirculationServiceConfig{Store: store, Logger: discardLogger()})

	_, err := svc.Borrow(context.Background(), patronA, 7)

	require.Error(t, err)
	assert.Equal(t, domain.KindBookUnavailable, domain.KindOf(err))
}

func TestCirculationService_Borrow_StorePanic(t *testing.T) {
	store := mocks.NewMockLibraryStore(t)
	store.EXPECT().GetBookByID(mock.Anything, int64(7)).
		RunAndReturn(func(context.Context, int64) (*domain.Book, error) { panic("nil map") })

	svc := NewCirculationService(CirculationServiceConfig{Store: store, Logger: discardLogger()})

	_, err := svc.Borrow(context.Background(), patronA, 7)

	require.Error(t, err)
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))
}

func TestCirculationService_Borrow_ConcurrentLastCopy(t *testing.T) {
	f := newFixture(t)
	id := f.addBook(t, "Dune", "9780441172719", 1)

	patrons := []string{"100001", "100002", "100003", "100004", "100005", "100006", "100007", "100008"}
	errs := make([]error, len(patrons))

	var wg sync.WaitGroup
	for i, p := range patrons {
		wg.Go(func() {
			_, errs[i] = f.circulation.Borrow(context.Background(), p, id)
		})
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		assert.Equal(t, domain.KindBookUnavailable, domain.KindOf(err))
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 0, f.available(t, id))

	loans := 0
	for _, p := range patrons {
		n, err := f.store.GetPatronBorrowCount(context.Background(), p)
		require.NoError(t, err)
		loans += n
	}
	assert.Equal(t, 1, loans)
}

func TestCirculationService_Return(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addBook(t, "Dune", "9780441172719", 1)

	_, err := f.circulation.Borrow(ctx, patronA, id)
	require.NoError(t, err)

	f.clock.Advance(days(14 + 10))

	receipt, err := f.circulation.Return(ctx, patronA, id)
	require.NoError(t, err)

	assert.Equal(t, "Dune", receipt.Title)
	assert.Equal(t, 10, receipt.Fee.DaysOverdue)
	assert.True(t, decimal.RequireFromString("6.50").Equal(receipt.Fee.Amount), receipt.Fee.Amount.String())
	assert.Equal(t, 1, f.available(t, id))

	_, err = f.circulation.Return(ctx, patronA, id)
	require.Error(t, err)
	assert.Equal(t, domain.KindNotBorrowed, domain.KindOf(err))
	assert.Equal(t, 1, f.available(t, id))
}

func TestCirculationService_Return_OnTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addBook(t, "Dune", "9780441172719", 1)

	_, err := f.circulation.Borrow(ctx, patronA, id)
	require.NoError(t, err)

	f.clock.Advance(days(3))

	receipt, err := f.circulation.Return(ctx, patronA, id)
	require.NoError(t, err)
	assert.True(t, receipt.Fee.Amount.IsZero())
	assert.Equal(t, domain.FeeNotOverdue, receipt.Fee.Status)
}

func TestCirculationService_Return_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addBook(t, "Dune", "9780441172719", 1)

	_, err := f.circulation.Borrow(ctx, patronB, id)
	require.NoError(t, err)

	tests := []struct {
		name     string
		patronID string
		bookID   int64
		wantKind domain.ErrorKind
	}{
		{name: "invalid patron", patronID: "abcdef", bookID: id, wantKind: domain.KindInvalidPatronID},
		{name: "missing book", patronID: patronA, bookID: 404, wantKind: domain.KindBookNotFound},
		{name: "borrowed by someone else", patronID: patronA, bookID: id, wantKind: domain.KindNotBorrowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.circulation.Return(ctx, tt.patronID, tt.bookID)

			require.Error(t, err)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
		})
	}
}

func TestCirculationService_Return_RollsBackOnRecordFailure(t *testing.T) {
	book := &domain.Book{ID: 7, Title: "Dune", TotalCopies: 1, AvailableCopies: 0}
	loan := domain.PatronBorrow{BorrowRecord: domain.BorrowRecord{
		PatronID: patronA, BookID: 7, BorrowDate: baseTime, DueDate: baseTime.AddDate(0, 0, 14),
	}}

	store := mocks.NewMockLibraryStore(t)
	store.EXPECT().GetBookByID(mock.Anything, int64(7)).Return(book, nil)
	store.EXPECT().GetPatronBorrowedBooks(mock.Anything, patronA).Return([]domain.PatronBorrow{loan}, nil)
	store.EXPECT().UpdateBookAvailability(mock.Anything, int64(7), 1).Return(nil).Once()
	store.EXPECT().UpdateBorrowRecordReturnDate(mock.Anything, patronA, int64(7), mock.Anything).
		Return(errors.New("write failed"))
	store.EXPECT().UpdateBookAvailability(mock.Anything, int64(7), -1).Return(nil).Once()

	svc := NewCirculationService(CirculationServiceConfig{Store: store, Logger: discardLogger()})

	_, err := svc.Return(context.Background(), patronA, 7)

	require.Error(t, err)
	assert.Equal(t, domain.KindStorage, domain.KindOf(err))
}

func TestCirculationService_QuoteLateFee(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addBook(t, "Dune", "9780441172719", 1)
	other := f.addBook(t, "Emma", "9780141439587", 1)

	_, err := f.circulation.Borrow(ctx, patronA, id)
	require.NoError(t, err)

	f.clock.Advance(days(14 + 18))

	quote, err := f.circulation.QuoteLateFee(ctx, patronA, id)
	require.NoError(t, err)
	assert.Equal(t, domain.FeeOverdue, quote.Status)
	assert.Equal(t, 18, quote.DaysOverdue)
	assert.True(t, decimal.RequireFromString("14.50").Equal(quote.Amount))

	quote, err = f.circulation.QuoteLateFee(ctx, "12", id)
	require.Error(t, err)
	assert.Equal(t, domain.FeeInvalidInput, quote.Status)
	assert.Equal(t, domain.KindInvalidPatronID, domain.KindOf(err))

	quote, err = f.circulation.QuoteLateFee(ctx, patronA, 404)
	require.Error(t, err)
	assert.Equal(t, domain.FeeNotFound, quote.Status)
	assert.Equal(t, domain.KindBookNotFound, domain.KindOf(err))

	quote, err = f.circulation.QuoteLateFee(ctx, patronA, other)
	require.Error(t, err)
	assert.Equal(t, domain.FeeNotFound, quote.Status)
	assert.Equal(t, domain.KindFeeUnavailable, domain.KindOf(err))
	assert.Contains(t, domain.Describe(err), `"Emma"`)
}
