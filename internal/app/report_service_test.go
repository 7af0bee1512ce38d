package app

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/mocks"
)

func TestReportService_StatusReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dune := f.addBook(t, "Dune", "9780441172719", 1)
	emma := f.addBook(t, "Emma", "9780141439587", 1)
	ulysses := f.addBook(t, "Ulysses", "9780199535675", 1)
	returned := f.addBook(t, "Walden", "9780486284958", 1)

	_, err := f.circulation.Borrow(ctx, patronA, dune)
	require.NoError(t, err)
	_, err = f.circulation.Borrow(ctx, patronA, returned)
	require.NoError(t, err)

	f.clock.Advance(days(10))
	_, err = f.circulation.Borrow(ctx, patronA, emma)
	require.NoError(t, err)

	f.clock.Advance(days(10))
	_, err = f.circulation.Borrow(ctx, patronA, ulysses)
	require.NoError(t, err)

	f.clock.Advance(days(10))
	_, err = f.circulation.Return(ctx, patronA, returned)
	require.NoError(t, err)

	// Day 32: Dune is 18 days late, Emma 8, Ulysses is still current.
	f.clock.Advance(days(2))

	report, err := f.reports.StatusReport(ctx, patronA)
	require.NoError(t, err)

	assert.Equal(t, patronA, report.PatronID)
	assert.Equal(t, 3, report.TotalBooksBorrowed)
	assert.Equal(t, 2, report.TotalOverdue)

	require.Len(t, report.Current, 1)
	assert.Equal(t, "Ulysses", report.Current[0].Title)

	require.Len(t, report.Overdue, 2)
	assert.Equal(t, "Dune", report.Overdue[0].Title)
	assert.Equal(t, 18, report.Overdue[0].DaysOverdue)
	assert.True(t, decimal.RequireFromString("14.50").Equal(report.Overdue[0].LateFee))
	assert.Equal(t, "Emma", report.Overdue[1].Title)
	assert.Equal(t, 8, report.Overdue[1].DaysOverdue)
	assert.True(t, decimal.RequireFromString("4.50").Equal(report.Overdue[1].LateFee))

	assert.True(t, decimal.RequireFromString("19.00").Equal(report.TotalFines), report.TotalFines.String())
}

func TestReportService_StatusReport_DueTodayIsCurrent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.addBook(t, "Dune", "9780441172719", 1)

	_, err := f.circulation.Borrow(ctx, patronA, id)
	require.NoError(t, err)

	f.clock.Advance(domain.LoanPeriod)

	report, err := f.reports.StatusReport(ctx, patronA)
	require.NoError(t, err)
	assert.Len(t, report.Current, 1)
	assert.Empty(t, report.Overdue)
	assert.True(t, report.TotalFines.IsZero())
}

func TestReportService_StatusReport_NoLoans(t *testing.T) {
	f := newFixture(t)

	report, err := f.reports.StatusReport(context.Background(), patronB)
	require.NoError(t, err)

	assert.NotNil(t, report.Current)
	assert.NotNil(t, report.Overdue)
	assert.Zero(t, report.TotalBooksBorrowed)
	assert.True(t, report.TotalFines.IsZero())
}

func TestReportService_StatusReport_Errors(t *testing.T) {
	t.Run("invalid patron", func(t *testing.T) {
		store := mocks.NewMockLibraryStore(t)
		svc := NewReportService(ReportServiceConfig{Store: store, Logger: discardLogger()})

		_, err := svc.StatusReport(context.Background(), "1234567")
		require.Error(t, err)
		assert.Equal(t, domain.KindInvalidPatronID, domain.KindOf(err))
	})

	t.Run("store failure", func(t *testing.T) {
		store := mocks.NewMockLibraryStore(t)
		store.EXPECT().GetPatronBorrowedBooks(mock.Anything, patronA).Return(nil, errors.New("boom"))

		svc := NewReportService(ReportServiceConfig{Store: store, Logger: discardLogger()})

		_, err := svc.StatusReport(context.Background(), patronA)
		require.Error(t, err)
		assert.Equal(t, domain.KindStorage, domain.KindOf(err))
	})

	t.Run("returned rows from the store are skipped", func(t *testing.T) {
		returnedAt := baseTime.AddDate(0, 0, 30)
		store := mocks.NewMockLibraryStore(t)
		store.EXPECT().GetPatronBorrowedBooks(mock.Anything, patronA).Return([]domain.PatronBorrow{{
			BorrowRecord: domain.BorrowRecord{
				PatronID: patronA, BookID: 1, BorrowDate: baseTime,
				DueDate: domain.DueDateFor(baseTime), ReturnDate: &returnedAt,
			},
			Title: "Dune",
		}}, nil)

		svc := NewReportService(ReportServiceConfig{Store: store, Logger: discardLogger()})

		report, err := svc.StatusReport(context.Background(), patronA)
		require.NoError(t, err)
		assert.Zero(t, report.TotalBooksBorrowed)
	})
}
