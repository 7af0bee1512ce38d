package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

// allRecords returns a copy of every borrow record, returned ones included.
func (s *Store) allRecords() []domain.BorrowRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.BorrowRecord, len(s.records))
	copy(out, s.records)

	return out
}

func TestStore_InsertAndGetBook(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.InsertBook(ctx, "Dune", "Frank Herbert", "9780441172719", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	byID, err := s.GetBookByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "Dune", byID.Title)

	byISBN, err := s.GetBookByISBN(ctx, "9780441172719")
	require.NoError(t, err)
	assert.Equal(t, byID, byISBN)

	missing, err := s.GetBookByID(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	id, _ := s.InsertBook(ctx, "Dune", "Frank Herbert", "9780441172719", 2, 2)

	book, _ := s.GetBookByID(ctx, id)
	book.AvailableCopies = 0

	fresh, _ := s.GetBookByID(ctx, id)
	assert.Equal(t, 2, fresh.AvailableCopies)
}

func TestStore_DuplicateISBN(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.InsertBook(ctx, "A", "B", "9780441172719", 1, 1)
	require.NoError(t, err)

	_, err = s.InsertBook(ctx, "C", "D", "9780441172719", 1, 1)
	require.ErrorIs(t, err, ports.ErrDuplicateISBN)
}

func TestStore_GetAllBooks_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, _ = s.InsertBook(ctx, "Zeta", "A", "0000000000002", 1, 1)
	_, _ = s.InsertBook(ctx, "Alpha", "B", "0000000000001", 1, 1)

	books, err := s.GetAllBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Zeta", books[0].Title)
	assert.Equal(t, "Alpha", books[1].Title)
}

func TestStore_UpdateBookAvailability_Bounds(t *testing.T) {
	ctx := context.Background()
	s := New()
	id, _ := s.InsertBook(ctx, "Dune", "Frank Herbert", "9780441172719", 1, 1)

	require.NoError(t, s.UpdateBookAvailability(ctx, id, -1))
	require.ErrorIs(t, s.UpdateBookAvailability(ctx, id, -1), ports.ErrNoRowsAffected)
	require.NoError(t, s.UpdateBookAvailability(ctx, id, 1))
	require.ErrorIs(t, s.UpdateBookAvailability(ctx, id, 1), ports.ErrNoRowsAffected)
	require.ErrorIs(t, s.UpdateBookAvailability(ctx, 42, 1), ports.ErrNoRowsAffected)
}

func TestStore_BorrowRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	id, _ := s.InsertBook(ctx, "Dune", "Frank Herbert", "9780441172719", 1, 1)
	borrowed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertBorrowRecord(ctx, "123456", id, borrowed, borrowed.AddDate(0, 0, 14)))

	count, err := s.GetPatronBorrowCount(ctx, "123456")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	loans, err := s.GetPatronBorrowedBooks(ctx, "123456")
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, "Dune", loans[0].Title)
	assert.Equal(t, "Frank Herbert", loans[0].Author)

	require.NoError(t, s.UpdateBorrowRecordReturnDate(ctx, "123456", id, borrowed.AddDate(0, 0, 3)))

	count, _ = s.GetPatronBorrowCount(ctx, "123456")
	assert.Zero(t, count)

	loans, _ = s.GetPatronBorrowedBooks(ctx, "123456")
	assert.Empty(t, loans)

	require.ErrorIs(t, s.UpdateBorrowRecordReturnDate(ctx, "123456", id, borrowed), ports.ErrNoRowsAffected)

	records := s.allRecords()
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ReturnDate)
}

func TestStore_InsertBorrowRecord_DuplicateLoan(t *testing.T) {
	ctx := context.Background()
	s := New()
	id, _ := s.InsertBook(ctx, "Dune", "Frank Herbert", "9780441172719", 2, 2)
	borrowed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	due := borrowed.AddDate(0, 0, 14)

	require.NoError(t, s.InsertBorrowRecord(ctx, "123456", id, borrowed, due))
	require.ErrorIs(t, s.InsertBorrowRecord(ctx, "123456", id, borrowed, due), ports.ErrDuplicateLoan)
	require.NoError(t, s.InsertBorrowRecord(ctx, "654321", id, borrowed, due))

	require.NoError(t, s.UpdateBorrowRecordReturnDate(ctx, "123456", id, due))
	require.NoError(t, s.InsertBorrowRecord(ctx, "123456", id, due, due.AddDate(0, 0, 14)))
}

func TestStore_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().GetAllBooks(ctx)

	require.ErrorIs(t, err, context.Canceled)
}
