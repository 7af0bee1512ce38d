// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never driver rows or wire DTOs
//   - Adapters report failures as plain errors; the application layer
//     decides which domain error they become
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/jsamuelsen/library-circulation/internal/domain"
)

// ErrDuplicateISBN is returned by LibraryStore.InsertBook when the store's
// uniqueness constraint rejects the ISBN.
var ErrDuplicateISBN = errors.New("duplicate isbn")

// ErrDuplicateLoan is returned by LibraryStore.InsertBorrowRecord when the
// patron already holds an outstanding loan of the book. Concurrent borrows
// that both pass the read checks end here.
var ErrDuplicateLoan = errors.New("outstanding loan exists")

// ErrNoRowsAffected is returned by LibraryStore writes that matched nothing,
// including availability updates that would leave the copy bounds.
var ErrNoRowsAffected = errors.New("no rows affected")

// LibraryStore is the data access gateway for the catalog and borrow records.
// It provides point-in-time reads and atomic single-row writes, nothing more.
//
// Lookups return (nil, nil) when the row does not exist.
type LibraryStore interface {
	// GetBookByID returns the book with the given id.
	GetBookByID(ctx context.Context, id int64) (*domain.Book, error)

	// GetBookByISBN returns the book with the given ISBN.
	GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error)

	// GetAllBooks returns the whole catalog in insertion order.
	GetAllBooks(ctx context.Context) ([]domain.Book, error)

	// InsertBook adds a catalog row and returns its id.
	InsertBook(ctx context.Context, title, author, isbn string, total, available int) (int64, error)

	// UpdateBookAvailability adds delta to the book's available copies.
	UpdateBookAvailability(ctx context.Context, id int64, delta int) error

	// InsertBorrowRecord records a new outstanding loan. A second outstanding
	// loan of the same book by the same patron is ErrDuplicateLoan.
	InsertBorrowRecord(ctx context.Context, patronID string, bookID int64, borrowDate, dueDate time.Time) error

	// UpdateBorrowRecordReturnDate closes the outstanding loan for the pair.
	UpdateBorrowRecordReturnDate(ctx context.Context, patronID string, bookID int64, returnDate time.Time) error

	// GetPatronBorrowedBooks returns the patron's loans joined with book details.
	GetPatronBorrowedBooks(ctx context.Context, patronID string) ([]domain.PatronBorrow, error)

	// GetPatronBorrowCount returns the number of outstanding loans for the patron.
	GetPatronBorrowCount(ctx context.Context, patronID string) (int, error)
}
