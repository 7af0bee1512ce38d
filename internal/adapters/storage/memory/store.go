// Package memory is an in-process LibraryStore. It serializes every call
// behind one mutex and hands out copies, never internal pointers.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

// Store keeps the catalog and borrow records in memory.
type Store struct {
	mu      sync.Mutex
	nextID  int64
	books   []domain.Book
	byID    map[int64]int
	byISBN  map[string]int
	records []domain.BorrowRecord
}

var _ ports.LibraryStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		byID:   make(map[int64]int),
		byISBN: make(map[string]int),
	}
}

// GetBookByID implements ports.LibraryStore.
func (s *Store) GetBookByID(ctx context.Context, id int64) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, nil
	}

	book := s.books[i]

	return &book, nil
}

// GetBookByISBN implements ports.LibraryStore.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byISBN[isbn]
	if !ok {
		return nil, nil
	}

	book := s.books[i]

	return &book, nil
}

// GetAllBooks implements ports.LibraryStore.
func (s *Store) GetAllBooks(ctx context.Context) ([]domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	books := make([]domain.Book, len(s.books))
	copy(books, s.books)

	return books, nil
}

// InsertBook implements ports.LibraryStore.
func (s *Store) InsertBook(ctx context.Context, title, author, isbn string, total, available int) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byISBN[isbn]; exists {
		return 0, fmt.Errorf("%w: %s", ports.ErrDuplicateISBN, isbn)
	}

	s.nextID++
	book := domain.Book{
		ID:              s.nextID,
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     total,
		AvailableCopies: available,
	}

	s.books = append(s.books, book)
	s.byID[book.ID] = len(s.books) - 1
	s.byISBN[isbn] = len(s.books) - 1

	return book.ID, nil
}

// UpdateBookAvailability implements ports.LibraryStore. The update is
// rejected with ports.ErrNoRowsAffected if it would leave [0, total].
func (s *Store) UpdateBookAvailability(ctx context.Context, id int64, delta int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("%w: book %d", ports.ErrNoRowsAffected, id)
	}

	next := s.books[i].AvailableCopies + delta
	if next < 0 || next > s.books[i].TotalCopies {
		return fmt.Errorf("%w: book %d availability %d out of range", ports.ErrNoRowsAffected, id, next)
	}

	s.books[i].AvailableCopies = next

	return nil
}

// InsertBorrowRecord implements ports.LibraryStore.
func (s *Store) InsertBorrowRecord(ctx context.Context, patronID string, bookID int64, borrowDate, dueDate time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.PatronID == patronID && r.BookID == bookID && r.Outstanding() {
			return fmt.Errorf("%w: patron %s book %d", ports.ErrDuplicateLoan, patronID, bookID)
		}
	}

	s.records = append(s.records, domain.BorrowRecord{
		PatronID:   patronID,
		BookID:     bookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	})

	return nil
}

// UpdateBorrowRecordReturnDate implements ports.LibraryStore.
func (s *Store) UpdateBorrowRecordReturnDate(ctx context.Context, patronID string, bookID int64, returnDate time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.records {
		r := &s.records[i]
		if r.PatronID == patronID && r.BookID == bookID && r.Outstanding() {
			rd := returnDate
			r.ReturnDate = &rd

			return nil
		}
	}

	return fmt.Errorf("%w: no outstanding record for patron %s book %d", ports.ErrNoRowsAffected, patronID, bookID)
}

// GetPatronBorrowedBooks implements ports.LibraryStore. Only outstanding
// loans are returned, oldest first.
func (s *Store) GetPatronBorrowedBooks(ctx context.Context, patronID string) ([]domain.PatronBorrow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var loans []domain.PatronBorrow

	for _, r := range s.records {
		if r.PatronID != patronID || !r.Outstanding() {
			continue
		}

		loan := domain.PatronBorrow{BorrowRecord: r}
		if i, ok := s.byID[r.BookID]; ok {
			loan.Title = s.books[i].Title
			loan.Author = s.books[i].Author
		}

		loans = append(loans, loan)
	}

	return loans, nil
}

// GetPatronBorrowCount implements ports.LibraryStore.
func (s *Store) GetPatronBorrowCount(ctx context.Context, patronID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0

	for _, r := range s.records {
		if r.PatronID == patronID && r.Outstanding() {
			count++
		}
	}

	return count, nil
}
