// Package app contains application services that orchestrate use cases.
// This is the application layer - it enforces circulation policy on top of
// the library store and the payment gateway, both reached through ports.
//
// Application Layer Responsibilities:
//   - Enforce borrowing, return and billing rules in a fixed decision order
//   - Translate store and gateway failures into typed domain errors
//   - Keep multi-row writes consistent through staged, compensated steps
//
// What does NOT belong here:
//   - HTTP or CLI specifics (that's adapters and cmd)
//   - SQL (that's the storage adapters)
//   - Fee arithmetic (that's the domain layer)
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jsamuelsen/library-circulation/internal/app/reqctx"
	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

// Clock returns the current time. Services take one so tests can pin "now".
type Clock func() time.Time

func (c Clock) orSystem() Clock {
	if c == nil {
		return time.Now
	}

	return c
}

func defaultLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}

	return logger.With(slog.String("component", component))
}

// storageFailure wraps a store error as a StorageError unless it already
// carries a domain kind.
func storageFailure(operation string, err error) error {
	if domain.KindOf(err) != domain.KindUnknown {
		return err
	}

	return domain.NewStorageError(operation, err)
}

// recoverStorage converts a panic raised below the service boundary into a
// StorageError. Use as: defer recoverStorage("borrow", &err).
func recoverStorage(operation string, errp *error) {
	if r := recover(); r != nil {
		*errp = domain.NewStorageError(operation, fmt.Errorf("panic: %v", r))
	}
}

// lookupBook fetches a book, memoized for the current RequestContext if any.
// A missing book is reported as book_not_found.
func lookupBook(ctx context.Context, store ports.LibraryStore, id int64) (*domain.Book, error) {
	key := "book:" + strconv.FormatInt(id, 10)

	book, err := reqctx.Fetch(ctx, key, func(ctx context.Context) (*domain.Book, error) {
		book, err := store.GetBookByID(ctx, id)
		if err != nil {
			return nil, storageFailure("get book", err)
		}

		if book == nil {
			return nil, domain.NewNotFoundError(domain.KindBookNotFound, "book", strconv.FormatInt(id, 10))
		}

		return book, nil
	})
	if err != nil {
		return nil, err
	}

	return book, nil
}

// outstandingLoan returns the patron's outstanding loan of bookID, or nil.
func outstandingLoan(ctx context.Context, store ports.LibraryStore, patronID string, bookID int64) (*domain.PatronBorrow, error) {
	loans, err := store.GetPatronBorrowedBooks(ctx, patronID)
	if err != nil {
		return nil, storageFailure("get patron borrows", err)
	}

	for i := range loans {
		if loans[i].BookID == bookID && loans[i].Outstanding() {
			return &loans[i], nil
		}
	}

	return nil, nil
}

func isNoRows(err error) bool {
	return errors.Is(err, ports.ErrNoRowsAffected)
}

func isDuplicateLoan(err error) bool {
	return errors.Is(err, ports.ErrDuplicateLoan)
}
