package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

// CatalogService manages catalog entries: adding books and searching them.
type CatalogService struct {
	store  ports.LibraryStore
	logger *slog.Logger
}

// CatalogServiceConfig contains the dependencies of the catalog service.
type CatalogServiceConfig struct {
	Store  ports.LibraryStore
	Logger *slog.Logger
}

// NewCatalogService creates a catalog service. It panics without a store.
func NewCatalogService(cfg CatalogServiceConfig) *CatalogService {
	if cfg.Store == nil {
		panic("app: catalog service requires a library store")
	}

	return &CatalogService{
		store:  cfg.Store,
		logger: defaultLogger(cfg.Logger, "app.CatalogService"),
	}
}

// AddBookInput describes a new catalog entry.
type AddBookInput struct {
	Title       string
	Author      string
	ISBN        string
	TotalCopies int
}

// AddBook validates and inserts a book with every copy available.
// Checks run in order: title, author, ISBN shape, copies, ISBN uniqueness.
func (s *CatalogService) AddBook(ctx context.Context, in AddBookInput) (id int64, err error) {
	defer recoverStorage("add book", &err)

	logger := logging.FromContextOr(ctx, s.logger)

	title := strings.TrimSpace(in.Title)
	author := strings.TrimSpace(in.Author)

	if err := validateBookInput(title, author, in.ISBN, in.TotalCopies); err != nil {
		return 0, err
	}

	existing, err := s.store.GetBookByISBN(ctx, in.ISBN)
	if err != nil {
		return 0, storageFailure("get book by isbn", err)
	}

	if existing != nil {
		return 0, duplicateISBN(in.ISBN)
	}

	id, err = s.store.InsertBook(ctx, title, author, in.ISBN, in.TotalCopies, in.TotalCopies)
	if err != nil {
		if errors.Is(err, ports.ErrDuplicateISBN) {
			return 0, duplicateISBN(in.ISBN)
		}

		logger.ErrorContext(ctx, "failed to insert book",
			slog.String("isbn", in.ISBN),
			slog.Any("error", err),
		)

		return 0, storageFailure("insert book", err)
	}

	logger.InfoContext(ctx, "book added",
		slog.Int64(logging.KeyBookID, id),
		slog.String("isbn", in.ISBN),
		slog.Int("copies", in.TotalCopies),
	)

	return id, nil
}

func validateBookInput(title, author, isbn string, copies int) error {
	switch {
	case title == "":
		return domain.NewValidationError("title", "title is required")
	case utf8.RuneCountInString(title) > domain.MaxTitleLength:
		return domain.NewValidationError("title", "title must be less than 200 characters")
	case author == "":
		return domain.NewValidationError("author", "author is required")
	case utf8.RuneCountInString(author) > domain.MaxAuthorLength:
		return domain.NewValidationError("author", "author must be less than 100 characters")
	case !domain.IsValidISBN(isbn):
		return domain.NewValidationErrorWithValue(domain.KindValidation, "isbn",
			"ISBN must be exactly 13 digits", isbn)
	case copies <= 0:
		return domain.NewValidationErrorWithValue(domain.KindValidation, "total_copies",
			"total copies must be a positive integer", copies)
	default:
		return nil
	}
}

func duplicateISBN(isbn string) error {
	return domain.NewConflictErrorWithDetails(domain.KindDuplicateISBN, "book",
		"a book with this ISBN already exists", isbn)
}

// SearchBooks returns catalog entries matching term on the field kind selects.
// A blank term or an unknown kind yields an empty result, not an error.
func (s *CatalogService) SearchBooks(ctx context.Context, term string, kind domain.SearchKind) (books []domain.Book, err error) {
	defer recoverStorage("search books", &err)

	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Book{}, nil
	}

	switch kind {
	case domain.SearchByTitle, domain.SearchByAuthor, domain.SearchByISBN:
	default:
		logging.FromContextOr(ctx, s.logger).DebugContext(ctx, "unknown search kind",
			slog.String("kind", string(kind)),
		)

		return []domain.Book{}, nil
	}

	all, err := s.store.GetAllBooks(ctx)
	if err != nil {
		return nil, storageFailure("get all books", err)
	}

	books = make([]domain.Book, 0, len(all))
	for _, b := range all {
		if b.Matches(kind, term) {
			books = append(books, b)
		}
	}

	return books, nil
}

// GetBook returns a single catalog entry.
func (s *CatalogService) GetBook(ctx context.Context, id int64) (book *domain.Book, err error) {
	defer recoverStorage("get book", &err)

	return lookupBook(ctx, s.store, id)
}

// ListBooks returns the whole catalog in insertion order.
func (s *CatalogService) ListBooks(ctx context.Context) (books []domain.Book, err error) {
	defer recoverStorage("list books", &err)

	books, err = s.store.GetAllBooks(ctx)
	if err != nil {
		return nil, storageFailure("get all books", err)
	}

	if books == nil {
		books = []domain.Book{}
	}

	return books, nil
}

// ImportResult reports the outcome of one row of a bulk import.
type ImportResult struct {
	Input AddBookInput
	ID    int64
	Err   error
}

// ImportBooks adds many books with at most workers inserts in flight.
// Every row is attempted; failures are reported per row.
func (s *CatalogService) ImportBooks(ctx context.Context, inputs []AddBookInput, workers int) []ImportResult {
	fns := make([]func(context.Context) (int64, error), len(inputs))
	for i, in := range inputs {
		fns[i] = func(ctx context.Context) (int64, error) {
			return s.AddBook(ctx, in)
		}
	}

	partial := ParallelPartialLimit(ctx, workers, fns...)

	results := make([]ImportResult, len(inputs))
	for i, r := range partial {
		results[i] = ImportResult{Input: inputs[i], ID: r.Value, Err: r.Err}
	}

	return results
}
