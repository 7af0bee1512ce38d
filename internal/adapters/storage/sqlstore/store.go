// Package sqlstore is the SQL LibraryStore. Queries are built with goqu and
// executed through sqlx against Postgres (pgx or lib/pq driver) or SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // goqu dialect
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // goqu dialect
	_ "github.com/jackc/pgx/v5/stdlib"                  // "pgx" driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"           // "postgres" driver
	_ "github.com/mattn/go-sqlite3" // "sqlite3" driver

	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

// Supported database/sql driver names.
const (
	DriverPGX      = "pgx"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite3"

	tableBooks   = "books"
	tableRecords = "borrow_records"

	colID              = "id"
	colTitle           = "title"
	colAuthor          = "author"
	colISBN            = "isbn"
	colTotalCopies     = "total_copies"
	colAvailableCopies = "available_copies"
	colPatronID        = "patron_id"
	colBookID          = "book_id"
	colBorrowDate      = "borrow_date"
	colDueDate         = "due_date"
	colReturnDate      = "return_date"

	healthCheckName = "library-store"
)

// ErrUnsupportedDriver is returned for driver names outside the supported set.
var ErrUnsupportedDriver = errors.New("unsupported database driver")

// Config configures the database pool.
type Config struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	CreateSchema    bool
}

// Store implements ports.LibraryStore and ports.HealthChecker.
type Store struct {
	db          *sqlx.DB
	builder     goqu.DialectWrapper
	dialectName string
	logger      *slog.Logger
}

var (
	_ ports.LibraryStore  = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)

// Open connects to the configured database, verifies the connection and
// optionally creates the schema.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if _, err := dialectFor(cfg.Driver); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging %s database: %w", cfg.Driver, err)
	}

	store, err := New(db, cfg.Driver, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if cfg.CreateSchema {
		if err := store.CreateSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return store, nil
}

// New wraps an open connection pool. driver selects the SQL dialect.
func New(db *sqlx.DB, driver string, logger *slog.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}

	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		db:          db,
		builder:     goqu.Dialect(dialect),
		dialectName: dialect,
		logger:      logger.With(slog.String("component", "sqlstore.Store"), slog.String("driver", driver)),
	}, nil
}

func dialectFor(driver string) (string, error) {
	switch driver {
	case DriverPGX, DriverPostgres:
		return dialectPostgres, nil
	case DriverSQLite:
		return dialectSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string {
	return healthCheckName
}

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

type bookRow struct {
	ID              int64  `db:"id"`
	Title           string `db:"title"`
	Author          string `db:"author"`
	ISBN            string `db:"isbn"`
	TotalCopies     int    `db:"total_copies"`
	AvailableCopies int    `db:"available_copies"`
}

func (r bookRow) toDomain() domain.Book {
	return domain.Book{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		ISBN:            r.ISBN,
		TotalCopies:     r.TotalCopies,
		AvailableCopies: r.AvailableCopies,
	}
}

type loanRow struct {
	PatronID   string       `db:"patron_id"`
	BookID     int64        `db:"book_id"`
	BorrowDate time.Time    `db:"borrow_date"`
	DueDate    time.Time    `db:"due_date"`
	ReturnDate sql.NullTime `db:"return_date"`
	Title      string       `db:"title"`
	Author     string       `db:"author"`
}

func (r loanRow) toDomain() domain.PatronBorrow {
	loan := domain.PatronBorrow{
		BorrowRecord: domain.BorrowRecord{
			PatronID:   r.PatronID,
			BookID:     r.BookID,
			BorrowDate: r.BorrowDate,
			DueDate:    r.DueDate,
		},
		Title:  r.Title,
		Author: r.Author,
	}

	if r.ReturnDate.Valid {
		rd := r.ReturnDate.Time
		loan.ReturnDate = &rd
	}

	return loan
}

func (s *Store) booksQuery() *goqu.SelectDataset {
	return s.builder.From(tableBooks).
		Select(colID, colTitle, colAuthor, colISBN, colTotalCopies, colAvailableCopies).
		Order(goqu.I(colID).Asc())
}

func (s *Store) getBook(ctx context.Context, where goqu.Ex) (*domain.Book, error) {
	query, args, err := s.booksQuery().Where(where).Limit(1).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building book query: %w", err)
	}

	var row bookRow
	if err := s.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("querying book: %w", err)
	}

	book := row.toDomain()

	return &book, nil
}

// GetBookByID implements ports.LibraryStore.
func (s *Store) GetBookByID(ctx context.Context, id int64) (*domain.Book, error) {
	return s.getBook(ctx, goqu.Ex{colID: id})
}

// GetBookByISBN implements ports.LibraryStore.
func (s *Store) GetBookByISBN(ctx context.Context, isbn string) (*domain.Book, error) {
	return s.getBook(ctx, goqu.Ex{colISBN: isbn})
}

// GetAllBooks implements ports.LibraryStore.
func (s *Store) GetAllBooks(ctx context.Context) ([]domain.Book, error) {
	query, args, err := s.booksQuery().Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building catalog query: %w", err)
	}

	var rows []bookRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying catalog: %w", err)
	}

	books := make([]domain.Book, len(rows))
	for i, r := range rows {
		books[i] = r.toDomain()
	}

	return books, nil
}

// InsertBook implements ports.LibraryStore. A unique violation on the ISBN
// is reported as ports.ErrDuplicateISBN.
func (s *Store) InsertBook(ctx context.Context, title, author, isbn string, total, available int) (int64, error) {
	insert := s.builder.Insert(tableBooks).Rows(goqu.Record{
		colTitle:           title,
		colAuthor:          author,
		colISBN:            isbn,
		colTotalCopies:     total,
		colAvailableCopies: available,
	}).Prepared(true)

	id, err := s.insertReturningID(ctx, insert)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %s", ports.ErrDuplicateISBN, isbn)
		}

		return 0, fmt.Errorf("inserting book: %w", err)
	}

	return id, nil
}

func (s *Store) insertReturningID(ctx context.Context, insert *goqu.InsertDataset) (int64, error) {
	if s.dialectName == dialectPostgres {
		query, args, err := insert.Returning(colID).ToSQL()
		if err != nil {
			return 0, fmt.Errorf("building insert: %w", err)
		}

		var id int64
		if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}

		return id, nil
	}

	query, args, err := insert.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building insert: %w", err)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// UpdateBookAvailability implements ports.LibraryStore. The update only
// applies while the result stays within [0, total_copies].
func (s *Store) UpdateBookAvailability(ctx context.Context, id int64, delta int) error {
	query, args, err := s.builder.Update(tableBooks).
		Set(goqu.Record{colAvailableCopies: goqu.L("? + ?", goqu.I(colAvailableCopies), delta)}).
		Where(
			goqu.C(colID).Eq(id),
			goqu.L("? + ? BETWEEN 0 AND ?", goqu.I(colAvailableCopies), delta, goqu.I(colTotalCopies)),
		).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building availability update: %w", err)
	}

	return s.execOne(ctx, "update availability", query, args)
}

// InsertBorrowRecord implements ports.LibraryStore.
func (s *Store) InsertBorrowRecord(ctx context.Context, patronID string, bookID int64, borrowDate, dueDate time.Time) error {
	query, args, err := s.builder.Insert(tableRecords).Rows(goqu.Record{
		colPatronID:   patronID,
		colBookID:     bookID,
		colBorrowDate: borrowDate.UTC(),
		colDueDate:    dueDate.UTC(),
	}).Prepared(true).ToSQL()
	if err != nil {
		return fmt.Errorf("building borrow insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: patron %s book %d", ports.ErrDuplicateLoan, patronID, bookID)
		}

		return fmt.Errorf("inserting borrow record: %w", err)
	}

	return nil
}

// UpdateBorrowRecordReturnDate implements ports.LibraryStore.
func (s *Store) UpdateBorrowRecordReturnDate(ctx context.Context, patronID string, bookID int64, returnDate time.Time) error {
	query, args, err := s.builder.Update(tableRecords).
		Set(goqu.Record{colReturnDate: returnDate.UTC()}).
		Where(outstanding(patronID), goqu.C(colBookID).Eq(bookID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return fmt.Errorf("building return update: %w", err)
	}

	return s.execOne(ctx, "set return date", query, args)
}

// GetPatronBorrowedBooks implements ports.LibraryStore. Only outstanding
// loans are returned, oldest first.
func (s *Store) GetPatronBorrowedBooks(ctx context.Context, patronID string) ([]domain.PatronBorrow, error) {
	query, args, err := s.builder.From(goqu.T(tableRecords).As("br")).
		Join(goqu.T(tableBooks).As("b"), goqu.On(goqu.I("br."+colBookID).Eq(goqu.I("b."+colID)))).
		Select(
			goqu.I("br."+colPatronID).As(colPatronID),
			goqu.I("br."+colBookID).As(colBookID),
			goqu.I("br."+colBorrowDate).As(colBorrowDate),
			goqu.I("br."+colDueDate).As(colDueDate),
			goqu.I("br."+colReturnDate).As(colReturnDate),
			goqu.I("b."+colTitle).As(colTitle),
			goqu.I("b."+colAuthor).As(colAuthor),
		).
		Where(
			goqu.I("br."+colPatronID).Eq(patronID),
			goqu.I("br."+colReturnDate).IsNull(),
		).
		Order(goqu.I("br."+colID).Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("building patron loans query: %w", err)
	}

	var rows []loanRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("querying patron loans: %w", err)
	}

	loans := make([]domain.PatronBorrow, len(rows))
	for i, r := range rows {
		loans[i] = r.toDomain()
	}

	return loans, nil
}

// GetPatronBorrowCount implements ports.LibraryStore.
func (s *Store) GetPatronBorrowCount(ctx context.Context, patronID string) (int, error) {
	query, args, err := s.builder.From(tableRecords).
		Select(goqu.COUNT(goqu.Star())).
		Where(outstanding(patronID)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("building borrow count query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("counting patron loans: %w", err)
	}

	return count, nil
}

func outstanding(patronID string) goqu.Expression {
	return goqu.And(goqu.C(colPatronID).Eq(patronID), goqu.C(colReturnDate).IsNull())
}

// execOne runs a write that must touch exactly one row.
func (s *Store) execOne(ctx context.Context, operation, query string, args []any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	if n == 0 {
		s.logger.DebugContext(ctx, "write matched no rows", slog.String("operation", operation))

		return fmt.Errorf("%s: %w", operation, ports.ErrNoRowsAffected)
	}

	return nil
}
