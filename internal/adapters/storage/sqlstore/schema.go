package sqlstore

import (
	"context"
	"fmt"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id BIGSERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		isbn CHAR(13) NOT NULL UNIQUE,
		total_copies INTEGER NOT NULL CHECK (total_copies > 0),
		available_copies INTEGER NOT NULL CHECK (available_copies BETWEEN 0 AND total_copies)
	)`,
	`CREATE TABLE IF NOT EXISTS borrow_records (
		id BIGSERIAL PRIMARY KEY,
		patron_id CHAR(6) NOT NULL,
		book_id BIGINT NOT NULL REFERENCES books(id),
		borrow_date TIMESTAMPTZ NOT NULL,
		due_date TIMESTAMPTZ NOT NULL,
		return_date TIMESTAMPTZ
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS borrow_records_outstanding_idx
		ON borrow_records (patron_id, book_id) WHERE return_date IS NULL`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS books (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		author TEXT NOT NULL,
		isbn TEXT NOT NULL UNIQUE,
		total_copies INTEGER NOT NULL CHECK (total_copies > 0),
		available_copies INTEGER NOT NULL CHECK (available_copies BETWEEN 0 AND total_copies)
	)`,
	`CREATE TABLE IF NOT EXISTS borrow_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		patron_id TEXT NOT NULL,
		book_id INTEGER NOT NULL REFERENCES books(id),
		borrow_date DATETIME NOT NULL,
		due_date DATETIME NOT NULL,
		return_date DATETIME
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS borrow_records_outstanding_idx
		ON borrow_records (patron_id, book_id) WHERE return_date IS NULL`,
}

// CreateSchema creates the tables if they do not exist. Intended for local
// runs and tests; production schemas are managed outside the service.
func (s *Store) CreateSchema(ctx context.Context) error {
	stmts := postgresSchema
	if s.dialectName == dialectSQLite {
		stmts = sqliteSchema
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	return nil
}
