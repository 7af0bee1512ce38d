package app

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/library-circulation/internal/adapters/storage/memory"
)

const (
	patronA = "123456"
	patronB = "654321"
)

var baseTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeClock is a settable Clock for tests.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func days(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

// fixture wires every service against one in-memory store.
type fixture struct {
	store       *memory.Store
	clock       *fakeClock
	catalog     *CatalogService
	circulation *CirculationService
	reports     *ReportService
	payments    *PaymentService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	clock := &fakeClock{now: baseTime}
	logger := discardLogger()

	circulation := NewCirculationService(CirculationServiceConfig{Store: store, Clock: clock.Now, Logger: logger})

	return &fixture{
		store:       store,
		clock:       clock,
		catalog:     NewCatalogService(CatalogServiceConfig{Store: store, Logger: logger}),
		circulation: circulation,
		reports:     NewReportService(ReportServiceConfig{Store: store, Clock: clock.Now, Logger: logger}),
		payments: NewPaymentService(PaymentServiceConfig{
			Circulation: circulation,
			Store:       store,
			Logger:      logger,
		}),
	}
}

func (f *fixture) addBook(t *testing.T, title, isbn string, copies int) int64 {
	t.Helper()

	id, err := f.catalog.AddBook(context.Background(), AddBookInput{
		Title:       title,
		Author:      "Author of " + title,
		ISBN:        isbn,
		TotalCopies: copies,
	})
	require.NoError(t, err)

	return id
}

func (f *fixture) available(t *testing.T, id int64) int {
	t.Helper()

	book, err := f.store.GetBookByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, book)

	return book.AvailableCopies
}
