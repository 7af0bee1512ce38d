package app

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/jsamuelsen/library-circulation/internal/domain"
	"github.com/jsamuelsen/library-circulation/internal/platform/logging"
	"github.com/jsamuelsen/library-circulation/internal/ports"
)

// ReportService builds patron status reports.
type ReportService struct {
	store  ports.LibraryStore
	now    Clock
	logger *slog.Logger
}

// ReportServiceConfig contains the dependencies of the report service.
type ReportServiceConfig struct {
	Store  ports.LibraryStore
	Clock  Clock
	Logger *slog.Logger
}

// NewReportService creates a report service. It panics without a store.
func NewReportService(cfg ReportServiceConfig) *ReportService {
	if cfg.Store == nil {
		panic("app: report service requires a library store")
	}

	return &ReportService{
		store:  cfg.Store,
		now:    cfg.Clock.orSystem(),
		logger: defaultLogger(cfg.Logger, "app.ReportService"),
	}
}

// StatusReport partitions a patron's outstanding loans into current and
// overdue and totals the fines. Returned loans are ignored.
func (s *ReportService) StatusReport(ctx context.Context, patronID string) (report *domain.PatronReport, err error) {
	defer recoverStorage("status report", &err)

	if err := domain.ValidatePatronID(patronID); err != nil {
		return nil, err
	}

	loans, err := s.store.GetPatronBorrowedBooks(ctx, patronID)
	if err != nil {
		return nil, storageFailure("get patron borrows", err)
	}

	now := s.now()
	report = &domain.PatronReport{
		PatronID: patronID,
		Current:  []domain.CurrentLoan{},
		Overdue:  []domain.OverdueLoan{},
	}

	total := decimal.Zero

	for _, loan := range loans {
		if !loan.Outstanding() {
			continue
		}

		entry := domain.CurrentLoan{
			BookID:     loan.BookID,
			Title:      loan.Title,
			Author:     loan.Author,
			BorrowDate: loan.BorrowDate,
			DueDate:    loan.DueDate,
		}

		quote := domain.QuoteFee(loan.DueDate, now)
		if !quote.IsOverdue() {
			report.Current = append(report.Current, entry)
			continue
		}

		report.Overdue = append(report.Overdue, domain.OverdueLoan{
			CurrentLoan: entry,
			DaysOverdue: quote.DaysOverdue,
			LateFee:     quote.Amount,
		})
		total = total.Add(quote.Amount)
	}

	report.TotalFines = total.Round(2)
	report.TotalOverdue = len(report.Overdue)
	report.TotalBooksBorrowed = len(report.Current) + report.TotalOverdue

	logging.FromContextOr(ctx, s.logger).DebugContext(ctx, "status report built",
		slog.String(logging.KeyPatronID, patronID),
		slog.Int("borrowed", report.TotalBooksBorrowed),
		slog.Int("overdue", report.TotalOverdue),
	)

	return report, nil
}
