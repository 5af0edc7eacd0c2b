// internal/reporting/implementation.go
package reporting

import (
	"context"
	"fmt"
	"time"

	"libracore/internal/fees"
	"libracore/internal/storage"
)

const dateOnly = "2006-01-02"

// service implements the Service interface.
type service struct {
	store storage.Store
	now   func() time.Time
}

// NewService creates a new reporting service instance. A nil clock
// defaults to time.Now.
func NewService(store storage.Store, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{store: store, now: now}
}

// StatusReport builds the patron's report: open loans with due dates, the
// fee total accrued by those open loans, and the full borrowing history
// in chronological order.
func (s *service) StatusReport(ctx context.Context, patronID string) (*PatronReport, error) {
	open, err := s.store.OpenLoansFor(ctx, patronID)
	if err != nil {
		return nil, fmt.Errorf("fetch open loans: %w", err)
	}

	now := s.now()
	current := make([]CurrentLoan, 0, len(open))
	totalFees := 0.0
	for _, loan := range open {
		current = append(current, CurrentLoan{
			BookID:  loan.BookID,
			Title:   loan.Title,
			DueDate: loan.DueDate.Format(dateOnly),
		})
		totalFees += fees.Assess(loan.DueDate, now).Amount
	}

	records, err := s.store.HistoryFor(ctx, patronID)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	history := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		entry := HistoryEntry{
			BookID:     rec.BookID,
			Title:      rec.Title,
			BorrowDate: rec.BorrowDate.Format(dateOnly),
		}
		if rec.ReturnDate != nil {
			returned := rec.ReturnDate.Format(dateOnly)
			entry.ReturnDate = &returned
		}
		history = append(history, entry)
	}

	return &PatronReport{
		PatronID:      patronID,
		CurrentLoans:  current,
		TotalLateFees: fees.Round2(totalFees),
		BorrowedCount: len(current),
		History:       history,
	}, nil
}
