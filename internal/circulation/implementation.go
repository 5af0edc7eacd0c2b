// internal/circulation/implementation.go
package circulation

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"libracore/internal/fees"
	"libracore/internal/storage"
)

var patronIDPattern = regexp.MustCompile(`^\d{6}$`)

// ValidPatronID reports whether id is exactly six digits.
func ValidPatronID(id string) bool {
	return patronIDPattern.MatchString(id)
}

// service implements the Service interface.
type service struct {
	store  storage.Store
	now    func() time.Time
	tracer trace.Tracer
}

// NewService creates a new circulation service instance. A nil clock
// defaults to time.Now; tests inject a fixed one.
func NewService(store storage.Store, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{
		store:  store,
		now:    now,
		tracer: otel.Tracer("libracore/circulation"),
	}
}

// Borrow checks the patron's identifier, the book's availability and the
// borrowing cap, then opens the loan in one atomic storage operation.
func (s *service) Borrow(ctx context.Context, patronID string, bookID int64) (*BorrowReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.borrow",
		trace.WithAttributes(
			attribute.String("patron.id", patronID),
			attribute.Int64("book.id", bookID),
		),
	)
	defer span.End()

	if !ValidPatronID(patronID) {
		return nil, ErrInvalidPatronID
	}

	book, err := s.store.BookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if book.AvailableCopies <= 0 {
		return nil, storage.ErrBookUnavailable
	}

	openCount, err := s.store.OpenLoanCount(ctx, patronID)
	if err != nil {
		return nil, fmt.Errorf("count open loans: %w", err)
	}
	if openCount >= MaxOpenLoans {
		return nil, ErrBorrowLimitReached
	}

	borrowDate := s.now()
	dueDate := fees.DueDate(borrowDate)

	rec, err := s.store.OpenLoan(ctx, patronID, bookID, borrowDate, dueDate)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int64("record.id", rec.ID))
	return &BorrowReceipt{
		PatronID: patronID,
		BookID:   bookID,
		Title:    book.Title,
		DueDate:  dueDate,
		Message:  fmt.Sprintf("Successfully borrowed %q. Due date: %s.", book.Title, dueDate.Format("2006-01-02")),
	}, nil
}

// Return verifies an open loan exists, guards the availability ceiling,
// closes the loan atomically and reports any late fee in the message.
func (s *service) Return(ctx context.Context, patronID string, bookID int64) (*ReturnReceipt, error) {
	ctx, span := s.tracer.Start(ctx, "circulation.return",
		trace.WithAttributes(
			attribute.String("patron.id", patronID),
			attribute.Int64("book.id", bookID),
		),
	)
	defer span.End()

	if !ValidPatronID(patronID) {
		return nil, ErrInvalidPatronID
	}

	book, err := s.store.BookByID(ctx, bookID)
	if err != nil {
		return nil, err
	}

	open, err := s.store.OpenLoansFor(ctx, patronID)
	if err != nil {
		return nil, fmt.Errorf("fetch open loans: %w", err)
	}
	hasOpen := false
	for _, loan := range open {
		if loan.BookID == bookID {
			hasOpen = true
			break
		}
	}
	if !hasOpen {
		return nil, storage.ErrNoOpenLoan
	}

	// Pre-mutation guard: a counter already at its ceiling means a
	// return would push available past total.
	if book.AvailableCopies >= book.TotalCopies {
		return nil, storage.ErrCopiesExceedTotal
	}

	returnDate := s.now()
	rec, err := s.store.CloseLoan(ctx, patronID, bookID, returnDate)
	if err != nil {
		return nil, err
	}

	assessment := fees.AssessAt(rec.DueDate, rec.ReturnDate, returnDate)

	message := "Book returned successfully."
	if assessment.Amount > 0 {
		message += fmt.Sprintf(" Late fee: $%.2f", assessment.Amount)
	}

	span.SetAttributes(
		attribute.Int64("record.id", rec.ID),
		attribute.Float64("fee.amount", assessment.Amount),
	)
	return &ReturnReceipt{
		PatronID: patronID,
		BookID:   bookID,
		Fee:      assessment,
		Message:  message,
	}, nil
}
