// internal/storage/store.go
package storage

import (
	"context"
	"time"
)

// Store is the record-access surface the business services depend on.
// It is injected at construction so tests can substitute MemoryStore.
//
// OpenLoan and CloseLoan are deliberately single operations: each one
// writes the borrow record and adjusts the availability counter inside
// the same transaction, so a partial failure can never leave the two
// out of step.
type Store interface {
	// BookByID returns the book or ErrBookNotFound.
	BookByID(ctx context.Context, id int64) (*Book, error)

	// BookByISBN returns the book with the exact ISBN or ErrBookNotFound.
	BookByISBN(ctx context.Context, isbn string) (*Book, error)

	// AllBooks returns every book in insertion order.
	AllBooks(ctx context.Context) ([]*Book, error)

	// InsertBook persists a new book with available == total copies.
	// Returns ErrDuplicateISBN when the ISBN is already cataloged.
	InsertBook(ctx context.Context, title, author, isbn string, totalCopies int) (*Book, error)

	// OpenLoanCount returns the number of loans the patron currently has open.
	OpenLoanCount(ctx context.Context, patronID string) (int, error)

	// OpenLoan atomically inserts an open borrow record and decrements the
	// book's availability. Returns ErrBookNotFound or ErrBookUnavailable.
	OpenLoan(ctx context.Context, patronID string, bookID int64, borrowDate, dueDate time.Time) (*BorrowRecord, error)

	// CloseLoan atomically sets the return date on the most recently borrowed
	// open record for (patron, book) and increments the book's availability.
	// Exactly one record is closed. Returns ErrNoOpenLoan when none is open
	// and ErrCopiesExceedTotal when the counter is already at its ceiling.
	CloseLoan(ctx context.Context, patronID string, bookID int64, returnDate time.Time) (*BorrowRecord, error)

	// OpenLoansFor returns the patron's open loans with book titles,
	// ordered by borrow date ascending.
	OpenLoansFor(ctx context.Context, patronID string) ([]*OpenLoan, error)

	// LatestLoan returns the most recently borrowed record for (patron, book),
	// open or closed, or ErrNoLoanHistory.
	LatestLoan(ctx context.Context, patronID string, bookID int64) (*BorrowRecord, error)

	// HistoryFor returns every borrow record for the patron joined with book
	// titles, ordered by borrow date ascending.
	HistoryFor(ctx context.Context, patronID string) ([]*HistoryEntry, error)
}
