// internal/circulation/domain.go
package circulation

import (
	"errors"
	"time"

	"libracore/internal/fees"
)

// MaxOpenLoans is the borrowing cap: a patron may hold at most this many
// open loans at once.
const MaxOpenLoans = 5

var (
	// ErrInvalidPatronID rejects patron identifiers that are not exactly
	// six digits, before storage is touched.
	ErrInvalidPatronID = errors.New("Invalid patron ID. Must be exactly 6 digits.")

	// ErrBorrowLimitReached rejects a borrow when the patron already holds
	// MaxOpenLoans open loans.
	ErrBorrowLimitReached = errors.New("You have reached the maximum borrowing limit of 5 books.")
)

// BorrowReceipt is returned by a successful borrow.
type BorrowReceipt struct {
	PatronID string    `json:"patron_id"`
	BookID   int64     `json:"book_id"`
	Title    string    `json:"title"`
	DueDate  time.Time `json:"due_date"`
	Message  string    `json:"message"`
}

// ReturnReceipt is returned by a successful return. Fee reports the
// assessment for the just-closed loan; a zero amount means on time.
type ReturnReceipt struct {
	PatronID string          `json:"patron_id"`
	BookID   int64           `json:"book_id"`
	Fee      fees.Assessment `json:"fee"`
	Message  string          `json:"message"`
}
