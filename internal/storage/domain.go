// internal/storage/domain.go
package storage

import (
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations. Callers match them
// with errors.Is; the text doubles as the user-facing failure message.
var (
	ErrBookNotFound      = errors.New("Book not found.")
	ErrDuplicateISBN     = errors.New("A book with this ISBN already exists.")
	ErrBookUnavailable   = errors.New("This book is currently not available.")
	ErrNoOpenLoan        = errors.New("No active borrow record for this patron and book.")
	ErrNoLoanHistory     = errors.New("no borrow history for this patron and book")
	ErrCopiesExceedTotal = errors.New("Available copies cannot exceed total copies.")
)

// Book is a catalog entry. AvailableCopies is only ever moved by the
// loan operations and stays within [0, TotalCopies].
type Book struct {
	ID              int64  `json:"book_id" db:"id"`
	Title           string `json:"title" db:"title"`
	Author          string `json:"author" db:"author"`
	ISBN            string `json:"isbn" db:"isbn"`
	TotalCopies     int    `json:"total_copies" db:"total_copies"`
	AvailableCopies int    `json:"available_copies" db:"available_copies"`
}

// BorrowRecord tracks one loan of one book by one patron.
// A nil ReturnDate means the loan is still open.
type BorrowRecord struct {
	ID         int64      `json:"id" db:"id"`
	PatronID   string     `json:"patron_id" db:"patron_id"`
	BookID     int64      `json:"book_id" db:"book_id"`
	BorrowDate time.Time  `json:"borrow_date" db:"borrow_date"`
	DueDate    time.Time  `json:"due_date" db:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty" db:"return_date"`
}

// Open reports whether the loan has not been returned yet.
func (r *BorrowRecord) Open() bool {
	return r.ReturnDate == nil
}

// OpenLoan is a patron's currently-open loan joined with the book title.
type OpenLoan struct {
	BookID     int64     `json:"book_id" db:"book_id"`
	Title      string    `json:"title" db:"title"`
	BorrowDate time.Time `json:"borrow_date" db:"borrow_date"`
	DueDate    time.Time `json:"due_date" db:"due_date"`
}

// HistoryEntry is one row of a patron's borrowing history, open or closed,
// joined with the book title.
type HistoryEntry struct {
	BookID     int64      `json:"book_id" db:"book_id"`
	Title      string     `json:"title" db:"title"`
	BorrowDate time.Time  `json:"borrow_date" db:"borrow_date"`
	ReturnDate *time.Time `json:"return_date,omitempty" db:"return_date"`
}
