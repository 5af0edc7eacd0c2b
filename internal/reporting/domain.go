// internal/reporting/domain.go
package reporting

// CurrentLoan is one open loan in a patron's status report.
type CurrentLoan struct {
	BookID  int64  `json:"book_id"`
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
}

// HistoryEntry is one row of borrowing history, open or closed.
// ReturnDate is nil while the loan is open.
type HistoryEntry struct {
	BookID     int64   `json:"book_id"`
	Title      string  `json:"title"`
	BorrowDate string  `json:"borrow_date"`
	ReturnDate *string `json:"return_date"`
}

// PatronReport aggregates a patron's current loans, outstanding fees and
// full borrowing history. Fees are summed over current loans only.
type PatronReport struct {
	PatronID      string         `json:"patron_id"`
	CurrentLoans  []CurrentLoan  `json:"current_loans"`
	TotalLateFees float64        `json:"total_late_fees"`
	BorrowedCount int            `json:"borrowed_count"`
	History       []HistoryEntry `json:"history"`
}
