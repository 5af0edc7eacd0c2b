// internal/catalog/domain.go
package catalog

import "libracore/internal/storage"

// Row is the external-facing projection of a book used by listing and
// search. Actions carries "Borrow" only while copies are available.
type Row struct {
	BookID          int64  `json:"book_id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	ISBN            string `json:"isbn"`
	AvailableCopies int    `json:"available_copies"`
	TotalCopies     int    `json:"total_copies"`
	Actions         string `json:"actions"`
}

// AddReceipt is returned by a successful AddBook.
type AddReceipt struct {
	Book    *storage.Book `json:"book"`
	Message string        `json:"message"`
}

// ValidationError reports malformed catalog input. The text is the
// user-facing failure message.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func rowFromBook(b *storage.Book) Row {
	actions := ""
	if b.AvailableCopies > 0 {
		actions = "Borrow"
	}
	return Row{
		BookID:          b.ID,
		Title:           b.Title,
		Author:          b.Author,
		ISBN:            b.ISBN,
		AvailableCopies: b.AvailableCopies,
		TotalCopies:     b.TotalCopies,
		Actions:         actions,
	}
}
