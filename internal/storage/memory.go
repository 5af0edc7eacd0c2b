// internal/storage/memory.go
package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store used by tests and by the API binary
// when it runs without a database. It enforces the same invariants as
// the Postgres implementation.
type MemoryStore struct {
	mu       sync.Mutex
	books    []*Book
	byISBN   map[string]*Book
	records  []*BorrowRecord
	nextBook int64
	nextRec  int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byISBN:   make(map[string]*Book),
		nextBook: 1,
		nextRec:  1,
	}
}

func (m *MemoryStore) BookByID(_ context.Context, id int64) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.findBook(id)
	if b == nil {
		return nil, ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *MemoryStore) BookByISBN(_ context.Context, isbn string) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.byISBN[isbn]
	if !ok {
		return nil, ErrBookNotFound
	}
	copied := *b
	return &copied, nil
}

func (m *MemoryStore) AllBooks(_ context.Context) ([]*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	books := make([]*Book, 0, len(m.books))
	for _, b := range m.books {
		copied := *b
		books = append(books, &copied)
	}
	return books, nil
}

func (m *MemoryStore) InsertBook(_ context.Context, title, author, isbn string, totalCopies int) (*Book, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byISBN[isbn]; exists {
		return nil, ErrDuplicateISBN
	}

	b := &Book{
		ID:              m.nextBook,
		Title:           title,
		Author:          author,
		ISBN:            isbn,
		TotalCopies:     totalCopies,
		AvailableCopies: totalCopies,
	}
	m.nextBook++
	m.books = append(m.books, b)
	m.byISBN[isbn] = b

	copied := *b
	return &copied, nil
}

func (m *MemoryStore) OpenLoanCount(_ context.Context, patronID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, r := range m.records {
		if r.PatronID == patronID && r.Open() {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) OpenLoan(_ context.Context, patronID string, bookID int64, borrowDate, dueDate time.Time) (*BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.findBook(bookID)
	if b == nil {
		return nil, ErrBookNotFound
	}
	if b.AvailableCopies <= 0 {
		return nil, ErrBookUnavailable
	}

	b.AvailableCopies--
	rec := &BorrowRecord{
		ID:         m.nextRec,
		PatronID:   patronID,
		BookID:     bookID,
		BorrowDate: borrowDate,
		DueDate:    dueDate,
	}
	m.nextRec++
	m.records = append(m.records, rec)

	copied := *rec
	return &copied, nil
}

func (m *MemoryStore) CloseLoan(_ context.Context, patronID string, bookID int64, returnDate time.Time) (*BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := m.findBook(bookID)
	if b == nil {
		return nil, ErrBookNotFound
	}

	// Most recently borrowed open record wins.
	var open *BorrowRecord
	for _, r := range m.records {
		if r.PatronID != patronID || r.BookID != bookID || !r.Open() {
			continue
		}
		if open == nil || r.BorrowDate.After(open.BorrowDate) {
			open = r
		}
	}
	if open == nil {
		return nil, ErrNoOpenLoan
	}
	if b.AvailableCopies >= b.TotalCopies {
		return nil, ErrCopiesExceedTotal
	}

	rd := returnDate
	open.ReturnDate = &rd
	b.AvailableCopies++

	copied := *open
	return &copied, nil
}

func (m *MemoryStore) OpenLoansFor(_ context.Context, patronID string) ([]*OpenLoan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loans := []*OpenLoan{}
	for _, r := range m.records {
		if r.PatronID != patronID || !r.Open() {
			continue
		}
		title := ""
		if b := m.findBook(r.BookID); b != nil {
			title = b.Title
		}
		loans = append(loans, &OpenLoan{
			BookID:     r.BookID,
			Title:      title,
			BorrowDate: r.BorrowDate,
			DueDate:    r.DueDate,
		})
	}
	sort.SliceStable(loans, func(i, j int) bool {
		return loans[i].BorrowDate.Before(loans[j].BorrowDate)
	})
	return loans, nil
}

func (m *MemoryStore) LatestLoan(_ context.Context, patronID string, bookID int64) (*BorrowRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var latest *BorrowRecord
	for _, r := range m.records {
		if r.PatronID != patronID || r.BookID != bookID {
			continue
		}
		if latest == nil || r.BorrowDate.After(latest.BorrowDate) {
			latest = r
		}
	}
	if latest == nil {
		return nil, ErrNoLoanHistory
	}
	copied := *latest
	return &copied, nil
}

func (m *MemoryStore) HistoryFor(_ context.Context, patronID string) ([]*HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	history := []*HistoryEntry{}
	for _, r := range m.records {
		if r.PatronID != patronID {
			continue
		}
		title := ""
		if b := m.findBook(r.BookID); b != nil {
			title = b.Title
		}
		entry := &HistoryEntry{
			BookID:     r.BookID,
			Title:      title,
			BorrowDate: r.BorrowDate,
		}
		if r.ReturnDate != nil {
			rd := *r.ReturnDate
			entry.ReturnDate = &rd
		}
		history = append(history, entry)
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].BorrowDate.Before(history[j].BorrowDate)
	})
	return history, nil
}

// findBook must be called with the mutex held.
func (m *MemoryStore) findBook(id int64) *Book {
	for _, b := range m.books {
		if b.ID == id {
			return b
		}
	}
	return nil
}
