// internal/catalog/implementation.go
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"libracore/internal/storage"
)

const (
	maxTitleLen  = 200
	maxAuthorLen = 100
	isbnLen      = 13
)

// service implements the Service interface.
type service struct {
	store storage.Store
}

// NewService creates a new catalog service instance.
func NewService(store storage.Store) Service {
	return &service{store: store}
}

// AddBook validates the submitted fields and persists a new book with
// every copy available.
func (s *service) AddBook(ctx context.Context, title, author, isbn string, totalCopies int) (*AddReceipt, error) {
	title = strings.TrimSpace(title)
	author = strings.TrimSpace(author)

	// Limits count characters, not bytes.
	if title == "" {
		return nil, &ValidationError{msg: "Title is required."}
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, &ValidationError{msg: "Title must be less than 200 characters."}
	}
	if author == "" {
		return nil, &ValidationError{msg: "Author is required."}
	}
	if utf8.RuneCountInString(author) > maxAuthorLen {
		return nil, &ValidationError{msg: "Author must be less than 100 characters."}
	}
	if utf8.RuneCountInString(isbn) != isbnLen {
		return nil, &ValidationError{msg: "ISBN must be exactly 13 digits."}
	}
	if totalCopies <= 0 {
		return nil, &ValidationError{msg: "Total copies must be a positive integer."}
	}

	// Exact-match duplicate check; the unique constraint in the Postgres
	// store remains the backstop.
	if _, err := s.store.BookByISBN(ctx, isbn); err == nil {
		return nil, storage.ErrDuplicateISBN
	} else if !errors.Is(err, storage.ErrBookNotFound) {
		return nil, err
	}

	book, err := s.store.InsertBook(ctx, title, author, isbn, totalCopies)
	if err != nil {
		return nil, err
	}

	return &AddReceipt{
		Book:    book,
		Message: fmt.Sprintf("Book %q has been successfully added to the catalog.", title),
	}, nil
}

// CatalogView returns every book as a catalog row, in insertion order.
func (s *service) CatalogView(ctx context.Context) ([]Row, error) {
	books, err := s.store.AllBooks(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(books))
	for _, b := range books {
		rows = append(rows, rowFromBook(b))
	}
	return rows, nil
}

// Search filters the catalog by title, author or isbn. Title and author
// match case-insensitively on substrings; isbn matches exactly. Any other
// search type yields an empty result, not an error.
func (s *service) Search(ctx context.Context, term, searchType string) ([]Row, error) {
	term = strings.TrimSpace(term)
	searchType = strings.ToLower(strings.TrimSpace(searchType))

	var match func(b *storage.Book) bool
	switch searchType {
	case "isbn":
		match = func(b *storage.Book) bool {
			return b.ISBN == term
		}
	case "title":
		needle := strings.ToLower(term)
		match = func(b *storage.Book) bool {
			return strings.Contains(strings.ToLower(b.Title), needle)
		}
	case "author":
		needle := strings.ToLower(term)
		match = func(b *storage.Book) bool {
			return strings.Contains(strings.ToLower(b.Author), needle)
		}
	default:
		return []Row{}, nil
	}

	books, err := s.store.AllBooks(ctx)
	if err != nil {
		return nil, err
	}

	rows := []Row{}
	for _, b := range books {
		if match(b) {
			rows = append(rows, rowFromBook(b))
		}
	}
	return rows, nil
}
