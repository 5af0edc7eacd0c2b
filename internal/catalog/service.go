// internal/catalog/service.go
package catalog

import "context"

// Service defines the interface for the catalog service.
type Service interface {
	AddBook(ctx context.Context, title, author, isbn string, totalCopies int) (*AddReceipt, error)
	CatalogView(ctx context.Context) ([]Row, error)
	Search(ctx context.Context, term, searchType string) ([]Row, error)
}
