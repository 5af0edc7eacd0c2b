// internal/circulation/service.go
package circulation

import "context"

// Service defines the interface for the loan lifecycle service.
type Service interface {
	Borrow(ctx context.Context, patronID string, bookID int64) (*BorrowReceipt, error)
	Return(ctx context.Context, patronID string, bookID int64) (*ReturnReceipt, error)
}
