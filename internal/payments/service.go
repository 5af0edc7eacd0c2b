// internal/payments/service.go
package payments

import "context"

// Service defines the interface for the payment settlement service.
type Service interface {
	PayLateFees(ctx context.Context, patronID string, bookID int64) (*PaymentReceipt, error)
	RefundLateFee(ctx context.Context, transactionID string, amount float64) (*RefundReceipt, error)
	VerifyPayment(ctx context.Context, transactionID string) (*Verification, error)
}
