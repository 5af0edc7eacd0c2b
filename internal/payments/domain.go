// internal/payments/domain.go
package payments

import (
	"context"
	"errors"
)

// Gateway is the external payment collaborator. Implementations return a
// non-nil error as the failure variant; the settlement service never lets
// a gateway fault propagate further than its own failure result.
type Gateway interface {
	// Charge collects amount from the patron's account. The gateway itself
	// rejects non-positive amounts, amounts over its transaction limit,
	// and malformed patron identifiers.
	Charge(ctx context.Context, patronID string, amount float64, memo string) (*ChargeReceipt, error)

	// Refund reverses a previous charge. The gateway rejects malformed
	// transaction identifiers.
	Refund(ctx context.Context, transactionID string, amount float64) (*RefundReceipt, error)

	// Verify reports the status of a transaction: "completed" or "not_found".
	Verify(ctx context.Context, transactionID string) (*Verification, error)
}

// ChargeReceipt is the gateway's answer to a successful charge.
type ChargeReceipt struct {
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// RefundReceipt is the gateway's answer to a successful refund.
type RefundReceipt struct {
	Message string `json:"message"`
}

// Verification is the gateway's answer to a status lookup.
type Verification struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

var (
	// ErrInvalidPatronID rejects patron identifiers that are not exactly
	// six digits, before the fee is even computed.
	ErrInvalidPatronID = errors.New("Invalid patron ID. Must be exactly 6 digits.")

	// ErrFeeUnavailable reports that the fee assessment could not be
	// computed from the stored records.
	ErrFeeUnavailable = errors.New("Unable to calculate late fee.")

	// ErrNoFeesOwed reports a computed fee of zero or less. A negative
	// fee is treated as nothing owed, not as a failure of its own.
	ErrNoFeesOwed = errors.New("No late fees owed for this book.")

	// ErrRefundLimit rejects refunds above the maximum possible late fee.
	ErrRefundLimit = errors.New("Refund amount exceeds the maximum late fee of $15.00.")
)

// GatewayError wraps a failure reported by the payment gateway so callers
// can distinguish it from local validation failures. The message is the
// gateway's own.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return e.Err.Error()
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// PaymentReceipt is returned by a successful fee payment.
type PaymentReceipt struct {
	PatronID      string  `json:"patron_id"`
	BookID        int64   `json:"book_id"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transaction_id"`
	Message       string  `json:"message"`
}
