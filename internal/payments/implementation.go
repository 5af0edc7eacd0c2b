// internal/payments/implementation.go
package payments

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"libracore/internal/fees"
	"libracore/internal/storage"
)

var patronIDPattern = regexp.MustCompile(`^\d{6}$`)

// service implements the Service interface.
type service struct {
	store   storage.Store
	gateway Gateway
	now     func() time.Time
}

// NewService creates a new payment settlement service instance. A nil
// clock defaults to time.Now.
func NewService(store storage.Store, gateway Gateway, now func() time.Time) Service {
	if now == nil {
		now = time.Now
	}
	return &service{store: store, gateway: gateway, now: now}
}

// PayLateFees assesses the outstanding fee for the patron's most recent
// loan of the book and settles it through the gateway with exactly one
// charge call. Gateway failures become GatewayError results; they are
// never propagated as faults.
func (s *service) PayLateFees(ctx context.Context, patronID string, bookID int64) (*PaymentReceipt, error) {
	if !patronIDPattern.MatchString(patronID) {
		return nil, ErrInvalidPatronID
	}

	assessment, feeErr := s.latestAssessment(ctx, patronID, bookID)

	book, err := s.store.BookByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, storage.ErrBookNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("lookup book %d: %w", bookID, err)
	}

	if feeErr != nil {
		return nil, ErrFeeUnavailable
	}
	if assessment.Amount <= 0 {
		return nil, ErrNoFeesOwed
	}

	memo := fmt.Sprintf("Late fees for %q", book.Title)
	receipt, err := s.gateway.Charge(ctx, patronID, assessment.Amount, memo)
	if err != nil {
		return nil, &GatewayError{Err: err}
	}

	return &PaymentReceipt{
		PatronID:      patronID,
		BookID:        bookID,
		Amount:        assessment.Amount,
		TransactionID: receipt.TransactionID,
		Message:       fmt.Sprintf("Payment of $%.2f processed successfully. Transaction ID: %s", assessment.Amount, receipt.TransactionID),
	}, nil
}

// RefundLateFee refunds a previous fee payment through the gateway with
// exactly one refund call. No single refund may exceed the fee cap.
// Idempotence and retries are the caller's responsibility.
func (s *service) RefundLateFee(ctx context.Context, transactionID string, amount float64) (*RefundReceipt, error) {
	if amount > fees.MaxFee {
		return nil, ErrRefundLimit
	}

	receipt, err := s.gateway.Refund(ctx, transactionID, amount)
	if err != nil {
		return nil, &GatewayError{Err: err}
	}
	return receipt, nil
}

// VerifyPayment looks up a transaction's status at the gateway.
func (s *service) VerifyPayment(ctx context.Context, transactionID string) (*Verification, error) {
	verification, err := s.gateway.Verify(ctx, transactionID)
	if err != nil {
		return nil, &GatewayError{Err: err}
	}
	return verification, nil
}

// latestAssessment computes the fee for the most recently borrowed record
// of (patron, book). No history means no debt.
func (s *service) latestAssessment(ctx context.Context, patronID string, bookID int64) (fees.Assessment, error) {
	rec, err := s.store.LatestLoan(ctx, patronID, bookID)
	if err != nil {
		if errors.Is(err, storage.ErrNoLoanHistory) {
			return fees.Zero(), nil
		}
		return fees.Assessment{}, err
	}
	return fees.AssessAt(rec.DueDate, rec.ReturnDate, s.now()), nil
}
