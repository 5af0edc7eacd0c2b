// internal/clients/simulator.go
package clients

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"libracore/internal/payments"
)

var patronIDPattern = regexp.MustCompile(`^\d{6}$`)

// SimulatedGateway is an in-process payments.Gateway used when no real
// gateway is configured. It applies the same front-door checks a real
// gateway would: positive amounts, a transaction limit, well-formed
// patron and transaction identifiers.
type SimulatedGateway struct {
	mu               sync.Mutex
	transactionLimit float64
	charges          map[string]float64
}

// NewSimulatedGateway creates a gateway that declines single charges
// above transactionLimit.
func NewSimulatedGateway(transactionLimit float64) *SimulatedGateway {
	return &SimulatedGateway{
		transactionLimit: transactionLimit,
		charges:          make(map[string]float64),
	}
}

func (g *SimulatedGateway) Charge(_ context.Context, patronID string, amount float64, _ string) (*payments.ChargeReceipt, error) {
	if amount <= 0 {
		return nil, errors.New("Invalid amount")
	}
	if amount > g.transactionLimit {
		return nil, fmt.Errorf("Amount exceeds transaction limit of $%.2f", g.transactionLimit)
	}
	if !patronIDPattern.MatchString(patronID) {
		return nil, errors.New("Invalid patron ID")
	}

	transactionID := "txn_" + uuid.NewString()

	g.mu.Lock()
	g.charges[transactionID] = amount
	g.mu.Unlock()

	return &payments.ChargeReceipt{
		TransactionID: transactionID,
		Message:       "Payment processed successfully",
	}, nil
}

// Refund requires a transaction id this gateway actually issued. That is
// stricter than a permissive stub, which would accept any well-formed id;
// the tightening keeps the not-found path exercisable in local runs.
func (g *SimulatedGateway) Refund(_ context.Context, transactionID string, amount float64) (*payments.RefundReceipt, error) {
	if len(transactionID) < 5 || transactionID[:4] != "txn_" {
		return nil, errors.New("Invalid transaction ID")
	}
	if amount <= 0 {
		return nil, errors.New("Invalid refund amount")
	}

	g.mu.Lock()
	_, known := g.charges[transactionID]
	g.mu.Unlock()
	if !known {
		return nil, errors.New("Transaction not found")
	}

	return &payments.RefundReceipt{Message: "Refund processed successfully"}, nil
}

func (g *SimulatedGateway) Verify(_ context.Context, transactionID string) (*payments.Verification, error) {
	g.mu.Lock()
	_, known := g.charges[transactionID]
	g.mu.Unlock()

	status := "not_found"
	if known {
		status = "completed"
	}
	return &payments.Verification{TransactionID: transactionID, Status: status}, nil
}
