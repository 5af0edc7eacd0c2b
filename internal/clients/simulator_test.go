// internal/clients/simulator_test.go
package clients

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatedGatewayChargeAndVerify(t *testing.T) {
	ctx := context.Background()
	gateway := NewSimulatedGateway(1000.00)

	receipt, err := gateway.Charge(ctx, "123456", 10.00, "Late fees")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(receipt.TransactionID, "txn_"))

	v, err := gateway.Verify(ctx, receipt.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "completed", v.Status)

	v, err = gateway.Verify(ctx, "txn_unknown")
	require.NoError(t, err)
	assert.Equal(t, "not_found", v.Status)
}

func TestSimulatedGatewayChargeRejections(t *testing.T) {
	ctx := context.Background()
	gateway := NewSimulatedGateway(1000.00)

	_, err := gateway.Charge(ctx, "123456", 0, "memo")
	assert.EqualError(t, err, "Invalid amount")

	_, err = gateway.Charge(ctx, "123456", 1000.01, "memo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction limit")

	_, err = gateway.Charge(ctx, "12ab56", 5.00, "memo")
	assert.EqualError(t, err, "Invalid patron ID")
}

func TestSimulatedGatewayRefund(t *testing.T) {
	ctx := context.Background()
	gateway := NewSimulatedGateway(1000.00)

	receipt, err := gateway.Charge(ctx, "123456", 10.00, "Late fees")
	require.NoError(t, err)

	refund, err := gateway.Refund(ctx, receipt.TransactionID, 10.00)
	require.NoError(t, err)
	assert.Contains(t, refund.Message, "Refund")

	_, err = gateway.Refund(ctx, "abc", 5.00)
	assert.EqualError(t, err, "Invalid transaction ID")

	_, err = gateway.Refund(ctx, "txn_unknown", 5.00)
	assert.EqualError(t, err, "Transaction not found")

	_, err = gateway.Refund(ctx, receipt.TransactionID, -1)
	assert.EqualError(t, err, "Invalid refund amount")
}
