// internal/clients/payment_client_test.go
package clients

import (
	"context"
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentClientCharge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/charge", r.URL.Path)

		var req struct {
			PatronID string  `json:"patron_id"`
			Amount   float64 `json:"amount"`
			Memo     string  `json:"memo"`
		}
		require.NoError(t, stdjson.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "123456", req.PatronID)
		assert.InDelta(t, 2.50, req.Amount, 0.001)

		stdjson.NewEncoder(w).Encode(map[string]any{
			"success":        true,
			"transaction_id": "txn_123",
			"message":        "Success",
		})
	}))
	defer server.Close()

	client := NewPaymentClient(server.URL)
	receipt, err := client.Charge(context.Background(), "123456", 2.50, "Late fees")
	require.NoError(t, err)
	assert.Equal(t, "txn_123", receipt.TransactionID)
}

func TestPaymentClientChargeDeclined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stdjson.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Declined",
		})
	}))
	defer server.Close()

	client := NewPaymentClient(server.URL)
	_, err := client.Charge(context.Background(), "123456", 2.50, "Late fees")
	require.Error(t, err)
	assert.Equal(t, "Declined", err.Error())
}

func TestPaymentClientRefund(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/refund", r.URL.Path)
		stdjson.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "Refund success",
		})
	}))
	defer server.Close()

	client := NewPaymentClient(server.URL)
	receipt, err := client.Refund(context.Background(), "txn_001", 5.00)
	require.NoError(t, err)
	assert.Equal(t, "Refund success", receipt.Message)
}

func TestPaymentClientRefundGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		stdjson.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "Invalid transaction ID",
		})
	}))
	defer server.Close()

	client := NewPaymentClient(server.URL)
	_, err := client.Refund(context.Background(), "bogus", 5.00)
	require.Error(t, err)
	assert.Equal(t, "Invalid transaction ID", err.Error())
}

func TestPaymentClientVerify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/verify/txn_001", r.URL.Path)
		stdjson.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"status":  "completed",
		})
	}))
	defer server.Close()

	client := NewPaymentClient(server.URL)
	verification, err := client.Verify(context.Background(), "txn_001")
	require.NoError(t, err)
	assert.Equal(t, "completed", verification.Status)
	assert.Equal(t, "txn_001", verification.TransactionID)
}
