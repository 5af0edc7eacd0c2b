// cmd/api/api_test.go
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libracore/internal/catalog"
	"libracore/internal/circulation"
	"libracore/internal/clients"
	"libracore/internal/payments"
	"libracore/internal/reporting"
	"libracore/internal/storage"
)

var testNow = time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

func newTestApplication(t *testing.T) (*application, *storage.MemoryStore) {
	t.Helper()

	store := storage.NewMemoryStore()
	gateway := clients.NewSimulatedGateway(1000.00)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	app := &application{
		config:      config{env: "test"},
		logger:      logger,
		catalog:     catalog.NewHandler(catalog.NewService(store), logger),
		circulation: circulation.NewHandler(circulation.NewService(store, fixedClock), logger),
		reporting:   reporting.NewHandler(reporting.NewService(store, fixedClock), logger),
		payments:    payments.NewHandler(payments.NewService(store, gateway, fixedClock), logger),
	}
	return app, store
}

func doJSON(t *testing.T, server *httptest.Server, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func TestBorrowReturnFlow(t *testing.T) {
	app, _ := newTestApplication(t)
	server := httptest.NewServer(app.routes())
	defer server.Close()

	status, body := doJSON(t, server, http.MethodPost, "/books", map[string]any{
		"title":        "The Go Programming Language",
		"author":       "Donovan & Kernighan",
		"isbn":         "9780134190440",
		"total_copies": 2,
	})
	require.Equal(t, http.StatusCreated, status)
	require.Equal(t, true, body["success"])
	bookID := int64(body["book"].(map[string]any)["book_id"].(float64))

	status, body = doJSON(t, server, http.MethodGet, "/books", nil)
	require.Equal(t, http.StatusOK, status)
	books := body["books"].([]any)
	require.Len(t, books, 1)
	assert.Equal(t, "Borrow", books[0].(map[string]any)["actions"])

	status, body = doJSON(t, server, http.MethodPost, "/loans", map[string]any{
		"patron_id": "123456",
		"book_id":   bookID,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Contains(t, body["message"], "Successfully borrowed")
	assert.Contains(t, body["message"], testNow.AddDate(0, 0, 14).Format("2006-01-02"))

	status, body = doJSON(t, server, http.MethodGet, "/patrons/123456/report", nil)
	require.Equal(t, http.StatusOK, status)
	report := body["report"].(map[string]any)
	assert.Equal(t, float64(1), report["borrowed_count"])
	assert.Equal(t, float64(0), report["total_late_fees"])

	status, body = doJSON(t, server, http.MethodPost, "/returns", map[string]any{
		"patron_id": "123456",
		"book_id":   bookID,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Book returned successfully.", body["message"])

	// A second return finds nothing open.
	status, body = doJSON(t, server, http.MethodPost, "/returns", map[string]any{
		"patron_id": "123456",
		"book_id":   bookID,
	})
	require.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "No active borrow record for this patron and book.", body["message"])
}

func TestLateFeePaymentFlow(t *testing.T) {
	app, store := newTestApplication(t)
	server := httptest.NewServer(app.routes())
	defer server.Close()

	ctx := context.Background()
	book, err := store.InsertBook(ctx, "Overdue Book", "Some Author", "1234567890123", 1)
	require.NoError(t, err)

	// 5 days overdue: $2.50.
	borrow := testNow.AddDate(0, 0, -19)
	_, err = store.OpenLoan(ctx, "123456", book.ID, borrow, borrow.AddDate(0, 0, 14))
	require.NoError(t, err)

	status, body := doJSON(t, server, http.MethodPost, "/payments", map[string]any{
		"patron_id": "123456",
		"book_id":   book.ID,
	})
	require.Equal(t, http.StatusCreated, status)
	assert.Contains(t, body["message"], "$2.50")
	payment := body["payment"].(map[string]any)
	transactionID := payment["transaction_id"].(string)
	require.NotEmpty(t, transactionID)

	status, body = doJSON(t, server, http.MethodGet, "/payments/"+transactionID, nil)
	require.Equal(t, http.StatusOK, status)
	verification := body["verification"].(map[string]any)
	assert.Equal(t, "completed", verification["status"])

	status, body = doJSON(t, server, http.MethodPost, "/refunds", map[string]any{
		"transaction_id": transactionID,
		"amount":         2.50,
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])

	// Refunds above the fee cap never reach the gateway.
	status, body = doJSON(t, server, http.MethodPost, "/refunds", map[string]any{
		"transaction_id": transactionID,
		"amount":         20.00,
	})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Refund amount exceeds the maximum late fee of $15.00.", body["message"])
}

func TestUnknownBookIs404(t *testing.T) {
	app, _ := newTestApplication(t)
	server := httptest.NewServer(app.routes())
	defer server.Close()

	status, body := doJSON(t, server, http.MethodPost, "/loans", map[string]any{
		"patron_id": "123456",
		"book_id":   999,
	})
	require.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Book not found.", body["message"])
}
