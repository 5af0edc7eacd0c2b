// internal/clients/payment_client.go
package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/sony/gobreaker"

	"libracore/internal/payments"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PaymentClient implements payments.Gateway against a remote payment
// gateway over HTTP. Calls run through a circuit breaker so a flapping
// gateway fails fast instead of tying up every request.
type PaymentClient struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewPaymentClient creates a client for the gateway at baseURL.
func NewPaymentClient(baseURL string) *PaymentClient {
	return &PaymentClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "payment-gateway",
			Timeout: 30 * time.Second,
		}),
	}
}

type gatewayResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

func (c *PaymentClient) Charge(ctx context.Context, patronID string, amount float64, memo string) (*payments.ChargeReceipt, error) {
	body := struct {
		PatronID string  `json:"patron_id"`
		Amount   float64 `json:"amount"`
		Memo     string  `json:"memo"`
	}{patronID, amount, memo}

	resp, err := c.post(ctx, "/charge", body)
	if err != nil {
		return nil, err
	}
	return &payments.ChargeReceipt{
		TransactionID: resp.TransactionID,
		Message:       resp.Message,
	}, nil
}

func (c *PaymentClient) Refund(ctx context.Context, transactionID string, amount float64) (*payments.RefundReceipt, error) {
	body := struct {
		TransactionID string  `json:"transaction_id"`
		Amount        float64 `json:"amount"`
	}{transactionID, amount}

	resp, err := c.post(ctx, "/refund", body)
	if err != nil {
		return nil, err
	}
	return &payments.RefundReceipt{Message: resp.Message}, nil
}

func (c *PaymentClient) Verify(ctx context.Context, transactionID string) (*payments.Verification, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			fmt.Sprintf("%s/verify/%s", c.baseURL, url.PathEscape(transactionID)), nil)
		if err != nil {
			return nil, err
		}
		return c.do(req)
	})
	if err != nil {
		return nil, err
	}

	resp := result.(*gatewayResponse)
	return &payments.Verification{
		TransactionID: transactionID,
		Status:        resp.Status,
	}, nil
}

func (c *PaymentClient) post(ctx context.Context, path string, body any) (*gatewayResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return c.do(req)
	})
	if err != nil {
		return nil, err
	}

	resp := result.(*gatewayResponse)
	if !resp.Success {
		if resp.Message != "" {
			return nil, fmt.Errorf("%s", resp.Message)
		}
		return nil, fmt.Errorf("gateway declined the request")
	}
	return resp, nil
}

// do executes the request and decodes the gateway's envelope. A non-2xx
// status becomes an error carrying the gateway's message when one is given.
func (c *PaymentClient) do(req *http.Request) (*gatewayResponse, error) {
	httpResp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return nil, err
	}

	var resp gatewayResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("gateway returned status %d", httpResp.StatusCode)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		if resp.Message != "" {
			return nil, fmt.Errorf("%s", resp.Message)
		}
		return nil, fmt.Errorf("gateway returned status %d", httpResp.StatusCode)
	}
	return &resp, nil
}
