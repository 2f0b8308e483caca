package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
)

// APIError is a non-2xx answer from the gateway. Callers use the status code
// to tell a card decline apart from a gateway outage.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsDecline reports whether the gateway rejected the request itself, as
// opposed to failing to process it.
func (e *APIError) IsDecline() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// Client talks to the external payment gateway over HTTP. The gateway keeps
// the card data and the remote ledger; locally we only ever hold the account
// and transaction identifiers it hands back.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a gateway client from an explicit configuration.
func NewClient(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewClientFromEnv creates a gateway client from environment configuration.
func NewClientFromEnv() (*Client, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return NewClient(cfg), nil
}

// CreateAccount registers a new account with the gateway under the given
// account id. The id is chosen by the caller and must not collide with an
// existing gateway account.
func (c *Client) CreateAccount(ctx context.Context, accountID int64, cardNumber, cvv string) error {
	payload := map[string]interface{}{
		"user_id":     accountID,
		"card_number": cardNumber,
		"cvv":         cvv,
	}
	return c.do(ctx, http.MethodPost, "/user", payload, nil)
}

// Charge debits the given amount against a gateway account and returns the
// gateway's transaction id. A response without a transaction id is an error:
// the id is the only audit linkage between local records and the remote
// ledger.
func (c *Client) Charge(ctx context.Context, accountID int64, amount decimal.Decimal) (string, error) {
	payload := map[string]interface{}{
		"user_id": accountID,
		"amount":  amount.InexactFloat64(),
	}

	var out struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/transaction", payload, &out); err != nil {
		return "", err
	}
	if strings.TrimSpace(out.TransactionID) == "" {
		return "", errors.New("gateway charge response is missing transaction_id")
	}
	return out.TransactionID, nil
}

// UpdatePaymentMethod replaces the card stored for a gateway account.
func (c *Client) UpdatePaymentMethod(ctx context.Context, accountID int64, cardNumber, cvv, holderName string) error {
	payload := map[string]interface{}{
		"card_number": cardNumber,
		"cvv":         cvv,
		"holder_name": holderName,
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/user/%d", accountID), payload, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode gateway request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build gateway request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("gateway %s %s: read response: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: snippet(raw)}
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("gateway %s %s: decode response: %w", method, path, err)
		}
	}
	return nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
