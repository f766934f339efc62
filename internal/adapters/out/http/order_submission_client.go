// internal/adapters/out/http/order_submission_client.go
package httpout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"savora/internal/domain/order"
)

// OrderSubmissionClient implements the checkout's OrderSubmitter port.
//
// POST {baseURL}/orders with one vendor payload -> {"orderId":"..."}
//
// For a multi-vendor checkout the caller submits each payload independently;
// this client never sees the bundle.
type OrderSubmissionClient struct {
	baseURL   string
	authToken string
	client    *http.Client
}

// NewOrderSubmissionClient builds the client. authToken is the session/auth
// context attached to outgoing submissions; it may be empty for
// service-to-service deployments that authenticate at the mesh.
func NewOrderSubmissionClient(baseURL, authToken string) *OrderSubmissionClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return &OrderSubmissionClient{
		baseURL:   baseURL,
		authToken: strings.TrimSpace(authToken),
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *OrderSubmissionClient) Submit(ctx context.Context, p order.Payload) (string, error) {
	if c == nil {
		return "", fmt.Errorf("order submission client is nil")
	}
	if c.baseURL == "" {
		return "", fmt.Errorf("order submission baseURL is empty")
	}
	if len(p.Items) == 0 {
		return "", fmt.Errorf("order payload has no items")
	}

	b, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode order payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit order: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("submit order failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var res struct {
		OrderID string `json:"orderId"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}
	if strings.TrimSpace(res.OrderID) == "" {
		return "", fmt.Errorf("order response has empty orderId")
	}

	return res.OrderID, nil
}
