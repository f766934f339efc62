// internal/adapters/out/http/delivery_resolver_client.go
package httpout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"savora/internal/domain/cart"
	"savora/internal/domain/order"
)

// DeliveryResolverClient implements the checkout's DeliveryResolver port
// against the delivery-zone service.
//
// GET {baseURL}/delivery/charges/{vendorId} -> {"charge":"4.25","etaMinutes":30}
//
// The per-call deadline is owned by the caller's context; the client timeout
// is a safety net only.
type DeliveryResolverClient struct {
	baseURL string
	client  *http.Client
}

func NewDeliveryResolverClient(baseURL string) *DeliveryResolverClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	return &DeliveryResolverClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *DeliveryResolverClient) Resolve(ctx context.Context, vendorID cart.VendorID) (order.ResolvedCharge, error) {
	if c == nil {
		return order.ResolvedCharge{}, fmt.Errorf("delivery resolver client is nil")
	}
	if c.baseURL == "" {
		return order.ResolvedCharge{}, fmt.Errorf("delivery resolver baseURL is empty")
	}

	vid := strings.TrimSpace(string(vendorID))
	if vid == "" {
		return order.ResolvedCharge{}, fmt.Errorf("vendorID is empty")
	}

	reqURL := c.baseURL + "/delivery/charges/" + url.PathEscape(vid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return order.ResolvedCharge{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return order.ResolvedCharge{}, fmt.Errorf("resolve delivery charge: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return order.ResolvedCharge{}, fmt.Errorf("resolve delivery charge failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var res struct {
		Charge     decimal.Decimal `json:"charge"`
		ETAMinutes int             `json:"etaMinutes"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return order.ResolvedCharge{}, fmt.Errorf("decode delivery charge response: %w", err)
	}

	return order.ResolvedCharge{Charge: res.Charge, ETAMinutes: res.ETAMinutes}, nil
}
