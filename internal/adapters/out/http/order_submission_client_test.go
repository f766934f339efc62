// internal/adapters/out/http/order_submission_client_test.go
package httpout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savora/internal/domain/cart"
	"savora/internal/domain/order"
)

func submissionPayload() order.Payload {
	return order.Payload{
		VendorID: cart.VendorID("vendor-a"),
		Items: []order.PayloadItem{
			{ItemID: "item-1", Quantity: 2},
		},
		DeliveryAddress: "1 Main St",
		DeliveryFee:     decimal.RequireFromString("4.25"),
		PaymentMethod:   "card",
		ClientRef:       "attempt-1-vendor-a",
	}
}

func TestOrderSubmissionClient_Submit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		var got order.Payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, cart.VendorID("vendor-a"), got.VendorID)
		assert.Equal(t, "attempt-1-vendor-a", got.ClientRef)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orderId":"ord-123"}`))
	}))
	defer srv.Close()

	c := NewOrderSubmissionClient(srv.URL, "tok-1")

	orderID, err := c.Submit(context.Background(), submissionPayload())
	require.NoError(t, err)
	assert.Equal(t, "ord-123", orderID)
}

func TestOrderSubmissionClient_NoAuthHeaderWhenTokenEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"orderId":"ord-1"}`))
	}))
	defer srv.Close()

	c := NewOrderSubmissionClient(srv.URL, "")

	_, err := c.Submit(context.Background(), submissionPayload())
	require.NoError(t, err)
}

func TestOrderSubmissionClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "vendor closed", http.StatusConflict)
	}))
	defer srv.Close()

	c := NewOrderSubmissionClient(srv.URL, "")

	_, err := c.Submit(context.Background(), submissionPayload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status=409")
}

func TestOrderSubmissionClient_EmptyOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"orderId":""}`))
	}))
	defer srv.Close()

	c := NewOrderSubmissionClient(srv.URL, "")

	_, err := c.Submit(context.Background(), submissionPayload())
	require.Error(t, err)
}

func TestOrderSubmissionClient_RejectsEmptyItems(t *testing.T) {
	c := NewOrderSubmissionClient("http://localhost:0", "")

	p := submissionPayload()
	p.Items = nil

	_, err := c.Submit(context.Background(), p)
	require.Error(t, err)
}
