// internal/domain/order/payload.go
package order

import (
	"github.com/shopspring/decimal"

	"savora/internal/domain/cart"
)

// DeliveryContext is the customer/delivery side of a checkout: everything a
// submittable order needs besides the cart contents and the resolved fees.
type DeliveryContext struct {
	CustomerID          string `json:"customerId"`
	CustomerEmail       string `json:"customerEmail,omitempty"`
	DeliveryAddress     string `json:"deliveryAddress"`
	PaymentMethod       string `json:"paymentMethod"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// ResolvedCharge is one vendor's delivery-charge lookup result.
type ResolvedCharge struct {
	Charge     decimal.Decimal `json:"charge"`
	ETAMinutes int             `json:"etaMinutes"`
}

// PayloadItem is a line item as submitted. No pricing fields: price is
// authoritative server-side and is re-resolved by the receiving system,
// never trusted from the client snapshot.
type PayloadItem struct {
	ItemID              string `json:"itemId"`
	Quantity            int    `json:"quantity"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

// Payload is the unit the order submission endpoint accepts: one vendor's
// independently fulfillable order.
type Payload struct {
	VendorID            cart.VendorID   `json:"vendorId"`
	Items               []PayloadItem   `json:"items"`
	DeliveryAddress     string          `json:"deliveryAddress"`
	DeliveryFee         decimal.Decimal `json:"deliveryFee"`
	PaymentMethod       string          `json:"paymentMethod"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`

	// ClientRef ties the submission back to this checkout attempt.
	ClientRef string `json:"clientRef,omitempty"`
}

// Bundle is the multi-vendor checkout result: one payload per vendor.
// TotalDeliveryFee is the sum across the vendors' resolved charges, carried
// explicitly rather than re-derived from the orders.
type Bundle struct {
	MultipleOrders   bool            `json:"multipleOrders"`
	Orders           []Payload       `json:"orders"`
	TotalDeliveryFee decimal.Decimal `json:"totalDeliveryFee"`
}

// Formatted is the tagged output of Format: exactly one of Single or Bundle
// is set.
type Formatted struct {
	Single *Payload
	Bundle *Bundle
}

// Payloads flattens either branch into the submission list.
func (f Formatted) Payloads() []Payload {
	if f.Single != nil {
		return []Payload{*f.Single}
	}
	if f.Bundle != nil {
		return f.Bundle.Orders
	}
	return nil
}
