// internal/domain/cart/state.go
package cart

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// VendorID identifies a restaurant. Always a normalized string; never an
// object id wrapper.
type VendorID string

// NormalizeVendorID trims whitespace. Empty after trimming means "no vendor".
func NormalizeVendorID(s string) VendorID {
	return VendorID(strings.TrimSpace(s))
}

// LineItem is one selection inside a vendor's cart.
// Identity is ItemID; uniqueness is enforced per vendor.
type LineItem struct {
	ItemID              string          `json:"itemId"`
	Name                string          `json:"name"`
	UnitPrice           decimal.Decimal `json:"unitPrice"`
	Quantity            int             `json:"quantity"`
	Vegetarian          bool            `json:"vegetarian,omitempty"`
	SpecialInstructions string          `json:"specialInstructions,omitempty"`
}

// VendorRef carries the vendor metadata the cart needs to seed a new
// VendorCart. Display-only fields ride along untouched.
type VendorRef struct {
	VendorID        VendorID        `json:"vendorId"`
	Name            string          `json:"name"`
	BaseDeliveryFee decimal.Decimal `json:"baseDeliveryFee"`
}

// VendorCart groups the line items of a single vendor.
//
// Invariant: Subtotal == Σ(item.UnitPrice * item.Quantity) over Items,
// recomputed on every mutation that touches this vendor.
type VendorCart struct {
	Vendor      VendorRef       `json:"vendor"`
	Items       []LineItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
}

// State is the whole in-progress cart across vendors.
//
// Invariants (hold after every transition):
//  1. TotalItemCount == Σ quantities over all vendors
//  2. TotalAmount    == Σ vendor subtotals
//  3. TotalDeliveryFee == Σ vendor delivery fees
//  4. no vendor entry with an empty item list
//  5. no line item with Quantity <= 0
type State struct {
	Vendors          map[VendorID]VendorCart `json:"vendors"`
	TotalItemCount   int                     `json:"totalItemCount"`
	TotalAmount      decimal.Decimal         `json:"totalAmount"`
	TotalDeliveryFee decimal.Decimal         `json:"totalDeliveryFee"`
}

// Empty returns the canonical empty state.
func Empty() State {
	return State{
		Vendors:          map[VendorID]VendorCart{},
		TotalItemCount:   0,
		TotalAmount:      decimal.Zero,
		TotalDeliveryFee: decimal.Zero,
	}
}

// IsEmpty reports whether no vendor is represented in the cart.
func (s State) IsEmpty() bool {
	return len(s.Vendors) == 0
}

// VendorIDs returns the vendors currently represented, sorted for
// deterministic iteration (map order is irrelevant to the model).
func (s State) VendorIDs() []VendorID {
	ids := make([]VendorID, 0, len(s.Vendors))
	for id := range s.Vendors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Clone returns a deep copy. Decimal values are immutable, so copying the
// struct fields is enough; item slices and the vendor map are re-allocated.
func (s State) Clone() State {
	out := State{
		Vendors:          make(map[VendorID]VendorCart, len(s.Vendors)),
		TotalItemCount:   s.TotalItemCount,
		TotalAmount:      s.TotalAmount,
		TotalDeliveryFee: s.TotalDeliveryFee,
	}
	for id, vc := range s.Vendors {
		items := make([]LineItem, len(vc.Items))
		copy(items, vc.Items)
		vc.Items = items
		out.Vendors[id] = vc
	}
	return out
}

// recomputeTotals rebuilds every derived field from scratch.
// Called by the reducer after each mutation; never trusts incremental math.
func (s *State) recomputeTotals() {
	count := 0
	amount := decimal.Zero
	fees := decimal.Zero

	for id, vc := range s.Vendors {
		subtotal := decimal.Zero
		for _, it := range vc.Items {
			subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
			count += it.Quantity
		}
		vc.Subtotal = subtotal
		s.Vendors[id] = vc

		amount = amount.Add(subtotal)
		fees = fees.Add(vc.DeliveryFee)
	}

	s.TotalItemCount = count
	s.TotalAmount = amount
	s.TotalDeliveryFee = fees
}
