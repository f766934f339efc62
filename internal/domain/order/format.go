// internal/domain/order/format.go
package order

import (
	"errors"

	"github.com/shopspring/decimal"

	"savora/internal/domain/cart"
)

// ErrEmptyCart means checkout was attempted with no vendors in the cart.
// Callers must check Format's error before any network call is made.
var ErrEmptyCart = errors.New("order: cart is empty")

// Format converts a cart snapshot, the delivery/customer context and the
// resolved delivery charges into submittable payload(s).
//
// Pure given its three inputs: no I/O, no clock, no randomness. One vendor
// yields Formatted.Single; more than one yields Formatted.Bundle with one
// independently fulfillable payload per vendor, in sorted vendor order.
//
// Per vendor the delivery fee is taken from charges[vendorID] when present,
// otherwise the fee stored on the vendor cart.
func Format(s cart.State, dctx DeliveryContext, charges map[cart.VendorID]ResolvedCharge) (Formatted, error) {
	if s.IsEmpty() {
		return Formatted{}, ErrEmptyCart
	}

	ids := s.VendorIDs()

	payloads := make([]Payload, 0, len(ids))
	totalFee := decimal.Zero
	for _, id := range ids {
		vc := s.Vendors[id]

		fee := vc.DeliveryFee
		if rc, ok := charges[id]; ok {
			fee = rc.Charge
		}
		totalFee = totalFee.Add(fee)

		items := make([]PayloadItem, 0, len(vc.Items))
		for _, it := range vc.Items {
			items = append(items, PayloadItem{
				ItemID:              it.ItemID,
				Quantity:            it.Quantity,
				SpecialInstructions: it.SpecialInstructions,
			})
		}

		payloads = append(payloads, Payload{
			VendorID:            id,
			Items:               items,
			DeliveryAddress:     dctx.DeliveryAddress,
			DeliveryFee:         fee,
			PaymentMethod:       dctx.PaymentMethod,
			SpecialInstructions: dctx.SpecialInstructions,
		})
	}

	if len(payloads) == 1 {
		return Formatted{Single: &payloads[0]}, nil
	}

	return Formatted{Bundle: &Bundle{
		MultipleOrders:   true,
		Orders:           payloads,
		TotalDeliveryFee: totalFee,
	}}, nil
}
