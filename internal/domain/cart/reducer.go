// internal/domain/cart/reducer.go
package cart

import "strings"

// Apply is the cart mutation engine: (state, action) -> state'.
//
// Pure and total: no I/O, no side effects, inputs are never mutated, and no
// action ever fails. Actions referencing unknown vendors or items are no-ops.
// Business validation (stock, vendor open hours, ...) does not belong here;
// that is a checkout-time concern of the callers.
func Apply(s State, a Action) State {
	switch act := a.(type) {
	case AddItem:
		return applyAddItem(s, act)
	case UpdateQuantity:
		return applyUpdateQuantity(s, act)
	case RemoveItem:
		return applyUpdateQuantityTo(s, act.VendorID, act.ItemID, 0)
	case RemoveVendor:
		return applyRemoveVendor(s, act)
	case ClearCart:
		return Empty()
	case LoadCart:
		return act.Snapshot.Clone()
	default:
		// unreachable while the action set stays sealed
		return s.Clone()
	}
}

func applyAddItem(s State, act AddItem) State {
	next := s.Clone()
	if next.Vendors == nil {
		next.Vendors = map[VendorID]VendorCart{}
	}

	vid := NormalizeVendorID(string(act.Vendor.VendorID))
	itemID := strings.TrimSpace(act.Item.ItemID)
	if vid == "" || itemID == "" {
		return next
	}

	vc, ok := next.Vendors[vid]
	if !ok {
		ref := act.Vendor
		ref.VendorID = vid
		vc = VendorCart{
			Vendor:      ref,
			Items:       []LineItem{},
			DeliveryFee: ref.BaseDeliveryFee,
		}
	}

	if idx := findItem(vc.Items, itemID); idx >= 0 {
		// first-seen wins: only the quantity moves, price/metadata stay as
		// stored. A catalog price change mid-session is NOT picked up here.
		vc.Items[idx].Quantity++
	} else {
		it := act.Item
		it.ItemID = itemID
		it.Quantity = 1
		vc.Items = append(vc.Items, it)
	}

	next.Vendors[vid] = vc
	next.recomputeTotals()
	return next
}

func applyUpdateQuantity(s State, act UpdateQuantity) State {
	qty := act.Quantity
	if qty < 0 {
		qty = 0
	}
	return applyUpdateQuantityTo(s, act.VendorID, act.ItemID, qty)
}

// applyUpdateQuantityTo is shared by UpdateQuantity and RemoveItem
// (remove ≡ set quantity to 0).
func applyUpdateQuantityTo(s State, vendorID VendorID, itemID string, qty int) State {
	next := s.Clone()

	vid := NormalizeVendorID(string(vendorID))
	id := strings.TrimSpace(itemID)

	vc, ok := next.Vendors[vid]
	if !ok {
		return next
	}
	idx := findItem(vc.Items, id)
	if idx < 0 {
		return next
	}

	if qty == 0 {
		vc.Items = append(vc.Items[:idx], vc.Items[idx+1:]...)
	} else {
		vc.Items[idx].Quantity = qty
	}

	if len(vc.Items) == 0 {
		delete(next.Vendors, vid)
	} else {
		next.Vendors[vid] = vc
	}

	next.recomputeTotals()
	return next
}

func applyRemoveVendor(s State, act RemoveVendor) State {
	next := s.Clone()
	vid := NormalizeVendorID(string(act.VendorID))
	if _, ok := next.Vendors[vid]; !ok {
		return next
	}
	delete(next.Vendors, vid)
	next.recomputeTotals()
	return next
}

func findItem(items []LineItem, itemID string) int {
	for i := range items {
		if items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}
