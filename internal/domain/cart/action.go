// internal/domain/cart/action.go
package cart

// Action is one cart transition request. The set is sealed: only the types
// in this file implement it.
type Action interface {
	isAction()
}

// AddItem puts Item into Vendor's cart.
//   - unknown vendor: a new VendorCart is created, seeded with
//     Vendor.BaseDeliveryFee
//   - same ItemID already present for that vendor: quantity +1, the stored
//     price/metadata win (first-seen wins; the incoming copy is dropped)
//   - otherwise: appended with Quantity = 1
type AddItem struct {
	Item   LineItem
	Vendor VendorRef
}

// UpdateQuantity sets the matching item's quantity to max(0, Quantity).
// Quantity 0 removes the item. Unknown vendor or item is a no-op.
type UpdateQuantity struct {
	VendorID VendorID
	ItemID   string
	Quantity int
}

// RemoveItem deletes the matching item if present. Unknown vendor or item is
// a no-op.
type RemoveItem struct {
	VendorID VendorID
	ItemID   string
}

// RemoveVendor drops one vendor's cart wholesale. Used by the checkout flow
// after that vendor's order submitted successfully.
type RemoveVendor struct {
	VendorID VendorID
}

// ClearCart resets to the canonical empty state (after a fully successful
// checkout, or an explicit clear).
type ClearCart struct{}

// LoadCart replaces the whole state with a previously persisted snapshot,
// verbatim. Hydration, not a merge; the snapshot is trusted as written by
// this same engine.
type LoadCart struct {
	Snapshot State
}

func (AddItem) isAction()        {}
func (UpdateQuantity) isAction() {}
func (RemoveItem) isAction()     {}
func (RemoveVendor) isAction()   {}
func (ClearCart) isAction()      {}
func (LoadCart) isAction()       {}
