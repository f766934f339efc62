// internal/domain/cart/reducer_test.go
package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func vendorA() VendorRef {
	return VendorRef{VendorID: "vendor-a", Name: "Taco Alley", BaseDeliveryFee: dec("3.50")}
}

func vendorB() VendorRef {
	return VendorRef{VendorID: "vendor-b", Name: "Pho Corner", BaseDeliveryFee: dec("2.00")}
}

func burger() LineItem {
	return LineItem{ItemID: "burger", Name: "Classic Burger", UnitPrice: dec("10")}
}

func springRolls() LineItem {
	return LineItem{ItemID: "rolls", Name: "Spring Rolls", UnitPrice: dec("5"), Vegetarian: true}
}

// checkInvariants recomputes every derived field from scratch and compares.
func checkInvariants(t *testing.T, s State) {
	t.Helper()

	count := 0
	amount := decimal.Zero
	fees := decimal.Zero
	for _, vc := range s.Vendors {
		require.NotEmpty(t, vc.Items, "vendor with empty item list must not exist")
		subtotal := decimal.Zero
		for _, it := range vc.Items {
			require.Greater(t, it.Quantity, 0, "item with quantity <= 0 must not exist")
			subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
			count += it.Quantity
		}
		assert.True(t, vc.Subtotal.Equal(subtotal), "vendor subtotal: got %s want %s", vc.Subtotal, subtotal)
		amount = amount.Add(subtotal)
		fees = fees.Add(vc.DeliveryFee)
	}
	assert.Equal(t, count, s.TotalItemCount)
	assert.True(t, s.TotalAmount.Equal(amount), "total amount: got %s want %s", s.TotalAmount, amount)
	assert.True(t, s.TotalDeliveryFee.Equal(fees), "total delivery fee: got %s want %s", s.TotalDeliveryFee, fees)
}

func TestApplyAddItem(t *testing.T) {
	s := Apply(Empty(), AddItem{Item: burger(), Vendor: vendorA()})
	checkInvariants(t, s)

	require.Len(t, s.Vendors, 1)
	vc := s.Vendors["vendor-a"]
	require.Len(t, vc.Items, 1)
	assert.Equal(t, 1, vc.Items[0].Quantity)
	assert.True(t, s.TotalAmount.Equal(dec("10")))
	assert.Equal(t, 1, s.TotalItemCount)
	assert.True(t, vc.DeliveryFee.Equal(dec("3.50")), "new vendor cart seeded with base delivery fee")
}

func TestApplyAddItemTwiceMergesQuantity(t *testing.T) {
	s := Apply(Empty(), AddItem{Item: springRolls(), Vendor: vendorA()})
	s = Apply(s, AddItem{Item: springRolls(), Vendor: vendorA()})
	checkInvariants(t, s)

	vc := s.Vendors["vendor-a"]
	require.Len(t, vc.Items, 1, "duplicate itemId must merge, never duplicate the entry")
	assert.Equal(t, 2, vc.Items[0].Quantity)
	assert.True(t, vc.Subtotal.Equal(dec("10")))
	assert.Equal(t, 2, s.TotalItemCount)
}

func TestApplyAddItemFirstSeenWins(t *testing.T) {
	s := Apply(Empty(), AddItem{Item: burger(), Vendor: vendorA()})

	repriced := burger()
	repriced.UnitPrice = dec("12")
	repriced.Name = "Deluxe Burger"
	s = Apply(s, AddItem{Item: repriced, Vendor: vendorA()})
	checkInvariants(t, s)

	vc := s.Vendors["vendor-a"]
	require.Len(t, vc.Items, 1)
	assert.True(t, vc.Items[0].UnitPrice.Equal(dec("10")), "stored price wins over the incoming copy")
	assert.Equal(t, "Classic Burger", vc.Items[0].Name)
	assert.Equal(t, 2, vc.Items[0].Quantity)
}

func TestApplyUpdateQuantity(t *testing.T) {
	base := Apply(Empty(), AddItem{Item: burger(), Vendor: vendorA()})

	t.Run("sets quantity", func(t *testing.T) {
		s := Apply(base, UpdateQuantity{VendorID: "vendor-a", ItemID: "burger", Quantity: 3})
		checkInvariants(t, s)
		assert.Equal(t, 3, s.TotalItemCount)
		assert.True(t, s.TotalAmount.Equal(dec("30")))
	})

	t.Run("zero removes item and empty vendor", func(t *testing.T) {
		s := Apply(base, UpdateQuantity{VendorID: "vendor-a", ItemID: "burger", Quantity: 0})
		checkInvariants(t, s)
		assert.Empty(t, s.Vendors)
		assert.Equal(t, 0, s.TotalItemCount)
	})

	t.Run("negative clamps to zero", func(t *testing.T) {
		s := Apply(base, UpdateQuantity{VendorID: "vendor-a", ItemID: "burger", Quantity: -4})
		checkInvariants(t, s)
		assert.Empty(t, s.Vendors)
	})

	t.Run("unknown vendor is a no-op", func(t *testing.T) {
		s := Apply(base, UpdateQuantity{VendorID: "nope", ItemID: "burger", Quantity: 5})
		checkInvariants(t, s)
		assert.Equal(t, base.TotalItemCount, s.TotalItemCount)
		assert.True(t, s.TotalAmount.Equal(base.TotalAmount))
	})

	t.Run("unknown item is a no-op", func(t *testing.T) {
		s := Apply(base, UpdateQuantity{VendorID: "vendor-a", ItemID: "nope", Quantity: 5})
		checkInvariants(t, s)
		assert.Equal(t, base.TotalItemCount, s.TotalItemCount)
	})
}

func TestApplyUpdateQuantityZeroEqualsRemove(t *testing.T) {
	base := Apply(Empty(), AddItem{Item: burger(), Vendor: vendorA()})
	base = Apply(base, AddItem{Item: springRolls(), Vendor: vendorA()})

	byUpdate := Apply(base, UpdateQuantity{VendorID: "vendor-a", ItemID: "burger", Quantity: 0})
	byRemove := Apply(base, RemoveItem{VendorID: "vendor-a", ItemID: "burger"})

	checkInvariants(t, byUpdate)
	checkInvariants(t, byRemove)
	assert.Equal(t, byRemove.TotalItemCount, byUpdate.TotalItemCount)
	assert.True(t, byUpdate.TotalAmount.Equal(byRemove.TotalAmount))
	assert.Equal(t, len(byRemove.Vendors["vendor-a"].Items), len(byUpdate.Vendors["vendor-a"].Items))
}

func TestApplyRemoveVendor(t *testing.T) {
	s := Apply(Empty(), AddItem{Item: burger(), Vendor: vendorA()})
	s = Apply(s, AddItem{Item: springRolls(), Vendor: vendorB()})

	s = Apply(s, RemoveVendor{VendorID: "vendor-a"})
	checkInvariants(t, s)
	require.Len(t, s.Vendors, 1)
	_, ok := s.Vendors["vendor-b"]
	assert.True(t, ok)
	assert.True(t, s.TotalAmount.Equal(dec("5")))

	// unknown vendor: no-op
	again := Apply(s, RemoveVendor{VendorID: "vendor-a"})
	checkInvariants(t, again)
	assert.Len(t, again.Vendors, 1)
}

func TestApplyClearCart(t *testing.T) {
	s := Apply(Empty(), AddItem{Item: burger(), Vendor: vendorA()})
	s = Apply(s, AddItem{Item: springRolls(), Vendor: vendorB()})

	cleared := Apply(s, ClearCart{})
	checkInvariants(t, cleared)
	assert.True(t, cleared.IsEmpty())
	assert.Equal(t, 0, cleared.TotalItemCount)
	assert.True(t, cleared.TotalAmount.IsZero())
	assert.True(t, cleared.TotalDeliveryFee.IsZero())
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := Apply(Empty(), AddItem{Item: burger(), Vendor: vendorA()})

	_ = Apply(s, UpdateQuantity{VendorID: "vendor-a", ItemID: "burger", Quantity: 9})
	_ = Apply(s, RemoveItem{VendorID: "vendor-a", ItemID: "burger"})
	_ = Apply(s, ClearCart{})

	checkInvariants(t, s)
	assert.Equal(t, 1, s.TotalItemCount)
	assert.Equal(t, 1, s.Vendors["vendor-a"].Items[0].Quantity)
}

// TestApplySequenceInvariants drives a longer scripted sequence and
// cross-checks the invariants after every single step.
func TestApplySequenceInvariants(t *testing.T) {
	actions := []Action{
		AddItem{Item: burger(), Vendor: vendorA()},
		AddItem{Item: burger(), Vendor: vendorA()},
		AddItem{Item: springRolls(), Vendor: vendorB()},
		UpdateQuantity{VendorID: "vendor-b", ItemID: "rolls", Quantity: 4},
		AddItem{Item: LineItem{ItemID: "soda", Name: "Soda", UnitPrice: dec("2.25")}, Vendor: vendorA()},
		RemoveItem{VendorID: "vendor-a", ItemID: "burger"},
		UpdateQuantity{VendorID: "vendor-b", ItemID: "rolls", Quantity: -1},
		AddItem{Item: springRolls(), Vendor: vendorB()},
		RemoveVendor{VendorID: "vendor-a"},
		ClearCart{},
	}

	s := Empty()
	for _, a := range actions {
		s = Apply(s, a)
		checkInvariants(t, s)
	}
	assert.True(t, s.IsEmpty())
}

func TestVendorIDsSorted(t *testing.T) {
	s := Apply(Empty(), AddItem{Item: burger(), Vendor: vendorB()})
	s = Apply(s, AddItem{Item: springRolls(), Vendor: vendorA()})

	assert.Equal(t, []VendorID{"vendor-a", "vendor-b"}, s.VendorIDs())
}
