// internal/domain/cart/snapshot.go
package cart

import (
	"encoding/json"
	"errors"
)

var ErrInvalidSnapshot = errors.New("cart: invalid snapshot")

// MarshalSnapshot serializes a state for the persistence sink.
// The format is plain JSON; decimal fields round-trip through their string
// representation, so LoadCart(UnmarshalSnapshot(MarshalSnapshot(s))) == s.
func MarshalSnapshot(s State) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalSnapshot parses a snapshot previously produced by
// MarshalSnapshot. The vendors map is allocated even for an empty payload so
// a hydrated state is always safe to hand to Apply.
func UnmarshalSnapshot(data []byte) (State, error) {
	if len(data) == 0 {
		return State{}, ErrInvalidSnapshot
	}
	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, err
	}
	if s.Vendors == nil {
		s.Vendors = map[VendorID]VendorCart{}
	}
	return s, nil
}
