// internal/application/cartstore/ports.go
package cartstore

import "context"

// SnapshotSink is the durable key-value store behind the cart.
// One serialized snapshot per customer under the cart_data key.
//
// nil policy: Load returns (nil, nil) when no snapshot exists.
type SnapshotSink interface {
	Save(ctx context.Context, customerID string, data []byte) error
	Load(ctx context.Context, customerID string) ([]byte, error)
	Delete(ctx context.Context, customerID string) error
}
