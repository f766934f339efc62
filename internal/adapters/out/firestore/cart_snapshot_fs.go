// internal/adapters/out/firestore/cart_snapshot_fs.go
package firestore

import (
	"context"
	"errors"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// SnapshotTTL is the inactivity window after which an abandoned cart doc
// becomes eligible for auto deletion (Firestore TTL configured on expiresAt).
const SnapshotTTL = 7 * 24 * time.Hour

// CartSnapshotFS implements cartstore.SnapshotSink on Firestore.
//
// Collection design:
//   - collection: carts
//   - docId: customerId (docId is the source of truth)
//   - fields: cart_data (serialized snapshot), updatedAt, expiresAt
//
// The snapshot payload is stored opaque; the engine owns the format.
type CartSnapshotFS struct {
	Client *firestore.Client
}

func NewCartSnapshotFS(client *firestore.Client) *CartSnapshotFS {
	return &CartSnapshotFS{Client: client}
}

func (r *CartSnapshotFS) col() *firestore.CollectionRef {
	return r.Client.Collection("carts")
}

type cartSnapshotDoc struct {
	CartData  string    `firestore:"cart_data"`
	UpdatedAt time.Time `firestore:"updatedAt"`
	ExpiresAt time.Time `firestore:"expiresAt"`
}

// Save overwrites the full doc (simple & predictable) and refreshes the TTL.
func (r *CartSnapshotFS) Save(ctx context.Context, customerID string, data []byte) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_snapshot_fs: firestore client is nil")
	}

	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return errors.New("cart_snapshot_fs: customerID is empty")
	}

	now := time.Now().UTC()
	doc := cartSnapshotDoc{
		CartData:  string(data),
		UpdatedAt: now,
		ExpiresAt: now.Add(SnapshotTTL),
	}

	_, err := r.col().Doc(cid).Set(ctx, doc)
	return err
}

// Load returns (nil, nil) if no snapshot exists (nil policy).
func (r *CartSnapshotFS) Load(ctx context.Context, customerID string) ([]byte, error) {
	if r == nil || r.Client == nil {
		return nil, errors.New("cart_snapshot_fs: firestore client is nil")
	}

	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return nil, errors.New("cart_snapshot_fs: customerID is empty")
	}

	snap, err := r.col().Doc(cid).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc cartSnapshotDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, err
	}
	if strings.TrimSpace(doc.CartData) == "" {
		return nil, nil
	}
	return []byte(doc.CartData), nil
}

// Delete removes the doc; a missing doc is treated as success (idempotent).
func (r *CartSnapshotFS) Delete(ctx context.Context, customerID string) error {
	if r == nil || r.Client == nil {
		return errors.New("cart_snapshot_fs: firestore client is nil")
	}

	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return errors.New("cart_snapshot_fs: customerID is empty")
	}

	_, err := r.col().Doc(cid).Delete(ctx)
	if err != nil && status.Code(err) == codes.NotFound {
		return nil
	}
	return err
}
