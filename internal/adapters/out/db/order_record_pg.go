// internal/adapters/out/db/order_record_pg.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	uc "savora/internal/application/usecase"
)

// OrderRecordPG persists submitted-order rows for the admin back office.
//
// Schema:
//
//	CREATE TABLE submitted_orders (
//	  order_id     TEXT PRIMARY KEY,
//	  client_ref   TEXT NOT NULL,
//	  customer_id  TEXT NOT NULL,
//	  vendor_id    TEXT NOT NULL,
//	  item_count   INTEGER NOT NULL,
//	  subtotal     NUMERIC(12,2) NOT NULL,
//	  delivery_fee NUMERIC(12,2) NOT NULL,
//	  submitted_at TIMESTAMPTZ NOT NULL
//	);
type OrderRecordPG struct {
	DB *sql.DB
}

func NewOrderRecordPG(db *sql.DB) *OrderRecordPG {
	return &OrderRecordPG{DB: db}
}

// Record inserts one row. Re-recording the same order id is a no-op rather
// than a conflict: checkout side effects may be retried.
func (r *OrderRecordPG) Record(ctx context.Context, o uc.SubmittedOrder) error {
	if r == nil || r.DB == nil {
		return errors.New("order_record_pg: db is nil")
	}
	if strings.TrimSpace(o.OrderID) == "" {
		return errors.New("order_record_pg: orderID is empty")
	}

	const q = `
INSERT INTO submitted_orders
  (order_id, client_ref, customer_id, vendor_id, item_count, subtotal, delivery_fee, submitted_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (order_id) DO NOTHING`

	_, err := r.DB.ExecContext(ctx, q,
		strings.TrimSpace(o.OrderID),
		strings.TrimSpace(o.ClientRef),
		strings.TrimSpace(o.CustomerID),
		strings.TrimSpace(string(o.VendorID)),
		o.ItemCount,
		o.Subtotal.String(),
		o.DeliveryFee.String(),
		o.SubmittedAt.UTC(),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return nil
		}
		return err
	}
	return nil
}
