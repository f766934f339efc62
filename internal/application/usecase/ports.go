// internal/application/usecase/ports.go
package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"savora/internal/domain/cart"
	"savora/internal/domain/order"
)

// DeliveryResolver is the external collaborator computing a vendor's
// delivery charge and ETA at checkout time. Implementations must bound each
// call with a timeout; a failure aborts checkout, it is never defaulted to a
// zero charge.
type DeliveryResolver interface {
	Resolve(ctx context.Context, vendorID cart.VendorID) (order.ResolvedCharge, error)
}

// OrderSubmitter posts one vendor payload to the remote order endpoint and
// returns the created order id.
type OrderSubmitter interface {
	Submit(ctx context.Context, p order.Payload) (string, error)
}

// SubmittedOrder is the back-office record of one successfully submitted
// vendor order.
type SubmittedOrder struct {
	OrderID     string
	ClientRef   string
	CustomerID  string
	VendorID    cart.VendorID
	ItemCount   int
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	SubmittedAt time.Time
}

// OrderRecorder persists SubmittedOrder rows for the admin back office.
// Recording is best-effort from the checkout flow's point of view.
type OrderRecorder interface {
	Record(ctx context.Context, o SubmittedOrder) error
}

// ReceiptArchiver stores a JSON receipt per submitted order (best-effort).
type ReceiptArchiver interface {
	Archive(ctx context.Context, orderID string, receipt []byte) error
}

// MailSender sends the checkout confirmation email (best-effort).
type MailSender interface {
	Send(ctx context.Context, from, to, subject, body string) error
}
