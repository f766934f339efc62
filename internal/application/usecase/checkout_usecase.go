// internal/application/usecase/checkout_usecase.go
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"savora/internal/application/cartstore"
	"savora/internal/domain/cart"
	"savora/internal/domain/order"
)

var (
	ErrCheckoutStoreMissing     = errors.New("checkout: cart store is not configured")
	ErrCheckoutResolverMissing  = errors.New("checkout: delivery resolver is not configured")
	ErrCheckoutSubmitterMissing = errors.New("checkout: order submitter is not configured")

	// ErrCheckoutSuperseded means the cart mutated while delivery charges
	// were being resolved; the stale resolution batch is discarded and the
	// caller should retry against the current cart.
	ErrCheckoutSuperseded = errors.New("checkout: cart changed while resolving delivery charges")
)

// DeliveryResolutionError reports one vendor's failed/timed-out delivery
// charge lookup. Checkout never proceeds to formatting past one of these.
type DeliveryResolutionError struct {
	VendorID cart.VendorID
	Err      error
}

func (e *DeliveryResolutionError) Error() string {
	return fmt.Sprintf("checkout: delivery resolution failed for vendor %s: %v", e.VendorID, e.Err)
}

func (e *DeliveryResolutionError) Unwrap() error { return e.Err }

// SubmissionError reports one vendor's failed order submission. The cart
// keeps that vendor's items so the user can retry just the failed portion.
type SubmissionError struct {
	VendorID cart.VendorID
	Err      error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("checkout: order submission failed for vendor %s: %v", e.VendorID, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// VendorResult is one vendor's checkout outcome.
type VendorResult struct {
	VendorID cart.VendorID `json:"vendorId"`
	OrderID  string        `json:"orderId,omitempty"`
	Err      error         `json:"-"`
}

// CheckoutResult aggregates per-vendor outcomes. Partial failure across
// vendors is possible and is reported here per vendor, never as one atomic
// outcome.
type CheckoutResult struct {
	AttemptID    string         `json:"attemptId"`
	Results      []VendorResult `json:"results"`
	AllSucceeded bool           `json:"allSucceeded"`
}

// CheckoutDeps wires the checkout collaborators. Resolver and Submitter are
// required; Recorder, Archiver and Mailer are best-effort extras.
type CheckoutDeps struct {
	Resolver  DeliveryResolver
	Submitter OrderSubmitter
	Recorder  OrderRecorder
	Archiver  ReceiptArchiver
	Mailer    MailSender
	MailFrom  string

	// ResolveTimeout bounds each vendor's Resolve call. Zero means
	// DefaultResolveTimeout.
	ResolveTimeout time.Duration

	Logger *zap.Logger
}

const DefaultResolveTimeout = 5 * time.Second

// CheckoutUsecase orchestrates "snapshot -> resolve charges -> format ->
// submit per vendor -> trim cart" for one customer session.
type CheckoutUsecase struct {
	deps  CheckoutDeps
	log   *zap.Logger
	clock func() time.Time
}

func NewCheckoutUsecase(deps CheckoutDeps) *CheckoutUsecase {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.ResolveTimeout <= 0 {
		deps.ResolveTimeout = DefaultResolveTimeout
	}
	return &CheckoutUsecase{
		deps:  deps,
		log:   logger.Named("checkout"),
		clock: time.Now,
	}
}

// NewCheckoutUsecaseWithClock is useful for tests.
func NewCheckoutUsecaseWithClock(deps CheckoutDeps, clock func() time.Time) *CheckoutUsecase {
	u := NewCheckoutUsecase(deps)
	if clock != nil {
		u.clock = clock
	}
	return u
}

// Checkout runs the whole flow against the session's store.
//
// Errors before submission (empty cart, resolution failure, superseded
// snapshot) abort the attempt and leave the cart untouched. From submission
// onward, outcomes are per vendor: a submitted vendor is removed from the
// cart, a failed one is retained; the error return stays nil.
func (u *CheckoutUsecase) Checkout(ctx context.Context, store *cartstore.Store, dctx order.DeliveryContext) (CheckoutResult, error) {
	if store == nil {
		return CheckoutResult{}, ErrCheckoutStoreMissing
	}
	if u.deps.Resolver == nil {
		return CheckoutResult{}, ErrCheckoutResolverMissing
	}
	if u.deps.Submitter == nil {
		return CheckoutResult{}, ErrCheckoutSubmitterMissing
	}

	snapshot, revision := store.Snapshot()

	// must fail before any network call is attempted
	if snapshot.IsEmpty() {
		return CheckoutResult{}, order.ErrEmptyCart
	}

	charges, err := u.resolveCharges(ctx, snapshot.VendorIDs())
	if err != nil {
		return CheckoutResult{}, err
	}

	// The resolution batch is keyed to the snapshot revision: if the cart
	// mutated while resolvers were in flight, the results describe a cart
	// that no longer exists. Discard rather than apply.
	if store.Revision() != revision {
		u.log.Info("resolution batch superseded",
			zap.Uint64("resolvedRevision", revision),
			zap.Uint64("currentRevision", store.Revision()),
		)
		return CheckoutResult{}, ErrCheckoutSuperseded
	}

	formatted, err := order.Format(snapshot, dctx, charges)
	if err != nil {
		return CheckoutResult{}, err
	}

	attemptID := uuid.NewString()
	result := CheckoutResult{AttemptID: attemptID, AllSucceeded: true}

	for _, p := range formatted.Payloads() {
		p.ClientRef = attemptID + "-" + string(p.VendorID)

		orderID, subErr := u.deps.Submitter.Submit(ctx, p)
		if subErr != nil {
			u.log.Warn("order submission failed",
				zap.String("vendorId", string(p.VendorID)),
				zap.Error(subErr),
			)
			result.AllSucceeded = false
			result.Results = append(result.Results, VendorResult{
				VendorID: p.VendorID,
				Err:      &SubmissionError{VendorID: p.VendorID, Err: subErr},
			})
			continue
		}

		result.Results = append(result.Results, VendorResult{VendorID: p.VendorID, OrderID: orderID})

		// drop only the submitted vendor; failed vendors keep their items
		store.Dispatch(cart.RemoveVendor{VendorID: p.VendorID})

		u.afterSubmit(ctx, snapshot, dctx, p, orderID)
	}

	if result.AllSucceeded {
		store.Dispatch(cart.ClearCart{})
	}
	store.Flush(ctx)

	if anySucceeded(result.Results) {
		u.sendConfirmation(ctx, dctx, result)
	}

	return result, nil
}

// resolveCharges fans out one Resolve per vendor, concurrently, each under
// its own bounded timeout, and waits for every vendor to settle. Any single
// failure surfaces as a checkout-blocking DeliveryResolutionError.
func (u *CheckoutUsecase) resolveCharges(ctx context.Context, vendorIDs []cart.VendorID) (map[cart.VendorID]order.ResolvedCharge, error) {
	charges := make(map[cart.VendorID]order.ResolvedCharge, len(vendorIDs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range vendorIDs {
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(gctx, u.deps.ResolveTimeout)
			defer cancel()

			rc, err := u.deps.Resolver.Resolve(rctx, id)
			if err != nil {
				return &DeliveryResolutionError{VendorID: id, Err: err}
			}

			mu.Lock()
			charges[id] = rc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return charges, nil
}

// afterSubmit runs the best-effort side effects of one submitted order:
// back-office record, receipt archive. Failures are logged, never surfaced.
func (u *CheckoutUsecase) afterSubmit(ctx context.Context, snapshot cart.State, dctx order.DeliveryContext, p order.Payload, orderID string) {
	now := u.clock().UTC()

	if u.deps.Recorder != nil {
		vc := snapshot.Vendors[p.VendorID]
		rec := SubmittedOrder{
			OrderID:     orderID,
			ClientRef:   p.ClientRef,
			CustomerID:  dctx.CustomerID,
			VendorID:    p.VendorID,
			ItemCount:   countItems(p.Items),
			Subtotal:    vc.Subtotal,
			DeliveryFee: p.DeliveryFee,
			SubmittedAt: now,
		}
		if err := u.deps.Recorder.Record(ctx, rec); err != nil {
			u.log.Warn("order record failed", zap.String("orderId", orderID), zap.Error(err))
		}
	}

	if u.deps.Archiver != nil {
		receipt, err := json.Marshal(struct {
			OrderID     string        `json:"orderId"`
			SubmittedAt time.Time     `json:"submittedAt"`
			Payload     order.Payload `json:"payload"`
		}{OrderID: orderID, SubmittedAt: now, Payload: p})
		if err == nil {
			if err := u.deps.Archiver.Archive(ctx, orderID, receipt); err != nil {
				u.log.Warn("receipt archive failed", zap.String("orderId", orderID), zap.Error(err))
			}
		}
	}
}

func (u *CheckoutUsecase) sendConfirmation(ctx context.Context, dctx order.DeliveryContext, result CheckoutResult) {
	if u.deps.Mailer == nil {
		return
	}
	to := strings.TrimSpace(dctx.CustomerEmail)
	from := strings.TrimSpace(u.deps.MailFrom)
	if to == "" || from == "" {
		return
	}

	var b strings.Builder
	b.WriteString("Thanks for your order!\n\n")
	for _, r := range result.Results {
		if r.Err != nil {
			fmt.Fprintf(&b, "- %s: submission failed, your items are still in the cart\n", r.VendorID)
			continue
		}
		fmt.Fprintf(&b, "- %s: order %s confirmed\n", r.VendorID, r.OrderID)
	}

	if err := u.deps.Mailer.Send(ctx, from, to, "Your order confirmation", b.String()); err != nil {
		u.log.Warn("confirmation mail failed", zap.String("to", to), zap.Error(err))
	}
}

func countItems(items []order.PayloadItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func anySucceeded(results []VendorResult) bool {
	for _, r := range results {
		if r.Err == nil {
			return true
		}
	}
	return false
}
