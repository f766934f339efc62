// internal/application/usecase/checkout_usecase_test.go
package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"savora/internal/application/cartstore"
	"savora/internal/domain/cart"
	"savora/internal/domain/order"
)

type fakeResolver struct {
	mu      sync.Mutex
	calls   []cart.VendorID
	charges map[cart.VendorID]order.ResolvedCharge
	errs    map[cart.VendorID]error

	// onResolve lets a test mutate the store mid-resolution
	onResolve func(cart.VendorID)
}

func (f *fakeResolver) Resolve(_ context.Context, id cart.VendorID) (order.ResolvedCharge, error) {
	f.mu.Lock()
	f.calls = append(f.calls, id)
	f.mu.Unlock()

	if f.onResolve != nil {
		f.onResolve(id)
	}
	if err, ok := f.errs[id]; ok {
		return order.ResolvedCharge{}, err
	}
	return f.charges[id], nil
}

func (f *fakeResolver) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeSubmitter struct {
	mu        sync.Mutex
	submitted []order.Payload
	errs      map[cart.VendorID]error
}

func (f *fakeSubmitter) Submit(_ context.Context, p order.Payload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[p.VendorID]; ok {
		return "", err
	}
	f.submitted = append(f.submitted, p)
	return "ord-" + string(p.VendorID), nil
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []SubmittedOrder
	err     error
}

func (f *fakeRecorder) Record(_ context.Context, o SubmittedOrder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, o)
	return nil
}

type fakeArchiver struct {
	mu       sync.Mutex
	archived map[string][]byte
}

func (f *fakeArchiver) Archive(_ context.Context, orderID string, receipt []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.archived == nil {
		f.archived = map[string][]byte{}
	}
	f.archived[orderID] = receipt
	return nil
}

type fakeMailer struct {
	mu    sync.Mutex
	sent  int
	to    string
	body  string
	fails bool
}

func (f *fakeMailer) Send(_ context.Context, _, to, _, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails {
		return errors.New("smtp down")
	}
	f.sent++
	f.to = to
	f.body = body
	return nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newStore(t *testing.T) *cartstore.Store {
	t.Helper()
	return cartstore.New(context.Background(), "cust-1", nil, nil, time.Hour)
}

func addVendorA(st *cartstore.Store) {
	st.Dispatch(cart.AddItem{
		Item:   cart.LineItem{ItemID: "burger", Name: "Burger", UnitPrice: dec("10")},
		Vendor: cart.VendorRef{VendorID: "vendor-a", Name: "Taco Alley", BaseDeliveryFee: dec("3.50")},
	})
}

func addVendorB(st *cartstore.Store) {
	st.Dispatch(cart.AddItem{
		Item:   cart.LineItem{ItemID: "rolls", Name: "Spring Rolls", UnitPrice: dec("5")},
		Vendor: cart.VendorRef{VendorID: "vendor-b", Name: "Pho Corner", BaseDeliveryFee: dec("2.00")},
	})
}

func dctx() order.DeliveryContext {
	return order.DeliveryContext{
		CustomerID:      "cust-1",
		CustomerEmail:   "customer@example.com",
		DeliveryAddress: "12 Elm Street",
		PaymentMethod:   "card",
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	resolver := &fakeResolver{}
	uc := NewCheckoutUsecase(CheckoutDeps{Resolver: resolver, Submitter: &fakeSubmitter{}})

	_, err := uc.Checkout(context.Background(), newStore(t), dctx())
	assert.ErrorIs(t, err, order.ErrEmptyCart)
	assert.Equal(t, 0, resolver.callCount(), "empty cart must fail before any network call")
}

func TestCheckoutMissingDeps(t *testing.T) {
	uc := NewCheckoutUsecase(CheckoutDeps{Resolver: &fakeResolver{}, Submitter: &fakeSubmitter{}})
	_, err := uc.Checkout(context.Background(), nil, dctx())
	assert.ErrorIs(t, err, ErrCheckoutStoreMissing)

	uc = NewCheckoutUsecase(CheckoutDeps{Submitter: &fakeSubmitter{}})
	_, err = uc.Checkout(context.Background(), newStore(t), dctx())
	assert.ErrorIs(t, err, ErrCheckoutResolverMissing)

	uc = NewCheckoutUsecase(CheckoutDeps{Resolver: &fakeResolver{}})
	_, err = uc.Checkout(context.Background(), newStore(t), dctx())
	assert.ErrorIs(t, err, ErrCheckoutSubmitterMissing)
}

func TestCheckoutSingleVendorSuccess(t *testing.T) {
	st := newStore(t)
	addVendorA(st)

	resolver := &fakeResolver{charges: map[cart.VendorID]order.ResolvedCharge{
		"vendor-a": {Charge: dec("4.25"), ETAMinutes: 30},
	}}
	submitter := &fakeSubmitter{}
	recorder := &fakeRecorder{}
	archiver := &fakeArchiver{}
	mailer := &fakeMailer{}

	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	uc := NewCheckoutUsecaseWithClock(CheckoutDeps{
		Resolver:  resolver,
		Submitter: submitter,
		Recorder:  recorder,
		Archiver:  archiver,
		Mailer:    mailer,
		MailFrom:  "orders@savora.app",
	}, func() time.Time { return now })

	res, err := uc.Checkout(context.Background(), st, dctx())
	require.NoError(t, err)

	assert.True(t, res.AllSucceeded)
	require.Len(t, res.Results, 1)
	assert.Equal(t, "ord-vendor-a", res.Results[0].OrderID)
	assert.NotEmpty(t, res.AttemptID)

	require.Len(t, submitter.submitted, 1)
	assert.True(t, submitter.submitted[0].DeliveryFee.Equal(dec("4.25")), "resolved charge used in payload")
	assert.Contains(t, submitter.submitted[0].ClientRef, res.AttemptID)

	assert.Equal(t, 0, st.ItemCount(), "cart cleared after full success")

	require.Len(t, recorder.records, 1)
	assert.Equal(t, "ord-vendor-a", recorder.records[0].OrderID)
	assert.True(t, recorder.records[0].Subtotal.Equal(dec("10")))
	assert.Equal(t, now, recorder.records[0].SubmittedAt, "record carries the injected clock's time")

	assert.Len(t, archiver.archived, 1)
	assert.Equal(t, 1, mailer.sent)
	assert.Equal(t, "customer@example.com", mailer.to)
}

func TestCheckoutMultiVendorSuccess(t *testing.T) {
	st := newStore(t)
	addVendorA(st)
	addVendorB(st)

	resolver := &fakeResolver{charges: map[cart.VendorID]order.ResolvedCharge{
		"vendor-a": {Charge: dec("4.00")},
		"vendor-b": {Charge: dec("2.50")},
	}}
	submitter := &fakeSubmitter{}
	uc := NewCheckoutUsecase(CheckoutDeps{Resolver: resolver, Submitter: submitter})

	res, err := uc.Checkout(context.Background(), st, dctx())
	require.NoError(t, err)

	assert.True(t, res.AllSucceeded)
	assert.Len(t, res.Results, 2)
	assert.Equal(t, 2, resolver.callCount(), "one resolution per vendor")
	assert.Len(t, submitter.submitted, 2)
	assert.Equal(t, 0, st.ItemCount())
}

func TestCheckoutResolverFailureBlocks(t *testing.T) {
	st := newStore(t)
	addVendorA(st)
	addVendorB(st)

	resolver := &fakeResolver{
		charges: map[cart.VendorID]order.ResolvedCharge{"vendor-a": {Charge: dec("4.00")}},
		errs:    map[cart.VendorID]error{"vendor-b": errors.New("zone lookup timeout")},
	}
	submitter := &fakeSubmitter{}
	uc := NewCheckoutUsecase(CheckoutDeps{Resolver: resolver, Submitter: submitter})

	_, err := uc.Checkout(context.Background(), st, dctx())
	require.Error(t, err)

	var dre *DeliveryResolutionError
	require.ErrorAs(t, err, &dre)
	assert.Equal(t, cart.VendorID("vendor-b"), dre.VendorID)

	assert.Empty(t, submitter.submitted, "no order may be formatted or submitted after a resolution failure")
	assert.Equal(t, 2, st.ItemCount(), "cart untouched")
}

func TestCheckoutSupersededByMutation(t *testing.T) {
	st := newStore(t)
	addVendorA(st)

	resolver := &fakeResolver{
		charges: map[cart.VendorID]order.ResolvedCharge{"vendor-a": {Charge: dec("4.00")}},
		onResolve: func(cart.VendorID) {
			// user keeps shopping while resolution is in flight
			addVendorB(st)
		},
	}
	submitter := &fakeSubmitter{}
	uc := NewCheckoutUsecase(CheckoutDeps{Resolver: resolver, Submitter: submitter})

	_, err := uc.Checkout(context.Background(), st, dctx())
	assert.ErrorIs(t, err, ErrCheckoutSuperseded)
	assert.Empty(t, submitter.submitted, "stale resolution results must be discarded, not applied")
	assert.Equal(t, 2, st.ItemCount())
}

func TestCheckoutPartialSubmissionFailure(t *testing.T) {
	st := newStore(t)
	addVendorA(st)
	addVendorB(st)

	resolver := &fakeResolver{charges: map[cart.VendorID]order.ResolvedCharge{
		"vendor-a": {Charge: dec("4.00")},
		"vendor-b": {Charge: dec("2.50")},
	}}
	submitter := &fakeSubmitter{errs: map[cart.VendorID]error{
		"vendor-a": errors.New("vendor offline"),
	}}
	mailer := &fakeMailer{}
	uc := NewCheckoutUsecase(CheckoutDeps{
		Resolver:  resolver,
		Submitter: submitter,
		Mailer:    mailer,
		MailFrom:  "orders@savora.app",
	})

	res, err := uc.Checkout(context.Background(), st, dctx())
	require.NoError(t, err, "partial failure is reported per vendor, not as a flow error")

	assert.False(t, res.AllSucceeded)
	require.Len(t, res.Results, 2)

	byVendor := map[cart.VendorID]VendorResult{}
	for _, r := range res.Results {
		byVendor[r.VendorID] = r
	}

	var se *SubmissionError
	require.Error(t, byVendor["vendor-a"].Err)
	require.ErrorAs(t, byVendor["vendor-a"].Err, &se)
	assert.Equal(t, cart.VendorID("vendor-a"), se.VendorID)

	require.NoError(t, byVendor["vendor-b"].Err)
	assert.Equal(t, "ord-vendor-b", byVendor["vendor-b"].OrderID)

	// failed vendor's items are retained; submitted vendor's are gone
	assert.NotNil(t, st.VendorItems("vendor-a"))
	assert.Nil(t, st.VendorItems("vendor-b"))
	assert.Equal(t, 1, st.ItemCount())

	assert.Equal(t, 1, mailer.sent, "confirmation still goes out for the submitted portion")
}

func TestCheckoutBestEffortSideEffectsNeverFail(t *testing.T) {
	st := newStore(t)
	addVendorA(st)

	uc := NewCheckoutUsecase(CheckoutDeps{
		Resolver:  &fakeResolver{charges: map[cart.VendorID]order.ResolvedCharge{"vendor-a": {Charge: dec("4.00")}}},
		Submitter: &fakeSubmitter{},
		Recorder:  &fakeRecorder{err: errors.New("pg down")},
		Mailer:    &fakeMailer{fails: true},
		MailFrom:  "orders@savora.app",
	})

	res, err := uc.Checkout(context.Background(), st, dctx())
	require.NoError(t, err)
	assert.True(t, res.AllSucceeded)
}
