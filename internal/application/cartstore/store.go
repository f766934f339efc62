// internal/application/cartstore/store.go
package cartstore

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"savora/internal/domain/cart"
)

// DefaultDebounce is the quiescence window for the persistence writer.
const DefaultDebounce = 500 * time.Millisecond

// persistTimeout bounds a single background snapshot write.
const persistTimeout = 10 * time.Second

// Subscriber receives the new state after every settled mutation.
type Subscriber func(cart.State)

// Store wraps the cart mutation engine for one customer session:
//   - current-state holder (the engine itself is pure)
//   - subscription/notification for UI observers
//   - debounced persistence: schedule-on-mutation, cancel-and-reschedule on
//     the next mutation, flush-on-exit; the snapshot is taken when the timer
//     fires, never earlier
//
// Persistence failures are logged and swallowed; the in-memory cart is never
// blocked by storage errors. One Store per active session, injected where
// needed; no process-wide singleton.
type Store struct {
	customerID string
	sink       SnapshotSink
	logger     *zap.Logger
	debounce   time.Duration

	mu       sync.RWMutex
	state    cart.State
	revision uint64
	subs     map[int]Subscriber
	nextSub  int
	timer    *time.Timer
}

// New builds a store and hydrates it from the last persisted snapshot.
// A missing or unreadable snapshot falls back to the empty state; hydration
// itself never fails the construction.
func New(ctx context.Context, customerID string, sink SnapshotSink, logger *zap.Logger, debounce time.Duration) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	s := &Store{
		customerID: customerID,
		sink:       sink,
		logger:     logger.Named("cartstore").With(zap.String("customerId", customerID)),
		debounce:   debounce,
		state:      cart.Empty(),
		subs:       map[int]Subscriber{},
	}

	if sink != nil {
		data, err := sink.Load(ctx, customerID)
		switch {
		case err != nil:
			s.logger.Warn("snapshot load failed, starting empty", zap.Error(err))
		case data == nil:
			// no snapshot yet
		default:
			snap, err := cart.UnmarshalSnapshot(data)
			if err != nil {
				s.logger.Warn("snapshot unreadable, starting empty", zap.Error(err))
				break
			}
			s.state = cart.Apply(cart.Empty(), cart.LoadCart{Snapshot: snap})
		}
	}

	return s
}

// Dispatch runs one action through the mutation engine, notifies subscribers
// with the settled state and (re)schedules the persistence write. Actions are
// serialized by the store's lock; each transition runs to completion before
// the next is accepted.
func (s *Store) Dispatch(a cart.Action) cart.State {
	s.mu.Lock()
	s.state = cart.Apply(s.state, a)
	s.revision++
	next := s.state.Clone()

	if s.timer != nil {
		s.timer.Stop()
	}
	if s.sink != nil {
		s.timer = time.AfterFunc(s.debounce, s.persistNow)
	}

	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	return next
}

// Subscribe registers fn and returns its unsubscribe func.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Snapshot returns an immutable copy of the current state together with the
// revision it was taken at. Checkout keys its in-flight resolution batch on
// the revision and discards results once it moves.
func (s *Store) Snapshot() (cart.State, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), s.revision
}

// Revision returns the mutation counter; bumped once per dispatched action.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// ItemCount is the total quantity across all vendors.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.TotalItemCount
}

// Vendors lists the vendors currently represented in the cart, in
// deterministic (sorted) order.
func (s *Store) Vendors() []cart.VendorRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]cart.VendorRef, 0, len(s.state.Vendors))
	for _, id := range s.state.VendorIDs() {
		out = append(out, s.state.Vendors[id].Vendor)
	}
	return out
}

// VendorItems returns a copy of one vendor's line items; nil when the vendor
// is not in the cart.
func (s *Store) VendorItems(id cart.VendorID) []cart.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	vc, ok := s.state.Vendors[id]
	if !ok {
		return nil
	}
	items := make([]cart.LineItem, len(vc.Items))
	copy(items, vc.Items)
	return items
}

// VendorSubtotal returns one vendor's subtotal (zero when absent).
func (s *Store) VendorSubtotal(id cart.VendorID) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Vendors[id].Subtotal
}

// VendorDeliveryFee returns one vendor's delivery fee (zero when absent).
func (s *Store) VendorDeliveryFee(id cart.VendorID) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Vendors[id].DeliveryFee
}

// Flush cancels any pending debounce timer and persists the current state
// right away. Called on app exit and after checkout settles.
func (s *Store) Flush(ctx context.Context) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	snap := s.state.Clone()
	s.mu.Unlock()

	s.persist(ctx, snap)
}

// persistNow runs when the debounce timer fires. The snapshot is taken here,
// at fire time, so a write never serializes a state older than the last
// settled mutation.
func (s *Store) persistNow() {
	s.mu.RLock()
	snap := s.state.Clone()
	s.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	s.persist(ctx, snap)
}

func (s *Store) persist(ctx context.Context, snap cart.State) {
	if s.sink == nil {
		return
	}
	// A cleared cart removes the stored doc rather than writing an empty
	// snapshot; hydration treats a missing doc and an empty cart the same.
	if snap.IsEmpty() {
		if err := s.sink.Delete(ctx, s.customerID); err != nil {
			s.logger.Warn("snapshot delete failed", zap.Error(err))
		}
		return
	}
	data, err := cart.MarshalSnapshot(snap)
	if err != nil {
		s.logger.Warn("snapshot marshal failed", zap.Error(err))
		return
	}
	if err := s.sink.Save(ctx, s.customerID, data); err != nil {
		s.logger.Warn("snapshot write failed", zap.Error(err))
		return
	}
	s.logger.Debug("snapshot persisted",
		zap.Int("itemCount", snap.TotalItemCount),
		zap.Int("vendors", len(snap.Vendors)),
	)
}
