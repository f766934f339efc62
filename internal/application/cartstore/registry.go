// internal/application/cartstore/registry.go
package cartstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Registry hands out one Store per customer session. Carts are
// single-tenant: a store is owned exclusively by the session that created
// it, and stores are never shared across customers.
type Registry struct {
	sink     SnapshotSink
	logger   *zap.Logger
	debounce time.Duration

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(sink SnapshotSink, logger *zap.Logger, debounce time.Duration) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sink:     sink,
		logger:   logger,
		debounce: debounce,
		stores:   map[string]*Store{},
	}
}

// ForCustomer returns the customer's store, hydrating it from the sink on
// first use. Returns nil for a blank customer id.
func (r *Registry) ForCustomer(ctx context.Context, customerID string) *Store {
	cid := strings.TrimSpace(customerID)
	if cid == "" {
		return nil
	}

	r.mu.Lock()
	if st, ok := r.stores[cid]; ok {
		r.mu.Unlock()
		return st
	}
	r.mu.Unlock()

	// Hydration does I/O; build outside the lock and keep the first winner
	// if two requests race.
	st := New(ctx, cid, r.sink, r.logger, r.debounce)

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.stores[cid]; ok {
		return existing
	}
	r.stores[cid] = st
	return st
}

// FlushAll persists every live store; called on shutdown.
func (r *Registry) FlushAll(ctx context.Context) {
	r.mu.Lock()
	stores := make([]*Store, 0, len(r.stores))
	for _, st := range r.stores {
		stores = append(stores, st)
	}
	r.mu.Unlock()

	for _, st := range stores {
		st.Flush(ctx)
	}
}
