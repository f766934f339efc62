// internal/adapters/in/http/router.go
package httpin

import (
	"net/http"

	"go.uber.org/zap"
)

// Deps is the customer-facing handler set.
type Deps struct {
	Cart     http.Handler
	Checkout http.Handler

	Logger *zap.Logger
}

// handleSafe registers pattern with h. A nil handler gets NotFoundHandler
// instead, so a partially wired container degrades rather than crashing.
func handleSafe(mux *http.ServeMux, pattern string, h http.Handler, name string, logger *zap.Logger) {
	if h == nil {
		logger.Warn("nil handler, registering NotFoundHandler",
			zap.String("name", name),
			zap.String("pattern", pattern))
		h = http.NotFoundHandler()
	}
	mux.Handle(pattern, h)
}

// Register registers the customer routes onto mux.
func Register(mux *http.ServeMux, deps Deps) {
	if mux == nil {
		return
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	handleSafe(mux, "/api/me/cart", deps.Cart, "Cart", logger)
	handleSafe(mux, "/api/me/cart/", deps.Cart, "Cart", logger)

	handleSafe(mux, "/api/me/checkout", deps.Checkout, "Checkout", logger)
}
