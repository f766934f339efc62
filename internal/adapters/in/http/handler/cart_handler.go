// internal/adapters/in/http/handler/cart_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"savora/internal/adapters/in/http/middleware"
	"savora/internal/application/cartstore"
	"savora/internal/domain/cart"
)

// CartHandler serves the session cart.
//
//	GET    /api/me/cart                              current cart view
//	DELETE /api/me/cart                              clear cart
//	POST   /api/me/cart/items                        add one item
//	PUT    /api/me/cart/items/{vendorId}/{itemId}    set quantity
//	DELETE /api/me/cart/items/{vendorId}/{itemId}    remove item
type CartHandler struct {
	Registry *cartstore.Registry
	Logger   *zap.Logger
}

func NewCartHandler(registry *cartstore.Registry, logger *zap.Logger) *CartHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartHandler{Registry: registry, Logger: logger}
}

func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Registry == nil {
		writeError(w, http.StatusServiceUnavailable, "cart registry not initialized")
		return
	}

	uid, ok := middleware.CurrentUserUID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	store := h.Registry.ForCustomer(r.Context(), uid)
	if store == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/me/cart"), "/")

	switch {
	case rest == "":
		switch r.Method {
		case http.MethodGet:
			h.view(w, store)
		case http.MethodDelete:
			h.clear(w, store)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}

	case rest == "items":
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		h.addItem(w, r, store)

	case strings.HasPrefix(rest, "items/"):
		parts := strings.Split(strings.TrimPrefix(rest, "items/"), "/")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		vendorID := cart.NormalizeVendorID(parts[0])
		itemID := strings.TrimSpace(parts[1])

		switch r.Method {
		case http.MethodPut:
			h.updateQuantity(w, r, store, vendorID, itemID)
		case http.MethodDelete:
			h.removeItem(w, store, vendorID, itemID)
		default:
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}

	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// ------------------------------------------------------------
// views
// ------------------------------------------------------------

type cartVendorView struct {
	Vendor      cart.VendorRef  `json:"vendor"`
	Items       []cart.LineItem `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"deliveryFee"`
}

type cartView struct {
	Vendors          []cartVendorView `json:"vendors"`
	TotalItemCount   int              `json:"totalItemCount"`
	TotalAmount      decimal.Decimal  `json:"totalAmount"`
	TotalDeliveryFee decimal.Decimal  `json:"totalDeliveryFee"`
}

func buildCartView(s cart.State) cartView {
	out := cartView{
		Vendors:          []cartVendorView{},
		TotalItemCount:   s.TotalItemCount,
		TotalAmount:      s.TotalAmount,
		TotalDeliveryFee: s.TotalDeliveryFee,
	}
	for _, id := range s.VendorIDs() {
		vc := s.Vendors[id]
		out.Vendors = append(out.Vendors, cartVendorView{
			Vendor:      vc.Vendor,
			Items:       vc.Items,
			Subtotal:    vc.Subtotal,
			DeliveryFee: vc.DeliveryFee,
		})
	}
	return out
}

func (h *CartHandler) view(w http.ResponseWriter, store *cartstore.Store) {
	s, _ := store.Snapshot()
	writeJSON(w, http.StatusOK, buildCartView(s))
}

// ------------------------------------------------------------
// mutations
// ------------------------------------------------------------

type addItemRequest struct {
	Vendor cart.VendorRef `json:"vendor"`
	Item   cart.LineItem  `json:"item"`
}

func (h *CartHandler) addItem(w http.ResponseWriter, r *http.Request, store *cartstore.Store) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	req.Vendor.VendorID = cart.NormalizeVendorID(string(req.Vendor.VendorID))
	req.Item.ItemID = strings.TrimSpace(req.Item.ItemID)

	if req.Vendor.VendorID == "" {
		writeError(w, http.StatusBadRequest, "vendor.vendorId is required")
		return
	}
	if req.Item.ItemID == "" {
		writeError(w, http.StatusBadRequest, "item.itemId is required")
		return
	}
	// AddItem always enters at quantity 1; an explicit larger quantity is a
	// follow-up set on the same item.
	qty := req.Item.Quantity
	store.Dispatch(cart.AddItem{Item: req.Item, Vendor: req.Vendor})
	if qty > 1 {
		store.Dispatch(cart.UpdateQuantity{
			VendorID: req.Vendor.VendorID,
			ItemID:   req.Item.ItemID,
			Quantity: qty,
		})
	}

	s, _ := store.Snapshot()
	writeJSON(w, http.StatusOK, buildCartView(s))
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) updateQuantity(w http.ResponseWriter, r *http.Request, store *cartstore.Store, vendorID cart.VendorID, itemID string) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	store.Dispatch(cart.UpdateQuantity{VendorID: vendorID, ItemID: itemID, Quantity: req.Quantity})

	s, _ := store.Snapshot()
	writeJSON(w, http.StatusOK, buildCartView(s))
}

func (h *CartHandler) removeItem(w http.ResponseWriter, store *cartstore.Store, vendorID cart.VendorID, itemID string) {
	store.Dispatch(cart.RemoveItem{VendorID: vendorID, ItemID: itemID})

	s, _ := store.Snapshot()
	writeJSON(w, http.StatusOK, buildCartView(s))
}

func (h *CartHandler) clear(w http.ResponseWriter, store *cartstore.Store) {
	store.Dispatch(cart.ClearCart{})

	s, _ := store.Snapshot()
	writeJSON(w, http.StatusOK, buildCartView(s))
}
