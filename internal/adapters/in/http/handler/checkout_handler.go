// internal/adapters/in/http/handler/checkout_handler.go
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"savora/internal/adapters/in/http/middleware"
	"savora/internal/application/cartstore"
	uc "savora/internal/application/usecase"
	"savora/internal/domain/order"
)

// CheckoutHandler runs the checkout flow for the current session.
//
//	POST /api/me/checkout
//
// Status mapping:
//   - empty cart                -> 400
//   - superseded snapshot       -> 409 (client should re-read the cart and retry)
//   - delivery resolution error -> 502
//   - submissions attempted     -> 200 with per-vendor outcomes (partial
//     failure is data, not an HTTP error)
type CheckoutHandler struct {
	Registry *cartstore.Registry
	Usecase  *uc.CheckoutUsecase
	Logger   *zap.Logger
}

func NewCheckoutHandler(registry *cartstore.Registry, usecase *uc.CheckoutUsecase, logger *zap.Logger) *CheckoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckoutHandler{Registry: registry, Usecase: usecase, Logger: logger}
}

type checkoutRequest struct {
	DeliveryAddress     string `json:"deliveryAddress"`
	PaymentMethod       string `json:"paymentMethod"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}

type checkoutVendorResponse struct {
	VendorID string `json:"vendorId"`
	OrderID  string `json:"orderId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type checkoutResponse struct {
	AttemptID    string                   `json:"attemptId"`
	AllSucceeded bool                     `json:"allSucceeded"`
	Results      []checkoutVendorResponse `json:"results"`
}

func (h *CheckoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.Registry == nil || h.Usecase == nil {
		writeError(w, http.StatusServiceUnavailable, "checkout not initialized")
		return
	}

	uid, email, ok := middleware.CurrentUserUIDAndEmail(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	store := h.Registry.ForCustomer(r.Context(), uid)
	if store == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	if strings.TrimSpace(req.DeliveryAddress) == "" {
		writeError(w, http.StatusBadRequest, "deliveryAddress is required")
		return
	}
	if strings.TrimSpace(req.PaymentMethod) == "" {
		writeError(w, http.StatusBadRequest, "paymentMethod is required")
		return
	}

	dctx := order.DeliveryContext{
		CustomerID:          uid,
		CustomerEmail:       email,
		DeliveryAddress:     strings.TrimSpace(req.DeliveryAddress),
		PaymentMethod:       strings.TrimSpace(req.PaymentMethod),
		SpecialInstructions: strings.TrimSpace(req.SpecialInstructions),
	}

	result, err := h.Usecase.Checkout(r.Context(), store, dctx)
	if err != nil {
		var resErr *uc.DeliveryResolutionError
		switch {
		case errors.Is(err, order.ErrEmptyCart):
			writeError(w, http.StatusBadRequest, "cart is empty")
		case errors.Is(err, uc.ErrCheckoutSuperseded):
			writeError(w, http.StatusConflict, "cart changed during checkout, please retry")
		case errors.As(err, &resErr):
			h.Logger.Warn("delivery resolution failed",
				zap.String("vendorId", string(resErr.VendorID)),
				zap.Error(err))
			writeError(w, http.StatusBadGateway, "delivery charge resolution failed for vendor "+string(resErr.VendorID))
		default:
			h.Logger.Error("checkout failed", zap.String("uid", uid), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "checkout failed")
		}
		return
	}

	resp := checkoutResponse{
		AttemptID:    result.AttemptID,
		AllSucceeded: result.AllSucceeded,
		Results:      make([]checkoutVendorResponse, 0, len(result.Results)),
	}
	for _, vr := range result.Results {
		out := checkoutVendorResponse{
			VendorID: string(vr.VendorID),
			OrderID:  vr.OrderID,
		}
		if vr.Err != nil {
			out.Error = vr.Err.Error()
		}
		resp.Results = append(resp.Results, out)
	}

	writeJSON(w, http.StatusOK, resp)
}
