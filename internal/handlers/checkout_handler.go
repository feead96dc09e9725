package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/checkout"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/middleware"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
)

// CheckoutHandler drives order placement for the session cart
type CheckoutHandler struct {
	checkout  *checkout.Service
	registry  *cart.Registry
	addresses *service.AddressService
	log       *slog.Logger
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkout *checkout.Service, registry *cart.Registry, addresses *service.AddressService, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout:  checkout,
		registry:  registry,
		addresses: addresses,
		log:       log,
	}
}

// BeginRequest is the body of POST /api/checkout. AddressID picks a saved
// address; with neither field set the caller's default address is used.
type BeginRequest struct {
	DeliveryAddress models.DeliveryAddress `json:"deliveryAddress"`
	AddressID       string                 `json:"addressId,omitempty"`
}

// CompleteRequest is the body of POST /api/checkout/{orderId}/complete
type CompleteRequest struct {
	PaymentIntentID string `json:"paymentIntentId"`
}

// Begin handles POST /api/checkout
func (h *CheckoutHandler) Begin(w http.ResponseWriter, r *http.Request) {
	var req BeginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	addr, err := h.deliveryAddress(r, req)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	sid := middleware.SessionID(r.Context())
	m, err := h.registry.Session(r.Context(), sid)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	sess, err := h.checkout.Begin(r.Context(), sid, m, addr)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, sess, h.log)
}

// Get handles GET /api/checkout/{orderId}
func (h *CheckoutHandler) Get(w http.ResponseWriter, r *http.Request) {
	sess, err := h.checkout.Get(middleware.SessionID(r.Context()), chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, sess, h.log)
}

// RequestPayment handles POST /api/checkout/{orderId}/payment-intent
func (h *CheckoutHandler) RequestPayment(w http.ResponseWriter, r *http.Request) {
	sess, err := h.checkout.RequestPayment(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, sess, h.log)
}

// Complete handles POST /api/checkout/{orderId}/complete
func (h *CheckoutHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), h.log)
			return
		}
	}

	sid := middleware.SessionID(r.Context())
	m, err := h.registry.Session(r.Context(), sid)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	sess, err := h.checkout.Complete(r.Context(), sid, chi.URLParam(r, "orderId"), req.PaymentIntentID, m)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, sess, h.log)
}

// Cancel handles POST /api/checkout/{orderId}/cancel
func (h *CheckoutHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	sess, err := h.checkout.Abandon(r.Context(), middleware.SessionID(r.Context()), chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, sess, h.log)
}

// deliveryAddress resolves the address of a checkout: a saved address by id,
// the address in the body, or the caller's default when the body has none
func (h *CheckoutHandler) deliveryAddress(r *http.Request, req BeginRequest) (models.DeliveryAddress, error) {
	id, signedIn := middleware.IdentityFrom(r.Context())
	if !signedIn {
		return req.DeliveryAddress, nil
	}

	if req.AddressID != "" {
		saved, err := h.addresses.Get(r.Context(), id.UserID, req.AddressID)
		if err != nil {
			return models.DeliveryAddress{}, err
		}
		return saved.DeliveryAddress, nil
	}

	if !blankAddress(req.DeliveryAddress) {
		return req.DeliveryAddress, nil
	}
	saved, ok, err := h.addresses.Default(r.Context(), id.UserID)
	if err != nil {
		return models.DeliveryAddress{}, err
	}
	if !ok {
		return req.DeliveryAddress, nil
	}
	return saved.DeliveryAddress, nil
}

func blankAddress(a models.DeliveryAddress) bool {
	return strings.TrimSpace(a.Street) == "" &&
		strings.TrimSpace(a.City) == "" &&
		strings.TrimSpace(a.State) == "" &&
		strings.TrimSpace(a.ZipCode) == ""
}
