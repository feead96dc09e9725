package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/middleware"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

// CartHandler exposes the session cart
type CartHandler struct {
	registry *cart.Registry
	log      *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(registry *cart.Registry, log *slog.Logger) *CartHandler {
	return &CartHandler{
		registry: registry,
		log:      log,
	}
}

// CartResponse is the cart as shown to the browser
type CartResponse struct {
	Lines           []models.CartLine `json:"lines"`
	RestaurantID    *string           `json:"restaurantId"`
	Total           decimal.Decimal   `json:"total"`
	ItemCount       int               `json:"itemCount"`
	PendingConflict *cart.PendingAdd  `json:"pendingConflict,omitempty"`
}

// MutationResponse reports what an add or conflict decision did
type MutationResponse struct {
	Outcome cart.Outcome `json:"outcome"`
	Cart    CartResponse `json:"cart"`
}

// AddItemRequest is the body of POST /api/cart/items
type AddItemRequest struct {
	Item         cart.Item `json:"item"`
	RestaurantID string    `json:"restaurantId"`
}

// ResolveRequest is the body of POST /api/cart/conflict
type ResolveRequest struct {
	KeepNew bool `json:"keepNew"`
}

// QuantityRequest is the body of PATCH /api/cart/items/{itemId}
type QuantityRequest struct {
	Quantity int `json:"quantity"`
}

func newCartResponse(m *cart.Manager) CartResponse {
	state := m.State()
	resp := CartResponse{
		Lines:        state.Lines,
		RestaurantID: state.ActiveRestaurantID,
		Total:        state.Total(),
		ItemCount:    state.ItemCount(),
	}
	if pending, ok := m.PendingConflict(); ok {
		resp.PendingConflict = &pending
	}
	return resp
}

func (h *CartHandler) manager(w http.ResponseWriter, r *http.Request) (*cart.Manager, bool) {
	m, err := h.registry.Session(r.Context(), middleware.SessionID(r.Context()))
	if err != nil {
		writeServiceError(w, err, h.log)
		return nil, false
	}
	return m, true
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, newCartResponse(m), h.log)
}

// AddItem handles POST /api/cart/items.
// A cross-restaurant add answers 200 with outcome "conflict" and leaves the cart unchanged.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	outcome, err := m.AddItem(r.Context(), req.Item, req.RestaurantID)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, MutationResponse{Outcome: outcome, Cart: newCartResponse(m)}, h.log)
}

// ResolveConflict handles POST /api/cart/conflict
func (h *CartHandler) ResolveConflict(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	outcome, err := m.Resolve(r.Context(), req.KeepNew)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, MutationResponse{Outcome: outcome, Cart: newCartResponse(m)}, h.log)
}

// UpdateItem handles PATCH /api/cart/items/{itemId}
func (h *CartHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	if err := m.UpdateQuantity(r.Context(), chi.URLParam(r, "itemId"), req.Quantity); err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newCartResponse(m), h.log)
}

// RemoveItem handles DELETE /api/cart/items/{itemId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	if err := m.RemoveItem(r.Context(), chi.URLParam(r, "itemId")); err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newCartResponse(m), h.log)
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	m, ok := h.manager(w, r)
	if !ok {
		return
	}

	if err := m.Clear(r.Context()); err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, newCartResponse(m), h.log)
}
