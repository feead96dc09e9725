package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/report"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
)

// OwnerHandler serves the restaurant owner dashboard
type OwnerHandler struct {
	orders    *service.OrderService
	catalog   *service.CatalogService
	dashboard *service.DashboardService
	log       *slog.Logger
}

// NewOwnerHandler creates a new owner handler
func NewOwnerHandler(orders *service.OrderService, catalog *service.CatalogService, dashboard *service.DashboardService, log *slog.Logger) *OwnerHandler {
	return &OwnerHandler{
		orders:    orders,
		catalog:   catalog,
		dashboard: dashboard,
		log:       log,
	}
}

// StatusRequest is the body of PATCH /api/owner/orders/{orderId}/status
type StatusRequest struct {
	Status string `json:"status"`
}

// ListOrders handles GET /api/owner/orders
func (h *OwnerHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.RestaurantOrders(r.Context())
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	WriteJSON(w, http.StatusOK, orders, h.log)
}

// Dashboard handles GET /api/owner/restaurants/{restaurantId}/dashboard?range=
func (h *OwnerHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context(), chi.URLParam(r, "restaurantId"), r.URL.Query().Get("range"))
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, stats, h.log)
}

// UpdateStatus handles PATCH /api/owner/orders/{orderId}/status
func (h *OwnerHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req StatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	status, err := h.orders.UpdateStatus(r.Context(), orderID, req.Status)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"orderId": orderID, "status": string(status)}, h.log)
	h.log.Info("order status updated", "order_id", orderID, "status", status)
}

// CreateMenuItem handles POST /api/owner/restaurants/{restaurantId}/menu
func (h *OwnerHandler) CreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var in models.MenuItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	item, err := h.catalog.CreateMenuItem(r.Context(), chi.URLParam(r, "restaurantId"), in)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, item, h.log)
}

// UpdateMenuItem handles PATCH /api/owner/restaurants/{restaurantId}/menu/{itemId}
func (h *OwnerHandler) UpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	var in models.MenuItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	item, err := h.catalog.UpdateMenuItem(r.Context(), chi.URLParam(r, "restaurantId"), chi.URLParam(r, "itemId"), in)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, item, h.log)
}

// DeleteMenuItem handles DELETE /api/owner/restaurants/{restaurantId}/menu/{itemId}
func (h *OwnerHandler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteMenuItem(r.Context(), chi.URLParam(r, "restaurantId"), chi.URLParam(r, "itemId")); err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ExportMenu handles GET /api/owner/restaurants/{restaurantId}/menu/export
func (h *OwnerHandler) ExportMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantId")

	restaurant, err := h.catalog.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}
	items, err := h.catalog.Menu(r.Context(), restaurantID, service.MenuFilter{})
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	// Render into a buffer so a failure can still be reported as JSON
	var buf bytes.Buffer
	if err := report.WriteMenuXLSX(&buf, *restaurant, items); err != nil {
		h.log.Error("failed to render menu export", "restaurant_id", restaurantID, "error", err)
		WriteError(w, http.StatusInternalServerError, "Failed to export menu", h.log)
		return
	}

	w.Header().Set("Content-Type", report.ContentTypeXLSX)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.MenuFilename(*restaurant)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.log.Warn("failed to send menu export", "restaurant_id", restaurantID, "error", err)
	}
}
