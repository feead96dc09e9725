package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/tracker"
)

const trackWriteWait = 10 * time.Second

// OrderHandler handles the customer's order history and tracking
type OrderHandler struct {
	orderService *service.OrderService
	watcher      tracker.Watcher
	upgrader     websocket.Upgrader
	log          *slog.Logger
}

// NewOrderHandler creates a new order handler. allowedOrigins limits the
// websocket handshake; "*" allows any origin.
func NewOrderHandler(orderService *service.OrderService, watcher tracker.Watcher, allowedOrigins []string, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		watcher:      watcher,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
		log: log,
	}
}

// TrackUpdate is one message on the order tracking stream
type TrackUpdate struct {
	OrderID string             `json:"orderId"`
	Status  models.OrderStatus `json:"status"`
	Label   string             `json:"label"`
	Final   bool               `json:"final"`
	Order   models.Order       `json:"order"`
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orderService.UserOrders(r.Context())
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	WriteJSON(w, http.StatusOK, orders, h.log)
}

// GetOrder handles GET /api/orders/{orderId}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderService.GetOrder(r.Context(), chi.URLParam(r, "orderId"))
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, order, h.log)
}

// CancelOrder handles POST /api/orders/{orderId}/cancel
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	if err := h.orderService.CancelOrder(r.Context(), orderID); err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"orderId": orderID, "status": string(models.StatusCancelled)}, h.log)
	h.log.Info("order cancelled by customer", "order_id", orderID)
}

// Track handles GET /api/orders/{orderId}/track. The connection is upgraded
// to a websocket that receives a TrackUpdate on every status change and is
// closed once the order is delivered or cancelled.
func (h *OrderHandler) Track(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	// Reject unknown orders before upgrading so the client gets a plain 404
	if _, err := h.orderService.GetOrder(r.Context(), orderID); err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "order_id", orderID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client sends nothing; reading only detects the close
	_ = conn.SetReadDeadline(time.Time{})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	updates, err := h.watcher.Watch(ctx, orderID)
	if err != nil {
		h.log.Error("failed to watch order", "order_id", orderID, "error", err)
		return
	}

	h.log.Info("order tracking started", "order_id", orderID)
	for order := range updates {
		_ = conn.SetWriteDeadline(time.Now().Add(trackWriteWait))
		msg := TrackUpdate{
			OrderID: orderID,
			Status:  order.Status,
			Label:   order.Status.Label(),
			Final:   order.Status.Terminal(),
			Order:   order,
		}
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Info("order tracking client gone", "order_id", orderID, "error", err)
			cancel()
			for range updates {
			}
			return
		}
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "tracking finished"),
		time.Now().Add(trackWriteWait))
	h.log.Info("order tracking finished", "order_id", orderID)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
