package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

var (
	ErrInvalidStatus     = errors.New("unknown order status")
	ErrInvalidTransition = errors.New("order status change not allowed")
	ErrNotCancellable    = errors.New("only pending orders can be cancelled")
)

// OrderBackend is the order API used by OrderService
type OrderBackend interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListUserOrders(ctx context.Context) ([]models.Order, error)
	ListRestaurantOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, update models.StatusUpdate) error
	CancelOrder(ctx context.Context, id string) error
}

// transitions lists the statuses a restaurant owner may move an order to
var transitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:        {models.StatusConfirmed, models.StatusCancelled},
	models.StatusConfirmed:      {models.StatusPreparing, models.StatusCancelled},
	models.StatusPreparing:      {models.StatusReadyForPickup},
	models.StatusReadyForPickup: {models.StatusOutForDelivery, models.StatusDelivered},
	models.StatusOutForDelivery: {models.StatusDelivered},
}

// statusAliases maps the short names used by owner dashboards to backend statuses
var statusAliases = map[string]models.OrderStatus{
	"ready": models.StatusReadyForPickup,
}

// OrderService handles order history and status changes
type OrderService struct {
	backend OrderBackend
}

// NewOrderService creates a new order service
func NewOrderService(backend OrderBackend) *OrderService {
	return &OrderService{
		backend: backend,
	}
}

// UserOrders returns the caller's orders
func (s *OrderService) UserOrders(ctx context.Context) ([]models.Order, error) {
	return s.backend.ListUserOrders(ctx)
}

// RestaurantOrders returns the orders of the caller's restaurant
func (s *OrderService) RestaurantOrders(ctx context.Context) ([]models.Order, error) {
	return s.backend.ListRestaurantOrders(ctx)
}

// GetOrder returns an order by ID
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return s.backend.GetOrder(ctx, id)
}

// CancelOrder cancels a customer's order while it is still pending
func (s *OrderService) CancelOrder(ctx context.Context, id string) error {
	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if order.Status != models.StatusPending {
		return ErrNotCancellable
	}
	return s.backend.CancelOrder(ctx, id)
}

// UpdateStatus moves an order to status if the transition table allows it
// and returns the status that was sent to the backend.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (models.OrderStatus, error) {
	next, err := ParseStatus(status)
	if err != nil {
		return "", err
	}

	order, err := s.GetOrder(ctx, id)
	if err != nil {
		return "", err
	}
	if !CanTransition(order.Status, next) {
		return "", fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, next)
	}

	if err := s.backend.UpdateOrderStatus(ctx, id, models.StatusUpdate{Status: next}); err != nil {
		return "", err
	}
	return next, nil
}

// ParseStatus resolves a status name or alias
func ParseStatus(s string) (models.OrderStatus, error) {
	if status, ok := statusAliases[s]; ok {
		return status, nil
	}
	status := models.OrderStatus(s)
	if _, ok := transitions[status]; ok || status.Terminal() {
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to models.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
