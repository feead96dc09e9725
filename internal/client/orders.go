package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

type orderEnvelope struct {
	Order models.Order `json:"order"`
}

type ordersEnvelope struct {
	Orders []models.Order `json:"orders"`
}

// CreateOrder submits a new order and returns it with the backend-assigned id and total
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	var out orderEnvelope
	if err := c.do(ctx, http.MethodPost, "/orders", req, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// GetOrder returns one order
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var out orderEnvelope
	if err := c.do(ctx, http.MethodGet, orderPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Order, nil
}

// ListUserOrders returns the orders of the authenticated customer
func (c *Client) ListUserOrders(ctx context.Context) ([]models.Order, error) {
	var out ordersEnvelope
	if err := c.do(ctx, http.MethodGet, "/orders/user/orders", nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// ListRestaurantOrders returns the orders of the authenticated owner's restaurant
func (c *Client) ListRestaurantOrders(ctx context.Context) ([]models.Order, error) {
	var out ordersEnvelope
	if err := c.do(ctx, http.MethodGet, "/orders/restaurant/orders", nil, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// UpdateOrderStatus moves an order to a new status
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, update models.StatusUpdate) error {
	return c.do(ctx, http.MethodPatch, orderPath(id), update, nil)
}

// CancelOrder asks the backend to cancel an order
func (c *Client) CancelOrder(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, orderPath(id)+"/cancel", nil, nil)
}

func orderPath(id string) string {
	return "/orders/" + url.PathEscape(id)
}
