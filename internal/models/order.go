package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle status of an order as stored by the backend
type OrderStatus string

const (
	StatusPending        OrderStatus = "pending"
	StatusConfirmed      OrderStatus = "confirmed"
	StatusPreparing      OrderStatus = "preparing"
	StatusReadyForPickup OrderStatus = "ready_for_pickup"
	StatusOutForDelivery OrderStatus = "out_for_delivery"
	StatusDelivered      OrderStatus = "delivered"
	StatusCancelled      OrderStatus = "cancelled"
)

var statusLabels = map[OrderStatus]string{
	StatusPending:        "Order Placed",
	StatusConfirmed:      "Confirmed",
	StatusPreparing:      "Preparing",
	StatusReadyForPickup: "Ready for Pickup",
	StatusOutForDelivery: "Out for Delivery",
	StatusDelivered:      "Delivered",
	StatusCancelled:      "Cancelled",
}

// Label returns the customer-facing name of the status
func (s OrderStatus) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Terminal reports whether no further status change is expected
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// GeoPoint is a GeoJSON point; coordinates are [longitude, latitude]
type GeoPoint struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// DeliveryAddress is where an order is delivered
type DeliveryAddress struct {
	Street   string    `json:"street"`
	City     string    `json:"city"`
	State    string    `json:"state"`
	ZipCode  string    `json:"zipCode"`
	Country  string    `json:"country"`
	Location *GeoPoint `json:"location,omitempty"`
}

// OrderItem is one line of an order
type OrderItem struct {
	MenuItem string          `json:"menuItem"`
	Name     string          `json:"name,omitempty"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Order represents an order as returned by the backend API
type Order struct {
	ID                    string          `json:"_id"`
	OrderNumber           string          `json:"orderNumber,omitempty"`
	RestaurantID          string          `json:"restaurant"`
	Items                 []OrderItem     `json:"items"`
	DeliveryAddress       DeliveryAddress `json:"deliveryAddress"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
	Status                OrderStatus     `json:"status"`
	PaymentMethod         string          `json:"paymentMethod,omitempty"`
	PaymentID             string          `json:"paymentId,omitempty"`
	EstimatedDeliveryTime string          `json:"estimatedDeliveryTime,omitempty"`
	CreatedAt             time.Time       `json:"createdAt"`
}

// CreateOrderRequest is the order-creation payload sent to the backend
type CreateOrderRequest struct {
	RestaurantID    string          `json:"restaurant"`
	Items           []OrderItem     `json:"items"`
	DeliveryAddress DeliveryAddress `json:"deliveryAddress"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	PaymentMethod   string          `json:"paymentMethod"`
}

// StatusUpdate is the payload of an order status change
type StatusUpdate struct {
	Status    OrderStatus `json:"status"`
	PaymentID string      `json:"paymentId,omitempty"`
}
