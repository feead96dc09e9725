package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardRange is the period the order counts and top items cover
type DashboardRange string

const (
	RangeToday DashboardRange = "today"
	RangeWeek  DashboardRange = "week"
	RangeMonth DashboardRange = "month"
)

// Revenue sums non-cancelled orders created since the start of today, the
// last 7 days and the last 30 days
type Revenue struct {
	Daily   decimal.Decimal `json:"daily"`
	Weekly  decimal.Decimal `json:"weekly"`
	Monthly decimal.Decimal `json:"monthly"`
}

// OrderCounts counts the orders of the selected range
type OrderCounts struct {
	Pending   int                 `json:"pending"`
	Preparing int                 `json:"preparing"`
	Delivered int                 `json:"delivered"`
	Cancelled int                 `json:"cancelled"`
	Total     int                 `json:"total"`
	ByStatus  map[OrderStatus]int `json:"byStatus"`
}

// TopItem is a menu item ranked by units sold
type TopItem struct {
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
}

type Ratings struct {
	Average float64 `json:"average"`
}

// DashboardStats is the owner dashboard summary of one restaurant
type DashboardStats struct {
	RestaurantID   string         `json:"restaurantId"`
	RestaurantName string         `json:"restaurantName"`
	Range          DashboardRange `json:"range"`
	Since          time.Time      `json:"since"`
	Revenue        Revenue        `json:"revenue"`
	Orders         OrderCounts    `json:"orders"`
	TopItems       []TopItem      `json:"topItems"`
	RecentOrders   []Order        `json:"recentOrders"`
	Ratings        Ratings        `json:"ratings"`
	GeneratedAt    time.Time      `json:"generatedAt"`
}
