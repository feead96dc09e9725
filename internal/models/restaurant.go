package models

import "github.com/shopspring/decimal"

// Restaurant represents a restaurant as returned by the backend API
type Restaurant struct {
	ID          string   `json:"_id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Cuisine     []string `json:"cuisine,omitempty"`
	Image       string   `json:"image,omitempty"`
	Owner       string   `json:"owner,omitempty"`
	Rating      float64  `json:"rating,omitempty"`
}

// MenuItem represents a single dish on a restaurant's menu
type MenuItem struct {
	ID           string          `json:"_id"`
	RestaurantID string          `json:"restaurant"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	Image        string          `json:"image,omitempty"`
	IsAvailable  bool            `json:"isAvailable"`
	IsVegetarian bool            `json:"isVegetarian"`
	Dietary      []string        `json:"dietary,omitempty"`
}

// MenuItemInput is the payload used by restaurant owners to create or update a menu item
type MenuItemInput struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	Image        string          `json:"image,omitempty"`
	IsAvailable  *bool           `json:"isAvailable,omitempty"`
	IsVegetarian bool            `json:"isVegetarian"`
	Dietary      []string        `json:"dietary,omitempty"`
}

// MenuSection groups menu items sharing a category, in first-seen order
type MenuSection struct {
	Category string     `json:"category"`
	Items    []MenuItem `json:"items"`
}
