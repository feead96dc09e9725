package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

// ListRestaurants returns every restaurant
func (c *Client) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	var out struct {
		Restaurants []models.Restaurant `json:"restaurants"`
	}
	if err := c.do(ctx, http.MethodGet, "/restaurants", nil, &out); err != nil {
		return nil, err
	}
	return out.Restaurants, nil
}

// GetRestaurant returns one restaurant
func (c *Client) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	var out struct {
		Restaurant models.Restaurant `json:"restaurant"`
	}
	if err := c.do(ctx, http.MethodGet, "/restaurants/"+url.PathEscape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out.Restaurant, nil
}

// GetMenu returns the menu items of a restaurant
func (c *Client) GetMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	var out struct {
		MenuItems []models.MenuItem `json:"menuItems"`
	}
	if err := c.do(ctx, http.MethodGet, menuPath(restaurantID), nil, &out); err != nil {
		return nil, err
	}
	return out.MenuItems, nil
}

// CreateMenuItem adds an item to a restaurant's menu
func (c *Client) CreateMenuItem(ctx context.Context, restaurantID string, in models.MenuItemInput) (*models.MenuItem, error) {
	var out struct {
		MenuItem models.MenuItem `json:"menuItem"`
	}
	if err := c.do(ctx, http.MethodPost, menuPath(restaurantID), in, &out); err != nil {
		return nil, err
	}
	return &out.MenuItem, nil
}

// UpdateMenuItem changes an existing menu item
func (c *Client) UpdateMenuItem(ctx context.Context, restaurantID, itemID string, in models.MenuItemInput) (*models.MenuItem, error) {
	var out struct {
		MenuItem models.MenuItem `json:"menuItem"`
	}
	path := menuPath(restaurantID) + "/" + url.PathEscape(itemID)
	if err := c.do(ctx, http.MethodPatch, path, in, &out); err != nil {
		return nil, err
	}
	return &out.MenuItem, nil
}

// DeleteMenuItem removes a menu item
func (c *Client) DeleteMenuItem(ctx context.Context, restaurantID, itemID string) error {
	path := menuPath(restaurantID) + "/" + url.PathEscape(itemID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func menuPath(restaurantID string) string {
	return "/restaurants/" + url.PathEscape(restaurantID) + "/menu"
}
