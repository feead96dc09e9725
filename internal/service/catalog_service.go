package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

var (
	ErrInvalidMenuItem = errors.New("invalid menu item")
	ErrMissingID       = errors.New("id is required")
)

// CatalogBackend is the restaurant and menu API used by CatalogService
type CatalogBackend interface {
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	CreateMenuItem(ctx context.Context, restaurantID string, in models.MenuItemInput) (*models.MenuItem, error)
	UpdateMenuItem(ctx context.Context, restaurantID, itemID string, in models.MenuItemInput) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, restaurantID, itemID string) error
}

// MenuFilter narrows a menu; zero values match everything
type MenuFilter struct {
	Category      string
	AvailableOnly bool
	Vegetarian    bool
}

func (f MenuFilter) match(item models.MenuItem) bool {
	if f.Category != "" && !strings.EqualFold(item.Category, f.Category) {
		return false
	}
	if f.AvailableOnly && !item.IsAvailable {
		return false
	}
	if f.Vegetarian && !item.IsVegetarian {
		return false
	}
	return true
}

// CatalogService handles restaurant browsing and owner menu management
type CatalogService struct {
	backend CatalogBackend
}

// NewCatalogService creates a new catalog service
func NewCatalogService(backend CatalogBackend) *CatalogService {
	return &CatalogService{
		backend: backend,
	}
}

// ListRestaurants returns all restaurants
func (s *CatalogService) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return s.backend.ListRestaurants(ctx)
}

// GetRestaurant returns a restaurant by ID
func (s *CatalogService) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	if id == "" {
		return nil, ErrMissingID
	}
	return s.backend.GetRestaurant(ctx, id)
}

// Menu returns the restaurant's menu items that pass the filter
func (s *CatalogService) Menu(ctx context.Context, restaurantID string, filter MenuFilter) ([]models.MenuItem, error) {
	if restaurantID == "" {
		return nil, ErrMissingID
	}

	items, err := s.backend.GetMenu(ctx, restaurantID)
	if err != nil {
		return nil, err
	}

	filtered := make([]models.MenuItem, 0, len(items))
	for _, item := range items {
		if filter.match(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// GroupByCategory splits items into sections ordered by first appearance.
// Items without a category land in "Other".
func GroupByCategory(items []models.MenuItem) []models.MenuSection {
	sections := []models.MenuSection{}
	index := make(map[string]int)

	for _, item := range items {
		category := item.Category
		if category == "" {
			category = "Other"
		}
		i, ok := index[category]
		if !ok {
			i = len(sections)
			index[category] = i
			sections = append(sections, models.MenuSection{Category: category})
		}
		sections[i].Items = append(sections[i].Items, item)
	}
	return sections
}

// CreateMenuItem validates and adds an item to the restaurant's menu.
// New items are available unless the input says otherwise.
func (s *CatalogService) CreateMenuItem(ctx context.Context, restaurantID string, in models.MenuItemInput) (*models.MenuItem, error) {
	if restaurantID == "" {
		return nil, ErrMissingID
	}
	in, err := validateMenuItem(in)
	if err != nil {
		return nil, err
	}
	if in.IsAvailable == nil {
		available := true
		in.IsAvailable = &available
	}
	return s.backend.CreateMenuItem(ctx, restaurantID, in)
}

// UpdateMenuItem validates and replaces a menu item's fields
func (s *CatalogService) UpdateMenuItem(ctx context.Context, restaurantID, itemID string, in models.MenuItemInput) (*models.MenuItem, error) {
	if restaurantID == "" || itemID == "" {
		return nil, ErrMissingID
	}
	in, err := validateMenuItem(in)
	if err != nil {
		return nil, err
	}
	return s.backend.UpdateMenuItem(ctx, restaurantID, itemID, in)
}

// DeleteMenuItem removes an item from the restaurant's menu
func (s *CatalogService) DeleteMenuItem(ctx context.Context, restaurantID, itemID string) error {
	if restaurantID == "" || itemID == "" {
		return ErrMissingID
	}
	return s.backend.DeleteMenuItem(ctx, restaurantID, itemID)
}

func validateMenuItem(in models.MenuItemInput) (models.MenuItemInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)

	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidMenuItem)
	}
	if in.Price.IsNegative() {
		return in, fmt.Errorf("%w: price must not be negative", ErrInvalidMenuItem)
	}
	return in, nil
}
