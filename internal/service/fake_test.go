package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/client"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

type fakeBackend struct {
	restaurants []models.Restaurant
	menu        []models.MenuItem
	orders      map[string]*models.Order

	createdItems []models.MenuItemInput
	deleted      []string
	statusCalls  []models.StatusUpdate
	cancelled    []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		restaurants: []models.Restaurant{{ID: "r1", Name: "Luigi's"}},
		menu: []models.MenuItem{
			{ID: "m1", Name: "Margherita", Category: "Pizza", Price: decimal.RequireFromString("9.50"), IsAvailable: true, IsVegetarian: true},
			{ID: "m2", Name: "Diavola", Category: "Pizza", Price: decimal.RequireFromString("11"), IsAvailable: false},
			{ID: "m3", Name: "Tiramisu", Category: "Dessert", Price: decimal.RequireFromString("4.25"), IsAvailable: true, IsVegetarian: true},
			{ID: "m4", Name: "Bread", Price: decimal.RequireFromString("2"), IsAvailable: true},
		},
		orders: map[string]*models.Order{
			"o-pending":   {ID: "o-pending", Status: models.StatusPending},
			"o-preparing": {ID: "o-preparing", Status: models.StatusPreparing},
		},
	}
}

func (f *fakeBackend) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	return f.restaurants, nil
}

func (f *fakeBackend) GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error) {
	for _, r := range f.restaurants {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "Restaurant not found"}
}

func (f *fakeBackend) GetMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	return f.menu, nil
}

func (f *fakeBackend) CreateMenuItem(ctx context.Context, restaurantID string, in models.MenuItemInput) (*models.MenuItem, error) {
	f.createdItems = append(f.createdItems, in)
	return &models.MenuItem{ID: "new", RestaurantID: restaurantID, Name: in.Name, Price: in.Price, IsAvailable: *in.IsAvailable}, nil
}

func (f *fakeBackend) UpdateMenuItem(ctx context.Context, restaurantID, itemID string, in models.MenuItemInput) (*models.MenuItem, error) {
	return &models.MenuItem{ID: itemID, RestaurantID: restaurantID, Name: in.Name, Price: in.Price}, nil
}

func (f *fakeBackend) DeleteMenuItem(ctx context.Context, restaurantID, itemID string) error {
	f.deleted = append(f.deleted, itemID)
	return nil
}

func (f *fakeBackend) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, &client.APIError{StatusCode: 404, Message: "Order not found"}
	}
	copied := *order
	return &copied, nil
}

func (f *fakeBackend) ListUserOrders(ctx context.Context) ([]models.Order, error) {
	return []models.Order{*f.orders["o-pending"]}, nil
}

func (f *fakeBackend) ListRestaurantOrders(ctx context.Context) ([]models.Order, error) {
	return []models.Order{*f.orders["o-pending"], *f.orders["o-preparing"]}, nil
}

func (f *fakeBackend) UpdateOrderStatus(ctx context.Context, id string, update models.StatusUpdate) error {
	f.statusCalls = append(f.statusCalls, update)
	f.orders[id].Status = update.Status
	return nil
}

func (f *fakeBackend) CancelOrder(ctx context.Context, id string) error {
	f.cancelled = append(f.cancelled, id)
	return nil
}
