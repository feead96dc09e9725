package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/checkout"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/client"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/middleware"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/storage"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/tracker"
)

// fakeAPI emulates the restaurant, order and payment backend
type fakeAPI struct {
	mu          sync.Mutex
	restaurants map[string]models.Restaurant
	menus       map[string][]models.MenuItem
	orders      map[string]*models.Order
	nextOrder   int
	cancelled   []string
	intents     []models.PaymentIntentRequest
}

func newFakeAPI() *fakeAPI {
	price := decimal.RequireFromString
	return &fakeAPI{
		restaurants: map[string]models.Restaurant{
			"r1": {ID: "r1", Name: "Luigi's"},
			"r2": {ID: "r2", Name: "Sakura"},
		},
		menus: map[string][]models.MenuItem{
			"r1": {
				{ID: "m1", RestaurantID: "r1", Name: "Margherita", Category: "Pizza", Price: price("9.50"), IsAvailable: true, IsVegetarian: true},
				{ID: "m2", RestaurantID: "r1", Name: "Tiramisu", Category: "Dessert", Price: price("4.25"), IsAvailable: true, IsVegetarian: true},
				{ID: "m3", RestaurantID: "r1", Name: "Diavola", Category: "Pizza", Price: price("11.00"), IsAvailable: false},
			},
			"r2": {
				{ID: "p1", RestaurantID: "r2", Name: "Ramen", Category: "Noodles", Price: price("7.00"), IsAvailable: true},
			},
		},
		orders: map[string]*models.Order{
			"o-pending":   {ID: "o-pending", RestaurantID: "r1", Status: models.StatusPending},
			"o-preparing": {ID: "o-preparing", RestaurantID: "r1", Status: models.StatusPreparing},
		},
	}
}

func (f *fakeAPI) setStatus(id string, status models.OrderStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders[id].Status = status
}

func (f *fakeAPI) orderStatus(id string) models.OrderStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	if order, ok := f.orders[id]; ok {
		return order.Status
	}
	return ""
}

func (f *fakeAPI) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orders)
}

func (f *fakeAPI) cancelledIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.cancelled...)
}

func (f *fakeAPI) intentAmounts() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	amounts := make([]int64, 0, len(f.intents))
	for _, in := range f.intents {
		amounts = append(amounts, in.Amount)
	}
	return amounts
}

func reply(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]interface{}{"status": "success", "data": data}
	if status >= 400 {
		body = map[string]interface{}{"status": "fail", "message": data}
	}
	_ = json.NewEncoder(w).Encode(body)
}

func (f *fakeAPI) handler() http.Handler {
	r := chi.NewRouter()

	r.Get("/restaurants", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		list := []models.Restaurant{f.restaurants["r1"], f.restaurants["r2"]}
		reply(w, http.StatusOK, map[string]interface{}{"restaurants": list})
	})
	r.Get("/restaurants/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		rest, ok := f.restaurants[chi.URLParam(r, "id")]
		if !ok {
			reply(w, http.StatusNotFound, "Restaurant not found")
			return
		}
		reply(w, http.StatusOK, map[string]interface{}{"restaurant": rest})
	})
	r.Get("/restaurants/{id}/menu", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		reply(w, http.StatusOK, map[string]interface{}{"menuItems": f.menus[chi.URLParam(r, "id")]})
	})
	r.Post("/restaurants/{id}/menu", func(w http.ResponseWriter, r *http.Request) {
		var in models.MenuItemInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		item := models.MenuItem{ID: "new-item", RestaurantID: chi.URLParam(r, "id"), Name: in.Name, Price: in.Price, Category: in.Category, IsAvailable: in.IsAvailable != nil && *in.IsAvailable}
		reply(w, http.StatusCreated, map[string]interface{}{"menuItem": item})
	})
	r.Patch("/restaurants/{id}/menu/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		var in models.MenuItemInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		item := models.MenuItem{ID: chi.URLParam(r, "itemId"), RestaurantID: chi.URLParam(r, "id"), Name: in.Name, Price: in.Price}
		reply(w, http.StatusOK, map[string]interface{}{"menuItem": item})
	})
	r.Delete("/restaurants/{id}/menu/{itemId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.Post("/orders", func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reply(w, http.StatusBadRequest, "bad order")
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.nextOrder++
		order := &models.Order{
			ID:           fmt.Sprintf("order-%d", f.nextOrder),
			RestaurantID: req.RestaurantID,
			Items:        req.Items,
			TotalAmount:  req.TotalAmount,
			Status:       req.Status,
			CreatedAt:    time.Now().UTC(),
		}
		f.orders[order.ID] = order
		reply(w, http.StatusCreated, map[string]interface{}{"order": order})
	})
	r.Get("/orders/user/orders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		reply(w, http.StatusOK, map[string]interface{}{"orders": []models.Order{*f.orders["o-pending"]}})
	})
	r.Get("/orders/restaurant/orders", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		reply(w, http.StatusOK, map[string]interface{}{"orders": []models.Order{*f.orders["o-pending"], *f.orders["o-preparing"]}})
	})
	r.Get("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		order, ok := f.orders[chi.URLParam(r, "id")]
		if !ok {
			reply(w, http.StatusNotFound, "Order not found")
			return
		}
		reply(w, http.StatusOK, map[string]interface{}{"order": order})
	})
	r.Patch("/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		var update models.StatusUpdate
		_ = json.NewDecoder(r.Body).Decode(&update)
		f.mu.Lock()
		defer f.mu.Unlock()
		order, ok := f.orders[chi.URLParam(r, "id")]
		if !ok {
			reply(w, http.StatusNotFound, "Order not found")
			return
		}
		order.Status = update.Status
		if update.PaymentID != "" {
			order.PaymentID = update.PaymentID
		}
		reply(w, http.StatusOK, map[string]interface{}{"order": order})
	})
	r.Post("/orders/{id}/cancel", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := chi.URLParam(r, "id")
		f.cancelled = append(f.cancelled, id)
		if order, ok := f.orders[id]; ok {
			order.Status = models.StatusCancelled
		}
		reply(w, http.StatusOK, map[string]interface{}{})
	})

	r.Post("/payments/create-payment-intent", func(w http.ResponseWriter, r *http.Request) {
		var req models.PaymentIntentRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.intents = append(f.intents, req)
		f.mu.Unlock()
		reply(w, http.StatusOK, models.PaymentIntent{ID: "pi_" + req.OrderID, ClientSecret: "secret_" + req.OrderID})
	})
	r.Post("/payments/confirm-payment", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PaymentIntentID string `json:"paymentIntentId"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		status := "succeeded"
		if body.PaymentIntentID == "pi_declined" {
			status = "requires_payment_method"
		}
		reply(w, http.StatusOK, models.PaymentConfirmation{PaymentIntentID: body.PaymentIntentID, Status: status})
	})

	return r
}

// testApp wires the real client, services and handlers against a fakeAPI
type testApp struct {
	api      *fakeAPI
	registry *cart.Registry
	checkout *checkout.Service
	router   chi.Router
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	api := newFakeAPI()
	backend := httptest.NewServer(api.handler())
	t.Cleanup(backend.Close)

	log := quietLogger()
	store := storage.NewMemory()
	c := client.New(backend.URL, 5*time.Second, log)
	registry := cart.NewRegistry(store, log)
	catalogService := service.NewCatalogService(c)
	orderService := service.NewOrderService(c)
	dashboardService := service.NewDashboardService(c)
	addressService := service.NewAddressService(store)
	checkoutService := checkout.NewService(c, c, c, log)
	poller := tracker.NewPoller(c, 10*time.Millisecond, log)

	catalogHandler := NewCatalogHandler(catalogService, log)
	cartHandler := NewCartHandler(registry, log)
	checkoutHandler := NewCheckoutHandler(checkoutService, registry, addressService, log)
	addressHandler := NewAddressHandler(addressService, log)
	orderHandler := NewOrderHandler(orderService, poller, []string{"*"}, log)
	ownerHandler := NewOwnerHandler(orderService, catalogService, dashboardService, log)

	r := chi.NewRouter()
	r.Use(middleware.Session(false))
	r.Use(middleware.Authenticate(testJWTSecret))

	r.Get("/api/restaurants", catalogHandler.ListRestaurants)
	r.Get("/api/restaurants/{restaurantId}", catalogHandler.GetRestaurant)
	r.Get("/api/restaurants/{restaurantId}/menu", catalogHandler.GetMenu)

	r.Get("/api/cart", cartHandler.GetCart)
	r.Delete("/api/cart", cartHandler.ClearCart)
	r.Post("/api/cart/items", cartHandler.AddItem)
	r.Patch("/api/cart/items/{itemId}", cartHandler.UpdateItem)
	r.Delete("/api/cart/items/{itemId}", cartHandler.RemoveItem)
	r.Post("/api/cart/conflict", cartHandler.ResolveConflict)

	r.Post("/api/checkout", checkoutHandler.Begin)
	r.Get("/api/checkout/{orderId}", checkoutHandler.Get)
	r.Post("/api/checkout/{orderId}/payment-intent", checkoutHandler.RequestPayment)
	r.Post("/api/checkout/{orderId}/complete", checkoutHandler.Complete)
	r.Post("/api/checkout/{orderId}/cancel", checkoutHandler.Cancel)

	r.Get("/api/orders", orderHandler.ListOrders)
	r.Get("/api/orders/{orderId}", orderHandler.GetOrder)
	r.Post("/api/orders/{orderId}/cancel", orderHandler.CancelOrder)
	r.Get("/api/orders/{orderId}/track", orderHandler.Track)

	r.Get("/api/me/addresses", addressHandler.ListAddresses)
	r.Post("/api/me/addresses", addressHandler.CreateAddress)
	r.Patch("/api/me/addresses/{addressId}", addressHandler.UpdateAddress)
	r.Delete("/api/me/addresses/{addressId}", addressHandler.DeleteAddress)

	r.Get("/api/owner/orders", ownerHandler.ListOrders)
	r.Get("/api/owner/restaurants/{restaurantId}/dashboard", ownerHandler.Dashboard)
	r.Patch("/api/owner/orders/{orderId}/status", ownerHandler.UpdateStatus)
	r.Post("/api/owner/restaurants/{restaurantId}/menu", ownerHandler.CreateMenuItem)
	r.Get("/api/owner/restaurants/{restaurantId}/menu/export", ownerHandler.ExportMenu)
	r.Patch("/api/owner/restaurants/{restaurantId}/menu/{itemId}", ownerHandler.UpdateMenuItem)
	r.Delete("/api/owner/restaurants/{restaurantId}/menu/{itemId}", ownerHandler.DeleteMenuItem)

	return &testApp{api: api, registry: registry, checkout: checkoutService, router: r}
}

const (
	testSession   = "test-session-0001"
	testJWTSecret = "handler-test-secret"
)

// tokenFor signs a bearer token for userID
func tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"role":   role,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

// do sends an anonymous request as testSession and returns the recorder
func (a *testApp) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	return a.doAs(t, "", method, path, body)
}

// doAs is do with a bearer token; an empty token sends none
func (a *testApp) doAs(t *testing.T, token, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(middleware.SessionHeader, testSession)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func addItemBody(id, name, price, restaurantID string) AddItemRequest {
	return AddItemRequest{
		Item:         cart.Item{ID: id, Name: name, Price: decimal.RequireFromString(price)},
		RestaurantID: restaurantID,
	}
}
