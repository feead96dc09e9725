package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
)

func TestCartHandler_AddAndView(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/cart/items", addItemBody("m1", "Margherita", "9.50", "r1"))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var added MutationResponse
	decodeBody(t, w, &added)
	if added.Outcome != cart.Added {
		t.Errorf("outcome = %s, want added", added.Outcome)
	}

	w = app.do(t, http.MethodPost, "/api/cart/items", addItemBody("m1", "Margherita", "9.50", "r1"))
	decodeBody(t, w, &added)
	if added.Outcome != cart.Incremented {
		t.Errorf("outcome = %s, want incremented", added.Outcome)
	}

	w = app.do(t, http.MethodGet, "/api/cart", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var view CartResponse
	decodeBody(t, w, &view)
	if len(view.Lines) != 1 || view.Lines[0].Quantity != 2 {
		t.Fatalf("lines = %+v", view.Lines)
	}
	if view.RestaurantID == nil || *view.RestaurantID != "r1" {
		t.Errorf("restaurantId = %v, want r1", view.RestaurantID)
	}
	if !view.Total.Equal(decimal.RequireFromString("19")) || view.ItemCount != 2 {
		t.Errorf("total = %s, itemCount = %d", view.Total, view.ItemCount)
	}
}

func TestCartHandler_ConflictFlow(t *testing.T) {
	tests := []struct {
		name           string
		keepNew        bool
		wantOutcome    cart.Outcome
		wantItem       string
		wantRestaurant string
	}{
		{name: "keep new item", keepNew: true, wantOutcome: cart.Replaced, wantItem: "p1", wantRestaurant: "r2"},
		{name: "keep current cart", keepNew: false, wantOutcome: cart.Discarded, wantItem: "m1", wantRestaurant: "r1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.do(t, http.MethodPost, "/api/cart/items", addItemBody("m1", "Margherita", "9.50", "r1"))

			w := app.do(t, http.MethodPost, "/api/cart/items", addItemBody("p1", "Ramen", "7.00", "r2"))
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			var conflict MutationResponse
			decodeBody(t, w, &conflict)
			if conflict.Outcome != cart.Conflict {
				t.Fatalf("outcome = %s, want conflict", conflict.Outcome)
			}
			if conflict.Cart.PendingConflict == nil || conflict.Cart.PendingConflict.CurrentRestaurantID != "r1" {
				t.Fatalf("pendingConflict = %+v", conflict.Cart.PendingConflict)
			}
			if len(conflict.Cart.Lines) != 1 || conflict.Cart.Lines[0].ItemID != "m1" {
				t.Errorf("cart changed before the conflict was resolved: %+v", conflict.Cart.Lines)
			}

			w = app.do(t, http.MethodPost, "/api/cart/conflict", ResolveRequest{KeepNew: tt.keepNew})
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			var resolved MutationResponse
			decodeBody(t, w, &resolved)
			if resolved.Outcome != tt.wantOutcome {
				t.Errorf("outcome = %s, want %s", resolved.Outcome, tt.wantOutcome)
			}
			if len(resolved.Cart.Lines) != 1 || resolved.Cart.Lines[0].ItemID != tt.wantItem || resolved.Cart.Lines[0].Quantity != 1 {
				t.Errorf("lines = %+v", resolved.Cart.Lines)
			}
			if *resolved.Cart.RestaurantID != tt.wantRestaurant {
				t.Errorf("restaurantId = %s, want %s", *resolved.Cart.RestaurantID, tt.wantRestaurant)
			}
			if resolved.Cart.PendingConflict != nil {
				t.Error("conflict still pending after resolution")
			}
		})
	}
}

func TestCartHandler_Errors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
	}{
		{name: "resolve without conflict", method: http.MethodPost, path: "/api/cart/conflict", body: ResolveRequest{KeepNew: true}, expectedStatus: http.StatusConflict},
		{name: "negative price", method: http.MethodPost, path: "/api/cart/items", body: addItemBody("m1", "Margherita", "-1", "r1"), expectedStatus: http.StatusBadRequest},
		{name: "missing item id", method: http.MethodPost, path: "/api/cart/items", body: addItemBody("", "Margherita", "1", "r1"), expectedStatus: http.StatusBadRequest},
		{name: "malformed body", method: http.MethodPost, path: "/api/cart/items", body: "not an object", expectedStatus: http.StatusBadRequest},
		{name: "empty quantity body", method: http.MethodPatch, path: "/api/cart/items/m1", expectedStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(t, tt.method, tt.path, tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d: %s", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestCartHandler_QuantityRemoveClear(t *testing.T) {
	app := newTestApp(t)
	app.do(t, http.MethodPost, "/api/cart/items", addItemBody("m1", "Margherita", "9.50", "r1"))
	app.do(t, http.MethodPost, "/api/cart/items", addItemBody("m2", "Tiramisu", "4.25", "r1"))

	var view CartResponse
	w := app.do(t, http.MethodPatch, "/api/cart/items/m2", QuantityRequest{Quantity: 3})
	decodeBody(t, w, &view)
	if view.Lines[1].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", view.Lines[1].Quantity)
	}

	w = app.do(t, http.MethodPatch, "/api/cart/items/m2", QuantityRequest{Quantity: 0})
	decodeBody(t, w, &view)
	if view.Lines[1].Quantity != 3 {
		t.Errorf("quantity 0 changed the line to %d", view.Lines[1].Quantity)
	}

	w = app.do(t, http.MethodDelete, "/api/cart/items/m1", nil)
	decodeBody(t, w, &view)
	if len(view.Lines) != 1 || view.Lines[0].ItemID != "m2" {
		t.Errorf("lines after remove = %+v", view.Lines)
	}

	w = app.do(t, http.MethodDelete, "/api/cart", nil)
	decodeBody(t, w, &view)
	if len(view.Lines) != 0 || view.RestaurantID != nil || !view.Total.IsZero() {
		t.Errorf("cart after clear = %+v", view)
	}
}

func TestCartHandler_SessionsAreIsolated(t *testing.T) {
	app := newTestApp(t)
	app.do(t, http.MethodPost, "/api/cart/items", addItemBody("m1", "Margherita", "9.50", "r1"))

	if app.registry.Len() != 1 {
		t.Fatalf("sessions = %d, want 1", app.registry.Len())
	}

	other, err := app.registry.Session(context.Background(), "another-session")
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if !other.State().Empty() {
		t.Error("new session sees another session's cart")
	}
}
