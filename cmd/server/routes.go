package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/handlers"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/middleware"
)

type routeHandlers struct {
	health   http.Handler
	catalog  *handlers.CatalogHandler
	cart     *handlers.CartHandler
	checkout *handlers.CheckoutHandler
	address  *handlers.AddressHandler
	orders   *handlers.OrderHandler
	owner    *handlers.OwnerHandler
}

func newRouter(cfg *config.Config, h routeHandlers, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.SessionHeader},
		ExposedHeaders:   []string{middleware.SessionHeader, "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", h.health.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Session(cfg.Server.SecureCookies))
		r.Use(middleware.Authenticate(cfg.Auth.JWTSecret))

		// The tracking stream outlives the request timeout
		r.With(middleware.RequireAuth).Get("/orders/{orderId}/track", h.orders.Track)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(60 * time.Second))

			// Browsing
			r.Get("/restaurants", h.catalog.ListRestaurants)
			r.Get("/restaurants/{restaurantId}", h.catalog.GetRestaurant)
			r.Get("/restaurants/{restaurantId}/menu", h.catalog.GetMenu)

			// Session cart
			r.Get("/cart", h.cart.GetCart)
			r.Delete("/cart", h.cart.ClearCart)
			r.Post("/cart/items", h.cart.AddItem)
			r.Patch("/cart/items/{itemId}", h.cart.UpdateItem)
			r.Delete("/cart/items/{itemId}", h.cart.RemoveItem)
			r.Post("/cart/conflict", h.cart.ResolveConflict)

			// Signed-in customers
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)

				r.Post("/checkout", h.checkout.Begin)
				r.Get("/checkout/{orderId}", h.checkout.Get)
				r.Post("/checkout/{orderId}/payment-intent", h.checkout.RequestPayment)
				r.Post("/checkout/{orderId}/complete", h.checkout.Complete)
				r.Post("/checkout/{orderId}/cancel", h.checkout.Cancel)

				r.Get("/orders", h.orders.ListOrders)
				r.Get("/orders/{orderId}", h.orders.GetOrder)
				r.Post("/orders/{orderId}/cancel", h.orders.CancelOrder)

				r.Get("/me/addresses", h.address.ListAddresses)
				r.Post("/me/addresses", h.address.CreateAddress)
				r.Patch("/me/addresses/{addressId}", h.address.UpdateAddress)
				r.Delete("/me/addresses/{addressId}", h.address.DeleteAddress)
			})

			// Restaurant owners
			r.Route("/owner", func(r chi.Router) {
				r.Use(middleware.RequireRole(cfg.Auth.OwnerRoles...))

				r.Get("/orders", h.owner.ListOrders)
				r.Patch("/orders/{orderId}/status", h.owner.UpdateStatus)
				r.Get("/restaurants/{restaurantId}/dashboard", h.owner.Dashboard)
				r.Post("/restaurants/{restaurantId}/menu", h.owner.CreateMenuItem)
				r.Get("/restaurants/{restaurantId}/menu/export", h.owner.ExportMenu)
				r.Patch("/restaurants/{restaurantId}/menu/{itemId}", h.owner.UpdateMenuItem)
				r.Delete("/restaurants/{restaurantId}/menu/{itemId}", h.owner.DeleteMenuItem)
			})
		})
	})

	return r
}
