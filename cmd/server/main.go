package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/checkout"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/client"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/config"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/handlers"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/storage"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/tracker"
	"github.com/Lixing-Zhang/kart-challenge/storefront/pkg/logger"
)

const version = "1.0.0"

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	log.Info("starting storefront server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"api_url", cfg.API.BaseURL,
		"storage", cfg.Storage.Driver,
		"log_level", cfg.LogLevel,
	)

	// Cart persistence
	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer store.Close()

	// Backend client and services
	api := client.New(cfg.API.BaseURL, cfg.API.Timeout, log.With("component", "api_client"))
	registry := cart.NewRegistry(store, log.With("component", "cart"))
	catalogService := service.NewCatalogService(api)
	orderService := service.NewOrderService(api)
	dashboardService := service.NewDashboardService(api)
	addressService := service.NewAddressService(store)
	checkoutService := checkout.NewService(api, api, api, log.With("component", "checkout"))
	poller := tracker.NewPoller(api, cfg.Orders.PollInterval, log.With("component", "order_tracker"))

	// Background sweep of checkouts left unpaid
	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	sweeper := tracker.NewTask("checkout-sweeper", cfg.Orders.SweepInterval, func(ctx context.Context) {
		checkoutService.SweepAbandoned(ctx, cfg.Orders.AbandonAfter)
	}, log)
	sweeper.Start(appCtx)

	// Drop carts of idle sessions from memory; they reload from storage
	evictor := tracker.NewTask("cart-evictor", cfg.Orders.SweepInterval, func(ctx context.Context) {
		registry.EvictIdle(cfg.Storage.CartIdleAfter)
	}, log)
	evictor.Start(appCtx)

	// Initialize handlers
	h := routeHandlers{
		health:   handlers.NewHealthHandler(version, map[string]handlers.Pinger{"storage": store}, log),
		catalog:  handlers.NewCatalogHandler(catalogService, log),
		cart:     handlers.NewCartHandler(registry, log),
		checkout: handlers.NewCheckoutHandler(checkoutService, registry, addressService, log),
		address:  handlers.NewAddressHandler(addressService, log),
		orders:   handlers.NewOrderHandler(orderService, poller, cfg.CORS.AllowedOrigins, log),
		owner:    handlers.NewOwnerHandler(orderService, catalogService, dashboardService, log),
	}
	r := newRouter(cfg, h, log)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	sweeper.Stop()
	evictor.Stop()

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully", "open_checkouts", checkoutService.Len(), "cart_sessions", registry.Len())
}
