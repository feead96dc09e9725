package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/checkout"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/client"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/storage"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid cart item", cart.ErrInvalidItem, http.StatusBadRequest},
		{"no pending conflict", cart.ErrNoPendingConflict, http.StatusConflict},
		{"wrapped price change", fmt.Errorf("%w: Margherita", checkout.ErrPriceChanged), http.StatusConflict},
		{"payment declined", checkout.ErrPaymentFailed, http.StatusPaymentRequired},
		{"checkout not found", checkout.ErrCheckoutNotFound, http.StatusNotFound},
		{"invalid transition", service.ErrInvalidTransition, http.StatusConflict},
		{"bad dashboard range", service.ErrInvalidRange, http.StatusBadRequest},
		{"invalid address", fmt.Errorf("%w: city is required", service.ErrInvalidAddress), http.StatusBadRequest},
		{"address not found", service.ErrAddressNotFound, http.StatusNotFound},
		{"address book full", service.ErrAddressLimit, http.StatusConflict},
		{"upstream 404", &client.APIError{StatusCode: 404, Message: "Order not found"}, http.StatusNotFound},
		{"upstream 401", &client.APIError{StatusCode: 401}, http.StatusUnauthorized},
		{"upstream 422", &client.APIError{StatusCode: 422}, http.StatusBadRequest},
		{"upstream 500", fmt.Errorf("create order: %w", &client.APIError{StatusCode: 500}), http.StatusBadGateway},
		{"deadline", fmt.Errorf("GET /orders: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got, _ := errorStatus(tt.err); got != tt.expected {
				t.Errorf("errorStatus() = %d, want %d", got, tt.expected)
			}
		})
	}
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		checks         map[string]Pinger
		expectedStatus int
		expectedState  string
	}{
		{name: "no checks", expectedStatus: http.StatusOK, expectedState: "healthy"},
		{name: "storage up", checks: map[string]Pinger{"storage": storage.NewMemory()}, expectedStatus: http.StatusOK, expectedState: "healthy"},
		{name: "storage down", checks: map[string]Pinger{"storage": failingPinger{}}, expectedStatus: http.StatusServiceUnavailable, expectedState: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler("test", tt.checks, quietLogger())

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, w.Code)
			}
			var resp HealthResponse
			decodeBody(t, w, &resp)
			if resp.Status != tt.expectedState || resp.Version != "test" {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}
