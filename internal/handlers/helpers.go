package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/cart"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/checkout"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/client"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads a size-limited JSON body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeServiceError maps domain and upstream errors to HTTP responses
func writeServiceError(w http.ResponseWriter, err error, logger *slog.Logger) {
	var verr *checkout.ValidationError
	if errors.As(err, &verr) {
		logger.Warn("request validation failed", "error", err)
		WriteValidationError(w, verr.Fields, logger)
		return
	}

	status, message := errorStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err)
	} else {
		logger.Warn("request rejected", "status", status, "error", err)
	}
	WriteError(w, status, message, logger)
}

func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, cart.ErrInvalidItem),
		errors.Is(err, cart.ErrNoSession),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, service.ErrInvalidMenuItem),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrInvalidAddress),
		errors.Is(err, service.ErrMissingID):
		return http.StatusBadRequest, err.Error()

	case errors.Is(err, cart.ErrNoPendingConflict),
		errors.Is(err, checkout.ErrItemUnavailable),
		errors.Is(err, checkout.ErrPriceChanged),
		errors.Is(err, checkout.ErrAlreadyPlaced),
		errors.Is(err, checkout.ErrNotAwaiting),
		errors.Is(err, checkout.ErrInFlight),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNotCancellable),
		errors.Is(err, service.ErrAddressLimit):
		return http.StatusConflict, err.Error()

	case errors.Is(err, checkout.ErrPaymentFailed):
		return http.StatusPaymentRequired, err.Error()

	case errors.Is(err, checkout.ErrCheckoutNotFound):
		return http.StatusNotFound, "Checkout not found"

	case errors.Is(err, service.ErrAddressNotFound):
		return http.StatusNotFound, "Address not found"
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch {
		case errors.Is(err, client.ErrNotFound):
			return http.StatusNotFound, apiErr.Message
		case errors.Is(err, client.ErrUnauthorized):
			return http.StatusUnauthorized, apiErr.Message
		case errors.Is(err, client.ErrForbidden):
			return http.StatusForbidden, apiErr.Message
		case errors.Is(err, client.ErrBadRequest):
			return http.StatusBadRequest, apiErr.Message
		}
		return http.StatusBadGateway, "Upstream service error"
	}

	var timeout interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &timeout) && timeout.Timeout()) {
		return http.StatusGatewayTimeout, "Upstream service timed out"
	}
	return http.StatusInternalServerError, "Internal server error"
}
