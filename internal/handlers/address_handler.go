package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/middleware"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
)

// AddressHandler serves the signed-in customer's address book
type AddressHandler struct {
	addresses *service.AddressService
	log       *slog.Logger
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(addresses *service.AddressService, log *slog.Logger) *AddressHandler {
	return &AddressHandler{
		addresses: addresses,
		log:       log,
	}
}

// ListAddresses handles GET /api/me/addresses
func (h *AddressHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	book, err := h.addresses.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, book, h.log)
}

// CreateAddress handles POST /api/me/addresses
func (h *AddressHandler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var in models.AddressInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	added, err := h.addresses.Add(r.Context(), userID, in)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusCreated, added, h.log)
}

// UpdateAddress handles PATCH /api/me/addresses/{addressId}
func (h *AddressHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	var in models.AddressInput
	if err := decodeJSON(w, r, &in); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.log)
		return
	}

	updated, err := h.addresses.Update(r.Context(), userID, chi.URLParam(r, "addressId"), in)
	if err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	WriteJSON(w, http.StatusOK, updated, h.log)
}

// DeleteAddress handles DELETE /api/me/addresses/{addressId}
func (h *AddressHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.addresses.Delete(r.Context(), userID, chi.URLParam(r, "addressId")); err != nil {
		writeServiceError(w, err, h.log)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *AddressHandler) userID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Sign in to manage addresses", h.log)
		return "", false
	}
	return id.UserID, true
}
