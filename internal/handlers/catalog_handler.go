package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/service"
)

// CatalogHandler handles restaurant and menu browsing
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(service *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{
		service: service,
		logger:  logger,
	}
}

// MenuResponse is a filtered menu, flat and grouped by category
type MenuResponse struct {
	RestaurantID string               `json:"restaurantId"`
	Items        []models.MenuItem    `json:"items"`
	Sections     []models.MenuSection `json:"sections"`
}

// ListRestaurants handles GET /api/restaurants
func (h *CatalogHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	restaurants, err := h.service.ListRestaurants(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}
	if restaurants == nil {
		restaurants = []models.Restaurant{}
	}

	WriteJSON(w, http.StatusOK, restaurants, h.logger)
}

// GetRestaurant handles GET /api/restaurants/{restaurantId}
func (h *CatalogHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantId")

	restaurant, err := h.service.GetRestaurant(r.Context(), restaurantID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, restaurant, h.logger)
}

// GetMenu handles GET /api/restaurants/{restaurantId}/menu.
// Optional query filters: category, available, vegetarian.
func (h *CatalogHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	restaurantID := chi.URLParam(r, "restaurantId")

	filter, err := parseMenuFilter(r)
	if err != nil {
		h.logger.Warn("invalid menu filter", "restaurant_id", restaurantID, "error", err)
		WriteError(w, http.StatusBadRequest, "Invalid filter", h.logger)
		return
	}

	items, err := h.service.Menu(r.Context(), restaurantID, filter)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, MenuResponse{
		RestaurantID: restaurantID,
		Items:        items,
		Sections:     service.GroupByCategory(items),
	}, h.logger)
}

func parseMenuFilter(r *http.Request) (service.MenuFilter, error) {
	q := r.URL.Query()
	filter := service.MenuFilter{Category: q.Get("category")}

	if v := q.Get("available"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, err
		}
		filter.AvailableOnly = b
	}
	if v := q.Get("vegetarian"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return filter, err
		}
		filter.Vegetarian = b
	}
	return filter, nil
}
