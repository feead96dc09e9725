package cart

import (
	"strings"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/shopspring/decimal"
)

// Item is a menu item offered for adding to the cart
type Item struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image,omitempty"`
}

func (i Item) valid() bool {
	return strings.TrimSpace(i.ID) != "" && !i.Price.IsNegative()
}

func (i Item) line(restaurantID string) models.CartLine {
	return models.CartLine{
		ItemID:       i.ID,
		Name:         i.Name,
		UnitPrice:    i.Price,
		ImageRef:     i.Image,
		Quantity:     1,
		RestaurantID: restaurantID,
	}
}

func emptyState() models.CartState {
	return models.CartState{Lines: []models.CartLine{}}
}

// conflicts reports whether adding an item of restaurantID would mix restaurants
func conflicts(s models.CartState, restaurantID string) bool {
	return !s.Empty() && s.ActiveRestaurantID != nil && *s.ActiveRestaurantID != restaurantID
}

// addLine increments the matching line or appends a new one.
// The caller has already ruled out a restaurant conflict.
func addLine(s models.CartState, item Item, restaurantID string) (models.CartState, Outcome) {
	next := s.Clone()
	for i := range next.Lines {
		if next.Lines[i].ItemID == item.ID {
			next.Lines[i].Quantity++
			return next, Incremented
		}
	}
	next.Lines = append(next.Lines, item.line(restaurantID))
	rid := restaurantID
	next.ActiveRestaurantID = &rid
	return next, Added
}

// replaceWith discards every line and starts over with a single item
func replaceWith(item Item, restaurantID string) models.CartState {
	rid := restaurantID
	return models.CartState{
		Lines:              []models.CartLine{item.line(restaurantID)},
		ActiveRestaurantID: &rid,
	}
}

func removeLine(s models.CartState, itemID string) (models.CartState, bool) {
	next := models.CartState{Lines: make([]models.CartLine, 0, len(s.Lines))}
	removed := false
	for _, line := range s.Lines {
		if line.ItemID == itemID {
			removed = true
			continue
		}
		next.Lines = append(next.Lines, line)
	}
	if !removed {
		return s, false
	}
	if len(next.Lines) > 0 && s.ActiveRestaurantID != nil {
		rid := *s.ActiveRestaurantID
		next.ActiveRestaurantID = &rid
	}
	return next, true
}

func setQuantity(s models.CartState, itemID string, quantity int) (models.CartState, bool) {
	if quantity < 1 {
		return s, false
	}
	for i, line := range s.Lines {
		if line.ItemID != itemID {
			continue
		}
		if line.Quantity == quantity {
			return s, false
		}
		next := s.Clone()
		next.Lines[i].Quantity = quantity
		return next, true
	}
	return s, false
}

// normalize repairs a restored snapshot so the cart invariants hold again:
// lines must have an id and a positive quantity, ids are unique, and every line
// belongs to the active restaurant.
func normalize(s models.CartState) models.CartState {
	out := emptyState()

	var active string
	if s.ActiveRestaurantID != nil {
		active = *s.ActiveRestaurantID
	}
	if active == "" {
		for _, line := range s.Lines {
			if line.RestaurantID != "" {
				active = line.RestaurantID
				break
			}
		}
	}

	if active == "" {
		return out
	}

	seen := make(map[string]bool, len(s.Lines))
	for _, line := range s.Lines {
		if line.ItemID == "" || line.Quantity < 1 || seen[line.ItemID] {
			continue
		}
		if line.RestaurantID == "" {
			line.RestaurantID = active
		}
		if line.RestaurantID != active {
			continue
		}
		seen[line.ItemID] = true
		out.Lines = append(out.Lines, line)
	}

	if len(out.Lines) > 0 {
		out.ActiveRestaurantID = &active
	}
	return out
}
