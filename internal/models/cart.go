package models

import "github.com/shopspring/decimal"

// CartLine is one selected menu item with its quantity.
// RestaurantID is duplicated on every line so a restored snapshot can be checked
// against the cart's active restaurant.
type CartLine struct {
	ItemID       string          `json:"itemId"`
	Name         string          `json:"name"`
	UnitPrice    decimal.Decimal `json:"price"`
	ImageRef     string          `json:"image,omitempty"`
	Quantity     int             `json:"quantity"`
	RestaurantID string          `json:"restaurantId"`
}

// Subtotal returns unit price times quantity
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// CartState is the full content of a shopping cart.
// ActiveRestaurantID is nil if and only if Lines is empty.
type CartState struct {
	Lines              []CartLine `json:"lines"`
	ActiveRestaurantID *string    `json:"restaurantId"`
}

// Empty reports whether the cart holds no lines
func (s CartState) Empty() bool {
	return len(s.Lines) == 0
}

// Total returns the sum of every line subtotal
func (s CartState) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.Lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount returns the number of units across all lines
func (s CartState) ItemCount() int {
	n := 0
	for _, line := range s.Lines {
		n += line.Quantity
	}
	return n
}

// Clone returns a deep copy of the state
func (s CartState) Clone() CartState {
	out := CartState{Lines: make([]CartLine, len(s.Lines))}
	copy(out.Lines, s.Lines)
	if s.ActiveRestaurantID != nil {
		id := *s.ActiveRestaurantID
		out.ActiveRestaurantID = &id
	}
	return out
}
