package checkout

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrEmptyCart        = errors.New("cart is empty")
	ErrItemUnavailable  = errors.New("item is no longer available")
	ErrPriceChanged     = errors.New("item price has changed")
	ErrCheckoutNotFound = errors.New("checkout not found")
	ErrAlreadyPlaced    = errors.New("order has already been placed")
	ErrNotAwaiting      = errors.New("checkout is not awaiting payment")
	ErrInFlight         = errors.New("checkout request already in progress")
	ErrPaymentFailed    = errors.New("payment was not successful")
)

// ValidationError lists the invalid input fields with a message for each
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, e.Fields[name])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}
