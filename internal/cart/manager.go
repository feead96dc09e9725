package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidItem       = errors.New("item must have an id, a restaurant and a non-negative price")
	ErrNoPendingConflict = errors.New("no pending cross-restaurant conflict")
)

// Outcome describes what a cart operation did
type Outcome string

const (
	Added       Outcome = "added"
	Incremented Outcome = "incremented"
	Conflict    Outcome = "conflict"
	Replaced    Outcome = "replaced"
	Discarded   Outcome = "discarded"
)

// PendingAdd is an add request waiting for the user to decide whether the
// current cart may be discarded
type PendingAdd struct {
	Item                Item   `json:"item"`
	RestaurantID        string `json:"restaurantId"`
	CurrentRestaurantID string `json:"currentRestaurantId"`
}

// Manager owns the cart of one session. Every mutation is written to the store
// before it becomes visible; if the write fails the cart keeps its previous state.
type Manager struct {
	mu      sync.Mutex
	store   Store
	keys    Keys
	state   models.CartState
	pending *PendingAdd
	log     *slog.Logger
}

// Load restores the cart saved under keys, or starts an empty one
func Load(ctx context.Context, store Store, keys Keys, log *slog.Logger) (*Manager, error) {
	state, err := restore(ctx, store, keys, log)
	if err != nil {
		return nil, err
	}
	return &Manager{
		store: store,
		keys:  keys,
		state: state,
		log:   log,
	}, nil
}

// AddItem adds one unit of item. When the cart holds another restaurant's items
// nothing changes: the add is parked and Conflict is returned until Resolve is called.
func (m *Manager) AddItem(ctx context.Context, item Item, restaurantID string) (Outcome, error) {
	if !item.valid() || restaurantID == "" {
		return "", ErrInvalidItem
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = nil
	if conflicts(m.state, restaurantID) {
		m.pending = &PendingAdd{
			Item:                item,
			RestaurantID:        restaurantID,
			CurrentRestaurantID: *m.state.ActiveRestaurantID,
		}
		m.log.Debug("cart conflict",
			"item_id", item.ID,
			"restaurant_id", restaurantID,
			"current_restaurant_id", *m.state.ActiveRestaurantID,
		)
		return Conflict, nil
	}

	next, outcome := addLine(m.state, item, restaurantID)
	if err := m.commit(ctx, next); err != nil {
		return "", err
	}
	return outcome, nil
}

// Resolve settles the pending conflict. keepNew replaces the cart with the parked
// item; otherwise the parked item is dropped and the cart stays as it is.
func (m *Manager) Resolve(ctx context.Context, keepNew bool) (Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return "", ErrNoPendingConflict
	}
	pending := *m.pending

	if !keepNew {
		m.pending = nil
		return Discarded, nil
	}

	if err := m.commit(ctx, replaceWith(pending.Item, pending.RestaurantID)); err != nil {
		return "", err
	}
	m.pending = nil
	m.log.Info("cart switched restaurant",
		"from", pending.CurrentRestaurantID,
		"to", pending.RestaurantID,
	)
	return Replaced, nil
}

// PendingConflict returns the parked add, if any
func (m *Manager) PendingConflict() (PendingAdd, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.pending == nil {
		return PendingAdd{}, false
	}
	return *m.pending, true
}

// RemoveItem drops the line for itemID. Unknown ids are ignored.
func (m *Manager) RemoveItem(ctx context.Context, itemID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = nil
	next, changed := removeLine(m.state, itemID)
	if !changed {
		return nil
	}
	return m.commit(ctx, next)
}

// UpdateQuantity sets the quantity of a line. Quantities below one are ignored;
// use RemoveItem to take a line out.
func (m *Manager) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = nil
	next, changed := setQuantity(m.state, itemID, quantity)
	if !changed {
		return nil
	}
	return m.commit(ctx, next)
}

// Clear empties the cart
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pending = nil
	return m.commit(ctx, emptyState())
}

// Total returns the sum of unit price times quantity over all lines
func (m *Manager) Total() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.Total()
}

// State returns a copy of the current cart
func (m *Manager) State() models.CartState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state.Clone()
}

// commit must be called with m.mu held
func (m *Manager) commit(ctx context.Context, next models.CartState) error {
	if err := save(ctx, m.store, m.keys, m.state, next); err != nil {
		m.log.Error("failed to persist cart", "key", m.keys.Lines, "error", err)
		return err
	}
	m.state = next
	return nil
}
