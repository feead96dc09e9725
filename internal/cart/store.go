package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

const (
	linesKey      = "cart"
	restaurantKey = "cartRestaurantId"
)

// Store is the durable key-value storage a cart snapshot is written to
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Keys names the two entries a cart snapshot is split across
type Keys struct {
	Lines      string
	Restaurant string
}

// SessionKeys returns the storage keys of a browser session.
// An empty session id yields the bare, unprefixed keys.
func SessionKeys(sessionID string) Keys {
	if sessionID == "" {
		return Keys{Lines: linesKey, Restaurant: restaurantKey}
	}
	return Keys{
		Lines:      sessionID + ":" + linesKey,
		Restaurant: sessionID + ":" + restaurantKey,
	}
}

// Batcher is implemented by stores that can apply several writes atomically
type Batcher interface {
	Apply(ctx context.Context, set map[string]string, del []string) error
}

// save writes both entries of the snapshot. A cart without an active restaurant
// removes the restaurant entry instead of writing null. Either both entries
// change or neither does: a Batcher applies them in one step, any other store
// gets the lines entry rolled back to prev when the restaurant write fails.
func save(ctx context.Context, store Store, keys Keys, prev, next models.CartState) error {
	set, del, err := encode(keys, next)
	if err != nil {
		return err
	}

	if b, ok := store.(Batcher); ok {
		if err := b.Apply(ctx, set, del); err != nil {
			return fmt.Errorf("persist cart: %w", err)
		}
		return nil
	}

	if err := store.Set(ctx, keys.Lines, set[keys.Lines]); err != nil {
		return fmt.Errorf("persist cart lines: %w", err)
	}

	if rid, ok := set[keys.Restaurant]; ok {
		err = store.Set(ctx, keys.Restaurant, rid)
	} else {
		err = store.Delete(ctx, keys.Restaurant)
	}
	if err == nil {
		return nil
	}

	undo, _, encErr := encode(keys, prev)
	if encErr == nil {
		encErr = store.Set(ctx, keys.Lines, undo[keys.Lines])
	}
	if encErr != nil {
		return fmt.Errorf("persist cart restaurant: %w (rollback of lines failed: %v)", err, encErr)
	}
	return fmt.Errorf("persist cart restaurant: %w", err)
}

// encode renders a snapshot as the entries to set and the keys to delete
func encode(keys Keys, s models.CartState) (map[string]string, []string, error) {
	lines := s.Lines
	if lines == nil {
		lines = []models.CartLine{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, nil, fmt.Errorf("encode cart lines: %w", err)
	}
	set := map[string]string{keys.Lines: string(data)}

	if s.ActiveRestaurantID == nil {
		return set, []string{keys.Restaurant}, nil
	}
	rid, err := json.Marshal(*s.ActiveRestaurantID)
	if err != nil {
		return nil, nil, fmt.Errorf("encode cart restaurant: %w", err)
	}
	set[keys.Restaurant] = string(rid)
	return set, nil, nil
}

// restore reads a snapshot back. Missing entries mean an empty cart; an undecodable
// lines entry is logged and dropped.
func restore(ctx context.Context, store Store, keys Keys, log *slog.Logger) (models.CartState, error) {
	state := emptyState()

	raw, ok, err := store.Get(ctx, keys.Lines)
	if err != nil {
		return state, fmt.Errorf("read cart lines: %w", err)
	}
	if ok && raw != "" {
		var lines []models.CartLine
		if err := json.Unmarshal([]byte(raw), &lines); err != nil {
			log.Warn("discarding unreadable cart snapshot", "key", keys.Lines, "error", err)
		} else if lines != nil {
			state.Lines = lines
		}
	}

	raw, ok, err = store.Get(ctx, keys.Restaurant)
	if err != nil {
		return state, fmt.Errorf("read cart restaurant: %w", err)
	}
	if ok && raw != "" {
		var rid string
		if err := json.Unmarshal([]byte(raw), &rid); err != nil {
			// older snapshots stored the id without JSON quoting
			rid = raw
		}
		if rid != "" {
			state.ActiveRestaurantID = &rid
		}
	}

	return normalize(state), nil
}
