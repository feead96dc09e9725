package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrNoSession = errors.New("session id is required")

type entry struct {
	manager  *Manager
	lastUsed time.Time
}

// Registry hands out one Manager per browser session, loading it from the
// store on first use. Idle sessions are dropped by EvictIdle; their carts
// stay in the store and are reloaded on the next access.
type Registry struct {
	store Store
	log   *slog.Logger
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates a registry backed by store
func NewRegistry(store Store, log *slog.Logger) *Registry {
	return &Registry{
		store:   store,
		log:     log,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Session returns the cart manager of sessionID. The store is read without
// holding the registry lock, so a slow load only delays its own session.
func (r *Registry) Session(ctx context.Context, sessionID string) (*Manager, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	if m, ok := r.touch(sessionID); ok {
		return m, nil
	}

	loaded, err := Load(ctx, r.store, SessionKeys(sessionID), r.log.With("session_id", sessionID))
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// another request may have loaded the session meanwhile
	if e, ok := r.entries[sessionID]; ok {
		e.lastUsed = r.now()
		return e.manager, nil
	}
	r.entries[sessionID] = &entry{manager: loaded, lastUsed: r.now()}
	return loaded, nil
}

func (r *Registry) touch(sessionID string) (*Manager, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[sessionID]
	if !ok {
		return nil, false
	}
	e.lastUsed = r.now()
	return e.manager, true
}

// Forget drops the cached manager so the next access reloads from the store
func (r *Registry) Forget(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, sessionID)
}

// EvictIdle forgets every session not accessed for olderThan and returns how
// many were dropped
func (r *Registry) EvictIdle(olderThan time.Duration) int {
	cutoff := r.now().Add(-olderThan)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, e := range r.entries {
		if e.lastUsed.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		r.log.Debug("evicted idle cart sessions", "count", evicted, "remaining", len(r.entries))
	}
	return evicted
}

// Len returns the number of sessions currently held in memory
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.entries)
}
