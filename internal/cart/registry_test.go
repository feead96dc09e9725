package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRegistry_Session(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	reg := NewRegistry(store, discardLogger())

	if _, err := reg.Session(ctx, ""); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Session(\"\") error = %v, want ErrNoSession", err)
	}

	a, err := reg.Session(ctx, "alice")
	if err != nil {
		t.Fatalf("Session(alice) error = %v", err)
	}
	again, _ := reg.Session(ctx, "alice")
	if a != again {
		t.Error("Session() returned a different manager for the same session")
	}

	b, _ := reg.Session(ctx, "bob")
	a.AddItem(ctx, item("i1", 10), "r1")
	if !b.State().Empty() {
		t.Error("sessions share cart state")
	}

	if _, ok := store.entries["alice:cart"]; !ok {
		t.Error("alice's cart was not stored under her session key")
	}

	reg.Forget("alice")
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
	reloaded, _ := reg.Session(ctx, "alice")
	if reloaded == a {
		t.Error("Forget() did not drop the cached manager")
	}
	if len(reloaded.State().Lines) != 1 {
		t.Error("reloaded session lost its persisted cart")
	}
}

func TestRegistry_EvictIdle(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	reg := NewRegistry(store, discardLogger())

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }

	idle, _ := reg.Session(ctx, "idle")
	idle.AddItem(ctx, item("i1", 10), "r1")
	reg.Session(ctx, "busy")

	now = now.Add(20 * time.Minute)
	reg.Session(ctx, "busy")

	now = now.Add(15 * time.Minute)
	if n := reg.EvictIdle(30 * time.Minute); n != 1 {
		t.Fatalf("EvictIdle() = %d, want 1", n)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}

	back, _ := reg.Session(ctx, "idle")
	if back == idle {
		t.Error("evicted session returned the cached manager")
	}
	if len(back.State().Lines) != 1 {
		t.Error("evicted session lost its persisted cart")
	}
}

type gatedStore struct {
	*mapStore
	gateKey string
	entered chan struct{}
	release chan struct{}
}

func (s *gatedStore) Get(ctx context.Context, key string) (string, bool, error) {
	if key == s.gateKey {
		close(s.entered)
		<-s.release
	}
	return s.mapStore.Get(ctx, key)
}

func TestRegistry_SlowLoadDoesNotBlockOthers(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{
		mapStore: newMapStore(),
		gateKey:  SessionKeys("slow").Lines,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	reg := NewRegistry(store, discardLogger())

	slowDone := make(chan error, 1)
	go func() {
		_, err := reg.Session(ctx, "slow")
		slowDone <- err
	}()
	<-store.entered

	fastDone := make(chan error, 1)
	go func() {
		_, err := reg.Session(ctx, "fast")
		fastDone <- err
	}()

	select {
	case err := <-fastDone:
		if err != nil {
			t.Fatalf("Session(fast) error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Session(fast) waited on another session's load")
	}

	close(store.release)
	if err := <-slowDone; err != nil {
		t.Fatalf("Session(slow) error = %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestRegistry_ConcurrentFirstAccess(t *testing.T) {
	ctx := context.Background()
	reg := NewRegistry(newMapStore(), discardLogger())

	const n = 8
	managers := make([]*Manager, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			managers[i], _ = reg.Session(ctx, "shared")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		if managers[i] == nil || managers[i] != managers[0] {
			t.Fatal("concurrent first access produced different managers")
		}
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}
