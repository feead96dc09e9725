// Package tracker runs fixed-interval background tasks and uses them to watch
// order status.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task runs fn once on Start and then on every tick until stopped.
// A stopped task can be started again.
type Task struct {
	name     string
	interval time.Duration
	fn       func(ctx context.Context)
	log      *slog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTask creates a task; it does nothing until Start is called
func NewTask(name string, interval time.Duration, fn func(ctx context.Context), log *slog.Logger) *Task {
	return &Task{
		name:     name,
		interval: interval,
		fn:       fn,
		log:      log,
	}
}

// Start launches the task loop bound to parent. Starting a running task is a no-op.
func (t *Task) Start(parent context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.loop(ctx, done)
	t.log.Debug("task started", "task", t.name, "interval", t.interval.String())
}

// Stop cancels the loop and waits for the current run to return
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	t.log.Debug("task stopped", "task", t.name)
}

// Restart stops the task if it is running and starts it again on parent
func (t *Task) Restart(parent context.Context) {
	t.Stop()
	t.Start(parent)
}

// Running reports whether the loop is active
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.cancel != nil
}

func (t *Task) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer t.exited(done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.fn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.fn(ctx)
		}
	}
}

// exited clears the task state when the loop ends on its own, as it does when
// the parent context is cancelled, so the task can be started again
func (t *Task) exited(done chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.done != done {
		return
	}
	t.cancel()
	t.cancel, t.done = nil, nil
}
