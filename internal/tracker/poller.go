package tracker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

var ErrNoOrderID = errors.New("order id is required")

// Watcher streams status updates of one order. The channel is closed when ctx
// ends or the order reaches a terminal status.
type Watcher interface {
	Watch(ctx context.Context, orderID string) (<-chan models.Order, error)
}

// OrderFetcher loads the current state of an order
type OrderFetcher interface {
	GetOrder(ctx context.Context, id string) (*models.Order, error)
}

// Poller implements Watcher by fetching the order on a fixed interval
type Poller struct {
	fetcher  OrderFetcher
	interval time.Duration
	log      *slog.Logger
}

// NewPoller creates a polling watcher
func NewPoller(fetcher OrderFetcher, interval time.Duration, log *slog.Logger) *Poller {
	return &Poller{
		fetcher:  fetcher,
		interval: interval,
		log:      log,
	}
}

// Watch emits the order on the first successful fetch and whenever its status
// changes afterwards. Fetch errors are logged and the next tick tries again.
func (p *Poller) Watch(ctx context.Context, orderID string) (<-chan models.Order, error) {
	if orderID == "" {
		return nil, ErrNoOrderID
	}

	updates := make(chan models.Order, 1)
	ctx, cancel := context.WithCancel(ctx)

	var last models.OrderStatus
	seen := false

	task := NewTask("order-status:"+orderID, p.interval, func(ctx context.Context) {
		order, err := p.fetcher.GetOrder(ctx, orderID)
		if err != nil {
			if ctx.Err() == nil {
				p.log.Warn("order status poll failed", "order_id", orderID, "error", err)
			}
			return
		}
		if seen && order.Status == last {
			return
		}
		seen, last = true, order.Status

		select {
		case updates <- *order:
		case <-ctx.Done():
			return
		}
		if order.Status.Terminal() {
			cancel()
		}
	}, p.log)

	task.Start(ctx)
	go func() {
		<-ctx.Done()
		task.Stop()
		close(updates)
	}()

	return updates, nil
}
