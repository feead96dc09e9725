// Package checkout drives the two-phase order placement: an order is created
// from the cart first, and the cart is cleared only after the payment
// processor confirms the charge.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/client"
	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

const paymentMethodCard = "card"

// OrderGateway creates and updates orders on the backend
type OrderGateway interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, update models.StatusUpdate) error
	CancelOrder(ctx context.Context, id string) error
}

// PaymentGateway talks to the payment processor
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error)
	ConfirmPayment(ctx context.Context, paymentIntentID string) (*models.PaymentConfirmation, error)
}

// MenuReader loads the data needed to re-check a cart before ordering
type MenuReader interface {
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
}

// Cart is the part of a cart manager checkout needs
type Cart interface {
	State() models.CartState
	Clear(ctx context.Context) error
}

// Service holds open checkouts keyed by order id
type Service struct {
	orders   OrderGateway
	payments PaymentGateway
	menus    MenuReader
	log      *slog.Logger
	now      func() time.Time

	mu        sync.Mutex
	sessions  map[string]*Session
	beginning map[string]bool
}

// NewService creates a checkout service
func NewService(orders OrderGateway, payments PaymentGateway, menus MenuReader, log *slog.Logger) *Service {
	return &Service{
		orders:    orders,
		payments:  payments,
		menus:     menus,
		log:       log,
		now:       time.Now,
		sessions:  make(map[string]*Session),
		beginning: make(map[string]bool),
	}
}

// Begin validates the address, re-checks every cart line against the live menu
// and creates a pending order. The cart is left untouched.
func (s *Service) Begin(ctx context.Context, cartSession string, c Cart, addr models.DeliveryAddress) (Session, error) {
	addr = normalizeAddress(addr)
	if err := validateAddress(addr); err != nil {
		return Session{}, err
	}

	state := c.State()
	if state.Empty() || state.ActiveRestaurantID == nil {
		return Session{}, ErrEmptyCart
	}
	restaurantID := *state.ActiveRestaurantID

	if !s.markBeginning(cartSession) {
		return Session{}, ErrInFlight
	}
	defer s.unmarkBeginning(cartSession)

	restaurant, err := s.verify(ctx, restaurantID, state.Lines)
	if err != nil {
		return Session{}, err
	}

	total := state.Total()
	items := make([]models.OrderItem, 0, len(state.Lines))
	for _, line := range state.Lines {
		items = append(items, models.OrderItem{
			MenuItem: line.ItemID,
			Name:     line.Name,
			Quantity: line.Quantity,
			Price:    line.UnitPrice,
		})
	}

	order, err := s.orders.CreateOrder(ctx, models.CreateOrderRequest{
		RestaurantID:    restaurantID,
		Items:           items,
		DeliveryAddress: addr,
		TotalAmount:     total,
		Status:          models.StatusPending,
		PaymentMethod:   paymentMethodCard,
	})
	if err != nil {
		return Session{}, fmt.Errorf("create order: %w", err)
	}
	if !order.TotalAmount.IsZero() {
		total = order.TotalAmount
	}

	now := s.now()
	sess := &Session{
		ID:             uuid.New().String(),
		CartSession:    cartSession,
		OrderID:        order.ID,
		RestaurantID:   restaurantID,
		RestaurantName: restaurant.Name,
		Lines:          state.Clone().Lines,
		Total:          total,
		AmountMinor:    minorUnits(total),
		Address:        addr,
		Stage:          StageAwaitingPayment,
		CreatedAt:      now,
		UpdatedAt:      now,
		token:          client.TokenFrom(ctx),
	}

	s.mu.Lock()
	s.sessions[order.ID] = sess
	out := sess.snapshot()
	s.mu.Unlock()

	s.log.Info("checkout started",
		"checkout_id", sess.ID,
		"order_id", order.ID,
		"restaurant_id", restaurantID,
		"total", total.StringFixed(2),
	)
	return out, nil
}

// verify fetches the restaurant and its menu concurrently and checks that
// every line is still on the menu, available and at the same price.
func (s *Service) verify(ctx context.Context, restaurantID string, lines []models.CartLine) (*models.Restaurant, error) {
	var (
		restaurant *models.Restaurant
		menu       []models.MenuItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.menus.GetRestaurant(gctx, restaurantID)
		if err != nil {
			return fmt.Errorf("get restaurant %s: %w", restaurantID, err)
		}
		restaurant = r
		return nil
	})
	g.Go(func() error {
		items, err := s.menus.GetMenu(gctx, restaurantID)
		if err != nil {
			return fmt.Errorf("get menu %s: %w", restaurantID, err)
		}
		menu = items
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byID := make(map[string]models.MenuItem, len(menu))
	for _, item := range menu {
		byID[item.ID] = item
	}
	for _, line := range lines {
		item, ok := byID[line.ItemID]
		if !ok || !item.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, line.Name)
		}
		if !item.Price.Equal(line.UnitPrice) {
			return nil, fmt.Errorf("%w: %s is now %s", ErrPriceChanged, line.Name, item.Price.StringFixed(2))
		}
	}
	return restaurant, nil
}

// RequestPayment asks the processor for a payment intent covering the order total
func (s *Service) RequestPayment(ctx context.Context, cartSession, orderID string) (Session, error) {
	sess, err := s.acquire(cartSession, orderID)
	if err != nil {
		return Session{}, err
	}
	defer s.release(sess)

	if !sess.open() {
		return Session{}, s.closedError(sess)
	}

	intent, err := s.payments.CreatePaymentIntent(ctx, models.PaymentIntentRequest{
		Amount:  sess.AmountMinor,
		OrderID: orderID,
	})
	if err != nil {
		return Session{}, fmt.Errorf("create payment intent: %w", err)
	}

	s.mu.Lock()
	sess.PaymentIntentID = intent.ID
	sess.ClientSecret = intent.ClientSecret
	sess.Stage = StagePaymentRequested
	sess.UpdatedAt = s.now()
	out := sess.snapshot()
	s.mu.Unlock()

	s.log.Info("payment intent created", "order_id", orderID, "amount", sess.AmountMinor)
	return out, nil
}

// Complete confirms the payment. Only a successful confirmation clears the
// cart and marks the order confirmed. Failures after that point are logged
// and reported through CartCleared and StatusSynced.
func (s *Service) Complete(ctx context.Context, cartSession, orderID, paymentIntentID string, c Cart) (Session, error) {
	sess, err := s.acquire(cartSession, orderID)
	if err != nil {
		return Session{}, err
	}
	defer s.release(sess)

	if sess.Stage == StagePlaced {
		return Session{}, ErrAlreadyPlaced
	}
	if !sess.open() {
		return Session{}, s.closedError(sess)
	}

	if paymentIntentID == "" {
		paymentIntentID = sess.PaymentIntentID
	}
	if paymentIntentID == "" {
		return Session{}, &ValidationError{Fields: map[string]string{
			"paymentIntentId": "paymentIntentId is required",
		}}
	}

	confirmation, err := s.payments.ConfirmPayment(ctx, paymentIntentID)
	if err != nil {
		return Session{}, fmt.Errorf("confirm payment: %w", err)
	}
	if !confirmation.Succeeded() {
		s.log.Warn("payment not successful", "order_id", orderID, "status", confirmation.Status)
		return Session{}, fmt.Errorf("%w: %s", ErrPaymentFailed, confirmation.Status)
	}

	s.mu.Lock()
	sess.PaymentIntentID = paymentIntentID
	sess.Stage = StagePlaced
	sess.UpdatedAt = s.now()
	s.mu.Unlock()

	clearErr := c.Clear(ctx)
	if clearErr != nil {
		s.log.Error("failed to clear cart after payment", "order_id", orderID, "error", clearErr)
	}

	err = s.orders.UpdateOrderStatus(ctx, orderID, models.StatusUpdate{
		Status:    models.StatusConfirmed,
		PaymentID: paymentIntentID,
	})
	if err != nil {
		s.log.Error("failed to mark order confirmed", "order_id", orderID, "error", err)
	}

	s.mu.Lock()
	sess.StatusSynced = err == nil
	sess.CartCleared = clearErr == nil
	out := sess.snapshot()
	s.mu.Unlock()

	s.log.Info("order placed", "order_id", orderID, "payment_id", paymentIntentID)
	return out, nil
}

// Abandon cancels an unpaid order. The cancel call is best effort: the
// checkout is closed locally even when the backend rejects it.
func (s *Service) Abandon(ctx context.Context, cartSession, orderID string) (Session, error) {
	sess, err := s.acquire(cartSession, orderID)
	if err != nil {
		return Session{}, err
	}
	defer s.release(sess)

	if !sess.open() {
		return Session{}, s.closedError(sess)
	}

	s.cancel(ctx, sess)

	s.mu.Lock()
	out := sess.snapshot()
	s.mu.Unlock()
	return out, nil
}

// Get returns the checkout for orderID owned by cartSession
func (s *Service) Get(cartSession, orderID string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[orderID]
	if !ok || sess.CartSession != cartSession {
		return Session{}, ErrCheckoutNotFound
	}
	return sess.snapshot(), nil
}

// SweepAbandoned cancels open checkouts not touched for olderThan and drops
// closed ones past the same age. Cancels are sent with the token the
// checkout was started with. It returns how many orders it cancelled.
func (s *Service) SweepAbandoned(ctx context.Context, olderThan time.Duration) int {
	cutoff := s.now().Add(-olderThan)

	var stale []*Session
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.inFlight || !sess.UpdatedAt.Before(cutoff) {
			continue
		}
		if !sess.open() {
			delete(s.sessions, id)
			continue
		}
		sess.inFlight = true
		stale = append(stale, sess)
	}
	s.mu.Unlock()

	for _, sess := range stale {
		s.cancel(client.WithToken(ctx, sess.token), sess)
		s.release(sess)
	}
	if len(stale) > 0 {
		s.log.Info("abandoned checkouts swept", "count", len(stale))
	}
	return len(stale)
}

// Len returns the number of tracked checkouts
func (s *Service) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.sessions)
}

func (s *Service) cancel(ctx context.Context, sess *Session) {
	if err := s.orders.CancelOrder(ctx, sess.OrderID); err != nil {
		s.log.Warn("best-effort order cancel failed", "order_id", sess.OrderID, "error", err)
	} else {
		s.log.Info("order cancelled", "order_id", sess.OrderID)
	}

	s.mu.Lock()
	sess.Stage = StageCancelled
	sess.UpdatedAt = s.now()
	s.mu.Unlock()
}

func (s *Service) closedError(sess *Session) error {
	if sess.Stage == StagePlaced {
		return ErrAlreadyPlaced
	}
	return ErrNotAwaiting
}

func (s *Service) acquire(cartSession, orderID string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[orderID]
	if !ok || sess.CartSession != cartSession {
		return nil, ErrCheckoutNotFound
	}
	if sess.inFlight {
		return nil, ErrInFlight
	}
	sess.inFlight = true
	return sess, nil
}

func (s *Service) release(sess *Session) {
	s.mu.Lock()
	sess.inFlight = false
	s.mu.Unlock()
}

func (s *Service) markBeginning(cartSession string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.beginning[cartSession] {
		return false
	}
	s.beginning[cartSession] = true
	return true
}

func (s *Service) unmarkBeginning(cartSession string) {
	s.mu.Lock()
	delete(s.beginning, cartSession)
	s.mu.Unlock()
}

func normalizeAddress(addr models.DeliveryAddress) models.DeliveryAddress {
	addr.Street = strings.TrimSpace(addr.Street)
	addr.City = strings.TrimSpace(addr.City)
	addr.State = strings.TrimSpace(addr.State)
	addr.ZipCode = strings.TrimSpace(addr.ZipCode)
	addr.Country = strings.TrimSpace(addr.Country)
	if addr.Location == nil {
		addr.Location = &models.GeoPoint{Type: "Point", Coordinates: [2]float64{0, 0}}
	}
	return addr
}

func validateAddress(addr models.DeliveryAddress) error {
	fields := make(map[string]string)
	if addr.Street == "" {
		fields["street"] = "street is required"
	}
	if addr.City == "" {
		fields["city"] = "city is required"
	}
	if addr.State == "" {
		fields["state"] = "state is required"
	}
	if addr.ZipCode == "" {
		fields["zipCode"] = "zip code is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// IsValidation reports whether err carries field validation messages
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
