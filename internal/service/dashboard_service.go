package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

var ErrInvalidRange = errors.New("range must be today, week or month")

const (
	topItemsLimit     = 5
	recentOrdersLimit = 10
)

// DashboardBackend is the API the owner dashboard is computed from
type DashboardBackend interface {
	GetRestaurant(ctx context.Context, id string) (*models.Restaurant, error)
	GetMenu(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	ListRestaurantOrders(ctx context.Context) ([]models.Order, error)
}

// DashboardService summarizes a restaurant's orders for its owner
type DashboardService struct {
	backend DashboardBackend
	now     func() time.Time
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(backend DashboardBackend) *DashboardService {
	return &DashboardService{
		backend: backend,
		now:     time.Now,
	}
}

// ParseRange accepts today, week or month; empty means today
func ParseRange(s string) (models.DashboardRange, error) {
	switch r := models.DashboardRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "":
		return models.RangeToday, nil
	case models.RangeToday, models.RangeWeek, models.RangeMonth:
		return r, nil
	}
	return "", ErrInvalidRange
}

// Stats builds the dashboard of restaurantID over the named range
func (s *DashboardService) Stats(ctx context.Context, restaurantID, rangeName string) (*models.DashboardStats, error) {
	if restaurantID == "" {
		return nil, ErrMissingID
	}
	rng, err := ParseRange(rangeName)
	if err != nil {
		return nil, err
	}

	var (
		restaurant *models.Restaurant
		menu       []models.MenuItem
		orders     []models.Order
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		restaurant, err = s.backend.GetRestaurant(gctx, restaurantID)
		return err
	})
	g.Go(func() error {
		var err error
		menu, err = s.backend.GetMenu(gctx, restaurantID)
		return err
	})
	g.Go(func() error {
		var err error
		orders, err = s.backend.ListRestaurantOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	own := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if o.RestaurantID == restaurantID {
			own = append(own, o)
		}
	}
	return summarize(restaurant, menu, own, rng, s.now()), nil
}

func summarize(restaurant *models.Restaurant, menu []models.MenuItem, orders []models.Order, rng models.DashboardRange, now time.Time) *models.DashboardStats {
	since := rangeStart(rng, now)
	stats := &models.DashboardStats{
		RestaurantID:   restaurant.ID,
		RestaurantName: restaurant.Name,
		Range:          rng,
		Since:          since,
		Revenue: models.Revenue{
			Daily:   decimal.Zero,
			Weekly:  decimal.Zero,
			Monthly: decimal.Zero,
		},
		Orders:      models.OrderCounts{ByStatus: map[models.OrderStatus]int{}},
		Ratings:     models.Ratings{Average: restaurant.Rating},
		GeneratedAt: now,
	}

	names := make(map[string]string, len(menu))
	for _, item := range menu {
		names[item.ID] = item.Name
	}

	day, week, month := rangeStart(models.RangeToday, now), rangeStart(models.RangeWeek, now), rangeStart(models.RangeMonth, now)
	top := map[string]*models.TopItem{}

	for _, o := range orders {
		counted := o.Status != models.StatusCancelled
		if counted {
			if !o.CreatedAt.Before(day) {
				stats.Revenue.Daily = stats.Revenue.Daily.Add(o.TotalAmount)
			}
			if !o.CreatedAt.Before(week) {
				stats.Revenue.Weekly = stats.Revenue.Weekly.Add(o.TotalAmount)
			}
			if !o.CreatedAt.Before(month) {
				stats.Revenue.Monthly = stats.Revenue.Monthly.Add(o.TotalAmount)
			}
		}

		if o.CreatedAt.Before(since) {
			continue
		}
		stats.Orders.Total++
		stats.Orders.ByStatus[o.Status]++
		if !counted {
			continue
		}
		for _, line := range o.Items {
			t, ok := top[line.MenuItem]
			if !ok {
				t = &models.TopItem{MenuItemID: line.MenuItem, Name: itemName(line, names), Revenue: decimal.Zero}
				top[line.MenuItem] = t
			}
			t.Quantity += line.Quantity
			t.Revenue = t.Revenue.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}

	stats.Orders.Pending = stats.Orders.ByStatus[models.StatusPending]
	stats.Orders.Preparing = stats.Orders.ByStatus[models.StatusPreparing]
	stats.Orders.Delivered = stats.Orders.ByStatus[models.StatusDelivered]
	stats.Orders.Cancelled = stats.Orders.ByStatus[models.StatusCancelled]

	stats.TopItems = rankItems(top)
	stats.RecentOrders = recentOrders(orders)
	return stats
}

// rangeStart returns midnight of the first day the range covers
func rangeStart(rng models.DashboardRange, now time.Time) time.Time {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	switch rng {
	case models.RangeWeek:
		return day.AddDate(0, 0, -6)
	case models.RangeMonth:
		return day.AddDate(0, 0, -29)
	}
	return day
}

func itemName(line models.OrderItem, names map[string]string) string {
	if line.Name != "" {
		return line.Name
	}
	if name, ok := names[line.MenuItem]; ok {
		return name
	}
	return line.MenuItem
}

func rankItems(top map[string]*models.TopItem) []models.TopItem {
	items := make([]models.TopItem, 0, len(top))
	for _, t := range top {
		items = append(items, *t)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Quantity != items[j].Quantity {
			return items[i].Quantity > items[j].Quantity
		}
		if c := items[i].Revenue.Cmp(items[j].Revenue); c != 0 {
			return c > 0
		}
		return items[i].Name < items[j].Name
	})
	if len(items) > topItemsLimit {
		items = items[:topItemsLimit]
	}
	return items
}

func recentOrders(orders []models.Order) []models.Order {
	recent := append([]models.Order(nil), orders...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAt.After(recent[j].CreatedAt)
	})
	if len(recent) > recentOrdersLimit {
		recent = recent[:recentOrdersLimit]
	}
	if recent == nil {
		recent = []models.Order{}
	}
	return recent
}
