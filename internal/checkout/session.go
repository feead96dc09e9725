package checkout

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

// Stage is the position of a checkout in the two-phase sequence
type Stage string

const (
	StageAwaitingPayment  Stage = "awaiting_payment"
	StagePaymentRequested Stage = "payment_requested"
	StagePlaced           Stage = "placed"
	StageCancelled        Stage = "cancelled"
)

// Session tracks one order between creation and payment.
// CartSession is the browser session whose cart the order was built from.
type Session struct {
	ID              string                 `json:"id"`
	CartSession     string                 `json:"-"`
	OrderID         string                 `json:"orderId"`
	RestaurantID    string                 `json:"restaurantId"`
	RestaurantName  string                 `json:"restaurantName,omitempty"`
	Lines           []models.CartLine      `json:"lines"`
	Total           decimal.Decimal        `json:"total"`
	AmountMinor     int64                  `json:"amount"`
	Address         models.DeliveryAddress `json:"deliveryAddress"`
	Stage           Stage                  `json:"stage"`
	PaymentIntentID string                 `json:"paymentIntentId,omitempty"`
	ClientSecret    string                 `json:"clientSecret,omitempty"`
	StatusSynced    bool                   `json:"statusSynced"`
	CartCleared     bool                   `json:"cartCleared"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`

	token    string
	inFlight bool
}

func (s *Session) snapshot() Session {
	out := *s
	out.Lines = append([]models.CartLine(nil), s.Lines...)
	out.inFlight = false
	return out
}

func (s *Session) open() bool {
	return s.Stage == StageAwaitingPayment || s.Stage == StagePaymentRequested
}

// minorUnits converts a decimal amount to the smallest currency unit
func minorUnits(total decimal.Decimal) int64 {
	return total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
