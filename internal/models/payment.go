package models

// PaymentIntentRequest asks the payment service for an intent; Amount is in minor units
type PaymentIntentRequest struct {
	Amount  int64  `json:"amount"`
	OrderID string `json:"orderId"`
}

// PaymentIntent is the processor handle for an authorized but not yet captured charge
type PaymentIntent struct {
	ID           string `json:"paymentIntentId"`
	ClientSecret string `json:"clientSecret"`
}

// PaymentConfirmation is the processor's verdict on a payment intent
type PaymentConfirmation struct {
	PaymentIntentID string `json:"paymentIntentId"`
	Status          string `json:"status"`
}

// Succeeded reports whether the processor captured the payment
func (p PaymentConfirmation) Succeeded() bool {
	return p.Status == "succeeded" || p.Status == "success"
}
