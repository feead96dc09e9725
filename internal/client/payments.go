package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

var ErrNoClientSecret = errors.New("payment intent response has no client secret")

// CreatePaymentIntent requests a payment intent for amount minor units
func (c *Client) CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error) {
	var out models.PaymentIntent
	if err := c.do(ctx, http.MethodPost, "/payments/create-payment-intent", req, &out); err != nil {
		return nil, err
	}
	if out.ClientSecret == "" {
		return nil, ErrNoClientSecret
	}
	return &out, nil
}

// ConfirmPayment asks the processor for the outcome of a payment intent
func (c *Client) ConfirmPayment(ctx context.Context, paymentIntentID string) (*models.PaymentConfirmation, error) {
	body := map[string]string{"paymentIntentId": paymentIntentID}

	var out models.PaymentConfirmation
	if err := c.do(ctx, http.MethodPost, "/payments/confirm-payment", body, &out); err != nil {
		return nil, err
	}
	if out.PaymentIntentID == "" {
		out.PaymentIntentID = paymentIntentID
	}
	return &out, nil
}
