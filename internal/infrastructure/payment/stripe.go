package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-appointment-saas/internal/domain/gateway"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

var ErrStripeNotConfigured = errors.New("stripe secret key not configured")

// StripeGateway creates card PaymentIntents. The client confirms the
// intent with the returned secret; the charge stays PENDING until then.
type StripeGateway struct {
	secretKey string
	currency  string
	create    func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeGateway{
		secretKey: strings.TrimSpace(secretKey),
		currency:  strings.ToLower(currency),
		create:    paymentintent.New,
	}
}

func (g *StripeGateway) Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	if g.secretKey == "" {
		return nil, ErrStripeNotConfigured
	}
	if req.Method != gateway.PaymentMethodCard {
		return nil, gateway.ErrPaymentMethodUnsupported
	}

	currency := req.Currency
	if currency == "" {
		currency = g.currency
	}

	stripe.Key = g.secretKey
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(minorUnits(req.Amount)),
		Currency:    stripe.String(strings.ToLower(currency)),
		Description: stripe.String(req.Description),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.IdempotencyKey = stripe.String(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	intent, err := g.create(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}

	return &gateway.ChargeResult{
		Reference:    intent.ID,
		Status:       intentStatus(intent.Status),
		ClientSecret: intent.ClientSecret,
	}, nil
}

func minorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func intentStatus(status stripe.PaymentIntentStatus) string {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return "PAID"
	case stripe.PaymentIntentStatusCanceled:
		return "FAILED"
	default:
		return "PENDING"
	}
}
