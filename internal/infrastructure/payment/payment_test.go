package payment

import (
	"context"
	"testing"

	"go-appointment-saas/internal/domain/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"
)

func TestStripeGatewayCharge(t *testing.T) {
	g := NewStripeGateway("sk_test_123", "USD")

	var captured *stripe.PaymentIntentParams
	g.create = func(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
		captured = params
		return &stripe.PaymentIntent{
			ID:           "pi_1",
			ClientSecret: "pi_1_secret",
			Status:       stripe.PaymentIntentStatusRequiresPaymentMethod,
		}, nil
	}

	res, err := g.Charge(context.Background(), gateway.ChargeRequest{
		Amount:         decimal.RequireFromString("49.99"),
		Method:         gateway.PaymentMethodCard,
		Description:    "Consultation",
		IdempotencyKey: "appt-1",
		Metadata:       map[string]string{"appointment_id": "appt-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, "pi_1", res.Reference)
	assert.Equal(t, "PENDING", res.Status)
	assert.Equal(t, "pi_1_secret", res.ClientSecret)
	assert.Equal(t, int64(4999), *captured.Amount)
	assert.Equal(t, "usd", *captured.Currency)
	assert.Equal(t, "appt-1", *captured.IdempotencyKey)
	assert.Equal(t, "appt-1", captured.Metadata["appointment_id"])
}

func TestStripeGatewayRequiresKeyAndCard(t *testing.T) {
	_, err := NewStripeGateway("", "usd").Charge(context.Background(), gateway.ChargeRequest{Method: gateway.PaymentMethodCard})
	assert.ErrorIs(t, err, ErrStripeNotConfigured)

	_, err = NewStripeGateway("sk_test", "usd").Charge(context.Background(), gateway.ChargeRequest{Method: gateway.PaymentMethodCash})
	assert.ErrorIs(t, err, gateway.ErrPaymentMethodUnsupported)
}

func TestRouterDispatchesByMethod(t *testing.T) {
	router := NewRouter(map[string]gateway.PaymentGateway{
		gateway.PaymentMethodCash: NewManualGateway(),
	})

	res, err := router.Charge(context.Background(), gateway.ChargeRequest{Method: gateway.PaymentMethodCash, Amount: decimal.NewFromInt(20)})
	require.NoError(t, err)
	assert.Equal(t, "PAID", res.Status)
	assert.Contains(t, res.Reference, "cash-")

	_, err = router.Charge(context.Background(), gateway.ChargeRequest{Method: "bitcoin"})
	assert.ErrorIs(t, err, gateway.ErrPaymentMethodUnsupported)
}
