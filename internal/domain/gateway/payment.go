package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

const (
	PaymentMethodCard = "card"
	PaymentMethodCash = "cash"
)

var ErrPaymentMethodUnsupported = errors.New("payment method not supported")

type ChargeRequest struct {
	Amount         decimal.Decimal
	Currency       string
	Method         string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

// ChargeResult is the provider's view of a charge. Status is one of
// PENDING, PAID or FAILED.
type ChargeResult struct {
	Reference    string
	Status       string
	ClientSecret string
}

type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}
