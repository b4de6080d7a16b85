package payment

import (
	"context"
	"fmt"

	"go-appointment-saas/internal/domain/gateway"

	"github.com/google/uuid"
)

// ManualGateway records payments settled outside the system, such as cash
// at the front desk.
type ManualGateway struct{}

func NewManualGateway() *ManualGateway {
	return &ManualGateway{}
}

func (ManualGateway) Charge(_ context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	if req.Method != gateway.PaymentMethodCash {
		return nil, gateway.ErrPaymentMethodUnsupported
	}
	return &gateway.ChargeResult{
		Reference: fmt.Sprintf("cash-%s", uuid.NewString()),
		Status:    "PAID",
	}, nil
}

// Router dispatches a charge to the gateway registered for its method.
type Router struct {
	gateways map[string]gateway.PaymentGateway
}

func NewRouter(byMethod map[string]gateway.PaymentGateway) *Router {
	return &Router{gateways: byMethod}
}

func (r *Router) Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	g, ok := r.gateways[req.Method]
	if !ok {
		return nil, gateway.ErrPaymentMethodUnsupported
	}
	return g.Charge(ctx, req)
}
