package calendar

import (
	"context"

	"go-appointment-saas/internal/domain/gateway"
)

// NoopClient is used when no calendar bridge is configured.
type NoopClient struct{}

func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

func (NoopClient) CreateEvent(context.Context, gateway.CalendarEvent) (string, error) {
	return "", nil
}

func (NoopClient) UpdateEvent(context.Context, string, gateway.CalendarEvent) error {
	return nil
}

func (NoopClient) DeleteEvent(context.Context, string) error {
	return nil
}
