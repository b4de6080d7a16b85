package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"gorm.io/gorm"
)

// EventRecorder appends domain events to the outbox inside the caller's
// transaction. The trace context of the request is stored with the event
// so the relay can continue the trace when it publishes.
type EventRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, eventType, aggregateID string, payload interface{}) error
}

type eventRecorder struct {
	outboxRepo repository.OutboxRepository
}

func NewEventRecorder(outboxRepo repository.OutboxRepository) EventRecorder {
	return &eventRecorder{outboxRepo: outboxRepo}
}

func (r *eventRecorder) Record(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, eventType, aggregateID string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", eventType, err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	return r.outboxRepo.Create(tx, &entity.OutboxEvent{
		EventID:     uuid.New(),
		TenantID:    tenantID,
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     body,
		Traceparent: carrier.Get("traceparent"),
		Tracestate:  carrier.Get("tracestate"),
	})
}
