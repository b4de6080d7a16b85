package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Domain event types published to the message broker
const (
	EventAppointmentCreated     = "appointment.created"
	EventAppointmentUpdated     = "appointment.updated"
	EventAppointmentStatus      = "appointment.status_changed"
	EventAppointmentPaid        = "appointment.paid"
	EventRecurringSeriesCreated = "recurring.created"
	EventWaitlistNotified       = "waitlist.notified"
)

// OutboxEvent is a domain event stored in the same transaction as the
// change it describes and relayed to the broker afterwards.
type OutboxEvent struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	EventID     uuid.UUID      `gorm:"type:uuid;uniqueIndex;not null" json:"event_id"`
	TenantID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"tenant_id"`
	EventType   string         `gorm:"type:varchar(100);not null" json:"event_type"`
	AggregateID string         `gorm:"type:varchar(100);not null" json:"aggregate_id"`
	Payload     datatypes.JSON `gorm:"not null" json:"payload"`
	Traceparent string         `gorm:"type:varchar(100)" json:"traceparent,omitempty"`
	Tracestate  string         `gorm:"type:varchar(255)" json:"tracestate,omitempty"`
	Attempts    int            `gorm:"not null;default:0" json:"attempts"`
	PublishedAt *time.Time     `gorm:"index" json:"published_at,omitempty"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}
