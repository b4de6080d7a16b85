package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// NotificationType classifies in-app notifications
type NotificationType string

const (
	NotificationAppointmentCreated     NotificationType = "APPOINTMENT_CREATED"
	NotificationAppointmentConfirmed   NotificationType = "APPOINTMENT_CONFIRMED"
	NotificationAppointmentCancelled   NotificationType = "APPOINTMENT_CANCELLED"
	NotificationAppointmentRescheduled NotificationType = "APPOINTMENT_RESCHEDULED"
	NotificationAppointmentCompleted   NotificationType = "APPOINTMENT_COMPLETED"
	NotificationRecurringCreated       NotificationType = "RECURRING_CREATED"
	NotificationWaitlistSlotAvailable  NotificationType = "WAITLIST_SLOT_AVAILABLE"
	NotificationContactMessage         NotificationType = "CONTACT_MESSAGE"
)

// EmailStatus records the outcome of the email copy of a notification
type EmailStatus string

const (
	EmailStatusSkipped EmailStatus = "SKIPPED"
	EmailStatusSent    EmailStatus = "SENT"
	EmailStatusFailed  EmailStatus = "FAILED"
)

// Notification is a message addressed to a user
type Notification struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"tenant_id"`
	UserID      uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        NotificationType `gorm:"type:varchar(50);not null" json:"type"`
	Title       string           `gorm:"type:varchar(255);not null" json:"title"`
	Message     string           `gorm:"type:text;not null" json:"message"`
	Data        datatypes.JSON   `json:"data,omitempty"`
	EmailStatus EmailStatus      `gorm:"type:varchar(20);not null;default:'SKIPPED'" json:"email_status"`
	ReadAt      *time.Time       `json:"read_at,omitempty"`
	CreatedAt   time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

func (n *Notification) IsRead() bool {
	return n.ReadAt != nil
}
