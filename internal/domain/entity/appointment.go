package entity

import (
	"time"

	"go-appointment-saas/internal/scheduling"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppointmentStatus represents the lifecycle state of an appointment
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled, AppointmentStatusNoShow},
}

// CanTransitionTo reports whether next is a legal successor state.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s AppointmentStatus) IsTerminal() bool {
	return len(appointmentTransitions[s]) == 0
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

// PaymentStatus tracks settlement of an appointment's price
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// Appointment is a booked time range of a provider for a client
type Appointment struct {
	ID                  uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProviderID          uuid.UUID         `gorm:"type:uuid;not null;index:idx_appointments_provider_start,priority:1" json:"provider_id"`
	ClientID            uuid.UUID         `gorm:"type:uuid;not null;index" json:"client_id"`
	ServiceID           uuid.UUID         `gorm:"type:uuid;not null;index" json:"service_id"`
	RecurringTemplateID *uuid.UUID        `gorm:"type:uuid;index" json:"recurring_template_id,omitempty"`
	BookingCode         string            `gorm:"type:varchar(50);uniqueIndex;not null" json:"booking_code"`
	StartTime           time.Time         `gorm:"not null;index:idx_appointments_provider_start,priority:2" json:"start_time"`
	EndTime             time.Time         `gorm:"not null" json:"end_time"`
	Status              AppointmentStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	Notes               string            `gorm:"type:text" json:"notes,omitempty"`
	Price               decimal.Decimal   `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	PaymentStatus       PaymentStatus     `gorm:"type:varchar(20);not null;default:'UNPAID'" json:"payment_status"`
	PaymentMethod       string            `gorm:"type:varchar(20)" json:"payment_method,omitempty"`
	PaymentReference    string            `gorm:"type:varchar(255)" json:"payment_reference,omitempty"`
	CalendarEventID     string            `gorm:"type:varchar(255)" json:"calendar_event_id,omitempty"`
	CancellationReason  string            `gorm:"type:text" json:"cancellation_reason,omitempty"`
	CancelledAt         *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt           time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Provider *User    `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Client   *User    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Service  *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

func (a *Appointment) Interval() scheduling.Interval {
	return scheduling.Interval{Start: a.StartTime, End: a.EndTime}
}

func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// Cancel moves the appointment to CANCELLED and records why.
func (a *Appointment) Cancel(reason string, at time.Time) {
	a.Status = AppointmentStatusCancelled
	a.CancellationReason = reason
	a.CancelledAt = &at
}
