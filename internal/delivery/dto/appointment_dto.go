package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

// CreateAppointmentRequest books a slot. ClientID is ignored for clients,
// who always book for themselves, and required for staff.
type CreateAppointmentRequest struct {
	ProviderID uuid.UUID  `json:"provider_id" validate:"required"`
	ServiceID  uuid.UUID  `json:"service_id" validate:"required"`
	ClientID   *uuid.UUID `json:"client_id"`
	StartTime  time.Time  `json:"start_time" validate:"required"`
	Notes      string     `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateAppointmentRequest struct {
	ProviderID *uuid.UUID `json:"provider_id"`
	ServiceID  *uuid.UUID `json:"service_id"`
	StartTime  *time.Time `json:"start_time"`
	Notes      *string    `json:"notes" validate:"omitempty,max=2000"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CONFIRMED COMPLETED CANCELLED NO_SHOW"`
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

// AppointmentListQuery is parsed from the query string.
type AppointmentListQuery struct {
	From       *time.Time
	To         *time.Time
	Status     string     `validate:"omitempty,oneof=PENDING CONFIRMED COMPLETED CANCELLED NO_SHOW"`
	ProviderID *uuid.UUID
	ClientID   *uuid.UUID
	Page       int `validate:"gte=1"`
	Limit      int `validate:"gte=1,lte=100"`
}

type PaymentRequest struct {
	Method string `json:"method" validate:"required,oneof=card cash"`
}

// GuestBookingRequest books without an account; the client is found or
// created by email.
type GuestBookingRequest struct {
	ProviderID uuid.UUID `json:"provider_id" validate:"required"`
	ServiceID  uuid.UUID `json:"service_id" validate:"required"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	FullName   string    `json:"full_name" validate:"required,min=2,max=255"`
	Email      string    `json:"email" validate:"required,email,max=255"`
	Phone      string    `json:"phone" validate:"omitempty,max=50"`
	Notes      string    `json:"notes" validate:"omitempty,max=2000"`
}

type AvailabilityQuery struct {
	ServiceID  uuid.UUID `validate:"required"`
	ProviderID uuid.UUID `validate:"required"`
	Date       string    `validate:"required,date"`
}

// Response DTOs

type AppointmentResponse struct {
	ID                  uuid.UUID        `json:"id"`
	TenantID            uuid.UUID        `json:"tenant_id"`
	BookingCode         string           `json:"booking_code"`
	ProviderID          uuid.UUID        `json:"provider_id"`
	ClientID            uuid.UUID        `json:"client_id"`
	ServiceID           uuid.UUID        `json:"service_id"`
	RecurringTemplateID *uuid.UUID       `json:"recurring_template_id,omitempty"`
	StartTime           time.Time        `json:"start_time"`
	EndTime             time.Time        `json:"end_time"`
	Status              string           `json:"status"`
	Notes               string           `json:"notes,omitempty"`
	Price               decimal.Decimal  `json:"price"`
	PaymentStatus       string           `json:"payment_status"`
	PaymentMethod       string           `json:"payment_method,omitempty"`
	CancellationReason  string           `json:"cancellation_reason,omitempty"`
	CancelledAt         *time.Time       `json:"cancelled_at,omitempty"`
	Provider            *UserSummary     `json:"provider,omitempty"`
	Client              *UserSummary     `json:"client,omitempty"`
	Service             *ServiceResponse `json:"service,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int64                 `json:"total"`
	Page         int                   `json:"page"`
	Limit        int                   `json:"limit"`
}

type PaymentResponse struct {
	AppointmentID uuid.UUID       `json:"appointment_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        string          `json:"method"`
	Status        string          `json:"status"`
	Reference     string          `json:"reference"`
	ClientSecret  string          `json:"client_secret,omitempty"`
}

type AvailabilityResponse struct {
	Date            string      `json:"date"`
	Timezone        string      `json:"timezone"`
	ServiceID       uuid.UUID   `json:"service_id"`
	ProviderID      uuid.UUID   `json:"provider_id"`
	DurationMinutes int         `json:"duration_minutes"`
	Slots           []time.Time `json:"slots"`
}
