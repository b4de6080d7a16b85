package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type JoinWaitlistRequest struct {
	ClientID      *uuid.UUID `json:"client_id"`
	ServiceID     uuid.UUID  `json:"service_id" validate:"required"`
	ProviderID    *uuid.UUID `json:"provider_id"`
	PreferredDate string     `json:"preferred_date" validate:"omitempty,date"`
	PreferredTime string     `json:"preferred_time" validate:"omitempty,oneof=ANY MORNING AFTERNOON EVENING"`
	FlexibleDates bool       `json:"flexible_dates"`
	Notes         string     `json:"notes" validate:"omitempty,max=2000"`
}

type WaitlistListQuery struct {
	Status string `validate:"omitempty,oneof=ACTIVE NOTIFIED BOOKED CANCELLED EXPIRED"`
}

type SlotRequest struct {
	ProviderID uuid.UUID `json:"provider_id" validate:"required"`
	ServiceID  uuid.UUID `json:"service_id" validate:"required"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

type MatchWaitlistRequest struct {
	Slots []SlotRequest `json:"slots" validate:"required,min=1,max=100,dive"`
}

type BookWaitlistRequest struct {
	StartTime  time.Time  `json:"start_time" validate:"required"`
	ProviderID *uuid.UUID `json:"provider_id"`
}

// Response DTOs

type WaitlistEntryResponse struct {
	ID            uuid.UUID    `json:"id"`
	ClientID      uuid.UUID    `json:"client_id"`
	ServiceID     uuid.UUID    `json:"service_id"`
	ProviderID    *uuid.UUID   `json:"provider_id,omitempty"`
	PreferredDate string       `json:"preferred_date,omitempty"`
	PreferredTime string       `json:"preferred_time"`
	FlexibleDates bool         `json:"flexible_dates"`
	Status        string       `json:"status"`
	Notes         string       `json:"notes,omitempty"`
	ExpiresAt     *time.Time   `json:"expires_at,omitempty"`
	NotifiedAt    *time.Time   `json:"notified_at,omitempty"`
	AppointmentID *uuid.UUID   `json:"appointment_id,omitempty"`
	Client        *UserSummary `json:"client,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
}

type MatchWaitlistResponse struct {
	Notified []uuid.UUID `json:"notified"`
	Expired  []uuid.UUID `json:"expired"`
}

type BookWaitlistResponse struct {
	Entry       WaitlistEntryResponse `json:"entry"`
	Appointment AppointmentResponse   `json:"appointment"`
}
