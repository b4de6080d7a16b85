package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateRecurringAppointmentRequest struct {
	ClientID       *uuid.UUID `json:"client_id"`
	ProviderID     uuid.UUID  `json:"provider_id" validate:"required"`
	ServiceID      uuid.UUID  `json:"service_id" validate:"required"`
	Frequency      string     `json:"frequency" validate:"required,oneof=DAILY WEEKLY BIWEEKLY MONTHLY QUARTERLY YEARLY"`
	Interval       int        `json:"interval" validate:"omitempty,gte=1,lte=12"`
	DaysOfWeek     []int      `json:"days_of_week" validate:"omitempty,max=7,dive,gte=0,lte=6"`
	DayOfMonth     int        `json:"day_of_month" validate:"omitempty,gte=1,lte=31"`
	StartDate      string     `json:"start_date" validate:"required,date"`
	TimeOfDay      string     `json:"time_of_day" validate:"required,hhmm"`
	EndDate        string     `json:"end_date" validate:"omitempty,date"`
	MaxOccurrences int        `json:"max_occurrences" validate:"omitempty,gte=1,lte=365"`
	Notes          string     `json:"notes" validate:"omitempty,max=2000"`
}

// Response DTOs

type RecurringAppointmentResponse struct {
	ID               uuid.UUID             `json:"id"`
	ProviderID       uuid.UUID             `json:"provider_id"`
	ClientID         uuid.UUID             `json:"client_id"`
	ServiceID        uuid.UUID             `json:"service_id"`
	Frequency        string                `json:"frequency"`
	Interval         int                   `json:"interval"`
	DaysOfWeek       []int                 `json:"days_of_week,omitempty"`
	DayOfMonth       int                   `json:"day_of_month,omitempty"`
	StartDate        string                `json:"start_date"`
	EndDate          string                `json:"end_date,omitempty"`
	TimeOfDay        string                `json:"time_of_day"`
	DurationMinutes  int                   `json:"duration_minutes"`
	MaxOccurrences   int                   `json:"max_occurrences,omitempty"`
	GeneratedCount   int                   `json:"generated_count"`
	LastOccurrenceAt *time.Time            `json:"last_occurrence_at,omitempty"`
	Notes            string                `json:"notes,omitempty"`
	IsActive         bool                  `json:"is_active"`
	Appointments     []AppointmentResponse `json:"appointments,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
}

// SkippedOccurrence is a generated date that could not be booked.
type SkippedOccurrence struct {
	StartTime time.Time `json:"start_time"`
	Reason    string    `json:"reason"`
}

// GenerationResponse reports one generation run of a series.
type GenerationResponse struct {
	Template RecurringAppointmentResponse `json:"template"`
	Created  []AppointmentResponse        `json:"created"`
	Skipped  []SkippedOccurrence          `json:"skipped"`
}

type DeactivateRecurringResponse struct {
	ID        uuid.UUID `json:"id"`
	Cancelled int       `json:"cancelled"`
}
