package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentFilter is a domain-level filter for querying appointments.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	TenantID   uuid.UUID
	ProviderID *uuid.UUID
	ClientID   *uuid.UUID
	Status     AppointmentStatus
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

// Offset returns the row offset for the requested page.
func (f AppointmentFilter) Offset() int {
	if f.Page <= 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

// WaitlistFilter selects waitlist entries of a tenant.
type WaitlistFilter struct {
	TenantID uuid.UUID
	ClientID *uuid.UUID
	Status   WaitlistStatus
}

// WaitlistCandidateFilter narrows matching to a service and/or provider.
// A nil field matches any value.
type WaitlistCandidateFilter struct {
	TenantID   uuid.UUID
	ServiceID  *uuid.UUID
	ProviderID *uuid.UUID
}
