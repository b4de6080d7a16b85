package converter

import (
	"time"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"
)

// WaitlistEntryToResponse converts a WaitlistEntry entity to its DTO
func WaitlistEntryToResponse(w *entity.WaitlistEntry) *dto.WaitlistEntryResponse {
	if w == nil {
		return nil
	}

	resp := &dto.WaitlistEntryResponse{
		ID:            w.ID,
		ClientID:      w.ClientID,
		ServiceID:     w.ServiceID,
		ProviderID:    w.ProviderID,
		PreferredTime: string(w.PreferredTime),
		FlexibleDates: w.FlexibleDates,
		Status:        string(w.Status),
		Notes:         w.Notes,
		ExpiresAt:     w.ExpiresAt,
		NotifiedAt:    w.NotifiedAt,
		AppointmentID: w.AppointmentID,
		Client:        UserToSummary(w.Client),
		CreatedAt:     w.CreatedAt,
	}
	if w.PreferredDate != nil {
		resp.PreferredDate = time.Time(*w.PreferredDate).Format(dateLayout)
	}
	return resp
}

// WaitlistEntriesToResponses converts a slice of WaitlistEntry entities to DTOs
func WaitlistEntriesToResponses(entries []entity.WaitlistEntry) []dto.WaitlistEntryResponse {
	responses := make([]dto.WaitlistEntryResponse, len(entries))
	for i := range entries {
		responses[i] = *WaitlistEntryToResponse(&entries[i])
	}
	return responses
}
