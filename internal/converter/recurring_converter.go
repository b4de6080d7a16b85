package converter

import (
	"time"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// RecurringToResponse converts a RecurringAppointmentTemplate to its DTO,
// including generated appointments when preloaded
func RecurringToResponse(t *entity.RecurringAppointmentTemplate) *dto.RecurringAppointmentResponse {
	if t == nil {
		return nil
	}

	resp := &dto.RecurringAppointmentResponse{
		ID:               t.ID,
		ProviderID:       t.ProviderID,
		ClientID:         t.ClientID,
		ServiceID:        t.ServiceID,
		Frequency:        string(t.Frequency),
		Interval:         t.Interval,
		DaysOfWeek:       []int(t.DaysOfWeek),
		DayOfMonth:       t.DayOfMonth,
		StartDate:        time.Time(t.StartDate).Format(dateLayout),
		TimeOfDay:        t.TimeOfDay,
		DurationMinutes:  t.DurationMinutes,
		MaxOccurrences:   t.MaxOccurrences,
		GeneratedCount:   t.GeneratedCount,
		LastOccurrenceAt: t.LastOccurrenceAt,
		Notes:            t.Notes,
		IsActive:         t.Active(),
		CreatedAt:        t.CreatedAt,
	}
	if t.EndDate != nil {
		resp.EndDate = time.Time(*t.EndDate).Format(dateLayout)
	}
	if len(t.Appointments) > 0 {
		resp.Appointments = AppointmentsToResponses(t.Appointments)
	}
	return resp
}

// RecurringsToResponses converts a slice of templates without their appointments
func RecurringsToResponses(templates []entity.RecurringAppointmentTemplate) []dto.RecurringAppointmentResponse {
	responses := make([]dto.RecurringAppointmentResponse, len(templates))
	for i := range templates {
		responses[i] = *RecurringToResponse(&templates[i])
		responses[i].Appointments = nil
	}
	return responses
}
