package converter

import (
	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Provider, client and service are included when preloaded.
func AppointmentToResponse(a *entity.Appointment) *dto.AppointmentResponse {
	if a == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:                  a.ID,
		TenantID:            a.TenantID,
		BookingCode:         a.BookingCode,
		ProviderID:          a.ProviderID,
		ClientID:            a.ClientID,
		ServiceID:           a.ServiceID,
		RecurringTemplateID: a.RecurringTemplateID,
		StartTime:           a.StartTime,
		EndTime:             a.EndTime,
		Status:              string(a.Status),
		Notes:               a.Notes,
		Price:               a.Price,
		PaymentStatus:       string(a.PaymentStatus),
		PaymentMethod:       a.PaymentMethod,
		CancellationReason:  a.CancellationReason,
		CancelledAt:         a.CancelledAt,
		Provider:            UserToSummary(a.Provider),
		Client:              UserToSummary(a.Client),
		Service:             ServiceToResponse(a.Service),
		CreatedAt:           a.CreatedAt,
		UpdatedAt:           a.UpdatedAt,
	}
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
