package converter

import (
	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
)

// ServiceToResponse converts a Service entity to ServiceResponse DTO
func ServiceToResponse(service *entity.Service) *dto.ServiceResponse {
	if service == nil || service.ID == uuid.Nil {
		return nil
	}

	return &dto.ServiceResponse{
		ID:              service.ID,
		Name:            service.Name,
		Description:     service.Description,
		DurationMinutes: service.DurationMinutes,
		Price:           service.Price,
		IsActive:        service.Active(),
		CreatedAt:       service.CreatedAt,
		UpdatedAt:       service.UpdatedAt,
	}
}

// ServicesToResponses converts a slice of Service entities to slice of ServiceResponse DTOs
func ServicesToResponses(services []entity.Service) []dto.ServiceResponse {
	responses := make([]dto.ServiceResponse, 0, len(services))
	for i := range services {
		if resp := ServiceToResponse(&services[i]); resp != nil {
			responses = append(responses, *resp)
		}
	}
	return responses
}

func WorkingHoursToResponse(providerID uuid.UUID, timezone string, hours []entity.WorkingHours) *dto.WorkingHoursResponse {
	entries := make([]dto.WorkingHoursEntry, len(hours))
	for i, h := range hours {
		entries[i] = dto.WorkingHoursEntry{
			DayOfWeek: h.DayOfWeek,
			StartTime: h.StartTime,
			EndTime:   h.EndTime,
		}
	}
	return &dto.WorkingHoursResponse{
		ProviderID: providerID,
		Timezone:   timezone,
		Hours:      entries,
	}
}
