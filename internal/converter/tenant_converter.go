package converter

import (
	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"
)

// TenantToResponse converts a Tenant entity to TenantResponse DTO
func TenantToResponse(tenant *entity.Tenant) *dto.TenantResponse {
	if tenant == nil {
		return nil
	}

	settings := tenant.Settings.Data()
	return &dto.TenantResponse{
		ID:           tenant.ID,
		Name:         tenant.Name,
		Slug:         tenant.Slug,
		Timezone:     tenant.Timezone,
		ContactEmail: tenant.ContactEmail,
		Phone:        tenant.Phone,
		Address:      tenant.Address,
		Settings: dto.TenantSettingsResponse{
			SlotStepMinutes:         settings.SlotStepMinutes,
			WaitlistExpiryDays:      settings.WaitlistExpiryDays,
			AutoConfirm:             settings.AutoConfirm,
			Currency:                settings.Currency,
			CancellationNoticeHours: settings.CancellationNoticeHours,
		},
		IsActive:  tenant.Active(),
		CreatedAt: tenant.CreatedAt,
		UpdatedAt: tenant.UpdatedAt,
	}
}

// TenantToPublicResponse exposes the profile plus bookable services and providers
func TenantToPublicResponse(tenant *entity.Tenant, services []entity.Service, providers []entity.User) *dto.PublicTenantResponse {
	if tenant == nil {
		return nil
	}

	summaries := make([]dto.UserSummary, 0, len(providers))
	for i := range providers {
		summaries = append(summaries, dto.UserSummary{ID: providers[i].ID, FullName: providers[i].FullName})
	}

	return &dto.PublicTenantResponse{
		ID:        tenant.ID,
		Name:      tenant.Name,
		Slug:      tenant.Slug,
		Timezone:  tenant.Timezone,
		Phone:     tenant.Phone,
		Address:   tenant.Address,
		Services:  ServicesToResponses(services),
		Providers: summaries,
	}
}
