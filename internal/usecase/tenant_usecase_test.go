package usecase

import (
	"testing"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterTenant(t *testing.T) {
	f := newFixture(t)
	req := &dto.RegisterTenantRequest{
		Name:          "Harbor Dental",
		Slug:          "Harbor-Dental",
		Timezone:      "Europe/Berlin",
		ContactEmail:  "hello@harbor.test",
		AdminEmail:    "owner@harbor.test",
		AdminPassword: "password1",
		AdminFullName: "Hal Owner",
	}

	resp, err := f.uc.Tenant.Register(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, "harbor-dental", resp.Tenant.Slug)
	assert.Equal(t, 30, resp.Tenant.Settings.WaitlistExpiryDays)
	assert.Equal(t, entity.RoleAdmin, resp.Admin.Role)

	_, err = f.uc.Tenant.Register(t.Context(), req)
	assert.ErrorIs(t, err, ErrSlugAlreadyExists)

	// the same admin email is fine in another tenant
	req.Slug = "harbor-two"
	_, err = f.uc.Tenant.Register(t.Context(), req)
	require.NoError(t, err)

	var audits int64
	require.NoError(t, f.db.Model(&entity.AuditLog{}).Where("action = ?", entity.AuditActionTenantRegister).Count(&audits).Error)
	assert.Equal(t, int64(2), audits)
}

func TestPublicProfileHidesInactive(t *testing.T) {
	f := newFixture(t)
	hidden := &entity.Service{TenantID: f.tenant.ID, Name: "Retired", DurationMinutes: 15, IsActive: boolPtr(false)}
	require.NoError(t, f.db.Create(hidden).Error)

	profile, err := f.uc.Tenant.GetPublicProfile(t.Context(), "sunrise")
	require.NoError(t, err)
	require.Len(t, profile.Services, 1)
	assert.Equal(t, f.service.ID, profile.Services[0].ID)
	assert.Len(t, profile.Providers, 2, "admin and provider can both take bookings")

	require.NoError(t, f.db.Model(f.tenant).Update("is_active", false).Error)
	_, err = f.uc.Tenant.GetPublicProfile(t.Context(), "sunrise")
	assert.ErrorIs(t, err, ErrTenantInactive)
}

func TestUpdateTenantSettings(t *testing.T) {
	f := newFixture(t)
	name := "Sunrise Health"

	resp, err := f.uc.Tenant.UpdateCurrent(f.as(f.admin), &dto.UpdateTenantRequest{
		Name:     &name,
		Settings: &dto.TenantSettingsRequest{SlotStepMinutes: 30, AutoConfirm: true, Currency: "EUR"},
	})
	require.NoError(t, err)
	assert.Equal(t, name, resp.Name)
	assert.Equal(t, 30, resp.Settings.SlotStepMinutes)
	assert.True(t, resp.Settings.AutoConfirm)

	current, err := f.uc.Tenant.GetCurrent(f.as(f.admin))
	require.NoError(t, err)
	assert.Equal(t, name, current.Name)
	assert.True(t, current.Settings.AutoConfirm)
}

func TestMembers(t *testing.T) {
	f := newFixture(t)
	admin := f.as(f.admin)

	member, err := f.uc.Tenant.CreateMember(admin, &dto.CreateMemberRequest{
		Email:    "Second@Sunrise.test",
		Password: "password1",
		FullName: "Sam Second",
		Role:     entity.RoleProvider,
	})
	require.NoError(t, err)
	assert.Equal(t, "second@sunrise.test", member.Email)

	_, err = f.uc.Tenant.CreateMember(admin, &dto.CreateMemberRequest{
		Email:    "second@sunrise.test",
		Password: "password1",
		FullName: "Sam Again",
		Role:     entity.RoleClient,
	})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	providers, err := f.uc.Tenant.ListMembers(admin, "provider")
	require.NoError(t, err)
	assert.Len(t, providers, 2)

	_, err = f.uc.Tenant.ListMembers(admin, "janitor")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = f.uc.Tenant.UpdateMemberStatus(admin, f.admin.ID, &dto.UpdateMemberStatusRequest{IsActive: boolPtr(false)})
	assert.ErrorIs(t, err, ErrCannotDeactivateSelf)

	require.NoError(t, f.tokens.Store(t.Context(), gateway.TokenKindAccess, f.provider.ID, "tok", 0))
	updated, err := f.uc.Tenant.UpdateMemberStatus(admin, f.provider.ID, &dto.UpdateMemberStatusRequest{IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Zero(t, f.tokens.count())
}

func TestServiceLifecycle(t *testing.T) {
	f := newFixture(t)
	admin := f.as(f.admin)

	_, err := f.uc.Service.Create(admin, &dto.CreateServiceRequest{Name: "Bad", DurationMinutes: 30, Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	svc, err := f.uc.Service.Create(admin, &dto.CreateServiceRequest{Name: "Cleaning", DurationMinutes: 45, Price: decimal.RequireFromString("80.505")})
	require.NoError(t, err)
	assert.True(t, svc.IsActive)
	assert.Equal(t, "80.51", svc.Price.StringFixed(2))

	// never booked, so removed outright
	deleted, err := f.uc.Service.Delete(admin, svc.ID)
	require.NoError(t, err)
	assert.False(t, deleted.Deactivated)
	_, err = f.uc.Service.GetByID(admin, svc.ID)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	// booked services are only deactivated
	f.book(t, slotAt(10))
	deleted, err = f.uc.Service.Delete(admin, f.service.ID)
	require.NoError(t, err)
	assert.True(t, deleted.Deactivated)

	visible, err := f.uc.Service.List(f.as(f.client), true)
	require.NoError(t, err)
	assert.Empty(t, visible)

	all, err := f.uc.Service.List(admin, true)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.uc.Appointment.Create(f.as(f.client), &dto.CreateAppointmentRequest{
		ProviderID: f.provider.ID,
		ServiceID:  f.service.ID,
		StartTime:  slotAt(14),
	})
	assert.ErrorIs(t, err, ErrServiceInactive)
}

func TestReplaceWorkingHours(t *testing.T) {
	f := newFixture(t)

	_, err := f.uc.Hours.Replace(f.as(f.client), f.provider.ID, &dto.ReplaceWorkingHoursRequest{})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.uc.Hours.Replace(f.as(f.provider), f.provider.ID, &dto.ReplaceWorkingHoursRequest{Hours: []dto.WorkingHoursEntry{
		{DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00"},
		{DayOfWeek: 1, StartTime: "11:30", EndTime: "15:00"},
	}})
	assert.ErrorIs(t, err, ErrOverlappingWorkingHours)

	_, err = f.uc.Hours.Replace(f.as(f.provider), f.provider.ID, &dto.ReplaceWorkingHoursRequest{Hours: []dto.WorkingHoursEntry{
		{DayOfWeek: 2, StartTime: "17:00", EndTime: "09:00"},
	}})
	assert.ErrorIs(t, err, ErrInvalidWorkingHours)

	day := int(slotAt(0).Weekday())
	resp, err := f.uc.Hours.Replace(f.as(f.admin), f.provider.ID, &dto.ReplaceWorkingHoursRequest{Hours: []dto.WorkingHoursEntry{
		{DayOfWeek: day, StartTime: "13:00", EndTime: "17:00"},
		{DayOfWeek: day, StartTime: "09:00", EndTime: "12:00"},
	}})
	require.NoError(t, err)
	require.Len(t, resp.Hours, 2)
	assert.Equal(t, "09:00", resp.Hours[0].StartTime)

	got, err := f.uc.Hours.Get(f.as(f.client), f.provider.ID)
	require.NoError(t, err)
	assert.Len(t, got.Hours, 2)

	// the lunch gap is no longer bookable
	_, err = f.uc.Appointment.Create(f.as(f.client), &dto.CreateAppointmentRequest{
		ProviderID: f.provider.ID,
		ServiceID:  f.service.ID,
		StartTime:  slotAt(12),
	})
	assert.ErrorIs(t, err, ErrOutsideWorkingHours)
	f.book(t, slotAt(13))
}
