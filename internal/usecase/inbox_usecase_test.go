package usecase

import (
	"testing"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationInbox(t *testing.T) {
	f := newFixture(t)
	f.book(t, slotAt(9))
	f.book(t, slotAt(11))
	ctx := f.as(f.provider)

	all, err := f.uc.Notification.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, string(entity.NotificationAppointmentCreated), all[0].Type)

	require.NoError(t, f.uc.Notification.MarkRead(ctx, all[0].ID))
	require.NoError(t, f.uc.Notification.MarkRead(ctx, all[0].ID), "marking twice is not an error")

	// the client's inbox is off limits
	assert.ErrorIs(t, f.uc.Notification.MarkRead(f.as(f.client), all[0].ID), ErrNotificationNotFound)
	assert.ErrorIs(t, f.uc.Notification.MarkRead(ctx, uuid.New()), ErrNotificationNotFound)

	unread, err := f.uc.Notification.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, all[1].ID, unread[0].ID)

	marked, err := f.uc.Notification.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked.Updated)

	unread, err = f.uc.Notification.List(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}

func TestContactForm(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Contact.Submit(t.Context(), &dto.ContactRequest{
		TenantSlug: "sunrise",
		Name:       "Vic Visitor",
		Email:      "vic@example.test",
		Subject:    "Parking",
		Message:    "Is there <parking> nearby?",
	})
	require.NoError(t, err)
	assert.True(t, resp.Delivered)
	assert.Equal(t, 1, f.mailer.sentTo("desk@sunrise.test"))

	inbox, err := f.uc.Notification.List(f.as(f.admin), false)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, string(entity.NotificationContactMessage), inbox[0].Type)
	assert.Contains(t, inbox[0].Title, "Parking")

	// providers and clients are not told
	providerInbox, err := f.uc.Notification.List(f.as(f.provider), false)
	require.NoError(t, err)
	assert.Empty(t, providerInbox)

	_, err = f.uc.Contact.Submit(t.Context(), &dto.ContactRequest{TenantSlug: "nowhere", Name: "Vic", Email: "vic@example.test", Subject: "x", Message: "y"})
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestAuditLogs(t *testing.T) {
	f := newFixture(t)
	appt := f.book(t, slotAt(9))
	_, err := f.uc.Appointment.UpdateStatus(f.as(f.provider), appt.ID, &dto.UpdateAppointmentStatusRequest{Status: "CONFIRMED"})
	require.NoError(t, err)

	ctx := f.as(f.admin)
	all, err := f.uc.AuditLog.GetAllAuditLogs(ctx, "", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)
	assert.Equal(t, 1, all.Page)
	require.Len(t, all.Logs, 2)
	assert.Equal(t, entity.AuditActionAppointmentStatus, all.Logs[0].Action, "newest first")

	created, err := f.uc.AuditLog.GetAllAuditLogs(ctx, entity.AuditActionAppointmentCreate, 1, 10)
	require.NoError(t, err)
	require.Len(t, created.Logs, 1)

	one, err := f.uc.AuditLog.GetAuditLog(ctx, created.Logs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, entity.AuditActionAppointmentCreate, one.Action)
	require.NotNil(t, one.User)
	assert.Equal(t, f.client.ID, one.User.ID)

	// another tenant sees nothing
	stranger := &entity.User{ID: uuid.New(), TenantID: uuid.New(), RoleID: entity.RoleIDAdmin}
	_, err = f.uc.AuditLog.GetAuditLog(f.as(stranger), created.Logs[0].ID)
	assert.ErrorIs(t, err, ErrAuditLogNotFound)

	none, err := f.uc.AuditLog.GetAllAuditLogs(f.as(stranger), "", 1, 10)
	require.NoError(t, err)
	assert.Zero(t, none.Total)
}
