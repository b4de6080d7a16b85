package service

import (
	"context"
	"errors"
	"testing"

	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifierStoresAndMails(t *testing.T) {
	db := newTestDB(t)
	tenant, user := seedTenantUser(t, db, entity.RoleIDClient)
	mailer := &fakeMailer{}
	n := NewNotifier(db, newTestLogger(), repository.NewNotificationRepository(), mailer)

	got := n.Notify(context.Background(), Notice{
		TenantID:  tenant.ID,
		Recipient: user,
		Type:      entity.NotificationAppointmentCreated,
		Title:     "Appointment booked",
		Message:   "See you soon",
		Data:      map[string]interface{}{"appointment_id": "a1"},
		Email:     true,
	})
	require.NotNil(t, got)
	assert.Equal(t, entity.EmailStatusSent, got.EmailStatus)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, []string{user.Email}, mailer.sent[0].To)

	var stored entity.Notification
	require.NoError(t, db.First(&stored, "id = ?", got.ID).Error)
	assert.Equal(t, entity.EmailStatusSent, stored.EmailStatus)
	assert.JSONEq(t, `{"appointment_id":"a1"}`, string(stored.Data))
}

func TestNotifierSwallowsMailFailure(t *testing.T) {
	db := newTestDB(t)
	tenant, user := seedTenantUser(t, db, entity.RoleIDClient)
	n := NewNotifier(db, newTestLogger(), repository.NewNotificationRepository(), &fakeMailer{err: errors.New("smtp down")})

	got := n.Notify(context.Background(), Notice{
		TenantID:  tenant.ID,
		Recipient: user,
		Type:      entity.NotificationAppointmentCancelled,
		Title:     "Cancelled",
		Message:   "Your appointment was cancelled",
		Email:     true,
	})
	require.NotNil(t, got)
	assert.Equal(t, entity.EmailStatusFailed, got.EmailStatus)
}

func TestNotifierInAppOnly(t *testing.T) {
	db := newTestDB(t)
	tenant, user := seedTenantUser(t, db, entity.RoleIDClient)
	mailer := &fakeMailer{}
	n := NewNotifier(db, newTestLogger(), repository.NewNotificationRepository(), mailer)

	got := n.Notify(context.Background(), Notice{TenantID: tenant.ID, Recipient: user, Type: entity.NotificationRecurringCreated, Title: "t", Message: "m"})
	require.NotNil(t, got)
	assert.Equal(t, entity.EmailStatusSkipped, got.EmailStatus)
	assert.Empty(t, mailer.sent)

	assert.Nil(t, n.Notify(context.Background(), Notice{TenantID: tenant.ID}))
}
