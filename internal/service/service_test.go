package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func seedTenantUser(t *testing.T, db *gorm.DB, roleID int) (*entity.Tenant, *entity.User) {
	t.Helper()
	tenant := &entity.Tenant{Name: "Clinic", Slug: "clinic", Timezone: "UTC", ContactEmail: "desk@clinic.test"}
	require.NoError(t, db.Create(tenant).Error)
	user := &entity.User{TenantID: tenant.ID, RoleID: roleID, Email: "user@clinic.test", Password: "x", FullName: "Test User"}
	require.NoError(t, db.Omit("Role", "Tenant").Create(user).Error)
	return tenant, user
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []gateway.EmailMessage
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg gateway.EmailMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "msg-1", nil
}

type fakePublisher struct {
	published []gateway.EventMessage
	failAt    int
	closed    bool
}

func (p *fakePublisher) Publish(_ context.Context, msgs ...gateway.EventMessage) error {
	for _, m := range msgs {
		if p.failAt > 0 && len(p.published)+1 == p.failAt {
			return errors.New("broker down")
		}
		p.published = append(p.published, m)
	}
	return nil
}

func (p *fakePublisher) Close() error {
	p.closed = true
	return nil
}

type fakeCalendar struct {
	created []gateway.CalendarEvent
	deleted []string
	err     error
}

func (c *fakeCalendar) CreateEvent(_ context.Context, e gateway.CalendarEvent) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	c.created = append(c.created, e)
	return "evt-1", nil
}

func (c *fakeCalendar) UpdateEvent(context.Context, string, gateway.CalendarEvent) error {
	return c.err
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, id string) error {
	if c.err != nil {
		return c.err
	}
	c.deleted = append(c.deleted, id)
	return nil
}
