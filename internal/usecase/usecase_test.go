package usecase

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"go-appointment-saas/config"
	"go-appointment-saas/internal/delivery/http/middleware"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/infrastructure/database"
	"go-appointment-saas/internal/infrastructure/payment"
	"go-appointment-saas/internal/repository"
	"go-appointment-saas/internal/service"
	"go-appointment-saas/pkg/jwt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// fixture is one tenant with an admin, a provider working every day from
// 08:00 to 20:00 UTC, a client and a 30 minute service.
type fixture struct {
	db       *gorm.DB
	log      *logrus.Logger
	tenant   *entity.Tenant
	admin    *entity.User
	provider *entity.User
	client   *entity.User
	service  *entity.Service

	mailer   *fakeMailer
	calendar *fakeCalendar
	tokens   *fakeTokenStore
	jwt      *jwt.JWTService

	auditService service.AuditService
	notifier     service.Notifier
	matcher      service.WaitlistMatcher
	engine       *BookingEngine

	uc usecases
}

// usecases are wired to one fixture.
type usecases struct {
	Auth         AuthUsecase
	Tenant       TenantUsecase
	Service      ServiceUsecase
	Hours        WorkingHoursUsecase
	Appointment  AppointmentUsecase
	Recurring    RecurringUsecase
	Waitlist     WaitlistUsecase
	Notification NotificationUsecase
	Contact      ContactUsecase
	AuditLog     AuditLogUsecase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewSQLiteConnection(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &fixture{db: db, log: log, mailer: &fakeMailer{}, calendar: &fakeCalendar{}, tokens: newFakeTokenStore()}

	f.tenant = &entity.Tenant{Name: "Sunrise Clinic", Slug: "sunrise", Timezone: "UTC", ContactEmail: "desk@sunrise.test", IsActive: boolPtr(true)}
	require.NoError(t, db.Create(f.tenant).Error)

	f.admin = f.addUser(t, entity.RoleIDAdmin, "admin@sunrise.test", "Ada Admin")
	f.provider = f.addUser(t, entity.RoleIDProvider, "doc@sunrise.test", "Dr. Pat")
	f.client = f.addUser(t, entity.RoleIDClient, "client@sunrise.test", "Casey Client")

	f.service = &entity.Service{TenantID: f.tenant.ID, Name: "Consultation", DurationMinutes: 30, Price: decimal.NewFromInt(50), IsActive: boolPtr(true)}
	require.NoError(t, db.Create(f.service).Error)

	for day := 0; day < 7; day++ {
		require.NoError(t, db.Create(&entity.WorkingHours{
			TenantID:   f.tenant.ID,
			ProviderID: f.provider.ID,
			DayOfWeek:  day,
			StartTime:  "08:00",
			EndTime:    "20:00",
		}).Error)
	}

	tenantRepo := repository.NewTenantRepository()
	userRepo := repository.NewUserRepository()
	serviceRepo := repository.NewServiceRepository()
	hoursRepo := repository.NewWorkingHoursRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	recurringRepo := repository.NewRecurringAppointmentRepository()
	waitlistRepo := repository.NewWaitlistRepository()
	notificationRepo := repository.NewNotificationRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	events := service.NewEventRecorder(repository.NewOutboxRepository())
	f.auditService = service.NewAuditService(log, auditLogRepo)
	f.notifier = service.NewNotifier(db, log, notificationRepo, f.mailer)
	f.matcher = service.NewWaitlistMatcher(db, log, waitlistRepo, events, f.notifier)
	calendarSync := service.NewCalendarSync(db, log, f.calendar, appointmentRepo)

	locker := service.NewLocalSlotLocker(log)
	t.Cleanup(locker.Stop)

	f.engine = NewBookingEngine(db, log, appointmentRepo, userRepo, serviceRepo, hoursRepo,
		locker, time.Second, f.auditService, events, f.notifier, calendarSync)

	f.jwt = jwt.NewJWTService(config.JWTConfig{Secret: "test-secret", AccessExpiry: 15 * time.Minute, RefreshExpiry: time.Hour})
	payments := payment.NewRouter(map[string]gateway.PaymentGateway{gateway.PaymentMethodCash: payment.NewManualGateway()})

	f.uc = usecases{
		Auth:         NewAuthUsecase(db, log, tenantRepo, userRepo, f.jwt, f.tokens),
		Tenant:       NewTenantUsecase(db, log, tenantRepo, userRepo, serviceRepo, f.auditService, f.tokens, 30),
		Service:      NewServiceUsecase(db, log, serviceRepo, appointmentRepo, f.auditService),
		Hours:        NewWorkingHoursUsecase(db, log, tenantRepo, userRepo, hoursRepo, f.auditService),
		Appointment:  NewAppointmentUsecase(db, log, f.engine, tenantRepo, appointmentRepo, f.matcher, payments, "USD", 15*time.Minute),
		Recurring:    NewRecurringUsecase(db, log, f.engine, tenantRepo, recurringRepo, appointmentRepo, f.matcher),
		Waitlist:     NewWaitlistUsecase(db, log, f.engine, tenantRepo, waitlistRepo, f.matcher, 30),
		Notification: NewNotificationUsecase(db, log, notificationRepo),
		Contact:      NewContactUsecase(db, log, tenantRepo, userRepo, f.notifier),
		AuditLog:     NewAuditLogUsecase(db, log, auditLogRepo),
	}
	return f
}

// hookedLocker runs beforeLock ahead of every acquisition, standing in for a
// request that commits while the caller waits for the provider lock.
type hookedLocker struct {
	gateway.SlotLocker
	beforeLock func()
}

func (l *hookedLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if l.beforeLock != nil {
		l.beforeLock()
	}
	return l.SlotLocker.Lock(ctx, key, ttl)
}

// engineWithLocker is a second booking engine over the fixture's database
// whose provider lock runs beforeLock first.
func (f *fixture) engineWithLocker(t *testing.T, beforeLock func()) *BookingEngine {
	t.Helper()
	local := service.NewLocalSlotLocker(f.log)
	t.Cleanup(local.Stop)

	appointmentRepo := repository.NewAppointmentRepository()
	return NewBookingEngine(f.db, f.log, appointmentRepo, repository.NewUserRepository(), repository.NewServiceRepository(),
		repository.NewWorkingHoursRepository(), &hookedLocker{SlotLocker: local, beforeLock: beforeLock}, time.Second,
		f.auditService, service.NewEventRecorder(repository.NewOutboxRepository()), f.notifier,
		service.NewCalendarSync(f.db, f.log, f.calendar, appointmentRepo))
}

func (f *fixture) addUser(t *testing.T, roleID int, email, name string) *entity.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &entity.User{
		TenantID: f.tenant.ID,
		RoleID:   roleID,
		Email:    email,
		Password: string(hashed),
		FullName: name,
		IsActive: boolPtr(true),
	}
	require.NoError(t, f.db.Omit("Role", "Tenant").Create(user).Error)
	return user
}

func (f *fixture) as(u *entity.User) context.Context {
	return middleware.WithPrincipal(context.Background(), middleware.Principal{
		UserID:   u.ID,
		TenantID: u.TenantID,
		RoleID:   u.RoleID,
		Email:    u.Email,
		TokenID:  uuid.NewString(),
	})
}

// slotAt returns a whole-hour UTC time on a day a week from now.
func slotAt(hour int) time.Time {
	day := time.Now().UTC().AddDate(0, 0, 7)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []gateway.EmailMessage
}

func (m *fakeMailer) Send(_ context.Context, msg gateway.EmailMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return "msg-1", nil
}

func (m *fakeMailer) sentTo(addr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, msg := range m.sent {
		for _, to := range msg.To {
			if to == addr {
				n++
			}
		}
	}
	return n
}

type fakeCalendar struct {
	mu      sync.Mutex
	created int
	deleted []string
}

func (c *fakeCalendar) CreateEvent(context.Context, gateway.CalendarEvent) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.created++
	return uuid.NewString(), nil
}

func (c *fakeCalendar) UpdateEvent(context.Context, string, gateway.CalendarEvent) error {
	return nil
}

func (c *fakeCalendar) DeleteEvent(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, id)
	return nil
}

type fakeTokenStore struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: map[string]bool{}}
}

func tokenKey(kind gateway.TokenKind, userID uuid.UUID, tokenID string) string {
	return string(kind) + ":" + userID.String() + ":" + tokenID
}

func (s *fakeTokenStore) Store(_ context.Context, kind gateway.TokenKind, userID uuid.UUID, tokenID string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenKey(kind, userID, tokenID)] = true
	return nil
}

func (s *fakeTokenStore) Exists(_ context.Context, kind gateway.TokenKind, userID uuid.UUID, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[tokenKey(kind, userID, tokenID)], nil
}

func (s *fakeTokenStore) Revoke(_ context.Context, kind gateway.TokenKind, userID uuid.UUID, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenKey(kind, userID, tokenID))
	return nil
}

func (s *fakeTokenStore) RevokeAll(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.tokens {
		if strings.Contains(k, userID.String()) {
			delete(s.tokens, k)
		}
	}
	return nil
}

func (s *fakeTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}
