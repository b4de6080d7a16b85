package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-appointment-saas/internal/converter"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/domain/repository"
	"go-appointment-saas/internal/scheduling"
	"go-appointment-saas/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrSlotConflict        = errors.New("the provider already has an appointment in this time range")
	ErrSlotBusy            = errors.New("another booking for this provider is in progress, please retry")
	ErrOutsideWorkingHours = errors.New("the requested time is outside the provider's working hours")
	ErrStartTimeInPast     = errors.New("start time must be in the future")
	ErrInvalidTimeRange    = errors.New("end time must be after start time")
	ErrInvalidProviderRole = errors.New("selected user cannot provide services")
	ErrProviderInactive    = errors.New("provider is not active")
)

// BookingEngine holds the checks every path that places an appointment on
// a provider calendar must pass (direct and guest booking, rescheduling,
// recurring generation, waitlist conversion) and the side effects that
// follow a committed booking.
type BookingEngine struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	userRepo        repository.UserRepository
	serviceRepo     repository.ServiceRepository
	hoursRepo       repository.WorkingHoursRepository
	locker          gateway.SlotLocker
	lockTTL         time.Duration
	auditService    service.AuditService
	events          service.EventRecorder
	notifier        service.Notifier
	calendar        service.CalendarSync
	now             func() time.Time
}

func NewBookingEngine(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	userRepo repository.UserRepository,
	serviceRepo repository.ServiceRepository,
	hoursRepo repository.WorkingHoursRepository,
	locker gateway.SlotLocker,
	lockTTL time.Duration,
	auditService service.AuditService,
	events service.EventRecorder,
	notifier service.Notifier,
	calendar service.CalendarSync,
) *BookingEngine {
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &BookingEngine{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		serviceRepo:     serviceRepo,
		hoursRepo:       hoursRepo,
		locker:          locker,
		lockTTL:         lockTTL,
		auditService:    auditService,
		events:          events,
		notifier:        notifier,
		calendar:        calendar,
		now:             time.Now,
	}
}

// bookRequest is a single appointment to place.
type bookRequest struct {
	Tenant     *entity.Tenant
	Service    *entity.Service
	Provider   *entity.User
	Client     *entity.User
	Start      time.Time
	Notes      string
	ActorID    *uuid.UUID
	TemplateID *uuid.UUID
	// InTx runs inside the booking transaction after the insert.
	InTx func(tx *gorm.DB, appointment *entity.Appointment) error
}

// book places one appointment under the provider lock, commits it with
// its audit row and domain event, then runs the best-effort side effects.
func (e *BookingEngine) book(ctx context.Context, req bookRequest) (*entity.Appointment, error) {
	unlock, err := e.lockProvider(ctx, req.Provider.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx := e.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appointment := &entity.Appointment{
		TenantID:            req.Tenant.ID,
		ProviderID:          req.Provider.ID,
		ClientID:            req.Client.ID,
		ServiceID:           req.Service.ID,
		RecurringTemplateID: req.TemplateID,
		StartTime:           req.Start.UTC(),
		EndTime:             req.Start.Add(req.Service.Duration()).UTC(),
		Status:              initialStatus(req.Tenant),
		Notes:               req.Notes,
		Price:               req.Service.Price,
		PaymentStatus:       entity.PaymentStatusUnpaid,
	}
	if err := e.place(tx, req.Tenant, appointment, true); err != nil {
		return nil, err
	}

	if req.InTx != nil {
		if err := req.InTx(tx, appointment); err != nil {
			return nil, err
		}
	}

	if err := e.recordCreated(ctx, tx, req.ActorID, appointment); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		e.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	appointment.Provider = req.Provider
	appointment.Client = req.Client
	appointment.Service = req.Service

	e.log.WithFields(logrus.Fields{
		"tenant_id":      req.Tenant.ID,
		"appointment_id": appointment.ID,
		"provider_id":    appointment.ProviderID,
		"start_time":     appointment.StartTime,
	}).Info("Appointment booked")

	e.afterBooked(ctx, req.Tenant, appointment)
	return appointment, nil
}

func (e *BookingEngine) recordCreated(ctx context.Context, tx *gorm.DB, actorID *uuid.UUID, appointment *entity.Appointment) error {
	if err := e.auditService.LogCreate(ctx, tx, service.AuditEntry{
		TenantID:   appointment.TenantID,
		UserID:     actorID,
		Action:     entity.AuditActionAppointmentCreate,
		EntityName: "appointment",
		EntityID:   appointment.ID.String(),
	}, converter.AppointmentToResponse(appointment)); err != nil {
		return err
	}
	if err := e.events.Record(ctx, tx, appointment.TenantID, entity.EventAppointmentCreated, appointment.ID.String(), appointmentPayload(appointment)); err != nil {
		e.log.Warnf("Failed to record appointment event: %+v", err)
		return err
	}
	return nil
}

// afterBooked informs client and provider and mirrors the appointment to
// the external calendar. Failures never undo the booking.
func (e *BookingEngine) afterBooked(ctx context.Context, tenant *entity.Tenant, a *entity.Appointment) {
	when := describeTime(tenant, a.StartTime)
	serviceName := ""
	if a.Service != nil {
		serviceName = a.Service.Name
	}

	e.notifier.Notify(ctx, service.Notice{
		TenantID:  tenant.ID,
		Recipient: a.Client,
		Type:      entity.NotificationAppointmentCreated,
		Title:     "Appointment booked",
		Message:   fmt.Sprintf("Your %s appointment at %s is booked for %s. Booking code: %s.", serviceName, tenant.Name, when, a.BookingCode),
		Data:      appointmentData(a),
		Email:     true,
	})
	if a.Provider != nil && a.Provider.ID != a.ClientID {
		clientName := ""
		if a.Client != nil {
			clientName = a.Client.FullName
		}
		e.notifier.Notify(ctx, service.Notice{
			TenantID:  tenant.ID,
			Recipient: a.Provider,
			Type:      entity.NotificationAppointmentCreated,
			Title:     "New appointment",
			Message:   fmt.Sprintf("%s booked %s for %s.", clientName, serviceName, when),
			Data:      appointmentData(a),
		})
	}

	e.calendar.Created(ctx, tenant, a)
}

// lockProvider serializes writes to one provider calendar. The returned
// func must be called after the transaction ends.
func (e *BookingEngine) lockProvider(ctx context.Context, providerID uuid.UUID) (func(), error) {
	unlock, err := e.locker.Lock(ctx, "provider:"+providerID.String(), e.lockTTL)
	if err != nil {
		if errors.Is(err, gateway.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, fmt.Errorf("lock provider calendar: %w", err)
	}
	return unlock, nil
}

func (e *BookingEngine) provider(db *gorm.DB, tenantID, providerID uuid.UUID) (*entity.User, error) {
	provider, err := e.userRepo.FindByID(db, tenantID, providerID)
	if err != nil {
		e.log.Warnf("Failed to find provider: %+v", err)
		return nil, err
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}
	if !provider.CanProvide() {
		return nil, ErrInvalidProviderRole
	}
	if !provider.Active() {
		return nil, ErrProviderInactive
	}
	return provider, nil
}

func (e *BookingEngine) client(db *gorm.DB, tenantID, clientID uuid.UUID) (*entity.User, error) {
	client, err := e.userRepo.FindByID(db, tenantID, clientID)
	if err != nil {
		e.log.Warnf("Failed to find client: %+v", err)
		return nil, err
	}
	if client == nil || !client.Active() {
		return nil, ErrClientNotFound
	}
	return client, nil
}

// bookableService returns an active service of the tenant.
func (e *BookingEngine) bookableService(db *gorm.DB, tenantID, serviceID uuid.UUID) (*entity.Service, error) {
	svc, err := e.serviceRepo.FindByID(db, tenantID, serviceID)
	if err != nil {
		e.log.Warnf("Failed to find service: %+v", err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	if !svc.Active() {
		return nil, ErrServiceInactive
	}
	return svc, nil
}

// fitsWorkingHours checks that the interval lies inside one working window
// of its local weekday. Providers without configured hours accept any time.
func (e *BookingEngine) fitsWorkingHours(db *gorm.DB, tenant *entity.Tenant, providerID uuid.UUID, iv scheduling.Interval) error {
	all, err := e.hoursRepo.FindByProvider(db, tenant.ID, providerID)
	if err != nil {
		e.log.Warnf("Failed to find working hours: %+v", err)
		return err
	}
	if len(all) == 0 {
		return nil
	}

	loc := tenant.Location()
	start := iv.Start.In(loc)
	for _, w := range all {
		if w.DayOfWeek != int(start.Weekday()) {
			continue
		}
		window, err := workingWindow(w, start, loc)
		if err != nil {
			e.log.Warnf("Skipping malformed working hours %d: %+v", w.ID, err)
			continue
		}
		if !iv.Start.Before(window.Start) && !iv.End.After(window.End) {
			return nil
		}
	}
	return ErrOutsideWorkingHours
}

// checkConflict rejects the interval when a non-cancelled appointment of
// the provider intersects it. exclude skips the appointment being moved.
func (e *BookingEngine) checkConflict(db *gorm.DB, tenantID, providerID uuid.UUID, iv scheduling.Interval, exclude uuid.UUID) error {
	overlapping, err := e.appointmentRepo.FindOverlapping(db, tenantID, providerID, iv.Start, iv.End, exclude)
	if err != nil {
		e.log.Warnf("Failed to check overlapping appointments: %+v", err)
		return err
	}

	existing := make([]scheduling.Occupied, len(overlapping))
	for i := range overlapping {
		existing[i] = scheduling.Occupied{
			ID:        overlapping[i].ID,
			Interval:  overlapping[i].Interval(),
			Cancelled: overlapping[i].IsCancelled(),
		}
	}
	if len(scheduling.Conflicts(iv, existing, exclude)) > 0 {
		return ErrSlotConflict
	}
	return nil
}

// place validates and inserts a new appointment. The caller holds the
// provider lock and owns tx.
func (e *BookingEngine) place(tx *gorm.DB, tenant *entity.Tenant, appointment *entity.Appointment, checkHours bool) error {
	iv := appointment.Interval()
	if !iv.Valid() {
		return ErrInvalidTimeRange
	}
	if !iv.Start.After(e.now()) {
		return ErrStartTimeInPast
	}
	if checkHours {
		if err := e.fitsWorkingHours(tx, tenant, appointment.ProviderID, iv); err != nil {
			return err
		}
	}
	if err := e.checkConflict(tx, tenant.ID, appointment.ProviderID, iv, uuid.Nil); err != nil {
		return err
	}

	if appointment.BookingCode == "" {
		appointment.BookingCode = generateBookingCode()
	}
	if err := e.appointmentRepo.Create(tx, appointment); err != nil {
		if isExclusionViolation(err) {
			return ErrSlotConflict
		}
		e.log.Warnf("Failed to create appointment: %+v", err)
		return err
	}
	return nil
}

// initialStatus is PENDING unless the tenant confirms bookings automatically.
func initialStatus(tenant *entity.Tenant) entity.AppointmentStatus {
	if tenant.Settings.Data().AutoConfirm {
		return entity.AppointmentStatusConfirmed
	}
	return entity.AppointmentStatusPending
}

func workingWindow(w entity.WorkingHours, day time.Time, loc *time.Location) (scheduling.Interval, error) {
	from, err := scheduling.ParseClock(w.StartTime)
	if err != nil {
		return scheduling.Interval{}, err
	}
	to, err := scheduling.ParseClock(w.EndTime)
	if err != nil {
		return scheduling.Interval{}, err
	}
	return scheduling.Interval{Start: from.On(day, loc), End: to.On(day, loc)}, nil
}

func appointmentPayload(a *entity.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"appointment_id": a.ID,
		"booking_code":   a.BookingCode,
		"provider_id":    a.ProviderID,
		"client_id":      a.ClientID,
		"service_id":     a.ServiceID,
		"start_time":     a.StartTime,
		"end_time":       a.EndTime,
		"status":         a.Status,
	}
}

func appointmentData(a *entity.Appointment) map[string]interface{} {
	return map[string]interface{}{
		"appointment_id": a.ID,
		"booking_code":   a.BookingCode,
		"start_time":     a.StartTime,
	}
}

func describeTime(tenant *entity.Tenant, t time.Time) string {
	local := t.In(tenant.Location())
	return local.Format("Mon, 02 Jan 2006 at 15:04") + " (" + tenant.Timezone + ")"
}
