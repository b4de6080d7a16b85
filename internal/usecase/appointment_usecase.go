package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-appointment-saas/internal/converter"
	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/delivery/http/middleware"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/domain/repository"
	"go-appointment-saas/internal/scheduling"
	"go-appointment-saas/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrAppointmentClosed       = errors.New("appointment can no longer be changed")
	ErrClientRequired          = errors.New("client_id is required when staff book an appointment")
	ErrCancellationTooLate     = errors.New("appointment can no longer be cancelled online")
	ErrAlreadyPaid             = errors.New("appointment is already paid")
	ErrNothingToPay            = errors.New("appointment has nothing to pay")
	ErrPaymentFailed           = errors.New("payment could not be processed")
)

type AppointmentUsecase interface {
	Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	GuestBook(ctx context.Context, slug string, req *dto.GuestBookingRequest) (*dto.AppointmentResponse, error)
	List(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
	Pay(ctx context.Context, id uuid.UUID, req *dto.PaymentRequest) (*dto.PaymentResponse, error)
	Availability(ctx context.Context, slug string, query *dto.AvailabilityQuery) (*dto.AvailabilityResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	engine          *BookingEngine
	tenantRepo      repository.TenantRepository
	appointmentRepo repository.AppointmentRepository
	matcher         service.WaitlistMatcher
	payments        gateway.PaymentGateway
	currency        string
	slotStep        time.Duration
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	engine *BookingEngine,
	tenantRepo repository.TenantRepository,
	appointmentRepo repository.AppointmentRepository,
	matcher service.WaitlistMatcher,
	payments gateway.PaymentGateway,
	currency string,
	slotStep time.Duration,
) AppointmentUsecase {
	if slotStep <= 0 {
		slotStep = 15 * time.Minute
	}
	return &appointmentUsecase{
		db:              db,
		log:             log,
		engine:          engine,
		tenantRepo:      tenantRepo,
		appointmentRepo: appointmentRepo,
		matcher:         matcher,
		payments:        payments,
		currency:        strings.ToLower(currency),
		slotStep:        slotStep,
	}
}

func (u *appointmentUsecase) Create(ctx context.Context, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	db := u.db.WithContext(ctx)

	clientID := p.UserID
	if isStaff(p) {
		if req.ClientID == nil {
			return nil, ErrClientRequired
		}
		clientID = *req.ClientID
	}

	tenant, err := u.activeTenant(db, p.TenantID)
	if err != nil {
		return nil, err
	}
	svc, err := u.engine.bookableService(db, p.TenantID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	provider, err := u.engine.provider(db, p.TenantID, req.ProviderID)
	if err != nil {
		return nil, err
	}
	client, err := u.engine.client(db, p.TenantID, clientID)
	if err != nil {
		return nil, err
	}

	appointment, err := u.engine.book(ctx, bookRequest{
		Tenant:   tenant,
		Service:  svc,
		Provider: provider,
		Client:   client,
		Start:    req.StartTime,
		Notes:    req.Notes,
		ActorID:  &p.UserID,
	})
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

// GuestBook books on a public page. The client account is looked up by
// email and created without a usable password when missing.
func (u *appointmentUsecase) GuestBook(ctx context.Context, slug string, req *dto.GuestBookingRequest) (*dto.AppointmentResponse, error) {
	db := u.db.WithContext(ctx)
	tenant, err := findActiveTenantBySlug(db, u.tenantRepo, u.log, slug)
	if err != nil {
		return nil, err
	}
	svc, err := u.engine.bookableService(db, tenant.ID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	provider, err := u.engine.provider(db, tenant.ID, req.ProviderID)
	if err != nil {
		return nil, err
	}

	client, err := u.findOrCreateGuest(ctx, tenant, req)
	if err != nil {
		return nil, err
	}

	appointment, err := u.engine.book(ctx, bookRequest{
		Tenant:   tenant,
		Service:  svc,
		Provider: provider,
		Client:   client,
		Start:    req.StartTime,
		Notes:    req.Notes,
		ActorID:  &client.ID,
	})
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

func (u *appointmentUsecase) findOrCreateGuest(ctx context.Context, tenant *entity.Tenant, req *dto.GuestBookingRequest) (*entity.User, error) {
	db := u.db.WithContext(ctx)
	user, err := u.engine.userRepo.FindByEmail(db, tenant.ID, req.Email)
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user != nil {
		if !user.Active() {
			return nil, ErrAccountInactive
		}
		return user, nil
	}

	// Guests sign in later through a password reset; the random secret
	// is never shown.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}
	user = &entity.User{
		TenantID: tenant.ID,
		RoleID:   entity.RoleIDClient,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
		IsActive: boolPtr(true),
	}
	if err := u.engine.userRepo.Create(db, user); err != nil {
		if isDuplicateKeyError(err) {
			// created by a concurrent request
			existing, findErr := u.engine.userRepo.FindByEmail(db, tenant.ID, req.Email)
			if findErr == nil && existing != nil {
				return existing, nil
			}
		}
		u.log.Warnf("Failed to create guest client: %+v", err)
		return nil, err
	}
	return user, nil
}

// List is scoped by role: clients see their own appointments and
// providers their own calendar.
func (u *appointmentUsecase) List(ctx context.Context, query *dto.AppointmentListQuery) (*dto.AppointmentListResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	page, limit := normalizePage(query.Page, query.Limit)
	filter := entity.AppointmentFilter{
		TenantID:   p.TenantID,
		ProviderID: query.ProviderID,
		ClientID:   query.ClientID,
		Status:     entity.AppointmentStatus(query.Status),
		From:       query.From,
		To:         query.To,
		Page:       page,
		Limit:      limit,
	}
	switch p.RoleID {
	case entity.RoleIDClient:
		filter.ClientID = &p.UserID
	case entity.RoleIDProvider:
		filter.ProviderID = &p.UserID
	}

	appointments, total, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        total,
		Page:         page,
		Limit:        limit,
	}, nil
}

func (u *appointmentUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.AppointmentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	appointment, err := u.find(u.db.WithContext(ctx), p, id)
	if err != nil {
		return nil, err
	}
	return converter.AppointmentToResponse(appointment), nil
}

// Update reschedules an open appointment or changes its provider, service
// or notes. The moved appointment is checked against every other one.
func (u *appointmentUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	db := u.db.WithContext(ctx)

	current, err := u.find(db, p, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, ErrAppointmentClosed
	}
	tenant, err := u.activeTenant(db, p.TenantID)
	if err != nil {
		return nil, err
	}

	providerID := current.ProviderID
	if req.ProviderID != nil {
		providerID = *req.ProviderID
	}
	provider, err := u.engine.provider(db, p.TenantID, providerID)
	if err != nil {
		return nil, err
	}

	svc := current.Service
	if req.ServiceID != nil && *req.ServiceID != current.ServiceID {
		if svc, err = u.engine.bookableService(db, p.TenantID, *req.ServiceID); err != nil {
			return nil, err
		}
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	start := current.StartTime
	if req.StartTime != nil {
		start = req.StartTime.UTC()
	}
	moved := providerID != current.ProviderID || !start.Equal(current.StartTime) || svc.ID != current.ServiceID

	unlock, err := u.engine.lockProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx := db.Begin()
	defer tx.Rollback()

	// reload under the lock so a concurrent status change is seen
	appointment, err := u.appointmentRepo.FindByID(tx, p.TenantID, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.Status.IsTerminal() {
		return nil, ErrAppointmentClosed
	}
	before := converter.AppointmentToResponse(appointment)
	freed := scheduling.Slot{
		ProviderID: appointment.ProviderID,
		ServiceID:  appointment.ServiceID,
		Start:      appointment.StartTime,
		End:        appointment.EndTime,
	}

	fields := map[string]interface{}{}
	if moved {
		iv := scheduling.NewInterval(start, svc.Duration())
		if !iv.Start.After(u.engine.now()) {
			return nil, ErrStartTimeInPast
		}
		if err := u.engine.fitsWorkingHours(tx, tenant, providerID, iv); err != nil {
			return nil, err
		}
		if err := u.engine.checkConflict(tx, p.TenantID, providerID, iv, appointment.ID); err != nil {
			return nil, err
		}
		appointment.ProviderID = providerID
		appointment.ServiceID = svc.ID
		appointment.StartTime = iv.Start.UTC()
		appointment.EndTime = iv.End.UTC()
		fields["provider_id"] = appointment.ProviderID
		fields["service_id"] = appointment.ServiceID
		fields["start_time"] = appointment.StartTime
		fields["end_time"] = appointment.EndTime
		if appointment.PaymentStatus == entity.PaymentStatusUnpaid {
			appointment.Price = svc.Price
			fields["price"] = appointment.Price
		}
	}
	if req.Notes != nil {
		appointment.Notes = *req.Notes
		fields["notes"] = appointment.Notes
	}

	if len(fields) > 0 {
		// status changes do not take the provider lock, so guard on status
		affected, err := u.appointmentRepo.UpdateFields(tx, appointment.ID, appointment.Status, fields)
		if err != nil {
			if isExclusionViolation(err) {
				return nil, ErrSlotConflict
			}
			u.log.Warnf("Failed to update appointment: %+v", err)
			return nil, err
		}
		if affected == 0 {
			return nil, ErrAppointmentClosed
		}
	}

	appointment.Provider = provider
	appointment.Service = svc
	after := converter.AppointmentToResponse(appointment)
	if err := u.engine.auditService.LogUpdate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionAppointmentUpdate,
		EntityName: "appointment",
		EntityID:   appointment.ID.String(),
	}, before, after); err != nil {
		return nil, err
	}
	if err := u.engine.events.Record(ctx, tx, p.TenantID, entity.EventAppointmentUpdated, appointment.ID.String(), appointmentPayload(appointment)); err != nil {
		u.log.Warnf("Failed to record appointment event: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if moved {
		u.engine.notifier.Notify(ctx, service.Notice{
			TenantID:  tenant.ID,
			Recipient: appointment.Client,
			Type:      entity.NotificationAppointmentRescheduled,
			Title:     "Appointment rescheduled",
			Message:   fmt.Sprintf("Your appointment %s now starts %s.", appointment.BookingCode, describeTime(tenant, appointment.StartTime)),
			Data:      appointmentData(appointment),
			Email:     true,
		})
		u.engine.calendar.Updated(ctx, tenant, appointment)
		u.offerFreedSlot(ctx, tenant, freed)
	}

	return after, nil
}

// UpdateStatus applies one transition of the appointment state machine.
// Clients may only cancel their own appointments.
func (u *appointmentUsecase) UpdateStatus(ctx context.Context, id uuid.UUID, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	db := u.db.WithContext(ctx)

	next := entity.AppointmentStatus(req.Status)
	if !next.Valid() {
		return nil, ErrInvalidStatusTransition
	}

	tenant, err := findTenant(db, u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	defer tx.Rollback()

	appointment, err := u.find(tx, p, id)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.CanTransitionTo(next) {
		return nil, ErrInvalidStatusTransition
	}

	now := u.engine.now().UTC()
	if p.RoleID == entity.RoleIDClient {
		if next != entity.AppointmentStatusCancelled {
			return nil, ErrForbidden
		}
		notice := time.Duration(tenant.Settings.Data().CancellationNoticeHours) * time.Hour
		if notice > 0 && appointment.StartTime.Sub(now) < notice {
			return nil, ErrCancellationTooLate
		}
	}

	before := converter.AppointmentToResponse(appointment)
	fields := map[string]interface{}{}
	previous := appointment.Status
	if next == entity.AppointmentStatusCancelled {
		appointment.Cancel(req.Reason, now)
		fields["cancellation_reason"] = req.Reason
		fields["cancelled_at"] = now
	} else {
		appointment.Status = next
	}

	affected, err := u.appointmentRepo.UpdateStatus(tx, appointment.ID, previous, next, fields)
	if err != nil {
		u.log.Warnf("Failed to update appointment status: %+v", err)
		return nil, err
	}
	if affected == 0 {
		// a concurrent request moved it first
		return nil, ErrInvalidStatusTransition
	}

	after := converter.AppointmentToResponse(appointment)
	if err := u.engine.auditService.LogUpdate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionAppointmentStatus,
		EntityName: "appointment",
		EntityID:   appointment.ID.String(),
	}, before, after); err != nil {
		return nil, err
	}
	payload := appointmentPayload(appointment)
	payload["previous_status"] = previous
	if err := u.engine.events.Record(ctx, tx, p.TenantID, entity.EventAppointmentStatus, appointment.ID.String(), payload); err != nil {
		u.log.Warnf("Failed to record appointment event: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"appointment_id": appointment.ID,
		"from":           previous,
		"to":             next,
	}).Info("Appointment status changed")

	u.afterStatusChange(ctx, tenant, appointment)
	return after, nil
}

func (u *appointmentUsecase) afterStatusChange(ctx context.Context, tenant *entity.Tenant, a *entity.Appointment) {
	when := describeTime(tenant, a.StartTime)
	switch a.Status {
	case entity.AppointmentStatusConfirmed:
		u.engine.notifier.Notify(ctx, service.Notice{
			TenantID:  tenant.ID,
			Recipient: a.Client,
			Type:      entity.NotificationAppointmentConfirmed,
			Title:     "Appointment confirmed",
			Message:   fmt.Sprintf("Your appointment %s on %s is confirmed.", a.BookingCode, when),
			Data:      appointmentData(a),
			Email:     true,
		})
	case entity.AppointmentStatusCompleted:
		u.engine.notifier.Notify(ctx, service.Notice{
			TenantID:  tenant.ID,
			Recipient: a.Client,
			Type:      entity.NotificationAppointmentCompleted,
			Title:     "Thanks for your visit",
			Message:   fmt.Sprintf("Your appointment %s at %s is completed.", a.BookingCode, tenant.Name),
			Data:      appointmentData(a),
		})
	case entity.AppointmentStatusCancelled:
		message := fmt.Sprintf("Appointment %s on %s was cancelled.", a.BookingCode, when)
		if a.CancellationReason != "" {
			message += " Reason: " + a.CancellationReason
		}
		for _, recipient := range []*entity.User{a.Client, a.Provider} {
			u.engine.notifier.Notify(ctx, service.Notice{
				TenantID:  tenant.ID,
				Recipient: recipient,
				Type:      entity.NotificationAppointmentCancelled,
				Title:     "Appointment cancelled",
				Message:   message,
				Data:      appointmentData(a),
				Email:     recipient == a.Client,
			})
		}
		u.engine.calendar.Cancelled(ctx, a)
		u.offerFreedSlot(ctx, tenant, scheduling.Slot{
			ProviderID: a.ProviderID,
			ServiceID:  a.ServiceID,
			Start:      a.StartTime,
			End:        a.EndTime,
		})
	}
}

// offerFreedSlot hands a slot that just opened up to the waitlist.
func (u *appointmentUsecase) offerFreedSlot(ctx context.Context, tenant *entity.Tenant, slot scheduling.Slot) {
	if !slot.Start.After(u.engine.now()) {
		return
	}
	if _, err := u.matcher.Match(ctx, tenant, []scheduling.Slot{slot}); err != nil {
		u.log.Errorf("Failed to match waitlist for freed slot: %+v", err)
	}
}

// Pay charges the appointment price. Cards go through the payment
// provider; cash is recorded by staff only.
func (u *appointmentUsecase) Pay(ctx context.Context, id uuid.UUID, req *dto.PaymentRequest) (*dto.PaymentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	db := u.db.WithContext(ctx)

	if req.Method == gateway.PaymentMethodCash && !isStaff(p) {
		return nil, ErrForbidden
	}

	tenant, err := findTenant(db, u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}
	appointment, err := u.find(db, p, id)
	if err != nil {
		return nil, err
	}
	if appointment.IsCancelled() || appointment.Status == entity.AppointmentStatusNoShow {
		return nil, ErrAppointmentClosed
	}
	if appointment.PaymentStatus == entity.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}
	if !appointment.Price.IsPositive() {
		return nil, ErrNothingToPay
	}

	currency := strings.ToLower(tenant.Settings.Data().Currency)
	if currency == "" {
		currency = u.currency
	}

	result, err := u.payments.Charge(ctx, gateway.ChargeRequest{
		Amount:         appointment.Price,
		Currency:       currency,
		Method:         req.Method,
		Description:    fmt.Sprintf("%s appointment %s", tenant.Name, appointment.BookingCode),
		IdempotencyKey: fmt.Sprintf("appointment-%s-%s-%d", appointment.ID, req.Method, appointment.UpdatedAt.UnixNano()),
		Metadata: map[string]string{
			"tenant_id":      tenant.ID.String(),
			"appointment_id": appointment.ID.String(),
			"booking_code":   appointment.BookingCode,
		},
	})
	if err != nil {
		if errors.Is(err, gateway.ErrPaymentMethodUnsupported) {
			return nil, err
		}
		u.log.Errorf("Failed to charge appointment %s: %+v", appointment.ID, err)
		return nil, ErrPaymentFailed
	}

	tx := db.Begin()
	defer tx.Rollback()

	// the charge took a network round trip, so work from a fresh row
	appointment, err = u.appointmentRepo.FindByID(tx, p.TenantID, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	if appointment.IsCancelled() || appointment.Status == entity.AppointmentStatusNoShow {
		u.log.Errorf("Appointment %s closed while charging, payment %s needs a refund", appointment.ID, result.Reference)
		return nil, ErrAppointmentClosed
	}
	if appointment.PaymentStatus == entity.PaymentStatusPaid {
		u.log.Errorf("Appointment %s paid twice, payment %s needs a refund", appointment.ID, result.Reference)
		return nil, ErrAlreadyPaid
	}

	before := converter.AppointmentToResponse(appointment)
	appointment.PaymentMethod = req.Method
	appointment.PaymentReference = result.Reference
	appointment.PaymentStatus = entity.PaymentStatus(result.Status)
	affected, err := u.appointmentRepo.UpdateFields(tx, appointment.ID, appointment.Status, map[string]interface{}{
		"payment_method":    appointment.PaymentMethod,
		"payment_reference": appointment.PaymentReference,
		"payment_status":    appointment.PaymentStatus,
	})
	if err != nil {
		u.log.Warnf("Failed to store payment: %+v", err)
		return nil, err
	}
	if affected == 0 {
		u.log.Errorf("Appointment %s changed while charging, payment %s needs a refund", appointment.ID, result.Reference)
		return nil, ErrAppointmentClosed
	}

	if err := u.engine.auditService.LogUpdate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionAppointmentPayment,
		EntityName: "appointment",
		EntityID:   appointment.ID.String(),
	}, before, converter.AppointmentToResponse(appointment)); err != nil {
		return nil, err
	}
	if appointment.PaymentStatus == entity.PaymentStatusPaid {
		payload := appointmentPayload(appointment)
		payload["amount"] = appointment.Price.StringFixed(2)
		payload["currency"] = currency
		payload["method"] = req.Method
		if err := u.engine.events.Record(ctx, tx, p.TenantID, entity.EventAppointmentPaid, appointment.ID.String(), payload); err != nil {
			u.log.Warnf("Failed to record payment event: %+v", err)
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &dto.PaymentResponse{
		AppointmentID: appointment.ID,
		Amount:        appointment.Price,
		Currency:      currency,
		Method:        req.Method,
		Status:        result.Status,
		Reference:     result.Reference,
		ClientSecret:  result.ClientSecret,
	}, nil
}

// Availability lists bookable start times of one provider on one local
// date. Providers without working hours that day have no slots.
func (u *appointmentUsecase) Availability(ctx context.Context, slug string, query *dto.AvailabilityQuery) (*dto.AvailabilityResponse, error) {
	db := u.db.WithContext(ctx)
	tenant, err := findActiveTenantBySlug(db, u.tenantRepo, u.log, slug)
	if err != nil {
		return nil, err
	}
	svc, err := u.engine.bookableService(db, tenant.ID, query.ServiceID)
	if err != nil {
		return nil, err
	}
	if _, err := u.engine.provider(db, tenant.ID, query.ProviderID); err != nil {
		return nil, err
	}

	loc := tenant.Location()
	day, err := scheduling.ParseDate(query.Date, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}

	hours, err := u.engine.hoursRepo.FindByProviderAndDay(db, tenant.ID, query.ProviderID, int(day.Weekday()))
	if err != nil {
		u.log.Warnf("Failed to find working hours: %+v", err)
		return nil, err
	}

	busyAppointments, err := u.appointmentRepo.FindOverlapping(db, tenant.ID, query.ProviderID, day.UTC(), day.AddDate(0, 0, 1).UTC(), uuid.Nil)
	if err != nil {
		u.log.Warnf("Failed to find appointments: %+v", err)
		return nil, err
	}
	busy := make([]scheduling.Interval, len(busyAppointments))
	for i := range busyAppointments {
		busy[i] = busyAppointments[i].Interval()
	}

	step := u.slotStep
	if minutes := tenant.Settings.Data().SlotStepMinutes; minutes > 0 {
		step = time.Duration(minutes) * time.Minute
	}

	now := u.engine.now()
	slots := []time.Time{}
	for _, h := range hours {
		window, err := workingWindow(h, day, loc)
		if err != nil {
			u.log.Warnf("Skipping malformed working hours %d: %+v", h.ID, err)
			continue
		}
		for _, s := range scheduling.AvailableSlots(window, svc.Duration(), step, busy, now) {
			slots = append(slots, s.UTC())
		}
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].Before(slots[j]) })

	return &dto.AvailabilityResponse{
		Date:            query.Date,
		Timezone:        tenant.Timezone,
		ServiceID:       svc.ID,
		ProviderID:      query.ProviderID,
		DurationMinutes: svc.DurationMinutes,
		Slots:           slots,
	}, nil
}

// find loads an appointment the caller may see. Clients and providers
// only reach their own.
func (u *appointmentUsecase) find(db *gorm.DB, p middleware.Principal, id uuid.UUID) (*entity.Appointment, error) {
	appointment, err := u.appointmentRepo.FindByID(db, p.TenantID, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment: %+v", err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}
	switch p.RoleID {
	case entity.RoleIDClient:
		if appointment.ClientID != p.UserID {
			return nil, ErrForbidden
		}
	case entity.RoleIDProvider:
		if appointment.ProviderID != p.UserID && appointment.ClientID != p.UserID {
			return nil, ErrForbidden
		}
	}
	return appointment, nil
}

func (u *appointmentUsecase) activeTenant(db *gorm.DB, tenantID uuid.UUID) (*entity.Tenant, error) {
	tenant, err := findTenant(db, u.tenantRepo, u.log, tenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.Active() {
		return nil, ErrTenantInactive
	}
	return tenant, nil
}
