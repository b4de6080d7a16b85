package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-appointment-saas/internal/converter"
	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/delivery/http/middleware"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/repository"
	"go-appointment-saas/internal/scheduling"
	"go-appointment-saas/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrRecurringNotFound  = errors.New("recurring appointment not found")
	ErrRecurringInactive  = errors.New("recurring appointment is no longer active")
	ErrDaysOfWeekRequired = errors.New("days_of_week is required for weekly and biweekly series")
	ErrInvalidDateRange   = errors.New("end_date must not be before start_date")
)

const seriesCancelReason = "Recurring series cancelled"

type RecurringUsecase interface {
	Create(ctx context.Context, req *dto.CreateRecurringAppointmentRequest) (*dto.GenerationResponse, error)
	List(ctx context.Context) ([]dto.RecurringAppointmentResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.RecurringAppointmentResponse, error)
	Generate(ctx context.Context, id uuid.UUID) (*dto.GenerationResponse, error)
	Deactivate(ctx context.Context, id uuid.UUID, cancelFuture bool) (*dto.DeactivateRecurringResponse, error)
}

type recurringUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	engine          *BookingEngine
	tenantRepo      repository.TenantRepository
	recurringRepo   repository.RecurringAppointmentRepository
	appointmentRepo repository.AppointmentRepository
	matcher         service.WaitlistMatcher
}

func NewRecurringUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	engine *BookingEngine,
	tenantRepo repository.TenantRepository,
	recurringRepo repository.RecurringAppointmentRepository,
	appointmentRepo repository.AppointmentRepository,
	matcher service.WaitlistMatcher,
) RecurringUsecase {
	return &recurringUsecase{
		db:              db,
		log:             log,
		engine:          engine,
		tenantRepo:      tenantRepo,
		recurringRepo:   recurringRepo,
		appointmentRepo: appointmentRepo,
		matcher:         matcher,
	}
}

// Create stores the series and books its first batch. Dates that are in
// the past, collide with another appointment or fall outside working
// hours are skipped and reported.
func (u *recurringUsecase) Create(ctx context.Context, req *dto.CreateRecurringAppointmentRequest) (*dto.GenerationResponse, error) {
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

	frequency := scheduling.Frequency(req.Frequency)
	if (frequency == scheduling.FrequencyWeekly || frequency == scheduling.FrequencyBiweekly) && len(req.DaysOfWeek) == 0 {
		return nil, ErrDaysOfWeekRequired
	}

	tenant, err := findTenant(db, u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.Active() {
		return nil, ErrTenantInactive
	}
	loc := tenant.Location()

	startDate, err := scheduling.ParseDate(req.StartDate, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	var endDate *datatypes.Date
	if req.EndDate != "" {
		end, err := scheduling.ParseDate(req.EndDate, loc)
		if err != nil {
			return nil, ErrInvalidDate
		}
		if end.Before(startDate) {
			return nil, ErrInvalidDateRange
		}
		d := calendarDate(end)
		endDate = &d
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

	interval := req.Interval
	if interval == 0 {
		interval = 1
	}
	dayOfMonth := req.DayOfMonth
	if dayOfMonth == 0 && (frequency == scheduling.FrequencyMonthly || frequency == scheduling.FrequencyQuarterly) {
		dayOfMonth = startDate.Day()
	}

	template := &entity.RecurringAppointmentTemplate{
		TenantID:        p.TenantID,
		ProviderID:      provider.ID,
		ClientID:        client.ID,
		ServiceID:       svc.ID,
		Frequency:       frequency,
		Interval:        interval,
		DaysOfWeek:      datatypes.NewJSONSlice(req.DaysOfWeek),
		DayOfMonth:      dayOfMonth,
		StartDate:       calendarDate(startDate),
		EndDate:         endDate,
		TimeOfDay:       req.TimeOfDay,
		DurationMinutes: svc.DurationMinutes,
		MaxOccurrences:  req.MaxOccurrences,
		Notes:           req.Notes,
		IsActive:        boolPtr(true),
	}

	rule, err := template.Rule(loc)
	if err != nil {
		return nil, err
	}
	occurrences, err := scheduling.InitialOccurrences(rule)
	if err != nil {
		return nil, err
	}

	unlock, err := u.engine.lockProvider(ctx, provider.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx := db.Begin()
	defer tx.Rollback()

	if err := u.recurringRepo.Create(tx, template); err != nil {
		u.log.Warnf("Failed to create recurring appointment: %+v", err)
		return nil, err
	}

	created, skipped, err := u.generate(ctx, tx, tenant, template, svc, occurrences, &p.UserID)
	if err != nil {
		return nil, err
	}

	if err := u.engine.auditService.LogCreate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionRecurringCreate,
		EntityName: "recurring_appointment",
		EntityID:   template.ID.String(),
	}, converter.RecurringToResponse(template)); err != nil {
		return nil, err
	}
	if err := u.engine.events.Record(ctx, tx, p.TenantID, entity.EventRecurringSeriesCreated, template.ID.String(), map[string]interface{}{
		"template_id": template.ID,
		"provider_id": template.ProviderID,
		"client_id":   template.ClientID,
		"service_id":  template.ServiceID,
		"frequency":   template.Frequency,
		"created":     len(created),
		"skipped":     len(skipped),
	}); err != nil {
		u.log.Warnf("Failed to record recurring event: %+v", err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{
		"template_id": template.ID,
		"created":     len(created),
		"skipped":     len(skipped),
	}).Info("Recurring series created")

	u.afterGenerated(ctx, tenant, template, provider, client, svc, created, true)
	return u.generationResponse(template, created, skipped), nil
}

func (u *recurringUsecase) List(ctx context.Context) ([]dto.RecurringAppointmentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	var clientID *uuid.UUID
	if p.RoleID == entity.RoleIDClient {
		clientID = &p.UserID
	}
	templates, err := u.recurringRepo.FindByTenant(u.db.WithContext(ctx), p.TenantID, clientID)
	if err != nil {
		u.log.Warnf("Failed to list recurring appointments: %+v", err)
		return nil, err
	}

	if p.RoleID == entity.RoleIDProvider {
		own := templates[:0]
		for _, t := range templates {
			if t.ProviderID == p.UserID || t.ClientID == p.UserID {
				own = append(own, t)
			}
		}
		templates = own
	}
	return converter.RecurringsToResponses(templates), nil
}

func (u *recurringUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.RecurringAppointmentResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	template, err := u.find(u.db.WithContext(ctx), p, id)
	if err != nil {
		return nil, err
	}
	return converter.RecurringToResponse(template), nil
}

// Generate books the next batch after the last generated occurrence while
// the series cap and end date allow.
func (u *recurringUsecase) Generate(ctx context.Context, id uuid.UUID) (*dto.GenerationResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	db := u.db.WithContext(ctx)

	template, err := u.find(db, p, id)
	if err != nil {
		return nil, err
	}
	if !template.Active() {
		return nil, ErrRecurringInactive
	}
	tenant, err := findTenant(db, u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}

	unlock, err := u.engine.lockProvider(ctx, template.ProviderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tx := db.Begin()
	defer tx.Rollback()

	// reload under the locks so a deactivation or another batch committed
	// in the meantime is seen
	template, err = u.findForUpdate(tx, p, id)
	if err != nil {
		return nil, err
	}
	if !template.Active() {
		return nil, ErrRecurringInactive
	}
	svc := template.Service
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	rule, err := template.Rule(tenant.Location())
	if err != nil {
		return nil, err
	}
	last := rule.Start.Add(-time.Nanosecond)
	if template.LastOccurrenceAt != nil {
		last = *template.LastOccurrenceAt
	}
	occurrences, err := scheduling.NextOccurrences(rule, last, scheduling.InitialBatchSize)
	if err != nil {
		return nil, err
	}

	created, skipped, err := u.generate(ctx, tx, tenant, template, svc, occurrences, &p.UserID)
	if err != nil {
		return nil, err
	}

	if err := u.engine.auditService.LogUpdate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionRecurringGenerate,
		EntityName: "recurring_appointment",
		EntityID:   template.ID.String(),
	}, nil, map[string]interface{}{"created": len(created), "skipped": len(skipped)}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.afterGenerated(ctx, tenant, template, template.Provider, template.Client, svc, created, false)
	template.Appointments = nil
	return u.generationResponse(template, created, skipped), nil
}

// Deactivate stops a series. With cancelFuture its upcoming open
// appointments are cancelled too and offered to the waitlist.
func (u *recurringUsecase) Deactivate(ctx context.Context, id uuid.UUID, cancelFuture bool) (*dto.DeactivateRecurringResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	db := u.db.WithContext(ctx)

	tenant, err := findTenant(db, u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}

	tx := db.Begin()
	defer tx.Rollback()

	template, err := u.findForUpdate(tx, p, id)
	if err != nil {
		return nil, err
	}
	before := converter.RecurringToResponse(template)
	before.Appointments = nil

	template.IsActive = boolPtr(false)
	if err := u.recurringRepo.SetActive(tx, template.ID, false); err != nil {
		u.log.Warnf("Failed to deactivate recurring appointment: %+v", err)
		return nil, err
	}

	now := u.engine.now().UTC()
	var cancelled []entity.Appointment
	if cancelFuture {
		for _, a := range template.Appointments {
			if !a.StartTime.After(now) || a.Status.IsTerminal() {
				continue
			}
			affected, err := u.appointmentRepo.UpdateStatus(tx, a.ID, a.Status, entity.AppointmentStatusCancelled, map[string]interface{}{
				"cancellation_reason": seriesCancelReason,
				"cancelled_at":        now,
			})
			if err != nil {
				u.log.Warnf("Failed to cancel series appointment: %+v", err)
				return nil, err
			}
			if affected == 0 {
				continue
			}
			previous := a.Status
			a.Cancel(seriesCancelReason, now)
			payload := appointmentPayload(&a)
			payload["previous_status"] = previous
			if err := u.engine.events.Record(ctx, tx, p.TenantID, entity.EventAppointmentStatus, a.ID.String(), payload); err != nil {
				u.log.Warnf("Failed to record appointment event: %+v", err)
				return nil, err
			}
			cancelled = append(cancelled, a)
		}
	}

	after := converter.RecurringToResponse(template)
	after.Appointments = nil
	if err := u.engine.auditService.LogUpdate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionRecurringDeactivate,
		EntityName: "recurring_appointment",
		EntityID:   template.ID.String(),
	}, before, after); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	slots := make([]scheduling.Slot, 0, len(cancelled))
	for i := range cancelled {
		u.engine.calendar.Cancelled(ctx, &cancelled[i])
		slots = append(slots, scheduling.Slot{
			ProviderID: cancelled[i].ProviderID,
			ServiceID:  cancelled[i].ServiceID,
			Start:      cancelled[i].StartTime,
			End:        cancelled[i].EndTime,
		})
	}
	if len(cancelled) > 0 {
		u.engine.notifier.Notify(ctx, service.Notice{
			TenantID:  tenant.ID,
			Recipient: template.Client,
			Type:      entity.NotificationAppointmentCancelled,
			Title:     "Recurring appointments cancelled",
			Message:   fmt.Sprintf("%d upcoming appointments of your series at %s were cancelled.", len(cancelled), tenant.Name),
			Data:      map[string]interface{}{"template_id": template.ID, "cancelled": len(cancelled)},
			Email:     true,
		})
		if _, err := u.matcher.Match(ctx, tenant, slots); err != nil {
			u.log.Errorf("Failed to match waitlist for freed slots: %+v", err)
		}
	}

	return &dto.DeactivateRecurringResponse{ID: template.ID, Cancelled: len(cancelled)}, nil
}

// generate places each occurrence inside tx. A rejected occurrence is
// rolled back to its savepoint so the rest of the batch still commits.
func (u *recurringUsecase) generate(
	ctx context.Context,
	tx *gorm.DB,
	tenant *entity.Tenant,
	template *entity.RecurringAppointmentTemplate,
	svc *entity.Service,
	occurrences []time.Time,
	actorID *uuid.UUID,
) ([]entity.Appointment, []dto.SkippedOccurrence, error) {
	created := make([]entity.Appointment, 0, len(occurrences))
	skipped := make([]dto.SkippedOccurrence, 0)

	for _, start := range occurrences {
		appointment := &entity.Appointment{
			TenantID:            tenant.ID,
			ProviderID:          template.ProviderID,
			ClientID:            template.ClientID,
			ServiceID:           template.ServiceID,
			RecurringTemplateID: &template.ID,
			StartTime:           start.UTC(),
			EndTime:             start.Add(template.Duration()).UTC(),
			Status:              initialStatus(tenant),
			Notes:               template.Notes,
			Price:               svc.Price,
			PaymentStatus:       entity.PaymentStatusUnpaid,
		}

		if err := tx.SavePoint("occurrence").Error; err != nil {
			u.log.Warnf("Failed to create savepoint: %+v", err)
			return nil, nil, err
		}
		if err := u.engine.place(tx, tenant, appointment, true); err != nil {
			reason := skipReason(err)
			if reason == "" {
				return nil, nil, err
			}
			if rbErr := tx.RollbackTo("occurrence").Error; rbErr != nil {
				u.log.Warnf("Failed to roll back to savepoint: %+v", rbErr)
				return nil, nil, rbErr
			}
			skipped = append(skipped, dto.SkippedOccurrence{StartTime: start.UTC(), Reason: reason})
			continue
		}
		if err := u.engine.recordCreated(ctx, tx, actorID, appointment); err != nil {
			return nil, nil, err
		}
		created = append(created, *appointment)
	}

	var last *time.Time
	if n := len(occurrences); n > 0 {
		t := occurrences[n-1].UTC()
		last = &t
		template.LastOccurrenceAt = last
	}
	template.GeneratedCount += len(created)
	if err := u.recurringRepo.RecordGenerated(tx, template.ID, len(created), last); err != nil {
		u.log.Warnf("Failed to update recurring appointment: %+v", err)
		return nil, nil, err
	}
	return created, skipped, nil
}

// calendarDate stores a local date as UTC midnight so reading it back
// never shifts the day.
func calendarDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, ErrSlotConflict):
		return "conflict"
	case errors.Is(err, ErrStartTimeInPast):
		return "in_the_past"
	case errors.Is(err, ErrOutsideWorkingHours):
		return "outside_working_hours"
	}
	return ""
}

func (u *recurringUsecase) afterGenerated(
	ctx context.Context,
	tenant *entity.Tenant,
	template *entity.RecurringAppointmentTemplate,
	provider, client *entity.User,
	svc *entity.Service,
	created []entity.Appointment,
	announce bool,
) {
	for i := range created {
		created[i].Provider = provider
		created[i].Client = client
		created[i].Service = svc
		u.engine.calendar.Created(ctx, tenant, &created[i])
	}
	if !announce && len(created) == 0 {
		return
	}

	message := fmt.Sprintf("%d appointments of your %s series were booked.", len(created), svc.Name)
	if len(created) > 0 {
		message += " The first one is on " + describeTime(tenant, created[0].StartTime) + "."
	}
	u.engine.notifier.Notify(ctx, service.Notice{
		TenantID:  tenant.ID,
		Recipient: client,
		Type:      entity.NotificationRecurringCreated,
		Title:     "Recurring appointments booked",
		Message:   message,
		Data:      map[string]interface{}{"template_id": template.ID, "created": len(created)},
		Email:     announce,
	})
}

func (u *recurringUsecase) generationResponse(template *entity.RecurringAppointmentTemplate, created []entity.Appointment, skipped []dto.SkippedOccurrence) *dto.GenerationResponse {
	resp := converter.RecurringToResponse(template)
	resp.Appointments = nil
	return &dto.GenerationResponse{
		Template: *resp,
		Created:  converter.AppointmentsToResponses(created),
		Skipped:  skipped,
	}
}

// find loads a series the caller may see, with its appointments.
func (u *recurringUsecase) find(db *gorm.DB, p middleware.Principal, id uuid.UUID) (*entity.RecurringAppointmentTemplate, error) {
	template, err := u.recurringRepo.FindByID(db, p.TenantID, id)
	return u.visible(p, template, err)
}

// findForUpdate is find with the template row locked for the rest of tx.
func (u *recurringUsecase) findForUpdate(tx *gorm.DB, p middleware.Principal, id uuid.UUID) (*entity.RecurringAppointmentTemplate, error) {
	template, err := u.recurringRepo.FindByIDForUpdate(tx, p.TenantID, id)
	return u.visible(p, template, err)
}

func (u *recurringUsecase) visible(p middleware.Principal, template *entity.RecurringAppointmentTemplate, err error) (*entity.RecurringAppointmentTemplate, error) {
	if err != nil {
		u.log.Warnf("Failed to find recurring appointment: %+v", err)
		return nil, err
	}
	if template == nil {
		return nil, ErrRecurringNotFound
	}
	switch p.RoleID {
	case entity.RoleIDClient:
		if template.ClientID != p.UserID {
			return nil, ErrForbidden
		}
	case entity.RoleIDProvider:
		if template.ProviderID != p.UserID && template.ClientID != p.UserID {
			return nil, ErrForbidden
		}
	}
	return template, nil
}
