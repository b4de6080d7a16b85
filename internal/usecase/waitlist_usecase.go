package usecase

import (
	"context"
	"errors"
	"strings"

	"go-appointment-saas/internal/converter"
	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/delivery/http/middleware"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/repository"
	"go-appointment-saas/internal/scheduling"
	"go-appointment-saas/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrWaitlistNotFound    = errors.New("waitlist entry not found")
	ErrWaitlistClosed      = errors.New("waitlist entry is no longer open")
	ErrWaitlistExpired     = errors.New("waitlist entry has expired")
	ErrProviderRequired    = errors.New("provider_id is required for this waitlist entry")
	ErrWaitlistSlotInvalid = errors.New("slot does not match the waitlist entry")
)

type WaitlistUsecase interface {
	Join(ctx context.Context, req *dto.JoinWaitlistRequest) (*dto.WaitlistEntryResponse, error)
	List(ctx context.Context, query *dto.WaitlistListQuery) ([]dto.WaitlistEntryResponse, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	Match(ctx context.Context, req *dto.MatchWaitlistRequest) (*dto.MatchWaitlistResponse, error)
	Book(ctx context.Context, id uuid.UUID, req *dto.BookWaitlistRequest) (*dto.BookWaitlistResponse, error)
}

type waitlistUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	engine            *BookingEngine
	tenantRepo        repository.TenantRepository
	waitlistRepo      repository.WaitlistRepository
	matcher           service.WaitlistMatcher
	defaultExpiryDays int
}

func NewWaitlistUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	engine *BookingEngine,
	tenantRepo repository.TenantRepository,
	waitlistRepo repository.WaitlistRepository,
	matcher service.WaitlistMatcher,
	defaultExpiryDays int,
) WaitlistUsecase {
	return &waitlistUsecase{
		db:                db,
		log:               log,
		engine:            engine,
		tenantRepo:        tenantRepo,
		waitlistRepo:      waitlistRepo,
		matcher:           matcher,
		defaultExpiryDays: defaultExpiryDays,
	}
}

func (u *waitlistUsecase) Join(ctx context.Context, req *dto.JoinWaitlistRequest) (*dto.WaitlistEntryResponse, error) {
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

	tenant, err := findTenant(db, u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.Active() {
		return nil, ErrTenantInactive
	}
	if _, err := u.engine.bookableService(db, tenant.ID, req.ServiceID); err != nil {
		return nil, err
	}
	if req.ProviderID != nil {
		if _, err := u.engine.provider(db, tenant.ID, *req.ProviderID); err != nil {
			return nil, err
		}
	}
	client, err := u.engine.client(db, tenant.ID, clientID)
	if err != nil {
		return nil, err
	}

	entry := &entity.WaitlistEntry{
		TenantID:      tenant.ID,
		ClientID:      client.ID,
		ServiceID:     req.ServiceID,
		ProviderID:    req.ProviderID,
		PreferredTime: scheduling.PreferAny,
		FlexibleDates: req.FlexibleDates,
		Status:        entity.WaitlistStatusActive,
		Notes:         strings.TrimSpace(req.Notes),
	}
	if req.PreferredTime != "" {
		entry.PreferredTime = scheduling.TimePreference(req.PreferredTime)
	}
	if req.PreferredDate != "" {
		date, err := scheduling.ParseDate(req.PreferredDate, tenant.Location())
		if err != nil {
			return nil, ErrInvalidDate
		}
		d := calendarDate(date)
		entry.PreferredDate = &d
	}

	days := tenant.Settings.Data().WaitlistExpiryDays
	if days <= 0 {
		days = u.defaultExpiryDays
	}
	if days > 0 {
		expiresAt := u.engine.now().UTC().AddDate(0, 0, days)
		entry.ExpiresAt = &expiresAt
	}

	tx := db.Begin()
	defer tx.Rollback()

	if err := u.waitlistRepo.Create(tx, entry); err != nil {
		u.log.Warnf("Failed to create waitlist entry: %+v", err)
		return nil, err
	}

	entry.Client = client
	resp := converter.WaitlistEntryToResponse(entry)
	if err := u.engine.auditService.LogCreate(ctx, tx, service.AuditEntry{
		TenantID:   tenant.ID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionWaitlistJoin,
		EntityName: "waitlist_entry",
		EntityID:   entry.ID.String(),
	}, resp); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return resp, nil
}

func (u *waitlistUsecase) List(ctx context.Context, query *dto.WaitlistListQuery) ([]dto.WaitlistEntryResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	filter := entity.WaitlistFilter{TenantID: p.TenantID}
	if query != nil {
		filter.Status = entity.WaitlistStatus(query.Status)
	}
	if !isStaff(p) {
		filter.ClientID = &p.UserID
	}

	entries, err := u.waitlistRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to find waitlist entries: %+v", err)
		return nil, err
	}
	return converter.WaitlistEntriesToResponses(entries), nil
}

func (u *waitlistUsecase) Cancel(ctx context.Context, id uuid.UUID) error {
	p, err := principal(ctx)
	if err != nil {
		return err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	entry, err := u.find(tx, p, id)
	if err != nil {
		return err
	}
	if !entry.Status.Open() {
		return ErrWaitlistClosed
	}

	old := converter.WaitlistEntryToResponse(entry)
	entry.Status = entity.WaitlistStatusCancelled
	if err := u.waitlistRepo.Update(tx, entry); err != nil {
		u.log.Warnf("Failed to cancel waitlist entry: %+v", err)
		return err
	}

	if err := u.engine.auditService.LogUpdate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionWaitlistCancel,
		EntityName: "waitlist_entry",
		EntityID:   entry.ID.String(),
	}, old, converter.WaitlistEntryToResponse(entry)); err != nil {
		return err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return err
	}
	return nil
}

// Match offers the given slots to the tenant's waitlist.
func (u *waitlistUsecase) Match(ctx context.Context, req *dto.MatchWaitlistRequest) (*dto.MatchWaitlistResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if !isStaff(p) {
		return nil, ErrForbidden
	}

	tenant, err := findTenant(u.db.WithContext(ctx), u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}

	slots := make([]scheduling.Slot, len(req.Slots))
	for i, s := range req.Slots {
		if !s.EndTime.After(s.StartTime) {
			return nil, ErrInvalidTimeRange
		}
		slots[i] = scheduling.Slot{
			ProviderID: s.ProviderID,
			ServiceID:  s.ServiceID,
			Start:      s.StartTime.UTC(),
			End:        s.EndTime.UTC(),
		}
	}

	result, err := u.matcher.Match(ctx, tenant, slots)
	if err != nil {
		return nil, err
	}

	resp := &dto.MatchWaitlistResponse{
		Notified: result.Notified,
		Expired:  result.Expired,
	}
	if resp.Notified == nil {
		resp.Notified = []uuid.UUID{}
	}
	if resp.Expired == nil {
		resp.Expired = []uuid.UUID{}
	}
	return resp, nil
}

// Book turns an open entry into an appointment. The entry is marked
// BOOKED in the same transaction that places the appointment.
func (u *waitlistUsecase) Book(ctx context.Context, id uuid.UUID, req *dto.BookWaitlistRequest) (*dto.BookWaitlistResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	db := u.db.WithContext(ctx)

	entry, err := u.find(db, p, id)
	if err != nil {
		return nil, err
	}
	if !entry.Status.Open() {
		return nil, ErrWaitlistClosed
	}
	if entry.ExpiresAt != nil && !entry.ExpiresAt.After(u.engine.now()) {
		return nil, ErrWaitlistExpired
	}

	providerID := entry.ProviderID
	if req.ProviderID != nil {
		if entry.ProviderID != nil && *entry.ProviderID != *req.ProviderID {
			return nil, ErrWaitlistSlotInvalid
		}
		providerID = req.ProviderID
	}
	if providerID == nil {
		return nil, ErrProviderRequired
	}

	tenant, err := findTenant(db, u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}
	if !tenant.Active() {
		return nil, ErrTenantInactive
	}
	svc, err := u.engine.bookableService(db, tenant.ID, entry.ServiceID)
	if err != nil {
		return nil, err
	}
	provider, err := u.engine.provider(db, tenant.ID, *providerID)
	if err != nil {
		return nil, err
	}
	client, err := u.engine.client(db, tenant.ID, entry.ClientID)
	if err != nil {
		return nil, err
	}

	var booked *entity.WaitlistEntry
	appointment, err := u.engine.book(ctx, bookRequest{
		Tenant:   tenant,
		Service:  svc,
		Provider: provider,
		Client:   client,
		Start:    req.StartTime,
		Notes:    entry.Notes,
		ActorID:  &p.UserID,
		InTx: func(tx *gorm.DB, appointment *entity.Appointment) error {
			current, err := u.waitlistRepo.FindByID(tx, tenant.ID, entry.ID)
			if err != nil {
				u.log.Warnf("Failed to find waitlist entry: %+v", err)
				return err
			}
			if current == nil {
				return ErrWaitlistNotFound
			}
			if !current.Status.Open() {
				return ErrWaitlistClosed
			}

			old := converter.WaitlistEntryToResponse(current)
			current.Status = entity.WaitlistStatusBooked
			current.AppointmentID = &appointment.ID
			if err := u.waitlistRepo.Update(tx, current); err != nil {
				u.log.Warnf("Failed to mark waitlist entry booked: %+v", err)
				return err
			}
			booked = current
			return u.engine.auditService.LogUpdate(ctx, tx, service.AuditEntry{
				TenantID:   tenant.ID,
				UserID:     &p.UserID,
				Action:     entity.AuditActionWaitlistBook,
				EntityName: "waitlist_entry",
				EntityID:   current.ID.String(),
			}, old, converter.WaitlistEntryToResponse(current))
		},
	})
	if err != nil {
		return nil, err
	}

	return &dto.BookWaitlistResponse{
		Entry:       *converter.WaitlistEntryToResponse(booked),
		Appointment: *converter.AppointmentToResponse(appointment),
	}, nil
}

// find loads an entry visible to p: clients only see their own.
func (u *waitlistUsecase) find(db *gorm.DB, p middleware.Principal, id uuid.UUID) (*entity.WaitlistEntry, error) {
	entry, err := u.waitlistRepo.FindByID(db, p.TenantID, id)
	if err != nil {
		u.log.Warnf("Failed to find waitlist entry: %+v", err)
		return nil, err
	}
	if entry == nil {
		return nil, ErrWaitlistNotFound
	}
	if !isStaff(p) && entry.ClientID != p.UserID {
		return nil, ErrWaitlistNotFound
	}
	return entry, nil
}
