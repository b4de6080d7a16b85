package usecase

import (
	"context"
	"errors"
	"sort"

	"go-appointment-saas/internal/converter"
	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/repository"
	"go-appointment-saas/internal/scheduling"
	"go-appointment-saas/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidWorkingHours     = errors.New("working hours end time must be after start time")
	ErrOverlappingWorkingHours = errors.New("working hours overlap on the same day")
)

type WorkingHoursUsecase interface {
	Get(ctx context.Context, providerID uuid.UUID) (*dto.WorkingHoursResponse, error)
	Replace(ctx context.Context, providerID uuid.UUID, req *dto.ReplaceWorkingHoursRequest) (*dto.WorkingHoursResponse, error)
}

type workingHoursUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	tenantRepo   repository.TenantRepository
	userRepo     repository.UserRepository
	hoursRepo    repository.WorkingHoursRepository
	auditService service.AuditService
}

func NewWorkingHoursUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	tenantRepo repository.TenantRepository,
	userRepo repository.UserRepository,
	hoursRepo repository.WorkingHoursRepository,
	auditService service.AuditService,
) WorkingHoursUsecase {
	return &workingHoursUsecase{
		db:           db,
		log:          log,
		tenantRepo:   tenantRepo,
		userRepo:     userRepo,
		hoursRepo:    hoursRepo,
		auditService: auditService,
	}
}

func (u *workingHoursUsecase) Get(ctx context.Context, providerID uuid.UUID) (*dto.WorkingHoursResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	db := u.db.WithContext(ctx)

	tenant, err := findTenant(db, u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}
	if err := u.checkProvider(db, p.TenantID, providerID); err != nil {
		return nil, err
	}

	hours, err := u.hoursRepo.FindByProvider(db, p.TenantID, providerID)
	if err != nil {
		u.log.Warnf("Failed to find working hours: %+v", err)
		return nil, err
	}
	return converter.WorkingHoursToResponse(providerID, tenant.Timezone, hours), nil
}

// Replace swaps the provider's weekly schedule. Admins may edit anyone;
// a provider only their own.
func (u *workingHoursUsecase) Replace(ctx context.Context, providerID uuid.UUID, req *dto.ReplaceWorkingHoursRequest) (*dto.WorkingHoursResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if p.RoleID != entity.RoleIDAdmin && !(p.RoleID == entity.RoleIDProvider && p.UserID == providerID) {
		return nil, ErrForbidden
	}

	hours, err := buildWorkingHours(p.TenantID, providerID, req.Hours)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	tenant, err := findTenant(tx, u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}
	if err := u.checkProvider(tx, p.TenantID, providerID); err != nil {
		return nil, err
	}

	previous, err := u.hoursRepo.FindByProvider(tx, p.TenantID, providerID)
	if err != nil {
		u.log.Warnf("Failed to find working hours: %+v", err)
		return nil, err
	}

	if err := u.hoursRepo.ReplaceForProvider(tx, p.TenantID, providerID, hours); err != nil {
		u.log.Warnf("Failed to replace working hours: %+v", err)
		return nil, err
	}

	before := converter.WorkingHoursToResponse(providerID, tenant.Timezone, previous)
	after := converter.WorkingHoursToResponse(providerID, tenant.Timezone, hours)
	if err := u.auditService.LogUpdate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionWorkingHoursReplace,
		EntityName: "working_hours",
		EntityID:   providerID.String(),
	}, before, after); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return after, nil
}

func (u *workingHoursUsecase) checkProvider(db *gorm.DB, tenantID, providerID uuid.UUID) error {
	provider, err := u.userRepo.FindByID(db, tenantID, providerID)
	if err != nil {
		u.log.Warnf("Failed to find provider: %+v", err)
		return err
	}
	if provider == nil {
		return ErrProviderNotFound
	}
	if !provider.CanProvide() {
		return ErrInvalidProviderRole
	}
	return nil
}

// buildWorkingHours validates the entries and returns them sorted by day
// and start time.
func buildWorkingHours(tenantID, providerID uuid.UUID, entries []dto.WorkingHoursEntry) ([]entity.WorkingHours, error) {
	type window struct {
		day        int
		start, end scheduling.Clock
		entry      dto.WorkingHoursEntry
	}

	windows := make([]window, 0, len(entries))
	for _, e := range entries {
		start, err := scheduling.ParseClock(e.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := scheduling.ParseClock(e.EndTime)
		if err != nil {
			return nil, err
		}
		if end <= start {
			return nil, ErrInvalidWorkingHours
		}
		windows = append(windows, window{day: e.DayOfWeek, start: start, end: end, entry: e})
	}

	sort.Slice(windows, func(i, j int) bool {
		if windows[i].day != windows[j].day {
			return windows[i].day < windows[j].day
		}
		return windows[i].start < windows[j].start
	})

	hours := make([]entity.WorkingHours, len(windows))
	for i, w := range windows {
		if i > 0 && windows[i-1].day == w.day && w.start < windows[i-1].end {
			return nil, ErrOverlappingWorkingHours
		}
		hours[i] = entity.WorkingHours{
			TenantID:   tenantID,
			ProviderID: providerID,
			DayOfWeek:  w.day,
			StartTime:  w.start.String(),
			EndTime:    w.end.String(),
		}
	}
	return hours, nil
}
