package usecase

import (
	"context"
	"errors"
	"strings"

	"go-appointment-saas/internal/converter"
	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/repository"
	"go-appointment-saas/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrInvalidPrice = errors.New("price must not be negative")

type ServiceUsecase interface {
	Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.ServiceResponse, error)
	GetByID(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error)
	Update(ctx context.Context, id uuid.UUID, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteServiceResponse, error)
}

type serviceUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	serviceRepo     repository.ServiceRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func NewServiceUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	serviceRepo repository.ServiceRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) ServiceUsecase {
	return &serviceUsecase{
		db:              db,
		log:             log,
		serviceRepo:     serviceRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

func (u *serviceUsecase) Create(ctx context.Context, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	svc := &entity.Service{
		TenantID:        p.TenantID,
		Name:            strings.TrimSpace(req.Name),
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price.Round(2),
		IsActive:        boolPtr(req.IsActive == nil || *req.IsActive),
	}
	if err := u.serviceRepo.Create(tx, svc); err != nil {
		u.log.Warnf("Failed to create service: %+v", err)
		return nil, err
	}

	resp := converter.ServiceToResponse(svc)
	if err := u.auditService.LogCreate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionServiceCreate,
		EntityName: "service",
		EntityID:   svc.ID.String(),
	}, resp); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return resp, nil
}

// List returns the catalog. Inactive services are visible to staff only.
func (u *serviceUsecase) List(ctx context.Context, includeInactive bool) ([]dto.ServiceResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	activeOnly := !(includeInactive && isStaff(p))

	services, err := u.serviceRepo.FindByTenant(u.db.WithContext(ctx), p.TenantID, activeOnly)
	if err != nil {
		u.log.Warnf("Failed to list services: %+v", err)
		return nil, err
	}
	return converter.ServicesToResponses(services), nil
}

func (u *serviceUsecase) GetByID(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := u.find(u.db.WithContext(ctx), p.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !svc.Active() && !isStaff(p) {
		return nil, ErrServiceNotFound
	}
	return converter.ServiceToResponse(svc), nil
}

func (u *serviceUsecase) Update(ctx context.Context, id uuid.UUID, req *dto.UpdateServiceRequest) (*dto.ServiceResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, ErrInvalidPrice
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	svc, err := u.find(tx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	before := converter.ServiceToResponse(svc)

	if req.Name != nil {
		svc.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.DurationMinutes != nil {
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.Price != nil {
		svc.Price = req.Price.Round(2)
	}
	if req.IsActive != nil {
		svc.IsActive = boolPtr(*req.IsActive)
	}

	if err := u.serviceRepo.Update(tx, svc); err != nil {
		u.log.Warnf("Failed to update service: %+v", err)
		return nil, err
	}

	after := converter.ServiceToResponse(svc)
	if err := u.auditService.LogUpdate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionServiceUpdate,
		EntityName: "service",
		EntityID:   svc.ID.String(),
	}, before, after); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return after, nil
}

// Delete removes a service that was never booked. A service referenced by
// appointments is deactivated instead so history stays intact.
func (u *serviceUsecase) Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteServiceResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	svc, err := u.find(tx, p.TenantID, id)
	if err != nil {
		return nil, err
	}
	before := converter.ServiceToResponse(svc)

	count, err := u.appointmentRepo.CountByService(tx, svc.ID)
	if err != nil {
		u.log.Warnf("Failed to count appointments of service: %+v", err)
		return nil, err
	}

	entry := service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionServiceDelete,
		EntityName: "service",
		EntityID:   svc.ID.String(),
	}

	deactivated := count > 0
	if deactivated {
		svc.IsActive = boolPtr(false)
		if err := u.serviceRepo.Update(tx, svc); err != nil {
			u.log.Warnf("Failed to deactivate service: %+v", err)
			return nil, err
		}
		if err := u.auditService.LogUpdate(ctx, tx, entry, before, converter.ServiceToResponse(svc)); err != nil {
			return nil, err
		}
	} else {
		if err := u.serviceRepo.Delete(tx, svc); err != nil {
			u.log.Warnf("Failed to delete service: %+v", err)
			return nil, err
		}
		if err := u.auditService.LogDelete(ctx, tx, entry, before); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return &dto.DeleteServiceResponse{ID: svc.ID, Deactivated: deactivated}, nil
}

func (u *serviceUsecase) find(db *gorm.DB, tenantID, id uuid.UUID) (*entity.Service, error) {
	svc, err := u.serviceRepo.FindByID(db, tenantID, id)
	if err != nil {
		u.log.Warnf("Failed to find service: %+v", err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}
	return svc, nil
}
