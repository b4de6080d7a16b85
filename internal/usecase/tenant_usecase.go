package usecase

import (
	"context"
	"errors"
	"strings"

	"go-appointment-saas/internal/converter"
	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/domain/repository"
	"go-appointment-saas/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrSlugAlreadyExists    = errors.New("slug is already taken")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrInvalidRole          = errors.New("role must be one of ADMIN, PROVIDER, CLIENT")
	ErrCannotDeactivateSelf = errors.New("you cannot deactivate your own account")
)

type TenantUsecase interface {
	Register(ctx context.Context, req *dto.RegisterTenantRequest) (*dto.RegisterTenantResponse, error)
	GetPublicProfile(ctx context.Context, slug string) (*dto.PublicTenantResponse, error)
	GetCurrent(ctx context.Context) (*dto.TenantResponse, error)
	UpdateCurrent(ctx context.Context, req *dto.UpdateTenantRequest) (*dto.TenantResponse, error)
	ListMembers(ctx context.Context, role string) ([]dto.UserResponse, error)
	CreateMember(ctx context.Context, req *dto.CreateMemberRequest) (*dto.UserResponse, error)
	UpdateMemberStatus(ctx context.Context, memberID uuid.UUID, req *dto.UpdateMemberStatusRequest) (*dto.UserResponse, error)
}

type tenantUsecase struct {
	db                *gorm.DB
	log               *logrus.Logger
	tenantRepo        repository.TenantRepository
	userRepo          repository.UserRepository
	serviceRepo       repository.ServiceRepository
	auditService      service.AuditService
	tokens            gateway.TokenStore
	defaultExpiryDays int
}

func NewTenantUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	tenantRepo repository.TenantRepository,
	userRepo repository.UserRepository,
	serviceRepo repository.ServiceRepository,
	auditService service.AuditService,
	tokens gateway.TokenStore,
	defaultExpiryDays int,
) TenantUsecase {
	return &tenantUsecase{
		db:                db,
		log:               log,
		tenantRepo:        tenantRepo,
		userRepo:          userRepo,
		serviceRepo:       serviceRepo,
		auditService:      auditService,
		tokens:            tokens,
		defaultExpiryDays: defaultExpiryDays,
	}
}

func (u *tenantUsecase) Register(ctx context.Context, req *dto.RegisterTenantRequest) (*dto.RegisterTenantResponse, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	tenant := &entity.Tenant{
		Name:         strings.TrimSpace(req.Name),
		Slug:         strings.ToLower(strings.TrimSpace(req.Slug)),
		Timezone:     req.Timezone,
		ContactEmail: strings.ToLower(strings.TrimSpace(req.ContactEmail)),
		Phone:        req.Phone,
		Address:      req.Address,
		Settings: datatypes.NewJSONType(entity.TenantSettings{
			WaitlistExpiryDays: u.defaultExpiryDays,
		}),
		IsActive: boolPtr(true),
	}

	existing, err := u.tenantRepo.FindBySlug(tx, tenant.Slug)
	if err != nil {
		u.log.Warnf("Failed to check slug: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrSlugAlreadyExists
	}

	if err := u.tenantRepo.Create(tx, tenant); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrSlugAlreadyExists
		}
		u.log.Warnf("Failed to create tenant: %+v", err)
		return nil, err
	}

	admin := &entity.User{
		TenantID: tenant.ID,
		RoleID:   entity.RoleIDAdmin,
		Email:    strings.ToLower(strings.TrimSpace(req.AdminEmail)),
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(req.AdminFullName),
		IsActive: boolPtr(true),
	}
	if err := u.userRepo.Create(tx, admin); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create admin user: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, service.AuditEntry{
		TenantID:   tenant.ID,
		UserID:     &admin.ID,
		Action:     entity.AuditActionTenantRegister,
		EntityName: "tenant",
		EntityID:   tenant.ID.String(),
	}, converter.TenantToResponse(tenant)); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{"tenant_id": tenant.ID, "slug": tenant.Slug}).Info("Tenant registered")

	return &dto.RegisterTenantResponse{
		Tenant: *converter.TenantToResponse(tenant),
		Admin:  *converter.UserToResponse(admin),
	}, nil
}

func (u *tenantUsecase) GetPublicProfile(ctx context.Context, slug string) (*dto.PublicTenantResponse, error) {
	db := u.db.WithContext(ctx)
	tenant, err := findActiveTenantBySlug(db, u.tenantRepo, u.log, slug)
	if err != nil {
		return nil, err
	}

	services, err := u.serviceRepo.FindByTenant(db, tenant.ID, true)
	if err != nil {
		u.log.Warnf("Failed to list services: %+v", err)
		return nil, err
	}

	members, err := u.userRepo.FindByTenant(db, tenant.ID, 0)
	if err != nil {
		u.log.Warnf("Failed to list providers: %+v", err)
		return nil, err
	}
	providers := make([]entity.User, 0, len(members))
	for _, m := range members {
		if m.CanProvide() && m.Active() {
			providers = append(providers, m)
		}
	}

	return converter.TenantToPublicResponse(tenant, services, providers), nil
}

func (u *tenantUsecase) GetCurrent(ctx context.Context) (*dto.TenantResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	tenant, err := findTenant(u.db.WithContext(ctx), u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}
	return converter.TenantToResponse(tenant), nil
}

func (u *tenantUsecase) UpdateCurrent(ctx context.Context, req *dto.UpdateTenantRequest) (*dto.TenantResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	tenant, err := findTenant(tx, u.tenantRepo, u.log, p.TenantID)
	if err != nil {
		return nil, err
	}
	before := converter.TenantToResponse(tenant)

	if req.Name != nil {
		tenant.Name = strings.TrimSpace(*req.Name)
	}
	if req.Timezone != nil {
		tenant.Timezone = *req.Timezone
	}
	if req.ContactEmail != nil {
		tenant.ContactEmail = strings.ToLower(strings.TrimSpace(*req.ContactEmail))
	}
	if req.Phone != nil {
		tenant.Phone = *req.Phone
	}
	if req.Address != nil {
		tenant.Address = *req.Address
	}
	if req.Settings != nil {
		tenant.Settings = datatypes.NewJSONType(entity.TenantSettings{
			SlotStepMinutes:         req.Settings.SlotStepMinutes,
			WaitlistExpiryDays:      req.Settings.WaitlistExpiryDays,
			AutoConfirm:             req.Settings.AutoConfirm,
			Currency:                strings.ToLower(req.Settings.Currency),
			CancellationNoticeHours: req.Settings.CancellationNoticeHours,
		})
	}

	if err := u.tenantRepo.Update(tx, tenant); err != nil {
		u.log.Warnf("Failed to update tenant: %+v", err)
		return nil, err
	}

	after := converter.TenantToResponse(tenant)
	if err := u.auditService.LogUpdate(ctx, tx, service.AuditEntry{
		TenantID:   tenant.ID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionTenantUpdate,
		EntityName: "tenant",
		EntityID:   tenant.ID.String(),
	}, before, after); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return after, nil
}

func (u *tenantUsecase) ListMembers(ctx context.Context, role string) ([]dto.UserResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	roleID := 0
	if role != "" {
		roleID = entity.RoleIDByName(strings.ToUpper(role))
		if roleID == 0 {
			return nil, ErrInvalidRole
		}
	}

	users, err := u.userRepo.FindByTenant(u.db.WithContext(ctx), p.TenantID, roleID)
	if err != nil {
		u.log.Warnf("Failed to list members: %+v", err)
		return nil, err
	}
	return converter.UsersToResponses(users), nil
}

func (u *tenantUsecase) CreateMember(ctx context.Context, req *dto.CreateMemberRequest) (*dto.UserResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}

	roleID := entity.RoleIDByName(req.Role)
	if roleID == 0 {
		return nil, ErrInvalidRole
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	member := &entity.User{
		TenantID: p.TenantID,
		RoleID:   roleID,
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
		IsActive: boolPtr(true),
	}
	if err := u.userRepo.Create(tx, member); err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create member: %+v", err)
		return nil, err
	}

	resp := converter.UserToResponse(member)
	if err := u.auditService.LogCreate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionMemberCreate,
		EntityName: "user",
		EntityID:   member.ID.String(),
	}, resp); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return resp, nil
}

func (u *tenantUsecase) UpdateMemberStatus(ctx context.Context, memberID uuid.UUID, req *dto.UpdateMemberStatusRequest) (*dto.UserResponse, error) {
	p, err := principal(ctx)
	if err != nil {
		return nil, err
	}
	if memberID == p.UserID && !*req.IsActive {
		return nil, ErrCannotDeactivateSelf
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	member, err := u.userRepo.FindByID(tx, p.TenantID, memberID)
	if err != nil {
		u.log.Warnf("Failed to find member: %+v", err)
		return nil, err
	}
	if member == nil {
		return nil, ErrUserNotFound
	}

	before := member.Active()
	member.IsActive = boolPtr(*req.IsActive)
	if err := u.userRepo.Update(tx, member); err != nil {
		u.log.Warnf("Failed to update member: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, service.AuditEntry{
		TenantID:   p.TenantID,
		UserID:     &p.UserID,
		Action:     entity.AuditActionMemberStatus,
		EntityName: "user",
		EntityID:   member.ID.String(),
	}, map[string]bool{"is_active": before}, map[string]bool{"is_active": *req.IsActive}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	// A deactivated member loses every open session
	if !member.Active() {
		if err := u.tokens.RevokeAll(ctx, member.ID); err != nil {
			u.log.Warnf("Failed to revoke tokens of member %s: %+v", member.ID, err)
		}
	}

	return converter.UserToResponse(member), nil
}
