package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"strings"

	"go-appointment-saas/internal/delivery/http/middleware"
	"go-appointment-saas/internal/domain/entity"
	"go-appointment-saas/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated  = errors.New("authentication required")
	ErrForbidden        = errors.New("you don't have permission to perform this action")
	ErrTenantNotFound   = errors.New("organization not found")
	ErrTenantInactive   = errors.New("organization is not accepting bookings")
	ErrUserNotFound     = errors.New("user not found")
	ErrClientNotFound   = errors.New("client not found")
	ErrServiceNotFound  = errors.New("service not found")
	ErrServiceInactive  = errors.New("service is not available for booking")
	ErrProviderNotFound = errors.New("provider not found")
	ErrInvalidDate      = errors.New("invalid date format, use YYYY-MM-DD")
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// principal returns the authenticated caller.
func principal(ctx context.Context) (middleware.Principal, error) {
	p, ok := middleware.GetPrincipal(ctx)
	if !ok {
		return middleware.Principal{}, ErrUnauthenticated
	}
	return p, nil
}

func isStaff(p middleware.Principal) bool {
	return p.RoleID == entity.RoleIDAdmin || p.RoleID == entity.RoleIDProvider
}

// isDuplicateKeyError reports a unique violation. With TranslateError the
// driver error becomes gorm.ErrDuplicatedKey; raw pgconn errors still
// carry code 23505.
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isExclusionViolation reports the provider overlap constraint firing
// (PostgreSQL error code 23P01 = exclusion_violation).
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01"
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

const bookingCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// generateBookingCode returns a short human-friendly code like APT-7KQ2MX9D.
func generateBookingCode() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	var sb strings.Builder
	sb.WriteString("APT-")
	for _, v := range b {
		sb.WriteByte(bookingCodeAlphabet[int(v)%len(bookingCodeAlphabet)])
	}
	return sb.String()
}

func boolPtr(v bool) *bool {
	return &v
}

func findTenant(db *gorm.DB, tenantRepo repository.TenantRepository, log *logrus.Logger, id uuid.UUID) (*entity.Tenant, error) {
	tenant, err := tenantRepo.FindByID(db, id)
	if err != nil {
		log.Warnf("Failed to find tenant: %+v", err)
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

// findActiveTenantBySlug resolves the organization behind a public route.
func findActiveTenantBySlug(db *gorm.DB, tenantRepo repository.TenantRepository, log *logrus.Logger, slug string) (*entity.Tenant, error) {
	tenant, err := tenantRepo.FindBySlug(db, strings.ToLower(strings.TrimSpace(slug)))
	if err != nil {
		log.Warnf("Failed to find tenant by slug: %+v", err)
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	if !tenant.Active() {
		return nil, ErrTenantInactive
	}
	return tenant, nil
}
