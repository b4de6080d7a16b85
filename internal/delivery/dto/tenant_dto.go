package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RegisterTenantRequest struct {
	Name          string `json:"name" validate:"required,min=2,max=255"`
	Slug          string `json:"slug" validate:"required,min=3,max=100,slug"`
	Timezone      string `json:"timezone" validate:"required,timezone"`
	ContactEmail  string `json:"contact_email" validate:"required,email,max=255"`
	Phone         string `json:"phone" validate:"omitempty,max=50"`
	Address       string `json:"address" validate:"omitempty,max=1000"`
	AdminEmail    string `json:"admin_email" validate:"required,email,max=255"`
	AdminPassword string `json:"admin_password" validate:"required,min=8,max=72"`
	AdminFullName string `json:"admin_full_name" validate:"required,min=2,max=255"`
}

type TenantSettingsRequest struct {
	SlotStepMinutes         int    `json:"slot_step_minutes" validate:"omitempty,gte=5,lte=240"`
	WaitlistExpiryDays      int    `json:"waitlist_expiry_days" validate:"omitempty,gte=1,lte=365"`
	AutoConfirm             bool   `json:"auto_confirm"`
	Currency                string `json:"currency" validate:"omitempty,len=3"`
	CancellationNoticeHours int    `json:"cancellation_notice_hours" validate:"omitempty,gte=0,lte=720"`
}

// UpdateTenantRequest changes only the fields that are present.
type UpdateTenantRequest struct {
	Name         *string                `json:"name" validate:"omitempty,min=2,max=255"`
	Timezone     *string                `json:"timezone" validate:"omitempty,timezone"`
	ContactEmail *string                `json:"contact_email" validate:"omitempty,email,max=255"`
	Phone        *string                `json:"phone" validate:"omitempty,max=50"`
	Address      *string                `json:"address" validate:"omitempty,max=1000"`
	Settings     *TenantSettingsRequest `json:"settings" validate:"omitempty"`
}

type CreateMemberRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=255"`
	Phone    string `json:"phone" validate:"omitempty,max=50"`
	Role     string `json:"role" validate:"required,oneof=ADMIN PROVIDER CLIENT"`
}

type UpdateMemberStatusRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

// Response DTOs

type TenantSettingsResponse struct {
	SlotStepMinutes         int    `json:"slot_step_minutes"`
	WaitlistExpiryDays      int    `json:"waitlist_expiry_days"`
	AutoConfirm             bool   `json:"auto_confirm"`
	Currency                string `json:"currency"`
	CancellationNoticeHours int    `json:"cancellation_notice_hours"`
}

type TenantResponse struct {
	ID           uuid.UUID              `json:"id"`
	Name         string                 `json:"name"`
	Slug         string                 `json:"slug"`
	Timezone     string                 `json:"timezone"`
	ContactEmail string                 `json:"contact_email"`
	Phone        string                 `json:"phone,omitempty"`
	Address      string                 `json:"address,omitempty"`
	Settings     TenantSettingsResponse `json:"settings"`
	IsActive     bool                   `json:"is_active"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}

type RegisterTenantResponse struct {
	Tenant TenantResponse `json:"tenant"`
	Admin  UserResponse   `json:"admin"`
}

// PublicTenantResponse is what an anonymous visitor may see.
type PublicTenantResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Slug      string            `json:"slug"`
	Timezone  string            `json:"timezone"`
	Phone     string            `json:"phone,omitempty"`
	Address   string            `json:"address,omitempty"`
	Services  []ServiceResponse `json:"services"`
	Providers []UserSummary     `json:"providers"`
}
