package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TenantSettings holds per-organization booking preferences.
type TenantSettings struct {
	SlotStepMinutes         int    `json:"slot_step_minutes,omitempty"`
	WaitlistExpiryDays      int    `json:"waitlist_expiry_days,omitempty"`
	AutoConfirm             bool   `json:"auto_confirm"`
	Currency                string `json:"currency,omitempty"`
	CancellationNoticeHours int    `json:"cancellation_notice_hours,omitempty"`
}

// Tenant is an organization that accepts bookings
type Tenant struct {
	ID           uuid.UUID                           `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string                              `gorm:"type:varchar(255);not null" json:"name"`
	Slug         string                              `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Timezone     string                              `gorm:"type:varchar(64);not null;default:'UTC'" json:"timezone"`
	ContactEmail string                              `gorm:"type:varchar(255);not null" json:"contact_email"`
	Phone        string                              `gorm:"type:varchar(50)" json:"phone,omitempty"`
	Address      string                              `gorm:"type:text" json:"address,omitempty"`
	Settings     datatypes.JSONType[TenantSettings] `json:"settings"`
	IsActive     *bool                               `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time                           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time                           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Tenant) TableName() string {
	return "tenants"
}

func (t *Tenant) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Location resolves the tenant timezone, falling back to UTC.
func (t *Tenant) Location() *time.Location {
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Active reports whether the tenant accepts bookings.
func (t *Tenant) Active() bool {
	return t.IsActive == nil || *t.IsActive
}
