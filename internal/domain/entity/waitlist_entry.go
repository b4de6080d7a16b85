package entity

import (
	"time"

	"go-appointment-saas/internal/scheduling"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WaitlistStatus represents the lifecycle state of a waitlist entry
type WaitlistStatus string

const (
	WaitlistStatusActive    WaitlistStatus = "ACTIVE"
	WaitlistStatusNotified  WaitlistStatus = "NOTIFIED"
	WaitlistStatusBooked    WaitlistStatus = "BOOKED"
	WaitlistStatusCancelled WaitlistStatus = "CANCELLED"
	WaitlistStatusExpired   WaitlistStatus = "EXPIRED"
)

// Open reports whether the entry may still be booked or cancelled.
func (s WaitlistStatus) Open() bool {
	return s == WaitlistStatusActive || s == WaitlistStatusNotified
}

// WaitlistEntry is a client's request to be told when a slot frees up
type WaitlistEntry struct {
	ID            uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      uuid.UUID                 `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ClientID      uuid.UUID                 `gorm:"type:uuid;not null;index" json:"client_id"`
	ServiceID     uuid.UUID                 `gorm:"type:uuid;not null;index" json:"service_id"`
	ProviderID    *uuid.UUID                `gorm:"type:uuid;index" json:"provider_id,omitempty"`
	PreferredDate *datatypes.Date           `json:"preferred_date,omitempty"`
	PreferredTime scheduling.TimePreference `gorm:"type:varchar(20);not null;default:'ANY'" json:"preferred_time"`
	FlexibleDates bool                      `gorm:"not null;default:false" json:"flexible_dates"`
	Status        WaitlistStatus            `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	Notes         string                    `gorm:"type:text" json:"notes,omitempty"`
	ExpiresAt     *time.Time                `gorm:"index" json:"expires_at,omitempty"`
	NotifiedAt    *time.Time                `json:"notified_at,omitempty"`
	AppointmentID *uuid.UUID                `gorm:"type:uuid" json:"appointment_id,omitempty"`
	CreatedAt     time.Time                 `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt     time.Time                 `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Client   *User    `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Service  *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
	Provider *User    `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}

func (w *WaitlistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

// Candidate converts the entry into its matching form. The preferred date
// is placed at midnight in loc so date comparisons happen in tenant time.
func (w *WaitlistEntry) Candidate(loc *time.Location) scheduling.Candidate {
	pref := scheduling.Preference{
		ServiceID:     w.ServiceID,
		ProviderID:    w.ProviderID,
		FlexibleDates: w.FlexibleDates,
		TimeOfDay:     w.PreferredTime,
	}
	if w.PreferredDate != nil {
		y, m, d := time.Time(*w.PreferredDate).Date()
		date := time.Date(y, m, d, 0, 0, 0, 0, loc)
		pref.PreferredDate = &date
	}
	return scheduling.Candidate{ID: w.ID, Preference: pref, ExpiresAt: w.ExpiresAt}
}
