package entity

import (
	"time"

	"github.com/google/uuid"
)

// WorkingHours is one weekly availability window of a provider, in the
// tenant's local time.
type WorkingHours struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index" json:"tenant_id"`
	ProviderID uuid.UUID `gorm:"type:uuid;not null;index:idx_working_hours_provider_day,priority:1" json:"provider_id"`
	DayOfWeek  int       `gorm:"not null;index:idx_working_hours_provider_day,priority:2" json:"day_of_week"`
	StartTime  string    `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime    string    `gorm:"type:varchar(5);not null" json:"end_time"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WorkingHours) TableName() string {
	return "working_hours"
}
