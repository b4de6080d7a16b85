package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateServiceRequest struct {
	Name            string          `json:"name" validate:"required,min=2,max=255"`
	Description     string          `json:"description" validate:"omitempty,max=2000"`
	DurationMinutes int             `json:"duration_minutes" validate:"required,gte=5,lte=480"`
	Price           decimal.Decimal `json:"price"`
	IsActive        *bool           `json:"is_active"`
}

type UpdateServiceRequest struct {
	Name            *string          `json:"name" validate:"omitempty,min=2,max=255"`
	Description     *string          `json:"description" validate:"omitempty,max=2000"`
	DurationMinutes *int             `json:"duration_minutes" validate:"omitempty,gte=5,lte=480"`
	Price           *decimal.Decimal `json:"price"`
	IsActive        *bool            `json:"is_active"`
}

// Response DTOs

type ServiceResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	DurationMinutes int             `json:"duration_minutes"`
	Price           decimal.Decimal `json:"price"`
	IsActive        bool            `json:"is_active"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// DeleteServiceResponse tells whether the service was removed or only
// deactivated because appointments still reference it.
type DeleteServiceResponse struct {
	ID          uuid.UUID `json:"id"`
	Deactivated bool      `json:"deactivated"`
}
