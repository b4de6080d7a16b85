package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Slug     string   `json:"slug" validate:"required,slug"`
	Start    string   `json:"start_time" validate:"required,hhmm"`
	Timezone string   `json:"timezone" validate:"required,timezone"`
	Date     string   `json:"date" validate:"omitempty,date"`
	Status   string   `json:"status" validate:"omitempty,oneof=ACTIVE CANCELLED"`
	Days     []int    `json:"days_of_week" validate:"omitempty,min=1,dive,gte=0,lte=6"`
	Email    string   `json:"email" validate:"required,email"`
	Tags     []string `json:"-"`
}

func TestValidatePasses(t *testing.T) {
	v := NewValidator()
	err := v.Validate(sample{
		Slug:     "city-clinic-2",
		Start:    "09:30",
		Timezone: "Europe/Berlin",
		Date:     "2025-01-31",
		Status:   "ACTIVE",
		Days:     []int{1, 3},
		Email:    "a@b.test",
	})
	assert.NoError(t, err)
}

func TestFormatValidationErrorsUsesJSONNames(t *testing.T) {
	v := NewValidator()
	err := v.Validate(sample{
		Slug:     "City Clinic",
		Start:    "25:00",
		Timezone: "Mars/Base",
		Date:     "31-01-2025",
		Status:   "OPEN",
		Days:     []int{7},
		Email:    "nope",
	})
	require.Error(t, err)

	errs := v.FormatValidationErrors(err)
	assert.Contains(t, errs, "slug")
	assert.Contains(t, errs, "start_time")
	assert.Contains(t, errs, "timezone")
	assert.Contains(t, errs, "date")
	assert.Equal(t, "status must be one of [ACTIVE CANCELLED]", errs["status"])
	assert.Contains(t, errs, "days_of_week[0]")
	assert.Equal(t, "email must be a valid email address", errs["email"])
}
