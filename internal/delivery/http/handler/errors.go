package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go-appointment-saas/internal/domain/gateway"
	"go-appointment-saas/internal/scheduling"
	"go-appointment-saas/internal/usecase"
	"go-appointment-saas/pkg/response"
	"go-appointment-saas/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{usecase.ErrUnauthenticated, http.StatusUnauthorized},
	{usecase.ErrInvalidCredentials, http.StatusUnauthorized},
	{usecase.ErrInvalidToken, http.StatusUnauthorized},
	{usecase.ErrTokenRevoked, http.StatusUnauthorized},

	{usecase.ErrForbidden, http.StatusForbidden},
	{usecase.ErrAccountInactive, http.StatusForbidden},
	{usecase.ErrTenantInactive, http.StatusForbidden},
	{usecase.ErrCannotDeactivateSelf, http.StatusForbidden},

	{usecase.ErrTenantNotFound, http.StatusNotFound},
	{usecase.ErrUserNotFound, http.StatusNotFound},
	{usecase.ErrClientNotFound, http.StatusNotFound},
	{usecase.ErrProviderNotFound, http.StatusNotFound},
	{usecase.ErrServiceNotFound, http.StatusNotFound},
	{usecase.ErrAppointmentNotFound, http.StatusNotFound},
	{usecase.ErrRecurringNotFound, http.StatusNotFound},
	{usecase.ErrWaitlistNotFound, http.StatusNotFound},
	{usecase.ErrNotificationNotFound, http.StatusNotFound},
	{usecase.ErrAuditLogNotFound, http.StatusNotFound},

	{usecase.ErrSlotConflict, http.StatusConflict},
	{usecase.ErrSlotBusy, http.StatusConflict},
	{usecase.ErrSlugAlreadyExists, http.StatusConflict},
	{usecase.ErrEmailAlreadyExists, http.StatusConflict},
	{usecase.ErrInvalidStatusTransition, http.StatusConflict},
	{usecase.ErrAppointmentClosed, http.StatusConflict},
	{usecase.ErrCancellationTooLate, http.StatusConflict},
	{usecase.ErrAlreadyPaid, http.StatusConflict},
	{usecase.ErrRecurringInactive, http.StatusConflict},
	{usecase.ErrWaitlistClosed, http.StatusConflict},
	{usecase.ErrWaitlistExpired, http.StatusConflict},

	{usecase.ErrOutsideWorkingHours, http.StatusBadRequest},
	{usecase.ErrStartTimeInPast, http.StatusBadRequest},
	{usecase.ErrInvalidTimeRange, http.StatusBadRequest},
	{usecase.ErrInvalidProviderRole, http.StatusBadRequest},
	{usecase.ErrProviderInactive, http.StatusBadRequest},
	{usecase.ErrServiceInactive, http.StatusBadRequest},
	{usecase.ErrClientRequired, http.StatusBadRequest},
	{usecase.ErrInvalidDate, http.StatusBadRequest},
	{usecase.ErrInvalidRole, http.StatusBadRequest},
	{usecase.ErrInvalidPrice, http.StatusBadRequest},
	{usecase.ErrInvalidWorkingHours, http.StatusBadRequest},
	{usecase.ErrOverlappingWorkingHours, http.StatusBadRequest},
	{usecase.ErrDaysOfWeekRequired, http.StatusBadRequest},
	{usecase.ErrInvalidDateRange, http.StatusBadRequest},
	{usecase.ErrProviderRequired, http.StatusBadRequest},
	{usecase.ErrWaitlistSlotInvalid, http.StatusBadRequest},
	{usecase.ErrNothingToPay, http.StatusBadRequest},
	{gateway.ErrPaymentMethodUnsupported, http.StatusBadRequest},
	{scheduling.ErrUnknownFrequency, http.StatusBadRequest},
	{scheduling.ErrInvalidInterval, http.StatusBadRequest},
	{scheduling.ErrInvalidWeekday, http.StatusBadRequest},
	{scheduling.ErrInvalidMonthDay, http.StatusBadRequest},
	{scheduling.ErrInvalidCount, http.StatusBadRequest},
	{scheduling.ErrInvalidClock, http.StatusBadRequest},

	{usecase.ErrPaymentFailed, http.StatusBadGateway},
}

// writeError maps a usecase error onto its status. Anything unknown is a
// 500 carrying only the fallback message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			response.Error(w, e.status, e.err.Error(), nil)
			return
		}
	}
	response.InternalServerError(w, fallback)
}

// decodeAndValidate reads a JSON body into req. It writes the 400 itself
// and reports false when the body is unusable.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validator.CustomValidator, req interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	if err := v.Validate(req); err != nil {
		response.ValidationError(w, v.FormatValidationErrors(err))
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label+" ID", nil)
		return uuid.Nil, false
	}
	return id, true
}
