package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/usecase"
	"go-appointment-saas/pkg/response"
	"go-appointment-saas/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type AppointmentHandler struct {
	appointmentUsecase usecase.AppointmentUsecase
	validator          *validator.CustomValidator
}

func NewAppointmentHandler(appointmentUsecase usecase.AppointmentUsecase, validator *validator.CustomValidator) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUsecase: appointmentUsecase,
		validator:          validator,
	}
}

// CreateAppointment books a slot for the caller, or for a client when
// staff book on their behalf.
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateAppointmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

func (h *AppointmentHandler) GetAllAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fieldErrors := map[string]string{}

	query := dto.AppointmentListQuery{
		From:       queryTime(q, "from", fieldErrors),
		To:         queryTime(q, "to", fieldErrors),
		Status:     q.Get("status"),
		ProviderID: queryUUID(q, "provider_id", fieldErrors),
		ClientID:   queryUUID(q, "client_id", fieldErrors),
		Page:       queryInt(q, "page", 1),
		Limit:      queryInt(q, "limit", 20),
	}
	if len(fieldErrors) > 0 {
		response.ValidationError(w, fieldErrors)
		return
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	result, err := h.appointmentUsecase.List(r.Context(), &query)
	if err != nil {
		writeError(w, err, "Failed to get appointments")
		return
	}

	response.SuccessWithMeta(w, http.StatusOK, "Appointments retrieved successfully",
		result.Appointments, response.NewMeta(result.Page, result.Limit, result.Total))
}

func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	appointment, err := h.appointmentUsecase.GetByID(r.Context(), appointmentID)
	if err != nil {
		writeError(w, err, "Failed to get appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment retrieved successfully", appointment)
}

// UpdateAppointment reschedules or edits notes.
func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.UpdateAppointmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.Update(r.Context(), appointmentID, &req)
	if err != nil {
		writeError(w, err, "Failed to update appointment")
		return
	}

	response.Success(w, http.StatusOK, "Appointment updated successfully", appointment)
}

func (h *AppointmentHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.UpdateAppointmentStatusRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.UpdateStatus(r.Context(), appointmentID, &req)
	if err != nil {
		writeError(w, err, "Failed to update appointment status")
		return
	}

	response.Success(w, http.StatusOK, "Appointment status updated successfully", appointment)
}

func (h *AppointmentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	appointmentID, ok := pathUUID(w, r, "id", "appointment")
	if !ok {
		return
	}

	var req dto.PaymentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	payment, err := h.appointmentUsecase.Pay(r.Context(), appointmentID, &req)
	if err != nil {
		writeError(w, err, "Failed to process payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment processed successfully", payment)
}

// Availability lists bookable slot starts for a day. Public.
func (h *AppointmentHandler) Availability(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	fieldErrors := map[string]string{}

	query := dto.AvailabilityQuery{Date: q.Get("date")}
	if id := queryUUID(q, "service_id", fieldErrors); id != nil {
		query.ServiceID = *id
	}
	if id := queryUUID(q, "provider_id", fieldErrors); id != nil {
		query.ProviderID = *id
	}
	if len(fieldErrors) > 0 {
		response.ValidationError(w, fieldErrors)
		return
	}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	slots, err := h.appointmentUsecase.Availability(r.Context(), mux.Vars(r)["slug"], &query)
	if err != nil {
		writeError(w, err, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", slots)
}

// GuestBook books without an account. Public.
func (h *AppointmentHandler) GuestBook(w http.ResponseWriter, r *http.Request) {
	var req dto.GuestBookingRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	appointment, err := h.appointmentUsecase.GuestBook(r.Context(), mux.Vars(r)["slug"], &req)
	if err != nil {
		writeError(w, err, "Failed to create appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment created successfully", appointment)
}

func queryTime(q url.Values, key string, fieldErrors map[string]string) *time.Time {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		fieldErrors[key] = key + " must be an RFC 3339 timestamp"
		return nil
	}
	return &t
}

func queryUUID(q url.Values, key string, fieldErrors map[string]string) *uuid.UUID {
	raw := q.Get(key)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		fieldErrors[key] = key + " must be a valid UUID"
		return nil
	}
	return &id
}

func queryInt(q url.Values, key string, fallback int) int {
	n, err := strconv.Atoi(q.Get(key))
	if err != nil {
		return fallback
	}
	return n
}
