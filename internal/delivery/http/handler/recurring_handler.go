package handler

import (
	"net/http"
	"strconv"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/usecase"
	"go-appointment-saas/pkg/response"
	"go-appointment-saas/pkg/validator"
)

type RecurringHandler struct {
	recurringUsecase usecase.RecurringUsecase
	validator        *validator.CustomValidator
}

func NewRecurringHandler(recurringUsecase usecase.RecurringUsecase, validator *validator.CustomValidator) *RecurringHandler {
	return &RecurringHandler{
		recurringUsecase: recurringUsecase,
		validator:        validator,
	}
}

// CreateRecurring stores the series and books its first batch. Dates that
// clash with existing appointments are reported as skipped.
func (h *RecurringHandler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRecurringAppointmentRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.recurringUsecase.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create recurring appointment")
		return
	}

	response.Success(w, http.StatusCreated, "Recurring appointment created successfully", result)
}

func (h *RecurringHandler) GetAllRecurring(w http.ResponseWriter, r *http.Request) {
	templates, err := h.recurringUsecase.List(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get recurring appointments")
		return
	}

	response.Success(w, http.StatusOK, "Recurring appointments retrieved successfully", templates)
}

func (h *RecurringHandler) GetRecurring(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathUUID(w, r, "id", "recurring appointment")
	if !ok {
		return
	}

	template, err := h.recurringUsecase.GetByID(r.Context(), templateID)
	if err != nil {
		writeError(w, err, "Failed to get recurring appointment")
		return
	}

	response.Success(w, http.StatusOK, "Recurring appointment retrieved successfully", template)
}

func (h *RecurringHandler) Generate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathUUID(w, r, "id", "recurring appointment")
	if !ok {
		return
	}

	result, err := h.recurringUsecase.Generate(r.Context(), templateID)
	if err != nil {
		writeError(w, err, "Failed to generate appointments")
		return
	}

	response.Success(w, http.StatusOK, "Appointments generated successfully", result)
}

// Deactivate stops the series; ?cancel_future=true also cancels its
// upcoming appointments.
func (h *RecurringHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	templateID, ok := pathUUID(w, r, "id", "recurring appointment")
	if !ok {
		return
	}
	cancelFuture, _ := strconv.ParseBool(r.URL.Query().Get("cancel_future"))

	result, err := h.recurringUsecase.Deactivate(r.Context(), templateID, cancelFuture)
	if err != nil {
		writeError(w, err, "Failed to deactivate recurring appointment")
		return
	}

	response.Success(w, http.StatusOK, "Recurring appointment deactivated successfully", result)
}
