package handler

import (
	"net/http"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/usecase"
	"go-appointment-saas/pkg/response"
	"go-appointment-saas/pkg/validator"
)

type WaitlistHandler struct {
	waitlistUsecase usecase.WaitlistUsecase
	validator       *validator.CustomValidator
}

func NewWaitlistHandler(waitlistUsecase usecase.WaitlistUsecase, validator *validator.CustomValidator) *WaitlistHandler {
	return &WaitlistHandler{
		waitlistUsecase: waitlistUsecase,
		validator:       validator,
	}
}

func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req dto.JoinWaitlistRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	entry, err := h.waitlistUsecase.Join(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to join waitlist")
		return
	}

	response.Success(w, http.StatusCreated, "Joined waitlist successfully", entry)
}

func (h *WaitlistHandler) GetAllEntries(w http.ResponseWriter, r *http.Request) {
	query := dto.WaitlistListQuery{Status: r.URL.Query().Get("status")}
	if err := h.validator.Validate(&query); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	entries, err := h.waitlistUsecase.List(r.Context(), &query)
	if err != nil {
		writeError(w, err, "Failed to get waitlist")
		return
	}

	response.Success(w, http.StatusOK, "Waitlist retrieved successfully", entries)
}

func (h *WaitlistHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "id", "waitlist entry")
	if !ok {
		return
	}

	if err := h.waitlistUsecase.Cancel(r.Context(), entryID); err != nil {
		writeError(w, err, "Failed to cancel waitlist entry")
		return
	}

	response.Success(w, http.StatusOK, "Waitlist entry cancelled successfully", nil)
}

// Match offers freed slots to waiting clients.
func (h *WaitlistHandler) Match(w http.ResponseWriter, r *http.Request) {
	var req dto.MatchWaitlistRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.waitlistUsecase.Match(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to match waitlist")
		return
	}

	response.Success(w, http.StatusOK, "Waitlist matched successfully", result)
}

func (h *WaitlistHandler) Book(w http.ResponseWriter, r *http.Request) {
	entryID, ok := pathUUID(w, r, "id", "waitlist entry")
	if !ok {
		return
	}

	var req dto.BookWaitlistRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.waitlistUsecase.Book(r.Context(), entryID, &req)
	if err != nil {
		writeError(w, err, "Failed to book from waitlist")
		return
	}

	response.Success(w, http.StatusCreated, "Appointment booked from waitlist successfully", result)
}
