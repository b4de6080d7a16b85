package handler

import (
	"net/http"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/usecase"
	"go-appointment-saas/pkg/response"
	"go-appointment-saas/pkg/validator"
)

type ContactHandler struct {
	contactUsecase usecase.ContactUsecase
	validator      *validator.CustomValidator
}

func NewContactHandler(contactUsecase usecase.ContactUsecase, validator *validator.CustomValidator) *ContactHandler {
	return &ContactHandler{
		contactUsecase: contactUsecase,
		validator:      validator,
	}
}

// Submit accepts the public contact form of an organization.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req dto.ContactRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	result, err := h.contactUsecase.Submit(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to send message")
		return
	}

	response.Success(w, http.StatusAccepted, "Message received", result)
}
