package handler

import (
	"net/http"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/usecase"
	"go-appointment-saas/pkg/response"
	"go-appointment-saas/pkg/validator"

	"github.com/gorilla/mux"
)

type TenantHandler struct {
	tenantUsecase usecase.TenantUsecase
	validator     *validator.CustomValidator
}

func NewTenantHandler(tenantUsecase usecase.TenantUsecase, validator *validator.CustomValidator) *TenantHandler {
	return &TenantHandler{
		tenantUsecase: tenantUsecase,
		validator:     validator,
	}
}

// Register creates an organization together with its first admin.
func (h *TenantHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterTenantRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	tenant, err := h.tenantUsecase.Register(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to register organization")
		return
	}

	response.Success(w, http.StatusCreated, "Organization registered successfully", tenant)
}

func (h *TenantHandler) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.tenantUsecase.GetPublicProfile(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		writeError(w, err, "Failed to get organization")
		return
	}

	response.Success(w, http.StatusOK, "Organization retrieved successfully", profile)
}

func (h *TenantHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	tenant, err := h.tenantUsecase.GetCurrent(r.Context())
	if err != nil {
		writeError(w, err, "Failed to get organization")
		return
	}

	response.Success(w, http.StatusOK, "Organization retrieved successfully", tenant)
}

func (h *TenantHandler) UpdateCurrent(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTenantRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	tenant, err := h.tenantUsecase.UpdateCurrent(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to update organization")
		return
	}

	response.Success(w, http.StatusOK, "Organization updated successfully", tenant)
}

func (h *TenantHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.tenantUsecase.ListMembers(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		writeError(w, err, "Failed to get members")
		return
	}

	response.Success(w, http.StatusOK, "Members retrieved successfully", members)
}

func (h *TenantHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMemberRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	member, err := h.tenantUsecase.CreateMember(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create member")
		return
	}

	response.Success(w, http.StatusCreated, "Member created successfully", member)
}

func (h *TenantHandler) UpdateMemberStatus(w http.ResponseWriter, r *http.Request) {
	memberID, ok := pathUUID(w, r, "id", "member")
	if !ok {
		return
	}

	var req dto.UpdateMemberStatusRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	member, err := h.tenantUsecase.UpdateMemberStatus(r.Context(), memberID, &req)
	if err != nil {
		writeError(w, err, "Failed to update member")
		return
	}

	response.Success(w, http.StatusOK, "Member updated successfully", member)
}
