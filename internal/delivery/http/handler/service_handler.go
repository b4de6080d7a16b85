package handler

import (
	"net/http"
	"strconv"

	"go-appointment-saas/internal/delivery/dto"
	"go-appointment-saas/internal/usecase"
	"go-appointment-saas/pkg/response"
	"go-appointment-saas/pkg/validator"
)

type ServiceHandler struct {
	serviceUsecase usecase.ServiceUsecase
	hoursUsecase   usecase.WorkingHoursUsecase
	validator      *validator.CustomValidator
}

func NewServiceHandler(serviceUsecase usecase.ServiceUsecase, hoursUsecase usecase.WorkingHoursUsecase, validator *validator.CustomValidator) *ServiceHandler {
	return &ServiceHandler{
		serviceUsecase: serviceUsecase,
		hoursUsecase:   hoursUsecase,
		validator:      validator,
	}
}

func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateServiceRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	svc, err := h.serviceUsecase.Create(r.Context(), &req)
	if err != nil {
		writeError(w, err, "Failed to create service")
		return
	}

	response.Success(w, http.StatusCreated, "Service created successfully", svc)
}

// GetAllServices lists the catalog; ?include_inactive=true is honored for staff.
func (h *ServiceHandler) GetAllServices(w http.ResponseWriter, r *http.Request) {
	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("include_inactive"))

	services, err := h.serviceUsecase.List(r.Context(), includeInactive)
	if err != nil {
		writeError(w, err, "Failed to get services")
		return
	}

	response.Success(w, http.StatusOK, "Services retrieved successfully", services)
}

func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathUUID(w, r, "id", "service")
	if !ok {
		return
	}

	svc, err := h.serviceUsecase.GetByID(r.Context(), serviceID)
	if err != nil {
		writeError(w, err, "Failed to get service")
		return
	}

	response.Success(w, http.StatusOK, "Service retrieved successfully", svc)
}

func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathUUID(w, r, "id", "service")
	if !ok {
		return
	}

	var req dto.UpdateServiceRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	svc, err := h.serviceUsecase.Update(r.Context(), serviceID, &req)
	if err != nil {
		writeError(w, err, "Failed to update service")
		return
	}

	response.Success(w, http.StatusOK, "Service updated successfully", svc)
}

func (h *ServiceHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	serviceID, ok := pathUUID(w, r, "id", "service")
	if !ok {
		return
	}

	result, err := h.serviceUsecase.Delete(r.Context(), serviceID)
	if err != nil {
		writeError(w, err, "Failed to delete service")
		return
	}

	message := "Service deleted successfully"
	if result.Deactivated {
		message = "Service has appointments and was deactivated"
	}
	response.Success(w, http.StatusOK, message, result)
}

func (h *ServiceHandler) GetWorkingHours(w http.ResponseWriter, r *http.Request) {
	providerID, ok := pathUUID(w, r, "id", "provider")
	if !ok {
		return
	}

	hours, err := h.hoursUsecase.Get(r.Context(), providerID)
	if err != nil {
		writeError(w, err, "Failed to get working hours")
		return
	}

	response.Success(w, http.StatusOK, "Working hours retrieved successfully", hours)
}

func (h *ServiceHandler) ReplaceWorkingHours(w http.ResponseWriter, r *http.Request) {
	providerID, ok := pathUUID(w, r, "id", "provider")
	if !ok {
		return
	}

	var req dto.ReplaceWorkingHoursRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	hours, err := h.hoursUsecase.Replace(r.Context(), providerID, &req)
	if err != nil {
		writeError(w, err, "Failed to update working hours")
		return
	}

	response.Success(w, http.StatusOK, "Working hours updated successfully", hours)
}
