package patient

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/clinic"
	"github.com/vitacasa-care/community-service/internal/collection"
	"github.com/vitacasa-care/community-service/internal/httpx"
	"github.com/vitacasa-care/community-service/internal/pagination"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

type patientSuccessResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Patient collection.Record `json:"patient,omitempty"`
}

type patientListResponse struct {
	Success  bool                `json:"success"`
	Patients []collection.Record `json:"patients"`
	Meta     pagination.Meta     `json:"meta"`
}

func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	created, err := h.service.CreatePatient(r.Context(), principal.ClinicID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingName), errors.Is(err, ErrInvalidStatus):
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		case errors.Is(err, clinic.ErrPatientQuotaExceeded):
			httpx.RespondError(w, http.StatusForbidden, "quota_exceeded", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, patientSuccessResponse{
		Success: true,
		Message: "Patient created successfully",
		Patient: created,
	})
}

func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	status := r.URL.Query().Get("status")
	patients, err := h.service.ListPatients(r.Context(), principal.ClinicID, status)
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}

	params := pagination.ParseParams(r)
	start, end := params.Bounds(len(patients))
	page := patients[start:end]
	if page == nil {
		page = []collection.Record{}
	}

	httpx.RespondJSON(w, http.StatusOK, patientListResponse{
		Success:  true,
		Patients: page,
		Meta:     params.CalculateMeta(len(patients)),
	})
}

func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	rec, err := h.service.GetPatient(r.Context(), principal.ClinicID, id)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Patient not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, patientSuccessResponse{Success: true, Patient: rec})
}

func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	var req UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	updated, err := h.service.UpdatePatient(r.Context(), principal.ClinicID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrPatientNotFound):
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Patient not found")
		case errors.Is(err, ErrInvalidStatus):
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusOK, patientSuccessResponse{
		Success: true,
		Message: "Patient updated successfully",
		Patient: updated,
	})
}

// ChangeStatus handles lifecycle transitions, including soft deletes.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	updated, err := h.service.ChangeStatus(r.Context(), principal.ClinicID, id, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrPatientNotFound):
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Patient not found")
		case errors.Is(err, ErrInvalidStatus):
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusOK, patientSuccessResponse{
		Success: true,
		Message: "Patient status updated",
		Patient: updated,
	})
}

func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.service.DeletePatient(r.Context(), principal.ClinicID, id); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Patient not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, patientSuccessResponse{
		Success: true,
		Message: "Patient deleted successfully",
	})
}
