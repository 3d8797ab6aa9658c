package medication

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/collection"
	"github.com/vitacasa-care/community-service/internal/httpx"
)

type Handler struct {
	service ServiceInterface
}

func NewHandler(service ServiceInterface) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	created, err := h.service.CreateBatch(r.Context(), principal.ClinicID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingPatient), errors.Is(err, ErrMissingName),
			errors.Is(err, ErrMissingSchedule), errors.Is(err, ErrInvalidTime):
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"message":     "Medications created successfully",
		"medications": created,
		"total":       len(created),
	})
}

func (h *Handler) ListMedications(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	medications, err := h.service.ListMedications(r.Context(), principal.ClinicID, r.URL.Query().Get("patient_id"))
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	if medications == nil {
		medications = []collection.Record{}
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"medications": medications,
		"total":       len(medications),
	})
}

func (h *Handler) Administer(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	updated, err := h.service.Administer(r.Context(), principal.ClinicID, id, principal.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMedicationNotFound):
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Medication not found")
		case errors.Is(err, ErrAlreadyAdministered):
			httpx.RespondError(w, http.StatusConflict, "already_administered", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Medication administered",
		"medication": updated,
	})
}

func (h *Handler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.service.DeleteMedication(r.Context(), principal.ClinicID, id); err != nil {
		if errors.Is(err, ErrMedicationNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Medication not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Medication deleted successfully",
	})
}
