package clinic

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/collection"
	"github.com/vitacasa-care/community-service/internal/httpx"
	"github.com/vitacasa-care/community-service/internal/store"
)

type Handler struct {
	service ServiceInterface
	store   *store.Store
}

func NewHandler(service ServiceInterface, st *store.Store) *Handler {
	return &Handler{service: service, store: st}
}

type clinicSuccessResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Clinic  *ClinicResponse `json:"clinic,omitempty"`
}

type clinicListResponse struct {
	Success bool             `json:"success"`
	Clinics []ClinicResponse `json:"clinics"`
	Total   int              `json:"total"`
}

func (h *Handler) CreateClinic(w http.ResponseWriter, r *http.Request) {
	var req CreateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	created, err := h.service.CreateClinic(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrMissingName) {
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, clinicSuccessResponse{
		Success: true,
		Message: "Clinic created successfully",
		Clinic:  created,
	})
}

func (h *Handler) ListClinics(w http.ResponseWriter, r *http.Request) {
	clinics, err := h.service.ListClinics(r.Context())
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, clinicListResponse{
		Success: true,
		Clinics: clinics,
		Total:   len(clinics),
	})
}

func (h *Handler) GetClinic(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, err := h.service.GetClinic(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrClinicNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Clinic not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, clinicSuccessResponse{Success: true, Clinic: c})
}

func (h *Handler) UpdateClinic(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req UpdateClinicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	updated, err := h.service.UpdateClinic(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrClinicNotFound):
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Clinic not found")
		case errors.Is(err, ErrNoFieldsToUpdate):
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusOK, clinicSuccessResponse{
		Success: true,
		Message: "Clinic updated successfully",
		Clinic:  updated,
	})
}

func (h *Handler) DeleteClinic(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.DeleteClinic(r.Context(), id); err != nil {
		if errors.Is(err, ErrClinicNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Clinic not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, clinicSuccessResponse{
		Success: true,
		Message: "Clinic deleted successfully",
	})
}

// GetSettings returns the clinic's settings record from the reconciling
// store (one record per clinic, id fixed to "settings").
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	pr, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	settings, found := h.store.Get(pr.ClinicID, collection.Settings, "settings")
	if !found {
		settings = collection.Record{"id": "settings"}
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"settings": settings,
	})
}

// UpdateSettings overlays the posted fields onto the settings record,
// creating it on first write.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	pr, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var patch collection.Record
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	var (
		settings collection.Record
		err      error
	)
	if _, found := h.store.Get(pr.ClinicID, collection.Settings, "settings"); found {
		settings, err = h.store.Update(r.Context(), pr.ClinicID, collection.Settings, "settings", patch)
	} else {
		patch["id"] = "settings"
		settings, err = h.store.Create(r.Context(), pr.ClinicID, collection.Settings, patch)
	}
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"settings": settings,
	})
}
