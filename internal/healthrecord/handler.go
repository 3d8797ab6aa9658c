package healthrecord

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

func (h *Handler) AppendEntry(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	created, err := h.service.AppendEntry(r.Context(), principal.ClinicID, principal.UserID, req)
	if err != nil {
		if errors.Is(err, ErrMissingPatient) || errors.Is(err, ErrMissingSpecialty) || errors.Is(err, ErrMissingText) {
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Health record added successfully",
		"entry":   created,
	})
}

func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	patientID := mux.Vars(r)["patientId"]
	entries, err := h.service.ListByPatient(r.Context(), principal, principal.ClinicID, patientID)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	if entries == nil {
		entries = []collection.Record{}
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entries": entries,
		"total":   len(entries),
	})
}
