package occurrence

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

func (h *Handler) CreateOccurrence(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateOccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	created, err := h.service.CreateOccurrence(r.Context(), principal.ClinicID, principal.UserID, req)
	if err != nil {
		if errors.Is(err, ErrMissingTitle) || errors.Is(err, ErrInvalidSeverity) {
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":    true,
		"message":    "Occurrence created successfully",
		"occurrence": created,
	})
}

func (h *Handler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	occurrences, err := h.service.ListOccurrences(r.Context(), principal.ClinicID, r.URL.Query().Get("status"))
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	if occurrences == nil {
		occurrences = []collection.Record{}
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"occurrences": occurrences,
		"total":       len(occurrences),
	})
}

func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
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

	updated, err := h.service.Transition(r.Context(), principal.ClinicID, id, body.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrOccurrenceNotFound):
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Occurrence not found")
		case errors.Is(err, ErrInvalidTransition):
			httpx.RespondError(w, http.StatusBadRequest, "invalid_transition", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message":    "Occurrence updated successfully",
		"occurrence": updated,
	})
}

func (h *Handler) DeleteOccurrence(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.service.DeleteOccurrence(r.Context(), principal.ClinicID, id); err != nil {
		if errors.Is(err, ErrOccurrenceNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Occurrence not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Occurrence deleted successfully",
	})
}
