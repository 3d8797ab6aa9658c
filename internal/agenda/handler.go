package agenda

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

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

func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	created, err := h.service.CreateEvent(r.Context(), principal.ClinicID, req)
	if err != nil {
		if errors.Is(err, ErrMissingTitle) || errors.Is(err, ErrInvalidRange) || errors.Is(err, ErrInvalidTime) {
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Event created successfully",
		"event":   created,
	})
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var from, to time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", "from must be an RFC3339 timestamp")
			return
		}
		from = t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", "to must be an RFC3339 timestamp")
			return
		}
		to = t
	}

	events, err := h.service.ListEvents(r.Context(), principal.ClinicID, from, to)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	if events == nil {
		events = []collection.Record{}
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"events":  events,
		"total":   len(events),
	})
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.service.DeleteEvent(r.Context(), principal.ClinicID, id); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Event not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Event deleted successfully",
	})
}
