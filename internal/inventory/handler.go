package inventory

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

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	created, err := h.service.CreateItem(r.Context(), principal.ClinicID, req)
	if err != nil {
		if errors.Is(err, ErrMissingName) || errors.Is(err, ErrNegativeQuantity) {
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "Item created successfully",
		"item":    created,
	})
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var (
		items []collection.Record
		err   error
	)
	if r.URL.Query().Get("low_stock") == "true" {
		items, err = h.service.ListLowStock(r.Context(), principal.ClinicID)
	} else {
		items, err = h.service.ListItems(r.Context(), principal.ClinicID)
	}
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	if items == nil {
		items = []collection.Record{}
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"items":   items,
		"total":   len(items),
	})
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	updated, err := h.service.UpdateItem(r.Context(), principal.ClinicID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrItemNotFound):
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Item not found")
		case errors.Is(err, ErrMissingName), errors.Is(err, ErrNegativeQuantity):
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Item updated successfully",
		"item":    updated,
	})
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.service.DeleteItem(r.Context(), principal.ClinicID, id); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Item not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Item deleted successfully",
	})
}
