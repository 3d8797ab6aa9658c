package finance

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

func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	created, err := h.service.CreateTransaction(r.Context(), principal.ClinicID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingDescription), errors.Is(err, ErrInvalidType),
			errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidAmount):
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":     true,
		"message":     "Transaction created successfully",
		"transaction": created,
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	transactions, err := h.service.ListTransactions(r.Context(), principal.ClinicID, r.URL.Query().Get("status"))
	if err != nil {
		if errors.Is(err, ErrInvalidStatus) {
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	if transactions == nil {
		transactions = []collection.Record{}
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"transactions": transactions,
		"total":        len(transactions),
	})
}

func (h *Handler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	var req UpdateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	updated, err := h.service.UpdateTransaction(r.Context(), principal.ClinicID, id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrTransactionNotFound):
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Transaction not found")
		case errors.Is(err, ErrMissingDescription), errors.Is(err, ErrInvalidStatus), errors.Is(err, ErrInvalidAmount):
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "update_failed", err.Error())
		}
		return
	}

	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"message":     "Transaction updated successfully",
		"transaction": updated,
	})
}

func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.service.DeleteTransaction(r.Context(), principal.ClinicID, id); err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Transaction not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Transaction deleted successfully",
	})
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	summary, err := h.service.Summarize(r.Context(), principal.ClinicID)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"summary": summary,
	})
}

// Refresh re-fetches the transactions collection from the backend.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	if err := h.service.Refresh(r.Context(), principal.ClinicID); err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "refresh_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Transactions refreshed",
	})
}
