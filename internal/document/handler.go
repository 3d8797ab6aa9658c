package document

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

func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}

	created, err := h.service.CreateDocument(r.Context(), principal.ClinicID, principal.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingName), errors.Is(err, ErrMissingPayload), errors.Is(err, ErrInvalidPayload):
			httpx.RespondError(w, http.StatusBadRequest, "validation_error", err.Error())
		case errors.Is(err, ErrPayloadTooLarge):
			httpx.RespondError(w, http.StatusRequestEntityTooLarge, "payload_too_large", err.Error())
		default:
			httpx.RespondError(w, http.StatusInternalServerError, "creation_failed", err.Error())
		}
		return
	}

	// Echo metadata only; the caller already has the payload.
	meta := created.Clone()
	delete(meta, "payload")
	httpx.RespondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"message":  "Document created successfully",
		"document": meta,
	})
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	documents, err := h.service.ListDocuments(r.Context(), principal.ClinicID)
	if err != nil {
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	if documents == nil {
		documents = []collection.Record{}
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"documents": documents,
		"total":     len(documents),
	})
}

func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	doc, err := h.service.GetDocument(r.Context(), principal.ClinicID, id)
	if err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Document not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "fetch_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"document": doc,
	})
}

func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	id := mux.Vars(r)["id"]
	if err := h.service.DeleteDocument(r.Context(), principal.ClinicID, id); err != nil {
		if errors.Is(err, ErrDocumentNotFound) {
			httpx.RespondError(w, http.StatusNotFound, "not_found", "Document not found")
			return
		}
		httpx.RespondError(w, http.StatusInternalServerError, "delete_failed", err.Error())
		return
	}
	httpx.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Document deleted successfully",
	})
}
