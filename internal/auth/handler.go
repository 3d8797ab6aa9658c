package auth

import (
	"encoding/json"
	"net/http"

	"github.com/vitacasa-care/community-service/internal/httpx"
)

// Handler exposes login and session resumption.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginFailure struct {
	Success bool   `json:"success"`
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

// Login handles POST /auth/login. Failures share one generic message; the
// code still discriminates them for clients that care.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.RespondError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload: "+err.Error())
		return
	}
	if req.Username == "" || req.Password == "" {
		httpx.RespondError(w, http.StatusBadRequest, "validation_error", "Username and password are required")
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		switch CodeOf(err) {
		case CodeEnvInvalid:
			status = http.StatusInternalServerError
		case CodeConnError, CodeDBError:
			status = http.StatusServiceUnavailable
		}
		httpx.RespondJSON(w, status, loginFailure{
			Code:    CodeOf(err),
			Message: "access denied",
		})
		return
	}

	httpx.RespondJSON(w, http.StatusOK, session)
}

type meResponse struct {
	Success     bool            `json:"success"`
	User        PublicUser      `json:"user"`
	ClinicID    string          `json:"clinic_id"`
	Permissions map[string]bool `json:"permissions"`
}

// Me handles GET /auth/me: re-derives the session view from the token, the
// equivalent of resuming a stored session across reloads.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	pr, ok := FromContext(r.Context())
	if !ok {
		httpx.RespondError(w, http.StatusUnauthorized, "unauthenticated", "User not authenticated")
		return
	}

	httpx.RespondJSON(w, http.StatusOK, meResponse{
		Success: true,
		User: PublicUser{
			ID:       pr.UserID,
			Username: pr.Username,
			Role:     pr.Role,
		},
		ClinicID:    pr.ClinicID,
		Permissions: pr.Permissions,
	})
}
