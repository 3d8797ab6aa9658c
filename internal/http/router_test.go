package http

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/mirror"
	"github.com/vitacasa-care/community-service/internal/notify"
	"github.com/vitacasa-care/community-service/internal/store"
	"github.com/vitacasa-care/community-service/internal/testutil"
)

func newTestRouter(t *testing.T) (http.Handler, *auth.Verifier) {
	t.Helper()

	m, err := mirror.Open(filepath.Join(t.TempDir(), "mirror.json"))
	if err != nil {
		t.Fatalf("Failed to open mirror: %v", err)
	}
	st := store.New(testutil.NewMemoryGateway(), m, notify.NewCenter())

	ver := testutil.CreateTestVerifier(t)
	authService := auth.NewService(testutil.TestAuthConfig(), auth.NewRepository(nil), ver, st)

	router := SetupRouter(Deps{
		Verifier:    ver,
		AuthService: authService,
		Store:       st,
		Notify:      notify.NewCenter(),
	})
	return router, ver
}

func doRequest(router http.Handler, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRouter_HealthIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := doRequest(router, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rr.Code)
	}
}

func TestRouter_GatedRoutesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{"/patients", "/transactions", "/notifications", "/status"} {
		if rr := doRequest(router, http.MethodGet, target, ""); rr.Code != http.StatusUnauthorized {
			t.Errorf("Expected 401 for %s without token, got %d", target, rr.Code)
		}
	}
}

func TestRouter_ModuleGateEnforced(t *testing.T) {
	router, ver := newTestRouter(t)
	token := testutil.StaffToken(t, ver, "clinic-1", map[string]bool{auth.ModulePatients: true})

	if rr := doRequest(router, http.MethodGet, "/patients", token); rr.Code != http.StatusOK {
		t.Errorf("Expected 200 for granted module, got %d", rr.Code)
	}
	if rr := doRequest(router, http.MethodGet, "/transactions", token); rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for absent module, got %d", rr.Code)
	}
	if rr := doRequest(router, http.MethodGet, "/inventory", token); rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for absent module, got %d", rr.Code)
	}
}

func TestRouter_AdminBypassesModuleGates(t *testing.T) {
	router, ver := newTestRouter(t)
	token := testutil.AdminToken(t, ver, "clinic-1")

	for _, target := range []string{"/patients", "/transactions", "/inventory", "/users"} {
		if rr := doRequest(router, http.MethodGet, target, token); rr.Code != http.StatusOK {
			t.Errorf("Expected 200 for admin on %s, got %d", target, rr.Code)
		}
	}
}

func TestRouter_ClinicRegistryIsAdminOnly(t *testing.T) {
	router, ver := newTestRouter(t)
	staff := testutil.StaffToken(t, ver, "clinic-1", map[string]bool{auth.ModulePatients: true})

	if rr := doRequest(router, http.MethodGet, "/clinics", staff); rr.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for NORMAL staff on the registry, got %d", rr.Code)
	}
}

func TestRouter_StatusReportsBreakerStates(t *testing.T) {
	router, ver := newTestRouter(t)
	token := testutil.StaffToken(t, ver, "clinic-1", nil)

	rr := doRequest(router, http.MethodGet, "/status", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
}
