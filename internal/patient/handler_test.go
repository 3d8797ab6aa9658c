package patient

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/clinic"
	"github.com/vitacasa-care/community-service/internal/collection"
)

type mockService struct {
	createPatientFunc func(ctx context.Context, clinicID string, req CreatePatientRequest) (collection.Record, error)
	listPatientsFunc  func(ctx context.Context, clinicID, status string) ([]collection.Record, error)
	getPatientFunc    func(ctx context.Context, clinicID, id string) (collection.Record, error)
	updatePatientFunc func(ctx context.Context, clinicID, id string, req UpdatePatientRequest) (collection.Record, error)
	changeStatusFunc  func(ctx context.Context, clinicID, id, status string) (collection.Record, error)
	deletePatientFunc func(ctx context.Context, clinicID, id string) error
}

func (m *mockService) CreatePatient(ctx context.Context, clinicID string, req CreatePatientRequest) (collection.Record, error) {
	return m.createPatientFunc(ctx, clinicID, req)
}

func (m *mockService) ListPatients(ctx context.Context, clinicID, status string) ([]collection.Record, error) {
	return m.listPatientsFunc(ctx, clinicID, status)
}

func (m *mockService) GetPatient(ctx context.Context, clinicID, id string) (collection.Record, error) {
	return m.getPatientFunc(ctx, clinicID, id)
}

func (m *mockService) UpdatePatient(ctx context.Context, clinicID, id string, req UpdatePatientRequest) (collection.Record, error) {
	return m.updatePatientFunc(ctx, clinicID, id, req)
}

func (m *mockService) ChangeStatus(ctx context.Context, clinicID, id, status string) (collection.Record, error) {
	return m.changeStatusFunc(ctx, clinicID, id, status)
}

func (m *mockService) DeletePatient(ctx context.Context, clinicID, id string) error {
	return m.deletePatientFunc(ctx, clinicID, id)
}

var _ ServiceInterface = (*mockService)(nil)

func authedRequest(method, target string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	pr := &auth.Principal{UserID: "staff-1", Role: auth.RoleNormal, ClinicID: "clinic-1"}
	return req.WithContext(auth.ContextWithPrincipal(req.Context(), pr))
}

func TestCreatePatientHandler_Success(t *testing.T) {
	svc := &mockService{
		createPatientFunc: func(ctx context.Context, clinicID string, req CreatePatientRequest) (collection.Record, error) {
			if clinicID != "clinic-1" {
				t.Errorf("Expected clinic from principal, got %s", clinicID)
			}
			return collection.Record{"id": "p1", "name": req.Name, "status": StatusActive}, nil
		},
	}
	handler := NewHandler(svc)

	body, _ := json.Marshal(CreatePatientRequest{Name: "Ana Lima"})
	req := authedRequest(http.MethodPost, "/patients", body)
	rr := httptest.NewRecorder()

	handler.CreatePatient(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("Expected status 201, got %d", rr.Code)
	}
	var resp patientSuccessResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !resp.Success || resp.Patient.ID() != "p1" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

func TestCreatePatientHandler_QuotaExceeded(t *testing.T) {
	svc := &mockService{
		createPatientFunc: func(ctx context.Context, clinicID string, req CreatePatientRequest) (collection.Record, error) {
			return nil, clinic.ErrPatientQuotaExceeded
		},
	}
	handler := NewHandler(svc)

	body, _ := json.Marshal(CreatePatientRequest{Name: "Ana"})
	req := authedRequest(http.MethodPost, "/patients", body)
	rr := httptest.NewRecorder()

	handler.CreatePatient(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", rr.Code)
	}
}

func TestCreatePatientHandler_ValidationError(t *testing.T) {
	svc := &mockService{
		createPatientFunc: func(ctx context.Context, clinicID string, req CreatePatientRequest) (collection.Record, error) {
			return nil, ErrMissingName
		},
	}
	handler := NewHandler(svc)

	req := authedRequest(http.MethodPost, "/patients", []byte(`{}`))
	rr := httptest.NewRecorder()

	handler.CreatePatient(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rr.Code)
	}
}

func TestCreatePatientHandler_Unauthenticated(t *testing.T) {
	handler := NewHandler(&mockService{})

	req := httptest.NewRequest(http.MethodPost, "/patients", bytes.NewReader([]byte(`{}`)))
	rr := httptest.NewRecorder()

	handler.CreatePatient(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", rr.Code)
	}
}

func TestListPatientsHandler_Paginates(t *testing.T) {
	rows := make([]collection.Record, 25)
	for i := range rows {
		rows[i] = collection.Record{"id": string(rune('a' + i))}
	}
	svc := &mockService{
		listPatientsFunc: func(ctx context.Context, clinicID, status string) ([]collection.Record, error) {
			return rows, nil
		},
	}
	handler := NewHandler(svc)

	req := authedRequest(http.MethodGet, "/patients?page=2&limit=10", nil)
	rr := httptest.NewRecorder()

	handler.ListPatients(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp patientListResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Patients) != 10 {
		t.Errorf("Expected 10 patients on page 2, got %d", len(resp.Patients))
	}
	if resp.Meta.CurrentPage != 2 || resp.Meta.TotalRecords != 25 || resp.Meta.TotalPages != 3 {
		t.Errorf("Unexpected meta: %+v", resp.Meta)
	}
}

func TestGetPatientHandler_NotFound(t *testing.T) {
	svc := &mockService{
		getPatientFunc: func(ctx context.Context, clinicID, id string) (collection.Record, error) {
			return nil, ErrPatientNotFound
		},
	}
	handler := NewHandler(svc)

	req := authedRequest(http.MethodGet, "/patients/missing", nil)
	req = mux.SetURLVars(req, map[string]string{"id": "missing"})
	rr := httptest.NewRecorder()

	handler.GetPatient(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rr.Code)
	}
}

func TestChangeStatusHandler(t *testing.T) {
	svc := &mockService{
		changeStatusFunc: func(ctx context.Context, clinicID, id, status string) (collection.Record, error) {
			return collection.Record{"id": id, "status": status}, nil
		},
	}
	handler := NewHandler(svc)

	req := authedRequest(http.MethodPatch, "/patients/p1/status", []byte(`{"status":"inactive"}`))
	req = mux.SetURLVars(req, map[string]string{"id": "p1"})
	rr := httptest.NewRecorder()

	handler.ChangeStatus(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp patientSuccessResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Patient["status"] != StatusInactive {
		t.Errorf("Expected inactive status back, got %v", resp.Patient["status"])
	}
}
