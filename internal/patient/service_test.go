package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/vitacasa-care/community-service/internal/clinic"
	"github.com/vitacasa-care/community-service/internal/collection"
)

type mockDataStore struct {
	collectionFunc func(clinicID string, table collection.Name) []collection.Record
	getFunc        func(clinicID string, table collection.Name, id string) (collection.Record, bool)
	createFunc     func(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
	updateFunc     func(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error)
	deleteFunc     func(ctx context.Context, clinicID string, table collection.Name, id string) error
}

func (m *mockDataStore) Collection(clinicID string, table collection.Name) []collection.Record {
	return m.collectionFunc(clinicID, table)
}

func (m *mockDataStore) Get(clinicID string, table collection.Name, id string) (collection.Record, bool) {
	return m.getFunc(clinicID, table, id)
}

func (m *mockDataStore) Create(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error) {
	return m.createFunc(ctx, clinicID, table, rec)
}

func (m *mockDataStore) Update(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error) {
	return m.updateFunc(ctx, clinicID, table, id, patch)
}

func (m *mockDataStore) Delete(ctx context.Context, clinicID string, table collection.Name, id string) error {
	return m.deleteFunc(ctx, clinicID, table, id)
}

type mockQuotaService struct {
	clinic.ServiceInterface
	checkPatientQuotaFunc func(ctx context.Context, clinicID string) error
}

func (m *mockQuotaService) CheckPatientQuota(ctx context.Context, clinicID string) error {
	if m.checkPatientQuotaFunc != nil {
		return m.checkPatientQuotaFunc(ctx, clinicID)
	}
	return nil
}

func TestCreatePatient_Success(t *testing.T) {
	var gotRec collection.Record
	store := &mockDataStore{
		createFunc: func(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error) {
			if table != collection.Patients {
				t.Errorf("Expected patients table, got %s", table)
			}
			gotRec = rec
			out := rec.Clone()
			out["id"] = "p1"
			return out, nil
		},
	}
	svc := NewService(store, &mockQuotaService{})

	created, err := svc.CreatePatient(context.Background(), "clinic-1", CreatePatientRequest{
		Name:     "Ana Lima",
		Guardian: "Carlos Lima",
	})
	if err != nil {
		t.Fatalf("Failed to create patient: %v", err)
	}

	if created.ID() != "p1" {
		t.Errorf("Expected created record back, got %v", created)
	}
	if gotRec["status"] != StatusActive {
		t.Errorf("Expected default status active, got %v", gotRec["status"])
	}
	if gotRec["guardian"] != "Carlos Lima" {
		t.Errorf("Expected guardian to be stored, got %v", gotRec["guardian"])
	}
	if _, ok := gotRec["birth_date"]; ok {
		t.Errorf("Expected empty optional fields to be omitted")
	}
}

func TestCreatePatient_MissingName(t *testing.T) {
	svc := NewService(&mockDataStore{}, &mockQuotaService{})

	_, err := svc.CreatePatient(context.Background(), "clinic-1", CreatePatientRequest{})
	if !errors.Is(err, ErrMissingName) {
		t.Errorf("Expected ErrMissingName, got %v", err)
	}
}

func TestCreatePatient_InvalidStatus(t *testing.T) {
	svc := NewService(&mockDataStore{}, &mockQuotaService{})

	_, err := svc.CreatePatient(context.Background(), "clinic-1", CreatePatientRequest{
		Name:   "Ana",
		Status: "frozen",
	})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus, got %v", err)
	}
}

func TestCreatePatient_QuotaExceeded(t *testing.T) {
	quotas := &mockQuotaService{
		checkPatientQuotaFunc: func(ctx context.Context, clinicID string) error {
			return clinic.ErrPatientQuotaExceeded
		},
	}
	svc := NewService(&mockDataStore{}, quotas)

	_, err := svc.CreatePatient(context.Background(), "clinic-1", CreatePatientRequest{Name: "Ana"})
	if !errors.Is(err, clinic.ErrPatientQuotaExceeded) {
		t.Errorf("Expected quota error, got %v", err)
	}
}

func TestListPatients_StatusFilter(t *testing.T) {
	store := &mockDataStore{
		collectionFunc: func(clinicID string, table collection.Name) []collection.Record {
			return []collection.Record{
				{"id": "p1", "status": StatusActive},
				{"id": "p2", "status": StatusDischarged},
				{"id": "p3", "status": StatusActive},
			}
		},
	}
	svc := NewService(store, &mockQuotaService{})

	active, err := svc.ListPatients(context.Background(), "clinic-1", StatusActive)
	if err != nil {
		t.Fatalf("Failed to list patients: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("Expected 2 active patients, got %d", len(active))
	}

	all, err := svc.ListPatients(context.Background(), "clinic-1", "")
	if err != nil {
		t.Fatalf("Failed to list patients: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Expected 3 patients without filter, got %d", len(all))
	}

	if _, err := svc.ListPatients(context.Background(), "clinic-1", "frozen"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("Expected ErrInvalidStatus for unknown filter, got %v", err)
	}
}

func TestChangeStatus_SoftDelete(t *testing.T) {
	var gotPatch collection.Record
	store := &mockDataStore{
		getFunc: func(clinicID string, table collection.Name, id string) (collection.Record, bool) {
			return collection.Record{"id": id, "status": StatusActive}, true
		},
		updateFunc: func(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error) {
			gotPatch = patch
			return collection.Record{"id": id, "status": patch["status"]}, nil
		},
	}
	svc := NewService(store, &mockQuotaService{})

	updated, err := svc.ChangeStatus(context.Background(), "clinic-1", "p1", StatusInactive)
	if err != nil {
		t.Fatalf("Failed to change status: %v", err)
	}
	if updated["status"] != StatusInactive {
		t.Errorf("Expected inactive status, got %v", updated["status"])
	}
	if gotPatch["status"] != StatusInactive {
		t.Errorf("Expected patch to carry only the status, got %v", gotPatch)
	}
}

func TestUpdatePatient_NotFound(t *testing.T) {
	store := &mockDataStore{
		getFunc: func(clinicID string, table collection.Name, id string) (collection.Record, bool) {
			return nil, false
		},
	}
	svc := NewService(store, &mockQuotaService{})

	name := "New Name"
	_, err := svc.UpdatePatient(context.Background(), "clinic-1", "missing", UpdatePatientRequest{Name: &name})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("Expected ErrPatientNotFound, got %v", err)
	}
}

func TestDeletePatient_NotFound(t *testing.T) {
	store := &mockDataStore{
		getFunc: func(clinicID string, table collection.Name, id string) (collection.Record, bool) {
			return nil, false
		},
	}
	svc := NewService(store, &mockQuotaService{})

	if err := svc.DeletePatient(context.Background(), "clinic-1", "missing"); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("Expected ErrPatientNotFound, got %v", err)
	}
}
