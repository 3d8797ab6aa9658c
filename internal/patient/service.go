package patient

import (
	"context"
	"fmt"

	"github.com/vitacasa-care/community-service/internal/clinic"
	"github.com/vitacasa-care/community-service/internal/collection"
)

// DataStore is the slice of the reconciling store the patient service needs.
type DataStore interface {
	Collection(clinicID string, table collection.Name) []collection.Record
	Get(clinicID string, table collection.Name, id string) (collection.Record, bool)
	Create(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
	Update(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error)
	Delete(ctx context.Context, clinicID string, table collection.Name, id string) error
}

type Service struct {
	store  DataStore
	quotas clinic.ServiceInterface
}

func NewService(store DataStore, quotas clinic.ServiceInterface) *Service {
	return &Service{store: store, quotas: quotas}
}

// CreatePatient validates the intake request, enforces the clinic's patient
// quota and writes through the store.
func (s *Service) CreatePatient(ctx context.Context, clinicID string, req CreatePatientRequest) (collection.Record, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}
	status := req.Status
	if status == "" {
		status = StatusActive
	}
	if !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}

	if err := s.quotas.CheckPatientQuota(ctx, clinicID); err != nil {
		return nil, err
	}

	rec := collection.Record{
		"name":   req.Name,
		"status": status,
	}
	if req.BirthDate != "" {
		rec["birth_date"] = req.BirthDate
	}
	if req.Document != "" {
		rec["document"] = req.Document
	}
	if req.Guardian != "" {
		rec["guardian"] = req.Guardian
	}
	if req.Phone != "" {
		rec["phone"] = req.Phone
	}
	if req.Address != "" {
		rec["address"] = req.Address
	}
	if req.HealthPlan != "" {
		rec["health_plan"] = req.HealthPlan
	}
	if req.Observation != "" {
		rec["observation"] = req.Observation
	}

	created, err := s.store.Create(ctx, clinicID, collection.Patients, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return created, nil
}

// ListPatients returns the snapshot, optionally filtered by status.
func (s *Service) ListPatients(ctx context.Context, clinicID, status string) ([]collection.Record, error) {
	if status != "" && !ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	rows := s.store.Collection(clinicID, collection.Patients)
	if status == "" {
		return rows, nil
	}
	filtered := make([]collection.Record, 0, len(rows))
	for _, r := range rows {
		if r["status"] == status {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

func (s *Service) GetPatient(ctx context.Context, clinicID, id string) (collection.Record, error) {
	rec, ok := s.store.Get(clinicID, collection.Patients, id)
	if !ok {
		return nil, ErrPatientNotFound
	}
	return rec, nil
}

func (s *Service) UpdatePatient(ctx context.Context, clinicID, id string, req UpdatePatientRequest) (collection.Record, error) {
	if req.Status != nil && !ValidStatus(*req.Status) {
		return nil, ErrInvalidStatus
	}
	patch := req.Patch()
	if len(patch) == 0 {
		return s.GetPatient(ctx, clinicID, id)
	}
	if _, ok := s.store.Get(clinicID, collection.Patients, id); !ok {
		return nil, ErrPatientNotFound
	}
	updated, err := s.store.Update(ctx, clinicID, collection.Patients, id, collection.Record(patch))
	if err != nil {
		return nil, fmt.Errorf("failed to update patient: %w", err)
	}
	return updated, nil
}

// ChangeStatus moves a patient through its lifecycle. Soft deletes use this
// path with an inactive status.
func (s *Service) ChangeStatus(ctx context.Context, clinicID, id, status string) (collection.Record, error) {
	return s.UpdatePatient(ctx, clinicID, id, UpdatePatientRequest{Status: &status})
}

// DeletePatient removes the record permanently.
func (s *Service) DeletePatient(ctx context.Context, clinicID, id string) error {
	if _, ok := s.store.Get(clinicID, collection.Patients, id); !ok {
		return ErrPatientNotFound
	}
	if err := s.store.Delete(ctx, clinicID, collection.Patients, id); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}
