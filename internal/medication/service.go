// Package medication manages prescribed doses. A prescription expands into a
// batch of pending doses; administering a dose records who confirmed it and
// when. A background scanner flags due and overdue pending doses.
package medication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitacasa-care/community-service/internal/collection"
)

const (
	StatusPending      = "pending"
	StatusAdministered = "administered"
)

var (
	ErrMissingPatient      = errors.New("patient id is required")
	ErrMissingName         = errors.New("medication name is required")
	ErrMissingSchedule     = errors.New("at least one scheduled time is required")
	ErrInvalidTime         = errors.New("scheduled times must be RFC3339 timestamps")
	ErrMedicationNotFound  = errors.New("medication not found")
	ErrAlreadyAdministered = errors.New("medication already administered")
)

// CreateBatchRequest is the prescription form: one medication, n doses.
type CreateBatchRequest struct {
	PatientID    string   `json:"patient_id"`
	Name         string   `json:"name"`
	Dosage       string   `json:"dosage,omitempty"`
	Instructions string   `json:"instructions,omitempty"`
	ScheduledAt  []string `json:"scheduled_at"`
}

type DataStore interface {
	Collection(clinicID string, table collection.Name) []collection.Record
	Get(clinicID string, table collection.Name, id string) (collection.Record, bool)
	Create(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
	Update(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error)
	Delete(ctx context.Context, clinicID string, table collection.Name, id string) error
}

type Service struct {
	store DataStore
	now   func() time.Time
}

func NewService(store DataStore) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateBatch expands a prescription into one pending dose per scheduled time.
func (s *Service) CreateBatch(ctx context.Context, clinicID string, req CreateBatchRequest) ([]collection.Record, error) {
	if req.PatientID == "" {
		return nil, ErrMissingPatient
	}
	if req.Name == "" {
		return nil, ErrMissingName
	}
	if len(req.ScheduledAt) == 0 {
		return nil, ErrMissingSchedule
	}

	times := make([]time.Time, 0, len(req.ScheduledAt))
	for _, raw := range req.ScheduledAt {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, ErrInvalidTime
		}
		times = append(times, t)
	}

	created := make([]collection.Record, 0, len(times))
	for _, t := range times {
		rec := collection.Record{
			"patient_id":   req.PatientID,
			"name":         req.Name,
			"status":       StatusPending,
			"scheduled_at": t.UTC().Format(time.RFC3339),
		}
		if req.Dosage != "" {
			rec["dosage"] = req.Dosage
		}
		if req.Instructions != "" {
			rec["instructions"] = req.Instructions
		}
		dose, err := s.store.Create(ctx, clinicID, collection.Medications, rec)
		if err != nil {
			return created, fmt.Errorf("failed to create medication dose: %w", err)
		}
		created = append(created, dose)
	}
	return created, nil
}

func (s *Service) ListMedications(ctx context.Context, clinicID, patientID string) ([]collection.Record, error) {
	rows := s.store.Collection(clinicID, collection.Medications)
	if patientID == "" {
		return rows, nil
	}
	filtered := make([]collection.Record, 0, len(rows))
	for _, r := range rows {
		if r["patient_id"] == patientID {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// Administer confirms a dose was given, attributing the administering user.
func (s *Service) Administer(ctx context.Context, clinicID, id, userID string) (collection.Record, error) {
	rec, ok := s.store.Get(clinicID, collection.Medications, id)
	if !ok {
		return nil, ErrMedicationNotFound
	}
	if rec["status"] == StatusAdministered {
		return nil, ErrAlreadyAdministered
	}

	patch := collection.Record{
		"status":          StatusAdministered,
		"administered_by": userID,
		"administered_at": s.now().UTC().Format(time.RFC3339),
	}
	updated, err := s.store.Update(ctx, clinicID, collection.Medications, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to administer medication: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteMedication(ctx context.Context, clinicID, id string) error {
	if _, ok := s.store.Get(clinicID, collection.Medications, id); !ok {
		return ErrMedicationNotFound
	}
	if err := s.store.Delete(ctx, clinicID, collection.Medications, id); err != nil {
		return fmt.Errorf("failed to delete medication: %w", err)
	}
	return nil
}

// ServiceInterface defines the contract for medication business logic
type ServiceInterface interface {
	CreateBatch(ctx context.Context, clinicID string, req CreateBatchRequest) ([]collection.Record, error)
	ListMedications(ctx context.Context, clinicID, patientID string) ([]collection.Record, error)
	Administer(ctx context.Context, clinicID, id, userID string) (collection.Record, error)
	DeleteMedication(ctx context.Context, clinicID, id string) error
}

var _ ServiceInterface = (*Service)(nil)
