// Package clinicalnote manages patient evolution notes. Notes are immutable
// once written; there is no update path, only create, list and delete.
package clinicalnote

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitacasa-care/community-service/internal/collection"
)

var (
	ErrMissingPatient = errors.New("patient id is required")
	ErrMissingText    = errors.New("note text is required")
	ErrNoteNotFound   = errors.New("clinical note not found")
)

type CreateNoteRequest struct {
	PatientID string `json:"patient_id"`
	Category  string `json:"category,omitempty"`
	Text      string `json:"text"`
}

type DataStore interface {
	Collection(clinicID string, table collection.Name) []collection.Record
	Get(clinicID string, table collection.Name, id string) (collection.Record, bool)
	Create(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
	Delete(ctx context.Context, clinicID string, table collection.Name, id string) error
}

type Service struct {
	store DataStore
}

func NewService(store DataStore) *Service {
	return &Service{store: store}
}

// CreateNote records an evolution note attributed to the authoring user.
func (s *Service) CreateNote(ctx context.Context, clinicID, authorID string, req CreateNoteRequest) (collection.Record, error) {
	if req.PatientID == "" {
		return nil, ErrMissingPatient
	}
	if req.Text == "" {
		return nil, ErrMissingText
	}

	rec := collection.Record{
		"patient_id": req.PatientID,
		"text":       req.Text,
		"author_id":  authorID,
	}
	if req.Category != "" {
		rec["category"] = req.Category
	}

	created, err := s.store.Create(ctx, clinicID, collection.Records, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create clinical note: %w", err)
	}
	return created, nil
}

// ListByPatient returns the notes for one patient, newest first (snapshot order).
func (s *Service) ListByPatient(ctx context.Context, clinicID, patientID string) ([]collection.Record, error) {
	rows := s.store.Collection(clinicID, collection.Records)
	notes := make([]collection.Record, 0, len(rows))
	for _, r := range rows {
		if r["patient_id"] == patientID {
			notes = append(notes, r)
		}
	}
	return notes, nil
}

func (s *Service) DeleteNote(ctx context.Context, clinicID, id string) error {
	if _, ok := s.store.Get(clinicID, collection.Records, id); !ok {
		return ErrNoteNotFound
	}
	if err := s.store.Delete(ctx, clinicID, collection.Records, id); err != nil {
		return fmt.Errorf("failed to delete clinical note: %w", err)
	}
	return nil
}

// ServiceInterface defines the contract for clinical note business logic
type ServiceInterface interface {
	CreateNote(ctx context.Context, clinicID, authorID string, req CreateNoteRequest) (collection.Record, error)
	ListByPatient(ctx context.Context, clinicID, patientID string) ([]collection.Record, error)
	DeleteNote(ctx context.Context, clinicID, id string) error
}

var _ ServiceInterface = (*Service)(nil)
