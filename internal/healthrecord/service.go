// Package healthrecord manages specialty health entries (psychology,
// nutrition, physiotherapy). Entries are append-only and may carry a
// confidential sub-field visible only to admins and the entry's author.
package healthrecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/collection"
)

var (
	ErrMissingPatient   = errors.New("patient id is required")
	ErrMissingSpecialty = errors.New("specialty is required")
	ErrMissingText      = errors.New("entry text is required")
)

type CreateEntryRequest struct {
	PatientID    string `json:"patient_id"`
	Specialty    string `json:"specialty"`
	Text         string `json:"text"`
	Confidential string `json:"confidential,omitempty"`
}

type DataStore interface {
	Collection(clinicID string, table collection.Name) []collection.Record
	Create(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
}

type Service struct {
	store DataStore
}

func NewService(store DataStore) *Service {
	return &Service{store: store}
}

func (s *Service) AppendEntry(ctx context.Context, clinicID, authorID string, req CreateEntryRequest) (collection.Record, error) {
	if req.PatientID == "" {
		return nil, ErrMissingPatient
	}
	if req.Specialty == "" {
		return nil, ErrMissingSpecialty
	}
	if req.Text == "" {
		return nil, ErrMissingText
	}

	rec := collection.Record{
		"patient_id": req.PatientID,
		"specialty":  req.Specialty,
		"text":       req.Text,
		"author_id":  authorID,
	}
	if req.Confidential != "" {
		rec["confidential"] = req.Confidential
	}

	created, err := s.store.Create(ctx, clinicID, collection.HealthRecords, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to append health record: %w", err)
	}
	return created, nil
}

// ListByPatient returns a patient's entries with the confidential field
// redacted unless the viewer is an admin or the entry's author.
func (s *Service) ListByPatient(ctx context.Context, viewer *auth.Principal, clinicID, patientID string) ([]collection.Record, error) {
	rows := s.store.Collection(clinicID, collection.HealthRecords)
	entries := make([]collection.Record, 0, len(rows))
	for _, r := range rows {
		if r["patient_id"] != patientID {
			continue
		}
		entries = append(entries, Redact(r, viewer))
	}
	return entries, nil
}

// Redact strips the confidential field for viewers who are neither admin nor
// the entry's author. Returns a copy; the snapshot stays intact.
func Redact(rec collection.Record, viewer *auth.Principal) collection.Record {
	out := rec.Clone()
	if _, has := out["confidential"]; !has {
		return out
	}
	if viewer != nil && (viewer.Role == auth.RoleAdmin || viewer.UserID == out["author_id"]) {
		return out
	}
	delete(out, "confidential")
	return out
}

// ServiceInterface defines the contract for health record business logic
type ServiceInterface interface {
	AppendEntry(ctx context.Context, clinicID, authorID string, req CreateEntryRequest) (collection.Record, error)
	ListByPatient(ctx context.Context, viewer *auth.Principal, clinicID, patientID string) ([]collection.Record, error)
}

var _ ServiceInterface = (*Service)(nil)
