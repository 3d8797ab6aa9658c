// Package document stores clinic documents as inline data-URL payloads in the
// record itself; there is no blob store. Create and delete only.
package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vitacasa-care/community-service/internal/collection"
)

// MaxPayloadBytes caps the encoded data-URL size. Payloads ride inside the
// collection row and the mirror snapshot, so they must stay small.
const MaxPayloadBytes = 5 << 20

var (
	ErrMissingName      = errors.New("document name is required")
	ErrMissingPayload   = errors.New("document payload is required")
	ErrInvalidPayload   = errors.New("document payload must be a data URL")
	ErrPayloadTooLarge  = errors.New("document payload exceeds the size limit")
	ErrDocumentNotFound = errors.New("document not found")
)

type CreateDocumentRequest struct {
	Name      string `json:"name"`
	Payload   string `json:"payload"`
	PatientID string `json:"patient_id,omitempty"`
	Category  string `json:"category,omitempty"`
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

func (s *Service) CreateDocument(ctx context.Context, clinicID, uploaderID string, req CreateDocumentRequest) (collection.Record, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}
	if req.Payload == "" {
		return nil, ErrMissingPayload
	}
	if !strings.HasPrefix(req.Payload, "data:") {
		return nil, ErrInvalidPayload
	}
	if len(req.Payload) > MaxPayloadBytes {
		return nil, ErrPayloadTooLarge
	}

	rec := collection.Record{
		"name":        req.Name,
		"payload":     req.Payload,
		"uploaded_by": uploaderID,
	}
	if req.PatientID != "" {
		rec["patient_id"] = req.PatientID
	}
	if req.Category != "" {
		rec["category"] = req.Category
	}

	created, err := s.store.Create(ctx, clinicID, collection.Documents, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create document: %w", err)
	}
	return created, nil
}

// ListDocuments returns document metadata without payloads; the payload comes
// back only on a targeted get.
func (s *Service) ListDocuments(ctx context.Context, clinicID string) ([]collection.Record, error) {
	rows := s.store.Collection(clinicID, collection.Documents)
	out := make([]collection.Record, 0, len(rows))
	for _, r := range rows {
		meta := r.Clone()
		delete(meta, "payload")
		out = append(out, meta)
	}
	return out, nil
}

func (s *Service) GetDocument(ctx context.Context, clinicID, id string) (collection.Record, error) {
	rec, ok := s.store.Get(clinicID, collection.Documents, id)
	if !ok {
		return nil, ErrDocumentNotFound
	}
	return rec, nil
}

func (s *Service) DeleteDocument(ctx context.Context, clinicID, id string) error {
	if _, ok := s.store.Get(clinicID, collection.Documents, id); !ok {
		return ErrDocumentNotFound
	}
	if err := s.store.Delete(ctx, clinicID, collection.Documents, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// ServiceInterface defines the contract for document business logic
type ServiceInterface interface {
	CreateDocument(ctx context.Context, clinicID, uploaderID string, req CreateDocumentRequest) (collection.Record, error)
	ListDocuments(ctx context.Context, clinicID string) ([]collection.Record, error)
	GetDocument(ctx context.Context, clinicID, id string) (collection.Record, error)
	DeleteDocument(ctx context.Context, clinicID, id string) error
}

var _ ServiceInterface = (*Service)(nil)
