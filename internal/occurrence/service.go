// Package occurrence tracks incident reports: falls, altercations, missed
// doses. Each occurrence carries a severity and walks open → resolved →
// archived.
package occurrence

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitacasa-care/community-service/internal/collection"
)

const (
	StatusOpen     = "open"
	StatusResolved = "resolved"
	StatusArchived = "archived"
)

const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

var (
	ErrMissingTitle       = errors.New("occurrence title is required")
	ErrInvalidSeverity    = errors.New("invalid occurrence severity")
	ErrInvalidTransition  = errors.New("invalid occurrence status transition")
	ErrOccurrenceNotFound = errors.New("occurrence not found")
)

func validSeverity(s string) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// validTransition encodes the one-way lifecycle.
func validTransition(from, to string) bool {
	switch from {
	case StatusOpen:
		return to == StatusResolved
	case StatusResolved:
		return to == StatusArchived
	}
	return false
}

type CreateOccurrenceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Severity    string `json:"severity,omitempty"`
	PatientID   string `json:"patient_id,omitempty"`
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
}

func NewService(store DataStore) *Service {
	return &Service{store: store}
}

func (s *Service) CreateOccurrence(ctx context.Context, clinicID, reporterID string, req CreateOccurrenceRequest) (collection.Record, error) {
	if req.Title == "" {
		return nil, ErrMissingTitle
	}
	severity := req.Severity
	if severity == "" {
		severity = SeverityLow
	}
	if !validSeverity(severity) {
		return nil, ErrInvalidSeverity
	}

	rec := collection.Record{
		"title":       req.Title,
		"severity":    severity,
		"status":      StatusOpen,
		"reported_by": reporterID,
	}
	if req.Description != "" {
		rec["description"] = req.Description
	}
	if req.PatientID != "" {
		rec["patient_id"] = req.PatientID
	}

	created, err := s.store.Create(ctx, clinicID, collection.Occurrences, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create occurrence: %w", err)
	}
	return created, nil
}

func (s *Service) ListOccurrences(ctx context.Context, clinicID, status string) ([]collection.Record, error) {
	rows := s.store.Collection(clinicID, collection.Occurrences)
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

// Transition moves an occurrence one step along open → resolved → archived.
func (s *Service) Transition(ctx context.Context, clinicID, id, to string) (collection.Record, error) {
	rec, ok := s.store.Get(clinicID, collection.Occurrences, id)
	if !ok {
		return nil, ErrOccurrenceNotFound
	}
	from, _ := rec["status"].(string)
	if !validTransition(from, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	updated, err := s.store.Update(ctx, clinicID, collection.Occurrences, id, collection.Record{"status": to})
	if err != nil {
		return nil, fmt.Errorf("failed to update occurrence: %w", err)
	}
	return updated, nil
}

func (s *Service) DeleteOccurrence(ctx context.Context, clinicID, id string) error {
	if _, ok := s.store.Get(clinicID, collection.Occurrences, id); !ok {
		return ErrOccurrenceNotFound
	}
	if err := s.store.Delete(ctx, clinicID, collection.Occurrences, id); err != nil {
		return fmt.Errorf("failed to delete occurrence: %w", err)
	}
	return nil
}

// ServiceInterface defines the contract for occurrence business logic
type ServiceInterface interface {
	CreateOccurrence(ctx context.Context, clinicID, reporterID string, req CreateOccurrenceRequest) (collection.Record, error)
	ListOccurrences(ctx context.Context, clinicID, status string) ([]collection.Record, error)
	Transition(ctx context.Context, clinicID, id, to string) (collection.Record, error)
	DeleteOccurrence(ctx context.Context, clinicID, id string) error
}

var _ ServiceInterface = (*Service)(nil)
