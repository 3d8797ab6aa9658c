// Package agenda manages scheduled events: visits, consultations, outings.
// Events are created and deleted, never edited.
package agenda

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vitacasa-care/community-service/internal/collection"
)

var (
	ErrMissingTitle  = errors.New("event title is required")
	ErrInvalidRange  = errors.New("event end must be after start")
	ErrInvalidTime   = errors.New("event times must be RFC3339 timestamps")
	ErrEventNotFound = errors.New("agenda event not found")
)

type CreateEventRequest struct {
	Title       string `json:"title"`
	StartsAt    string `json:"starts_at"`
	EndsAt      string `json:"ends_at"`
	PatientID   string `json:"patient_id,omitempty"`
	VisitorName string `json:"visitor_name,omitempty"`
	Notes       string `json:"notes,omitempty"`
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

func (s *Service) CreateEvent(ctx context.Context, clinicID string, req CreateEventRequest) (collection.Record, error) {
	if req.Title == "" {
		return nil, ErrMissingTitle
	}
	start, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, ErrInvalidTime
	}
	end, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return nil, ErrInvalidTime
	}
	if !end.After(start) {
		return nil, ErrInvalidRange
	}

	rec := collection.Record{
		"title":     req.Title,
		"starts_at": start.UTC().Format(time.RFC3339),
		"ends_at":   end.UTC().Format(time.RFC3339),
	}
	if req.PatientID != "" {
		rec["patient_id"] = req.PatientID
	}
	if req.VisitorName != "" {
		rec["visitor_name"] = req.VisitorName
	}
	if req.Notes != "" {
		rec["notes"] = req.Notes
	}

	created, err := s.store.Create(ctx, clinicID, collection.Agenda, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create agenda event: %w", err)
	}
	return created, nil
}

// ListEvents returns events overlapping [from, to]. Zero bounds disable the
// corresponding side of the filter.
func (s *Service) ListEvents(ctx context.Context, clinicID string, from, to time.Time) ([]collection.Record, error) {
	rows := s.store.Collection(clinicID, collection.Agenda)
	events := make([]collection.Record, 0, len(rows))
	for _, r := range rows {
		start, err1 := parseField(r, "starts_at")
		end, err2 := parseField(r, "ends_at")
		if err1 != nil || err2 != nil {
			// Mirror-written rows may predate validation; keep them visible.
			events = append(events, r)
			continue
		}
		if !from.IsZero() && end.Before(from) {
			continue
		}
		if !to.IsZero() && start.After(to) {
			continue
		}
		events = append(events, r)
	}
	return events, nil
}

func parseField(r collection.Record, field string) (time.Time, error) {
	s, _ := r[field].(string)
	return time.Parse(time.RFC3339, s)
}

func (s *Service) DeleteEvent(ctx context.Context, clinicID, id string) error {
	if _, ok := s.store.Get(clinicID, collection.Agenda, id); !ok {
		return ErrEventNotFound
	}
	if err := s.store.Delete(ctx, clinicID, collection.Agenda, id); err != nil {
		return fmt.Errorf("failed to delete agenda event: %w", err)
	}
	return nil
}

// ServiceInterface defines the contract for agenda business logic
type ServiceInterface interface {
	CreateEvent(ctx context.Context, clinicID string, req CreateEventRequest) (collection.Record, error)
	ListEvents(ctx context.Context, clinicID string, from, to time.Time) ([]collection.Record, error)
	DeleteEvent(ctx context.Context, clinicID, id string) error
}

var _ ServiceInterface = (*Service)(nil)
