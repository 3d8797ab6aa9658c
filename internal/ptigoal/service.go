// Package ptigoal manages individual therapeutic plan goals. The goal list is
// append-only: goals are added and read, never edited or removed.
package ptigoal

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitacasa-care/community-service/internal/collection"
)

var (
	ErrMissingPatient = errors.New("patient id is required")
	ErrMissingGoal    = errors.New("goal description is required")
)

type CreateGoalRequest struct {
	PatientID   string `json:"patient_id"`
	Description string `json:"description"`
	TargetDate  string `json:"target_date,omitempty"`
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

func (s *Service) AppendGoal(ctx context.Context, clinicID, authorID string, req CreateGoalRequest) (collection.Record, error) {
	if req.PatientID == "" {
		return nil, ErrMissingPatient
	}
	if req.Description == "" {
		return nil, ErrMissingGoal
	}

	rec := collection.Record{
		"patient_id":  req.PatientID,
		"description": req.Description,
		"author_id":   authorID,
	}
	if req.TargetDate != "" {
		rec["target_date"] = req.TargetDate
	}

	created, err := s.store.Create(ctx, clinicID, collection.PTIGoals, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to append goal: %w", err)
	}
	return created, nil
}

func (s *Service) ListByPatient(ctx context.Context, clinicID, patientID string) ([]collection.Record, error) {
	rows := s.store.Collection(clinicID, collection.PTIGoals)
	goals := make([]collection.Record, 0, len(rows))
	for _, r := range rows {
		if r["patient_id"] == patientID {
			goals = append(goals, r)
		}
	}
	return goals, nil
}

// ServiceInterface defines the contract for PTI goal business logic
type ServiceInterface interface {
	AppendGoal(ctx context.Context, clinicID, authorID string, req CreateGoalRequest) (collection.Record, error)
	ListByPatient(ctx context.Context, clinicID, patientID string) ([]collection.Record, error)
}

var _ ServiceInterface = (*Service)(nil)
