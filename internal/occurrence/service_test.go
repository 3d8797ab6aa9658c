package occurrence

import (
	"context"
	"errors"
	"testing"

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

func TestCreateOccurrence_Defaults(t *testing.T) {
	var gotRec collection.Record
	store := &mockDataStore{
		createFunc: func(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error) {
			gotRec = rec
			return rec, nil
		},
	}
	svc := NewService(store)

	_, err := svc.CreateOccurrence(context.Background(), "clinic-1", "staff-1", CreateOccurrenceRequest{
		Title: "Queda no refeitório",
	})
	if err != nil {
		t.Fatalf("Failed to create occurrence: %v", err)
	}
	if gotRec["status"] != StatusOpen {
		t.Errorf("Expected new occurrence to open, got %v", gotRec["status"])
	}
	if gotRec["severity"] != SeverityLow {
		t.Errorf("Expected default low severity, got %v", gotRec["severity"])
	}
	if gotRec["reported_by"] != "staff-1" {
		t.Errorf("Expected reporter attribution, got %v", gotRec["reported_by"])
	}
}

func TestCreateOccurrence_Validation(t *testing.T) {
	svc := NewService(&mockDataStore{})
	ctx := context.Background()

	if _, err := svc.CreateOccurrence(ctx, "clinic-1", "staff-1", CreateOccurrenceRequest{}); !errors.Is(err, ErrMissingTitle) {
		t.Errorf("Expected ErrMissingTitle, got %v", err)
	}
	req := CreateOccurrenceRequest{Title: "Queda", Severity: "catastrophic"}
	if _, err := svc.CreateOccurrence(ctx, "clinic-1", "staff-1", req); !errors.Is(err, ErrInvalidSeverity) {
		t.Errorf("Expected ErrInvalidSeverity, got %v", err)
	}
}

func TestTransition_Lifecycle(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{name: "open to resolved", from: StatusOpen, to: StatusResolved, allowed: true},
		{name: "resolved to archived", from: StatusResolved, to: StatusArchived, allowed: true},
		{name: "open to archived skips a step", from: StatusOpen, to: StatusArchived, allowed: false},
		{name: "resolved back to open", from: StatusResolved, to: StatusOpen, allowed: false},
		{name: "archived is terminal", from: StatusArchived, to: StatusResolved, allowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockDataStore{
				getFunc: func(clinicID string, table collection.Name, id string) (collection.Record, bool) {
					return collection.Record{"id": id, "status": tt.from}, true
				},
				updateFunc: func(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error) {
					return collection.Record{"id": id, "status": patch["status"]}, nil
				},
			}
			svc := NewService(store)

			updated, err := svc.Transition(context.Background(), "clinic-1", "o1", tt.to)
			if tt.allowed {
				if err != nil {
					t.Fatalf("Expected transition to succeed, got %v", err)
				}
				if updated["status"] != tt.to {
					t.Errorf("Expected status %s, got %v", tt.to, updated["status"])
				}
				return
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Expected ErrInvalidTransition, got %v", err)
			}
		})
	}
}

func TestTransition_NotFound(t *testing.T) {
	store := &mockDataStore{
		getFunc: func(clinicID string, table collection.Name, id string) (collection.Record, bool) {
			return nil, false
		},
	}
	svc := NewService(store)

	_, err := svc.Transition(context.Background(), "clinic-1", "missing", StatusResolved)
	if !errors.Is(err, ErrOccurrenceNotFound) {
		t.Errorf("Expected ErrOccurrenceNotFound, got %v", err)
	}
}

func TestListOccurrences_StatusFilter(t *testing.T) {
	store := &mockDataStore{
		collectionFunc: func(clinicID string, table collection.Name) []collection.Record {
			return []collection.Record{
				{"id": "o1", "status": StatusOpen},
				{"id": "o2", "status": StatusResolved},
				{"id": "o3", "status": StatusOpen},
			}
		},
	}
	svc := NewService(store)

	open, err := svc.ListOccurrences(context.Background(), "clinic-1", StatusOpen)
	if err != nil {
		t.Fatalf("Failed to list occurrences: %v", err)
	}
	if len(open) != 2 {
		t.Errorf("Expected 2 open occurrences, got %d", len(open))
	}
}
