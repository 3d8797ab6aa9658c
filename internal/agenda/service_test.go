package agenda

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vitacasa-care/community-service/internal/collection"
)

type mockDataStore struct {
	collectionFunc func(clinicID string, table collection.Name) []collection.Record
	getFunc        func(clinicID string, table collection.Name, id string) (collection.Record, bool)
	createFunc     func(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
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

func (m *mockDataStore) Delete(ctx context.Context, clinicID string, table collection.Name, id string) error {
	return m.deleteFunc(ctx, clinicID, table, id)
}

func TestCreateEvent_Validation(t *testing.T) {
	svc := NewService(&mockDataStore{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateEventRequest
		want error
	}{
		{
			name: "missing title",
			req:  CreateEventRequest{StartsAt: "2025-06-01T10:00:00Z", EndsAt: "2025-06-01T11:00:00Z"},
			want: ErrMissingTitle,
		},
		{
			name: "unparseable start",
			req:  CreateEventRequest{Title: "Visita", StartsAt: "tomorrow", EndsAt: "2025-06-01T11:00:00Z"},
			want: ErrInvalidTime,
		},
		{
			name: "end before start",
			req:  CreateEventRequest{Title: "Visita", StartsAt: "2025-06-01T11:00:00Z", EndsAt: "2025-06-01T10:00:00Z"},
			want: ErrInvalidRange,
		},
		{
			name: "zero-length event",
			req:  CreateEventRequest{Title: "Visita", StartsAt: "2025-06-01T10:00:00Z", EndsAt: "2025-06-01T10:00:00Z"},
			want: ErrInvalidRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateEvent(ctx, "clinic-1", tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreateEvent_NormalizesToUTC(t *testing.T) {
	var gotRec collection.Record
	store := &mockDataStore{
		createFunc: func(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error) {
			gotRec = rec
			return rec, nil
		},
	}
	svc := NewService(store)

	_, err := svc.CreateEvent(context.Background(), "clinic-1", CreateEventRequest{
		Title:    "Consulta",
		StartsAt: "2025-06-01T10:00:00-03:00",
		EndsAt:   "2025-06-01T11:00:00-03:00",
	})
	if err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	if gotRec["starts_at"] != "2025-06-01T13:00:00Z" {
		t.Errorf("Expected UTC start, got %v", gotRec["starts_at"])
	}
}

func TestListEvents_RangeFilter(t *testing.T) {
	store := &mockDataStore{
		collectionFunc: func(clinicID string, table collection.Name) []collection.Record {
			return []collection.Record{
				{"id": "a1", "starts_at": "2025-06-01T09:00:00Z", "ends_at": "2025-06-01T10:00:00Z"},
				{"id": "a2", "starts_at": "2025-06-01T14:00:00Z", "ends_at": "2025-06-01T15:00:00Z"},
				{"id": "a3", "starts_at": "2025-06-02T09:00:00Z", "ends_at": "2025-06-02T10:00:00Z"},
			}
		},
	}
	svc := NewService(store)

	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	to := time.Date(2025, 6, 1, 23, 59, 0, 0, time.UTC)

	events, err := svc.ListEvents(context.Background(), "clinic-1", from, to)
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != 1 || events[0].ID() != "a2" {
		t.Errorf("Expected only the afternoon event, got %v", events)
	}
}

func TestListEvents_ZeroBoundsDisableFilter(t *testing.T) {
	store := &mockDataStore{
		collectionFunc: func(clinicID string, table collection.Name) []collection.Record {
			return []collection.Record{
				{"id": "a1", "starts_at": "2025-06-01T09:00:00Z", "ends_at": "2025-06-01T10:00:00Z"},
				{"id": "a2", "starts_at": "2025-06-02T09:00:00Z", "ends_at": "2025-06-02T10:00:00Z"},
			}
		},
	}
	svc := NewService(store)

	events, err := svc.ListEvents(context.Background(), "clinic-1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("Expected all events with zero bounds, got %d", len(events))
	}
}

func TestListEvents_KeepsMalformedRowsVisible(t *testing.T) {
	store := &mockDataStore{
		collectionFunc: func(clinicID string, table collection.Name) []collection.Record {
			return []collection.Record{
				{"id": "a1", "starts_at": "not-a-time", "ends_at": "also-not"},
			}
		},
	}
	svc := NewService(store)

	from := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	events, err := svc.ListEvents(context.Background(), "clinic-1", from, from.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("Failed to list events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("Expected malformed row to stay visible, got %d events", len(events))
	}
}

func TestDeleteEvent_NotFound(t *testing.T) {
	store := &mockDataStore{
		getFunc: func(clinicID string, table collection.Name, id string) (collection.Record, bool) {
			return nil, false
		},
	}
	svc := NewService(store)

	if err := svc.DeleteEvent(context.Background(), "clinic-1", "missing"); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Expected ErrEventNotFound, got %v", err)
	}
}
