package healthrecord

import (
	"context"
	"errors"
	"testing"

	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/collection"
)

type mockDataStore struct {
	collectionFunc func(clinicID string, table collection.Name) []collection.Record
	createFunc     func(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
}

func (m *mockDataStore) Collection(clinicID string, table collection.Name) []collection.Record {
	return m.collectionFunc(clinicID, table)
}

func (m *mockDataStore) Create(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error) {
	return m.createFunc(ctx, clinicID, table, rec)
}

func TestAppendEntry_Validation(t *testing.T) {
	svc := NewService(&mockDataStore{})
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateEntryRequest
		want error
	}{
		{
			name: "missing patient",
			req:  CreateEntryRequest{Specialty: "psychology", Text: "session notes"},
			want: ErrMissingPatient,
		},
		{
			name: "missing specialty",
			req:  CreateEntryRequest{PatientID: "p1", Text: "session notes"},
			want: ErrMissingSpecialty,
		},
		{
			name: "missing text",
			req:  CreateEntryRequest{PatientID: "p1", Specialty: "psychology"},
			want: ErrMissingText,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.AppendEntry(ctx, "clinic-1", "u1", tt.req); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAppendEntry_AttributesAuthor(t *testing.T) {
	var gotRec collection.Record
	store := &mockDataStore{
		createFunc: func(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error) {
			if table != collection.HealthRecords {
				t.Errorf("Expected health records table, got %s", table)
			}
			gotRec = rec
			return rec, nil
		},
	}
	svc := NewService(store)

	_, err := svc.AppendEntry(context.Background(), "clinic-1", "psy-1", CreateEntryRequest{
		PatientID:    "p1",
		Specialty:    "psychology",
		Text:         "session notes",
		Confidential: "sensitive detail",
	})
	if err != nil {
		t.Fatalf("Failed to append entry: %v", err)
	}
	if gotRec["author_id"] != "psy-1" {
		t.Errorf("Expected author attribution, got %v", gotRec["author_id"])
	}
	if gotRec["confidential"] != "sensitive detail" {
		t.Errorf("Expected confidential field to be stored, got %v", gotRec["confidential"])
	}
}

func TestRedact(t *testing.T) {
	entry := collection.Record{
		"id":           "h1",
		"patient_id":   "p1",
		"author_id":    "psy-1",
		"text":         "session notes",
		"confidential": "sensitive detail",
	}

	tests := []struct {
		name   string
		viewer *auth.Principal
		want   bool
	}{
		{
			name:   "admin sees confidential",
			viewer: &auth.Principal{UserID: "admin-1", Role: auth.RoleAdmin},
			want:   true,
		},
		{
			name:   "author sees confidential",
			viewer: &auth.Principal{UserID: "psy-1", Role: auth.RoleNormal},
			want:   true,
		},
		{
			name:   "other staff does not",
			viewer: &auth.Principal{UserID: "staff-2", Role: auth.RoleNormal},
			want:   false,
		},
		{
			name:   "nil viewer does not",
			viewer: nil,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Redact(entry, tt.viewer)
			_, has := out["confidential"]
			if has != tt.want {
				t.Errorf("Expected confidential visibility %v, got %v", tt.want, has)
			}
			if out["text"] != "session notes" {
				t.Errorf("Expected public fields to survive, got %v", out["text"])
			}
		})
	}

	if _, has := entry["confidential"]; !has {
		t.Errorf("Redact mutated the snapshot record")
	}
}

func TestListByPatient_FiltersAndRedacts(t *testing.T) {
	store := &mockDataStore{
		collectionFunc: func(clinicID string, table collection.Name) []collection.Record {
			return []collection.Record{
				{"id": "h1", "patient_id": "p1", "author_id": "psy-1", "text": "a", "confidential": "x"},
				{"id": "h2", "patient_id": "p2", "author_id": "psy-1", "text": "b"},
				{"id": "h3", "patient_id": "p1", "author_id": "nut-1", "text": "c"},
			}
		},
	}
	svc := NewService(store)
	viewer := &auth.Principal{UserID: "staff-2", Role: auth.RoleNormal}

	entries, err := svc.ListByPatient(context.Background(), viewer, "clinic-1", "p1")
	if err != nil {
		t.Fatalf("Failed to list entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries for p1, got %d", len(entries))
	}
	if _, has := entries[0]["confidential"]; has {
		t.Errorf("Expected confidential field redacted for other staff")
	}
}
