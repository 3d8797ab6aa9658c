package medication

import (
	"context"
	"testing"
	"time"

	"github.com/vitacasa-care/community-service/internal/collection"
	"github.com/vitacasa-care/community-service/internal/testutil"
)

type mockClinicSource struct {
	clinicsFunc    func() []string
	collectionFunc func(clinicID string, table collection.Name) []collection.Record
}

func (m *mockClinicSource) Clinics() []string { return m.clinicsFunc() }

func (m *mockClinicSource) Collection(clinicID string, table collection.Name) []collection.Record {
	return m.collectionFunc(clinicID, table)
}

type dueEvent struct {
	clinicID     string
	medicationID string
	patientID    string
	scheduledAt  string
	overdue      bool
}

type dueSpy struct {
	events []dueEvent
}

func (s *dueSpy) PublishMedicationDue(ctx context.Context, clinicID, medicationID, patientID, scheduledAt string, overdue bool) {
	s.events = append(s.events, dueEvent{clinicID, medicationID, patientID, scheduledAt, overdue})
}

func newTestScanner(doses []collection.Record) (*Scanner, *testutil.NotifySpy, *dueSpy, time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	source := &mockClinicSource{
		clinicsFunc: func() []string { return []string{"clinic-1"} },
		collectionFunc: func(clinicID string, table collection.Name) []collection.Record {
			return doses
		},
	}
	notify := testutil.NewNotifySpy()
	publisher := &dueSpy{}

	s := NewScanner(source, notify, publisher)
	s.now = func() time.Time { return now }
	return s, notify, publisher, now
}

func TestScan_FlagsDoseDueWithinWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, notify, publisher, now := newTestScanner([]collection.Record{
		{
			"id":           "m1",
			"name":         "Risperidona 2mg",
			"patient_id":   "p1",
			"status":       StatusPending,
			"scheduled_at": now.Add(10 * time.Minute).Format(time.RFC3339),
		},
	})

	s.Scan(context.Background())

	if notify.CountLevel("warning") != 1 {
		t.Fatalf("Expected one warning, got %d", notify.CountLevel("warning"))
	}
	if len(publisher.events) != 1 {
		t.Fatalf("Expected one due event, got %d", len(publisher.events))
	}
	ev := publisher.events[0]
	if ev.medicationID != "m1" || ev.patientID != "p1" || ev.overdue {
		t.Errorf("Unexpected due event: %+v", ev)
	}
}

func TestScan_FlagsOverdueDose(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _, publisher, now := newTestScanner([]collection.Record{
		{
			"id":           "m1",
			"name":         "Risperidona 2mg",
			"patient_id":   "p1",
			"status":       StatusPending,
			"scheduled_at": now.Add(-time.Hour).Format(time.RFC3339),
		},
	})

	s.Scan(context.Background())

	if len(publisher.events) != 1 || !publisher.events[0].overdue {
		t.Errorf("Expected one overdue event, got %+v", publisher.events)
	}
}

func TestScan_IgnoresDosesOutsideWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, notify, publisher, now := newTestScanner([]collection.Record{
		{
			"id":           "m1",
			"status":       StatusPending,
			"scheduled_at": now.Add(2 * time.Hour).Format(time.RFC3339),
		},
	})

	s.Scan(context.Background())

	if notify.CountLevel("warning") != 0 || len(publisher.events) != 0 {
		t.Errorf("Expected no flags for a dose two hours out")
	}
}

func TestScan_IgnoresAdministeredDoses(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, _, publisher, now := newTestScanner([]collection.Record{
		{
			"id":           "m1",
			"status":       StatusAdministered,
			"scheduled_at": now.Add(-time.Hour).Format(time.RFC3339),
		},
	})

	s.Scan(context.Background())

	if len(publisher.events) != 0 {
		t.Errorf("Expected administered dose to be skipped, got %+v", publisher.events)
	}
}

func TestScan_IgnoresMalformedSchedule(t *testing.T) {
	s, _, publisher, _ := newTestScanner([]collection.Record{
		{"id": "m1", "status": StatusPending, "scheduled_at": "tomorrow"},
		{"id": "m2", "status": StatusPending},
	})

	s.Scan(context.Background())

	if len(publisher.events) != 0 {
		t.Errorf("Expected malformed schedules to be skipped, got %+v", publisher.events)
	}
}

func TestScan_DropsFlagWhenDoseLeavesPending(t *testing.T) {
	dose := collection.Record{"id": "m1", "status": StatusPending}
	s, notify, publisher, now := newTestScanner([]collection.Record{dose})
	dose["scheduled_at"] = now.Add(-time.Hour).Format(time.RFC3339)

	ctx := context.Background()
	s.Scan(ctx)
	if notify.CountLevel("warning") != 1 {
		t.Fatalf("Expected one warning, got %d", notify.CountLevel("warning"))
	}

	// Administration clears the flag; a dose put back to pending is
	// announced again rather than silently suppressed forever.
	dose["status"] = StatusAdministered
	s.Scan(ctx)
	if notify.CountLevel("warning") != 1 {
		t.Errorf("Expected no warning for an administered dose, got %d", notify.CountLevel("warning"))
	}

	dose["status"] = StatusPending
	s.Scan(ctx)
	if notify.CountLevel("warning") != 2 {
		t.Errorf("Expected the dose to be re-flagged, got %d warnings", notify.CountLevel("warning"))
	}
	if len(publisher.events) != 2 {
		t.Errorf("Expected two due events, got %d", len(publisher.events))
	}
}

func TestScan_FlagsEachDoseOnce(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s, notify, publisher, now := newTestScanner([]collection.Record{
		{
			"id":           "m1",
			"status":       StatusPending,
			"scheduled_at": now.Add(-time.Hour).Format(time.RFC3339),
		},
	})

	ctx := context.Background()
	s.Scan(ctx)
	s.Scan(ctx)
	s.Scan(ctx)

	if notify.CountLevel("warning") != 1 {
		t.Errorf("Expected one warning across repeated scans, got %d", notify.CountLevel("warning"))
	}
	if len(publisher.events) != 1 {
		t.Errorf("Expected one event across repeated scans, got %d", len(publisher.events))
	}
}
