package medication

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/vitacasa-care/community-service/internal/collection"
)

// DueWindow is how close to its scheduled time a pending dose counts as due.
const DueWindow = 15 * time.Minute

// Notifier surfaces due/overdue doses on the clinic's notification feed.
type Notifier interface {
	Warn(clinicID, message string)
}

// DuePublisher emits medication due events to the broker.
type DuePublisher interface {
	PublishMedicationDue(ctx context.Context, clinicID, medicationID, patientID, scheduledAt string, overdue bool)
}

// ClinicSource lists the clinics currently loaded in the store.
type ClinicSource interface {
	Clinics() []string
	Collection(clinicID string, table collection.Name) []collection.Record
}

// Scanner periodically walks pending doses across all loaded clinics and
// flags the ones due within the window or already past their time.
type Scanner struct {
	source    ClinicSource
	notifier  Notifier
	publisher DuePublisher
	now       func() time.Time

	// flagged remembers doses already announced so each one is surfaced
	// once while it stays pending. Entries are dropped when a dose leaves
	// the pending state, so the map stays bounded by the live pending set.
	mu      sync.Mutex
	flagged map[string]struct{}
}

func NewScanner(source ClinicSource, notifier Notifier, publisher DuePublisher) *Scanner {
	return &Scanner{
		source:    source,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
		flagged:   make(map[string]struct{}),
	}
}

// Start runs the scan loop until ctx is cancelled.
func (s *Scanner) Start(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Scan(ctx)
			}
		}
	}()
}

// Scan performs one pass. Exported so the loop body is testable.
func (s *Scanner) Scan(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	pending := make(map[string]struct{})
	for _, clinicID := range s.source.Clinics() {
		for _, rec := range s.source.Collection(clinicID, collection.Medications) {
			if rec["status"] != StatusPending {
				continue
			}
			key := clinicID + ":" + rec.ID()
			pending[key] = struct{}{}

			scheduledRaw, _ := rec["scheduled_at"].(string)
			scheduled, err := time.Parse(time.RFC3339, scheduledRaw)
			if err != nil {
				continue
			}

			overdue := scheduled.Before(now)
			due := !overdue && scheduled.Sub(now) <= DueWindow
			if !overdue && !due {
				continue
			}

			id := rec.ID()
			if _, seen := s.flagged[key]; seen {
				continue
			}
			s.flagged[key] = struct{}{}

			name, _ := rec["name"].(string)
			patientID, _ := rec["patient_id"].(string)
			if overdue {
				s.notifier.Warn(clinicID, "medication overdue: "+name)
			} else {
				s.notifier.Warn(clinicID, "medication due soon: "+name)
			}
			if s.publisher != nil {
				s.publisher.PublishMedicationDue(ctx, clinicID, id, patientID, scheduledRaw, overdue)
			}
			log.Printf("medication %s for clinic %s flagged (overdue=%v)", id, clinicID, overdue)
		}
	}

	for key := range s.flagged {
		if _, ok := pending[key]; !ok {
			delete(s.flagged, key)
		}
	}
}
