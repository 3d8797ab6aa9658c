package messaging

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/vitacasa-care/community-service/internal/collection"
)

const serviceName = "community-service"

// ChangeEvent is broadcast after every successful remote mutation. Routing
// key: clinic.<clinicID>.<collection>.<action>, so consumers can subscribe
// to a whole clinic with clinic.<id>.#.
type ChangeEvent struct {
	EventID    string    `json:"event_id"`
	Timestamp  time.Time `json:"timestamp"`
	Service    string    `json:"service_name"`
	ClinicID   string    `json:"clinic_id"`
	Collection string    `json:"collection"`
	Action     string    `json:"action"`
	RecordID   string    `json:"record_id"`
}

// MedicationDueEvent is emitted by the due-medication scanner.
type MedicationDueEvent struct {
	EventID      string    `json:"event_id"`
	Timestamp    time.Time `json:"timestamp"`
	Service      string    `json:"service_name"`
	ClinicID     string    `json:"clinic_id"`
	MedicationID string    `json:"medication_id"`
	PatientID    string    `json:"patient_id"`
	ScheduledAt  string    `json:"scheduled_at"`
	Overdue      bool      `json:"overdue"`
}

// ChangePublisher adapts a Publisher to the store's change-event hook.
type ChangePublisher struct {
	publisher PublisherInterface
}

func NewChangePublisher(p PublisherInterface) *ChangePublisher {
	return &ChangePublisher{publisher: p}
}

// PublishChange emits the change event. Failures only log: events are a
// side effect, never a reason to fail the mutation that produced them.
func (c *ChangePublisher) PublishChange(ctx context.Context, clinicID string, table collection.Name, action, recordID string) {
	routingKey := fmt.Sprintf("clinic.%s.%s.%s", clinicID, table, action)
	event := ChangeEvent{
		EventID:    uuid.New().String(),
		Timestamp:  time.Now().UTC(),
		Service:    serviceName,
		ClinicID:   clinicID,
		Collection: string(table),
		Action:     action,
		RecordID:   recordID,
	}
	if err := c.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("failed to publish change event %s: %v", routingKey, err)
	}
}

// PublishMedicationDue emits a due/overdue medication event.
func (c *ChangePublisher) PublishMedicationDue(ctx context.Context, clinicID, medicationID, patientID, scheduledAt string, overdue bool) {
	routingKey := fmt.Sprintf("clinic.%s.medications.due", clinicID)
	event := MedicationDueEvent{
		EventID:      uuid.New().String(),
		Timestamp:    time.Now().UTC(),
		Service:      serviceName,
		ClinicID:     clinicID,
		MedicationID: medicationID,
		PatientID:    patientID,
		ScheduledAt:  scheduledAt,
		Overdue:      overdue,
	}
	if err := c.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Printf("failed to publish medication due event: %v", err)
	}
}
