package patient

import (
	"context"

	"github.com/vitacasa-care/community-service/internal/collection"
)

// ServiceInterface defines the contract for patient business logic
type ServiceInterface interface {
	CreatePatient(ctx context.Context, clinicID string, req CreatePatientRequest) (collection.Record, error)
	ListPatients(ctx context.Context, clinicID, status string) ([]collection.Record, error)
	GetPatient(ctx context.Context, clinicID, id string) (collection.Record, error)
	UpdatePatient(ctx context.Context, clinicID, id string, req UpdatePatientRequest) (collection.Record, error)
	ChangeStatus(ctx context.Context, clinicID, id, status string) (collection.Record, error)
	DeletePatient(ctx context.Context, clinicID, id string) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
