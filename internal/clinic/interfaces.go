package clinic

import "context"

// RepositoryInterface defines the contract for clinic data access
type RepositoryInterface interface {
	CreateClinic(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error)
	ListClinics(ctx context.Context) ([]ClinicResponse, error)
	GetClinic(ctx context.Context, id string) (*ClinicResponse, error)
	UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest) (*ClinicResponse, error)
	DeleteClinic(ctx context.Context, id string) error
	CountPatients(ctx context.Context, clinicID string) (int, error)
	CountMembers(ctx context.Context, clinicID string) (int, error)
}

// Ensure Repository implements RepositoryInterface
var _ RepositoryInterface = (*Repository)(nil)

// ServiceInterface defines the contract for clinic business logic
type ServiceInterface interface {
	CreateClinic(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error)
	ListClinics(ctx context.Context) ([]ClinicResponse, error)
	GetClinic(ctx context.Context, id string) (*ClinicResponse, error)
	UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest) (*ClinicResponse, error)
	DeleteClinic(ctx context.Context, id string) error
	CheckPatientQuota(ctx context.Context, clinicID string) error
	CheckUserQuota(ctx context.Context, clinicID string) error
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
