package clinic

import (
	"context"
	"fmt"
)

type Service struct {
	repo RepositoryInterface
}

func NewService(repo RepositoryInterface) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateClinic(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error) {
	if req.Name == "" {
		return nil, ErrMissingName
	}

	created, err := s.repo.CreateClinic(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create clinic: %w", err)
	}
	return created, nil
}

func (s *Service) ListClinics(ctx context.Context) ([]ClinicResponse, error) {
	clinics, err := s.repo.ListClinics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinics: %w", err)
	}
	return clinics, nil
}

func (s *Service) GetClinic(ctx context.Context, id string) (*ClinicResponse, error) {
	return s.repo.GetClinic(ctx, id)
}

func (s *Service) UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest) (*ClinicResponse, error) {
	return s.repo.UpdateClinic(ctx, id, req)
}

func (s *Service) DeleteClinic(ctx context.Context, id string) error {
	return s.repo.DeleteClinic(ctx, id)
}

// CheckPatientQuota fails with ErrPatientQuotaExceeded when the clinic's plan
// has no room for another patient.
func (s *Service) CheckPatientQuota(ctx context.Context, clinicID string) error {
	c, err := s.repo.GetClinic(ctx, clinicID)
	if err != nil {
		return err
	}
	count, err := s.repo.CountPatients(ctx, clinicID)
	if err != nil {
		return err
	}
	if count >= c.MaxPatients {
		return ErrPatientQuotaExceeded
	}
	return nil
}

// CheckUserQuota fails with ErrUserQuotaExceeded when the clinic's plan has
// no room for another staff account.
func (s *Service) CheckUserQuota(ctx context.Context, clinicID string) error {
	c, err := s.repo.GetClinic(ctx, clinicID)
	if err != nil {
		return err
	}
	count, err := s.repo.CountMembers(ctx, clinicID)
	if err != nil {
		return err
	}
	if count >= c.MaxUsers {
		return ErrUserQuotaExceeded
	}
	return nil
}
