package clinic

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// clinicData is the stored JSONB shape. The registry lives in the same
// backend as the collections; a clinic row is scoped by its own id.
type clinicData struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	ContactEmail string     `json:"contact_email"`
	ContactPhone string     `json:"contact_phone"`
	Address      string     `json:"address"`
	Plan         string     `json:"plan"`
	MaxPatients  int        `json:"max_patients"`
	MaxUsers     int        `json:"max_users"`
	Active       bool       `json:"active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

func (d clinicData) response() *ClinicResponse {
	return &ClinicResponse{
		ID:           d.ID,
		Name:         d.Name,
		ContactEmail: d.ContactEmail,
		ContactPhone: d.ContactPhone,
		Address:      d.Address,
		Plan:         d.Plan,
		MaxPatients:  d.MaxPatients,
		MaxUsers:     d.MaxUsers,
		Active:       d.Active,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (r *Repository) CreateClinic(ctx context.Context, req CreateClinicRequest) (*ClinicResponse, error) {
	data := clinicData{
		ID:           uuid.New().String(),
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		ContactPhone: req.ContactPhone,
		Address:      req.Address,
		Plan:         req.Plan,
		MaxPatients:  req.MaxPatients,
		MaxUsers:     req.MaxUsers,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	if data.Plan == "" {
		data.Plan = DefaultPlan
	}
	if data.MaxPatients <= 0 {
		data.MaxPatients = DefaultMaxPatients
	}
	if data.MaxUsers <= 0 {
		data.MaxUsers = DefaultMaxUsers
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode clinic: %w", err)
	}

	query := `
		INSERT INTO vitacasa.clinics (id, clinic_id, data, created_at)
		VALUES ($1, $1, $2, now())
	`
	if _, err := r.db.ExecContext(ctx, query, data.ID, payload); err != nil {
		return nil, fmt.Errorf("failed to insert clinic: %w", err)
	}
	return data.response(), nil
}

func (r *Repository) ListClinics(ctx context.Context) ([]ClinicResponse, error) {
	query := `
		SELECT data
		FROM vitacasa.clinics
		WHERE data->>'deleted_at' IS NULL
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clinics: %w", err)
	}
	defer rows.Close()

	var clinics []ClinicResponse
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan clinic: %w", err)
		}
		var data clinicData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("failed to decode clinic: %w", err)
		}
		clinics = append(clinics, *data.response())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clinics: %w", err)
	}
	return clinics, nil
}

func (r *Repository) GetClinic(ctx context.Context, id string) (*ClinicResponse, error) {
	query := `
		SELECT data
		FROM vitacasa.clinics
		WHERE id = $1 AND data->>'deleted_at' IS NULL
	`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrClinicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query clinic: %w", err)
	}

	var data clinicData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode clinic: %w", err)
	}
	return data.response(), nil
}

func (r *Repository) UpdateClinic(ctx context.Context, id string, req UpdateClinicRequest) (*ClinicResponse, error) {
	patch := map[string]interface{}{}
	if req.Name != nil {
		patch["name"] = *req.Name
	}
	if req.ContactEmail != nil {
		patch["contact_email"] = *req.ContactEmail
	}
	if req.ContactPhone != nil {
		patch["contact_phone"] = *req.ContactPhone
	}
	if req.Address != nil {
		patch["address"] = *req.Address
	}
	if req.Plan != nil {
		patch["plan"] = *req.Plan
	}
	if req.MaxPatients != nil {
		patch["max_patients"] = *req.MaxPatients
	}
	if req.MaxUsers != nil {
		patch["max_users"] = *req.MaxUsers
	}
	if req.Active != nil {
		patch["active"] = *req.Active
	}
	if len(patch) == 0 {
		return nil, ErrNoFieldsToUpdate
	}
	patch["updated_at"] = time.Now().UTC()

	payload, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode clinic patch: %w", err)
	}

	query := `
		UPDATE vitacasa.clinics
		SET data = data || $2::jsonb, updated_at = now()
		WHERE id = $1 AND data->>'deleted_at' IS NULL
		RETURNING data
	`

	var raw []byte
	err = r.db.QueryRowContext(ctx, query, id, payload).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrClinicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update clinic: %w", err)
	}

	var data clinicData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode clinic: %w", err)
	}
	return data.response(), nil
}

// DeleteClinic soft-deletes: the row stays for the retention window so the
// cleanup job can purge it later.
func (r *Repository) DeleteClinic(ctx context.Context, id string) error {
	query := `
		UPDATE vitacasa.clinics
		SET data = data || jsonb_build_object('deleted_at', to_char(now() AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')),
		    updated_at = now()
		WHERE id = $1 AND data->>'deleted_at' IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete clinic: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrClinicNotFound
	}
	return nil
}

// CountPatients returns the number of patient rows for quota checks.
func (r *Repository) CountPatients(ctx context.Context, clinicID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM vitacasa.patients WHERE clinic_id = $1`
	if err := r.db.QueryRowContext(ctx, query, clinicID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count patients: %w", err)
	}
	return count, nil
}

// CountMembers returns the number of staff memberships for quota checks.
func (r *Repository) CountMembers(ctx context.Context, clinicID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM vitacasa.clinic_users WHERE clinic_id = $1`
	if err := r.db.QueryRowContext(ctx, query, clinicID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count clinic members: %w", err)
	}
	return count, nil
}
