package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Repository resolves staff accounts straight from the backend. Login happens
// before any clinic is selected, so the username lookup is the one query in
// the service that spans clinics.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*UserRow, error) {
	query := `
		SELECT data
		FROM vitacasa.app_users
		WHERE data->>'username' = $1
		LIMIT 1
	`

	var raw []byte
	err := r.db.QueryRowContext(ctx, query, username).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query app user: %w", err)
	}

	var row struct {
		ID           string `json:"id"`
		Username     string `json:"username"`
		DisplayName  string `json:"display_name"`
		Role         string `json:"role"`
		PasswordHash string `json:"password_hash"`
		Active       bool   `json:"active"`
	}
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("failed to decode app user: %w", err)
	}

	return &UserRow{
		ID:           row.ID,
		Username:     row.Username,
		DisplayName:  row.DisplayName,
		Role:         row.Role,
		PasswordHash: row.PasswordHash,
		Active:       row.Active,
	}, nil
}

func (r *Repository) Membership(ctx context.Context, userID string) (string, map[string]bool, error) {
	query := `
		SELECT clinic_id, COALESCE(data->'permissions', '{}'::jsonb)
		FROM vitacasa.clinic_users
		WHERE data->>'user_id' = $1
		LIMIT 1
	`

	var clinicID string
	var raw []byte
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&clinicID, &raw)
	if err == sql.ErrNoRows {
		return "", nil, errNoMembership
	}
	if err != nil {
		return "", nil, fmt.Errorf("failed to query clinic membership: %w", err)
	}

	permissions := map[string]bool{}
	if err := json.Unmarshal(raw, &permissions); err != nil {
		return "", nil, fmt.Errorf("failed to decode permission map: %w", err)
	}
	return clinicID, permissions, nil
}
