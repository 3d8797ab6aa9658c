package clinic

import "time"

// CreateClinicRequest represents the request to register a new clinic
type CreateClinicRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Address      string `json:"address"`
	Plan         string `json:"plan,omitempty"`
	MaxPatients  int    `json:"max_patients,omitempty"`
	MaxUsers     int    `json:"max_users,omitempty"`
}

// UpdateClinicRequest represents the request to update a clinic
type UpdateClinicRequest struct {
	Name         *string `json:"name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	ContactPhone *string `json:"contact_phone,omitempty"`
	Address      *string `json:"address,omitempty"`
	Plan         *string `json:"plan,omitempty"`
	MaxPatients  *int    `json:"max_patients,omitempty"`
	MaxUsers     *int    `json:"max_users,omitempty"`
	Active       *bool   `json:"active,omitempty"`
}

// ClinicResponse represents the clinic data returned to clients
type ClinicResponse struct {
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
}

// Plan defaults applied at registration when the request leaves them unset.
const (
	DefaultPlan        = "standard"
	DefaultMaxPatients = 60
	DefaultMaxUsers    = 25
)
