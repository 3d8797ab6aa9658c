// Package users manages staff accounts and their clinic memberships. Account
// rows live in app_users; the per-module permission map lives on the
// clinic_users membership row, which is what the login path reads.
package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/vitacasa-care/community-service/internal/auth"
	"github.com/vitacasa-care/community-service/internal/clinic"
	"github.com/vitacasa-care/community-service/internal/collection"
)

var (
	ErrMissingUsername = errors.New("username is required")
	ErrMissingPassword = errors.New("password is required")
	ErrInvalidRole     = errors.New("role must be ADMIN or NORMAL")
	ErrUsernameTaken   = errors.New("username already in use")
	ErrUserNotFound    = errors.New("user not found")
	ErrUnknownModule   = errors.New("unknown permission module")
)

type CreateUserRequest struct {
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	DisplayName string          `json:"display_name,omitempty"`
	Role        string          `json:"role,omitempty"`
	Permissions map[string]bool `json:"permissions,omitempty"`
}

type UpdateUserRequest struct {
	DisplayName *string `json:"display_name,omitempty"`
	Role        *string `json:"role,omitempty"`
	Active      *bool   `json:"active,omitempty"`
}

type DataStore interface {
	Collection(clinicID string, table collection.Name) []collection.Record
	Get(clinicID string, table collection.Name, id string) (collection.Record, bool)
	Create(ctx context.Context, clinicID string, table collection.Name, rec collection.Record) (collection.Record, error)
	Update(ctx context.Context, clinicID string, table collection.Name, id string, patch collection.Record) (collection.Record, error)
	Delete(ctx context.Context, clinicID string, table collection.Name, id string) error
}

type Service struct {
	store  DataStore
	quotas clinic.ServiceInterface
}

func NewService(store DataStore, quotas clinic.ServiceInterface) *Service {
	return &Service{store: store, quotas: quotas}
}

func validRole(r string) bool {
	return r == auth.RoleAdmin || r == auth.RoleNormal
}

func validPermissions(perms map[string]bool) error {
	known := make(map[string]struct{}, len(auth.Modules()))
	for _, m := range auth.Modules() {
		known[m] = struct{}{}
	}
	for m := range perms {
		if _, ok := known[m]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownModule, m)
		}
	}
	return nil
}

// Sanitize strips credential material from a user record before it leaves
// the service.
func Sanitize(rec collection.Record) collection.Record {
	out := rec.Clone()
	delete(out, "password_hash")
	return out
}

// CreateUser provisions a staff account and its membership row, enforcing the
// clinic's user quota.
func (s *Service) CreateUser(ctx context.Context, clinicID string, req CreateUserRequest) (collection.Record, error) {
	if req.Username == "" {
		return nil, ErrMissingUsername
	}
	if req.Password == "" {
		return nil, ErrMissingPassword
	}
	role := req.Role
	if role == "" {
		role = auth.RoleNormal
	}
	if !validRole(role) {
		return nil, ErrInvalidRole
	}
	if err := validPermissions(req.Permissions); err != nil {
		return nil, err
	}

	for _, existing := range s.store.Collection(clinicID, collection.AppUsers) {
		if existing["username"] == req.Username {
			return nil, ErrUsernameTaken
		}
	}

	if err := s.quotas.CheckUserQuota(ctx, clinicID); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	rec := collection.Record{
		"username":      req.Username,
		"password_hash": hash,
		"role":          role,
		"active":        true,
	}
	if req.DisplayName != "" {
		rec["display_name"] = req.DisplayName
	}

	created, err := s.store.Create(ctx, clinicID, collection.AppUsers, rec)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	membership := collection.Record{
		"user_id":     created.ID(),
		"permissions": permissionsOrEmpty(req.Permissions),
	}
	if _, err := s.store.Create(ctx, clinicID, collection.ClinicUsers, membership); err != nil {
		return nil, fmt.Errorf("failed to create clinic membership: %w", err)
	}

	return Sanitize(created), nil
}

func permissionsOrEmpty(perms map[string]bool) map[string]bool {
	if perms == nil {
		return map[string]bool{}
	}
	return perms
}

func (s *Service) ListUsers(ctx context.Context, clinicID string) ([]collection.Record, error) {
	rows := s.store.Collection(clinicID, collection.AppUsers)
	out := make([]collection.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, Sanitize(r))
	}
	return out, nil
}

func (s *Service) GetUser(ctx context.Context, clinicID, id string) (collection.Record, error) {
	rec, ok := s.store.Get(clinicID, collection.AppUsers, id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return Sanitize(rec), nil
}

func (s *Service) UpdateUser(ctx context.Context, clinicID, id string, req UpdateUserRequest) (collection.Record, error) {
	if _, ok := s.store.Get(clinicID, collection.AppUsers, id); !ok {
		return nil, ErrUserNotFound
	}
	patch := collection.Record{}
	if req.DisplayName != nil {
		patch["display_name"] = *req.DisplayName
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return nil, ErrInvalidRole
		}
		patch["role"] = *req.Role
	}
	if req.Active != nil {
		patch["active"] = *req.Active
	}
	if len(patch) == 0 {
		rec, _ := s.store.Get(clinicID, collection.AppUsers, id)
		return Sanitize(rec), nil
	}

	updated, err := s.store.Update(ctx, clinicID, collection.AppUsers, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return Sanitize(updated), nil
}

// SetActive flips the account flag; a disabled account fails login with
// USER_DISABLED but keeps its history.
func (s *Service) SetActive(ctx context.Context, clinicID, id string, active bool) (collection.Record, error) {
	return s.UpdateUser(ctx, clinicID, id, UpdateUserRequest{Active: &active})
}

// ResetPassword replaces the stored bcrypt hash.
func (s *Service) ResetPassword(ctx context.Context, clinicID, id, password string) error {
	if password == "" {
		return ErrMissingPassword
	}
	if _, ok := s.store.Get(clinicID, collection.AppUsers, id); !ok {
		return ErrUserNotFound
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if _, err := s.store.Update(ctx, clinicID, collection.AppUsers, id, collection.Record{"password_hash": hash}); err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}

// GrantPermissions replaces the user's per-module permission map on the
// membership row. Takes effect at the next login.
func (s *Service) GrantPermissions(ctx context.Context, clinicID, userID string, perms map[string]bool) (collection.Record, error) {
	if err := validPermissions(perms); err != nil {
		return nil, err
	}

	var membership collection.Record
	for _, m := range s.store.Collection(clinicID, collection.ClinicUsers) {
		if m["user_id"] == userID {
			membership = m
			break
		}
	}
	if membership == nil {
		return nil, ErrUserNotFound
	}

	patch := collection.Record{"permissions": permissionsOrEmpty(perms)}
	updated, err := s.store.Update(ctx, clinicID, collection.ClinicUsers, membership.ID(), patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update permissions: %w", err)
	}
	return updated, nil
}

// DeleteUser removes the account and its membership row.
func (s *Service) DeleteUser(ctx context.Context, clinicID, id string) error {
	if _, ok := s.store.Get(clinicID, collection.AppUsers, id); !ok {
		return ErrUserNotFound
	}
	for _, m := range s.store.Collection(clinicID, collection.ClinicUsers) {
		if m["user_id"] == id {
			if err := s.store.Delete(ctx, clinicID, collection.ClinicUsers, m.ID()); err != nil {
				return fmt.Errorf("failed to delete clinic membership: %w", err)
			}
			break
		}
	}
	if err := s.store.Delete(ctx, clinicID, collection.AppUsers, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ServiceInterface defines the contract for staff account business logic
type ServiceInterface interface {
	CreateUser(ctx context.Context, clinicID string, req CreateUserRequest) (collection.Record, error)
	ListUsers(ctx context.Context, clinicID string) ([]collection.Record, error)
	GetUser(ctx context.Context, clinicID, id string) (collection.Record, error)
	UpdateUser(ctx context.Context, clinicID, id string, req UpdateUserRequest) (collection.Record, error)
	SetActive(ctx context.Context, clinicID, id string, active bool) (collection.Record, error)
	ResetPassword(ctx context.Context, clinicID, id, password string) error
	GrantPermissions(ctx context.Context, clinicID, userID string, perms map[string]bool) (collection.Record, error)
	DeleteUser(ctx context.Context, clinicID, id string) error
}

var _ ServiceInterface = (*Service)(nil)
