package auth

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log"
	"net"

	"golang.org/x/crypto/bcrypt"
)

// Code is the discriminated login failure code. Every failure mode gets its
// own code; callers may still present them identically.
type Code string

const (
	CodeEnvInvalid         Code = "ENV_INVALID"
	CodeConnError          Code = "CONN_ERROR"
	CodeUserNotFound       Code = "USER_NOT_FOUND"
	CodeUserDisabled       Code = "USER_DISABLED"
	CodePasswordMismatch   Code = "PASSWORD_MISMATCH"
	CodeNoClinicMembership Code = "NO_CLINIC_MEMBERSHIP"
	CodeDBError            Code = "DB_ERROR"
)

// LoginError carries a failure code alongside the underlying cause.
type LoginError struct {
	Code Code
	Err  error
}

func (e *LoginError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login failed (%s): %v", e.Code, e.Err)
	}
	return fmt.Sprintf("login failed (%s)", e.Code)
}

func (e *LoginError) Unwrap() error { return e.Err }

// CodeOf extracts the login failure code from an error, defaulting to
// DB_ERROR for anything unrecognised.
func CodeOf(err error) Code {
	var le *LoginError
	if errors.As(err, &le) {
		return le.Code
	}
	return CodeDBError
}

// UserRow is the stored staff account, as read from the backend.
type UserRow struct {
	ID           string
	Username     string
	DisplayName  string
	Role         string
	PasswordHash string
	Active       bool
}

// PublicUser is the session-facing view of a staff account.
type PublicUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// Session is the result of a successful login. It is only ever returned
// whole: no failure mode yields a partial session.
type Session struct {
	Token       string          `json:"token"`
	User        PublicUser      `json:"user"`
	ClinicID    string          `json:"clinic_id"`
	Permissions map[string]bool `json:"permissions"`
}

var (
	errUserNotFound = errors.New("user not found")
	errNoMembership = errors.New("no clinic membership")
)

// UserLookup resolves staff accounts and clinic memberships.
type UserLookup interface {
	FindByUsername(ctx context.Context, username string) (*UserRow, error)
	Membership(ctx context.Context, userID string) (clinicID string, permissions map[string]bool, err error)
}

// Loader is whatever gets all clinic collections into memory after login.
type Loader interface {
	Load(ctx context.Context, clinicID string) error
}

// Service performs credential verification. Passwords are compared against a
// bcrypt hash on the server; raw or reversibly-encoded passwords are never
// stored or compared anywhere else.
type Service struct {
	cfg      Config
	users    UserLookup
	verifier *Verifier
	loader   Loader
	presets  Presets
}

func NewService(cfg Config, users UserLookup, verifier *Verifier, loader Loader) *Service {
	return &Service{cfg: cfg, users: users, verifier: verifier, loader: loader}
}

// SetPresets wires per-role permission defaults, applied when a membership
// row carries no explicit map. Call before serving.
func (s *Service) SetPresets(p Presets) { s.presets = p }

// Login verifies credentials and returns a complete session or a coded
// failure. A successful login triggers a full collection load for the
// clinic; a load failure does not fail the login, the store falls back to
// its mirror.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if !s.cfg.Valid() {
		return nil, &LoginError{Code: CodeEnvInvalid}
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, classifyLookupErr(err)
	}
	if !user.Active {
		return nil, &LoginError{Code: CodeUserDisabled}
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, &LoginError{Code: CodePasswordMismatch, Err: err}
	}

	clinicID, permissions, err := s.users.Membership(ctx, user.ID)
	if err != nil {
		return nil, classifyMembershipErr(err)
	}
	if len(permissions) == 0 && s.presets != nil {
		permissions = s.presets.For(user.Role)
	}

	principal := &Principal{
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
		ClinicID:    clinicID,
		Permissions: permissions,
	}
	token, err := s.verifier.IssueToken(principal)
	if err != nil {
		return nil, &LoginError{Code: CodeDBError, Err: err}
	}

	if s.loader != nil {
		if err := s.loader.Load(ctx, clinicID); err != nil {
			log.Printf("post-login load for clinic %s: %v", clinicID, err)
		}
	}

	return &Session{
		Token: token,
		User: PublicUser{
			ID:          user.ID,
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Role:        user.Role,
		},
		ClinicID:    clinicID,
		Permissions: permissions,
	}, nil
}

func classifyLookupErr(err error) error {
	switch {
	case errors.Is(err, errUserNotFound), errors.Is(err, sql.ErrNoRows):
		return &LoginError{Code: CodeUserNotFound, Err: err}
	case isConnErr(err):
		return &LoginError{Code: CodeConnError, Err: err}
	default:
		return &LoginError{Code: CodeDBError, Err: err}
	}
}

func classifyMembershipErr(err error) error {
	switch {
	case errors.Is(err, errNoMembership), errors.Is(err, sql.ErrNoRows):
		return &LoginError{Code: CodeNoClinicMembership, Err: err}
	case isConnErr(err):
		return &LoginError{Code: CodeConnError, Err: err}
	default:
		return &LoginError{Code: CodeDBError, Err: err}
	}
}

func isConnErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// HashPassword produces the stored form of a password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
