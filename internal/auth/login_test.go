package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"
)

type mockUserLookup struct {
	findByUsernameFunc func(ctx context.Context, username string) (*UserRow, error)
	membershipFunc     func(ctx context.Context, userID string) (string, map[string]bool, error)
}

func (m *mockUserLookup) FindByUsername(ctx context.Context, username string) (*UserRow, error) {
	return m.findByUsernameFunc(ctx, username)
}

func (m *mockUserLookup) Membership(ctx context.Context, userID string) (string, map[string]bool, error) {
	return m.membershipFunc(ctx, userID)
}

type mockLoader struct {
	loadFunc func(ctx context.Context, clinicID string) error
}

func (m *mockLoader) Load(ctx context.Context, clinicID string) error {
	return m.loadFunc(ctx, clinicID)
}

type fakeNetErr struct{}

func (fakeNetErr) Error() string   { return "dial tcp: connection refused" }
func (fakeNetErr) Timeout() bool   { return false }
func (fakeNetErr) Temporary() bool { return true }

func testConfig() Config {
	return Config{Issuer: DefaultIssuer, Secret: "test-secret", TokenTTL: time.Hour}
}

func activeUser(t *testing.T, password string) *UserRow {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	return &UserRow{
		ID:           "user-1",
		Username:     "maria",
		DisplayName:  "Maria Souza",
		Role:         RoleNormal,
		PasswordHash: hash,
		Active:       true,
	}
}

func TestLogin_Success(t *testing.T) {
	user := activeUser(t, "s3cret")
	perms := map[string]bool{ModulePatients: true}
	loadedClinic := ""

	users := &mockUserLookup{
		findByUsernameFunc: func(ctx context.Context, username string) (*UserRow, error) {
			if username != "maria" {
				t.Errorf("Expected lookup for maria, got %s", username)
			}
			return user, nil
		},
		membershipFunc: func(ctx context.Context, userID string) (string, map[string]bool, error) {
			return "clinic-1", perms, nil
		},
	}
	loader := &mockLoader{
		loadFunc: func(ctx context.Context, clinicID string) error {
			loadedClinic = clinicID
			return nil
		},
	}

	cfg := testConfig()
	svc := NewService(cfg, users, NewVerifier(cfg), loader)

	session, err := svc.Login(context.Background(), "maria", "s3cret")
	if err != nil {
		t.Fatalf("Expected login to succeed, got %v", err)
	}

	if session.Token == "" {
		t.Errorf("Expected a session token")
	}
	if session.User.ID != "user-1" || session.User.Username != "maria" {
		t.Errorf("Unexpected session user: %+v", session.User)
	}
	if session.ClinicID != "clinic-1" {
		t.Errorf("Expected clinic-1, got %s", session.ClinicID)
	}
	if !session.Permissions[ModulePatients] {
		t.Errorf("Expected permissions to be carried into the session")
	}
	if loadedClinic != "clinic-1" {
		t.Errorf("Expected a post-login load for clinic-1, got %q", loadedClinic)
	}
}

func TestLogin_PresetFallbackWhenMembershipMapEmpty(t *testing.T) {
	user := activeUser(t, "s3cret")
	users := &mockUserLookup{
		findByUsernameFunc: func(ctx context.Context, username string) (*UserRow, error) {
			return user, nil
		},
		membershipFunc: func(ctx context.Context, userID string) (string, map[string]bool, error) {
			return "clinic-1", map[string]bool{}, nil
		},
	}

	cfg := testConfig()
	svc := NewService(cfg, users, NewVerifier(cfg), nil)
	svc.SetPresets(Presets{RoleNormal: {ModuleAgenda: true}})

	session, err := svc.Login(context.Background(), "maria", "s3cret")
	if err != nil {
		t.Fatalf("Expected login to succeed, got %v", err)
	}
	if !session.Permissions[ModuleAgenda] {
		t.Errorf("Expected preset permissions for an empty membership map, got %v", session.Permissions)
	}
}

func TestLogin_ExplicitMapOverridesPresets(t *testing.T) {
	user := activeUser(t, "s3cret")
	users := &mockUserLookup{
		findByUsernameFunc: func(ctx context.Context, username string) (*UserRow, error) {
			return user, nil
		},
		membershipFunc: func(ctx context.Context, userID string) (string, map[string]bool, error) {
			return "clinic-1", map[string]bool{ModulePatients: true}, nil
		},
	}

	cfg := testConfig()
	svc := NewService(cfg, users, NewVerifier(cfg), nil)
	svc.SetPresets(Presets{RoleNormal: {ModuleAgenda: true}})

	session, err := svc.Login(context.Background(), "maria", "s3cret")
	if err != nil {
		t.Fatalf("Expected login to succeed, got %v", err)
	}
	if session.Permissions[ModuleAgenda] {
		t.Errorf("Expected the explicit membership map to win over presets")
	}
	if !session.Permissions[ModulePatients] {
		t.Errorf("Expected explicit permissions to survive, got %v", session.Permissions)
	}
}

func TestLogin_LoadFailureDoesNotFailLogin(t *testing.T) {
	user := activeUser(t, "s3cret")
	users := &mockUserLookup{
		findByUsernameFunc: func(ctx context.Context, username string) (*UserRow, error) {
			return user, nil
		},
		membershipFunc: func(ctx context.Context, userID string) (string, map[string]bool, error) {
			return "clinic-1", nil, nil
		},
	}
	loader := &mockLoader{
		loadFunc: func(ctx context.Context, clinicID string) error {
			return errors.New("backend unreachable")
		},
	}

	cfg := testConfig()
	svc := NewService(cfg, users, NewVerifier(cfg), loader)

	if _, err := svc.Login(context.Background(), "maria", "s3cret"); err != nil {
		t.Errorf("Expected login to survive a load failure, got %v", err)
	}
}

func TestLogin_FailureCodes(t *testing.T) {
	user := activeUser(t, "s3cret")
	disabled := activeUser(t, "s3cret")
	disabled.Active = false

	tests := []struct {
		name     string
		cfg      Config
		password string
		users    *mockUserLookup
		want     Code
	}{
		{
			name:     "missing secret",
			cfg:      Config{Issuer: DefaultIssuer},
			password: "s3cret",
			users:    &mockUserLookup{},
			want:     CodeEnvInvalid,
		},
		{
			name:     "user not found",
			cfg:      testConfig(),
			password: "s3cret",
			users: &mockUserLookup{
				findByUsernameFunc: func(ctx context.Context, username string) (*UserRow, error) {
					return nil, sql.ErrNoRows
				},
			},
			want: CodeUserNotFound,
		},
		{
			name:     "lookup connection error",
			cfg:      testConfig(),
			password: "s3cret",
			users: &mockUserLookup{
				findByUsernameFunc: func(ctx context.Context, username string) (*UserRow, error) {
					return nil, fakeNetErr{}
				},
			},
			want: CodeConnError,
		},
		{
			name:     "user disabled",
			cfg:      testConfig(),
			password: "s3cret",
			users: &mockUserLookup{
				findByUsernameFunc: func(ctx context.Context, username string) (*UserRow, error) {
					return disabled, nil
				},
			},
			want: CodeUserDisabled,
		},
		{
			name:     "password mismatch",
			cfg:      testConfig(),
			password: "wrong",
			users: &mockUserLookup{
				findByUsernameFunc: func(ctx context.Context, username string) (*UserRow, error) {
					return user, nil
				},
			},
			want: CodePasswordMismatch,
		},
		{
			name:     "no clinic membership",
			cfg:      testConfig(),
			password: "s3cret",
			users: &mockUserLookup{
				findByUsernameFunc: func(ctx context.Context, username string) (*UserRow, error) {
					return user, nil
				},
				membershipFunc: func(ctx context.Context, userID string) (string, map[string]bool, error) {
					return "", nil, sql.ErrNoRows
				},
			},
			want: CodeNoClinicMembership,
		},
		{
			name:     "unexpected lookup error",
			cfg:      testConfig(),
			password: "s3cret",
			users: &mockUserLookup{
				findByUsernameFunc: func(ctx context.Context, username string) (*UserRow, error) {
					return nil, errors.New("syntax error")
				},
			},
			want: CodeDBError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.cfg, tt.users, NewVerifier(tt.cfg), nil)

			session, err := svc.Login(context.Background(), "maria", tt.password)
			if err == nil {
				t.Fatalf("Expected login to fail")
			}
			if session != nil {
				t.Errorf("Expected no partial session, got %+v", session)
			}
			if got := CodeOf(err); got != tt.want {
				t.Errorf("Expected code %s, got %s", tt.want, got)
			}
		})
	}
}
