package testutil

import (
	"testing"
	"time"

	"github.com/vitacasa-care/community-service/internal/auth"
)

// TestAuthConfig returns the signing config used across tests.
func TestAuthConfig() auth.Config {
	return auth.Config{
		Issuer:   auth.DefaultIssuer,
		Secret:   "test-secret",
		TokenTTL: time.Hour,
	}
}

// CreateTestVerifier creates a verifier with a fixed test secret.
func CreateTestVerifier(t *testing.T) *auth.Verifier {
	t.Helper()
	return auth.NewVerifier(TestAuthConfig())
}

// AdminToken issues a token for an ADMIN principal of the given clinic.
func AdminToken(t *testing.T, ver *auth.Verifier, clinicID string) string {
	t.Helper()

	token, err := ver.IssueToken(&auth.Principal{
		UserID:   "admin-1",
		Username: "admin",
		Role:     auth.RoleAdmin,
		ClinicID: clinicID,
	})
	if err != nil {
		t.Fatalf("Failed to issue admin token: %v", err)
	}
	return token
}

// StaffToken issues a token for a NORMAL principal with the given permission
// map.
func StaffToken(t *testing.T, ver *auth.Verifier, clinicID string, perms map[string]bool) string {
	t.Helper()

	token, err := ver.IssueToken(&auth.Principal{
		UserID:      "staff-1",
		Username:    "staff",
		Role:        auth.RoleNormal,
		ClinicID:    clinicID,
		Permissions: perms,
	})
	if err != nil {
		t.Fatalf("Failed to issue staff token: %v", err)
	}
	return token
}
