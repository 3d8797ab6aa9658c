package auth

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerifyToken(t *testing.T) {
	cfg := testConfig()
	ver := NewVerifier(cfg)

	token, err := ver.IssueToken(&Principal{
		UserID:      "user-1",
		Username:    "maria",
		Role:        RoleNormal,
		ClinicID:    "clinic-1",
		Permissions: map[string]bool{ModuleAgenda: true},
	})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	pr, err := ver.ParseAndVerifyToken(token)
	if err != nil {
		t.Fatalf("Failed to verify token: %v", err)
	}
	if pr.UserID != "user-1" || pr.Username != "maria" {
		t.Errorf("Unexpected principal: %+v", pr)
	}
	if pr.Role != RoleNormal || pr.ClinicID != "clinic-1" {
		t.Errorf("Unexpected role or clinic: %+v", pr)
	}
	if !pr.Permissions[ModuleAgenda] {
		t.Errorf("Expected permissions to roundtrip")
	}
}

func TestParseAndVerifyToken_EmptyToken(t *testing.T) {
	ver := NewVerifier(testConfig())

	if _, err := ver.ParseAndVerifyToken(""); !errors.Is(err, ErrNoToken) {
		t.Errorf("Expected ErrNoToken, got %v", err)
	}
}

func TestParseAndVerifyToken_WrongSecret(t *testing.T) {
	issuing := testConfig()
	token, err := NewVerifier(issuing).IssueToken(&Principal{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	other := issuing
	other.Secret = "different-secret"

	if _, err := NewVerifier(other).ParseAndVerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAndVerifyToken_Expired(t *testing.T) {
	cfg := testConfig()
	cfg.TokenTTL = -time.Minute
	token, err := NewVerifier(cfg).IssueToken(&Principal{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	cfg.TokenTTL = time.Hour
	if _, err := NewVerifier(cfg).ParseAndVerifyToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Expected ErrTokenExpired, got %v", err)
	}
}

func TestParseAndVerifyToken_WrongIssuer(t *testing.T) {
	issuing := testConfig()
	issuing.Issuer = "someone-else"
	token, err := NewVerifier(issuing).IssueToken(&Principal{UserID: "user-1"})
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}

	if _, err := NewVerifier(testConfig()).ParseAndVerifyToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}
