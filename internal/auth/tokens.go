package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// Staff roles. ADMIN bypasses the module permission map entirely.
const (
	RoleAdmin  = "ADMIN"
	RoleNormal = "NORMAL"
)

// Principal holds the identity extracted from a validated session token.
type Principal struct {
	UserID      string
	Username    string
	Role        string
	ClinicID    string
	Permissions map[string]bool
}

var (
	ErrNoToken      = errors.New("no token provided")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type sessionClaims struct {
	jwt.RegisteredClaims
	Username    string          `json:"username"`
	Role        string          `json:"role"`
	ClinicID    string          `json:"clinic_id"`
	Permissions map[string]bool `json:"permissions,omitempty"`
}

// Verifier issues and validates HS256 session tokens. Credential checks live
// in Service; the verifier only deals with the token format.
type Verifier struct {
	cfg Config
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{cfg: cfg}
}

// IssueToken mints a session token for a principal.
func (v *Verifier) IssueToken(pr *Principal) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.cfg.Issuer,
			Subject:   pr.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.cfg.TokenTTL)),
		},
		Username:    pr.Username,
		Role:        pr.Role,
		ClinicID:    pr.ClinicID,
		Permissions: pr.Permissions,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(v.cfg.Secret))
}

// ParseAndVerifyToken validates a bearer token and returns its Principal.
func (v *Verifier) ParseAndVerifyToken(tokenString string) (*Principal, error) {
	if tokenString == "" {
		return nil, ErrNoToken
	}

	var claims sessionClaims
	parsed, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(v.cfg.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Issuer != v.cfg.Issuer {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Principal{
		UserID:      claims.Subject,
		Username:    claims.Username,
		Role:        claims.Role,
		ClinicID:    claims.ClinicID,
		Permissions: claims.Permissions,
	}, nil
}
