package auth

import (
	"os"
	"time"
)

// Config holds auth configuration
type Config struct {
	Issuer   string
	Secret   string
	TokenTTL time.Duration
}

const DefaultIssuer = "vitacasa-community-service"

// LoadConfig reads config from env with sensible defaults. Override with
// AUTH_ISSUER, AUTH_SECRET and AUTH_TOKEN_TTL. AUTH_SECRET has no default:
// a missing secret surfaces as the ENV_INVALID login failure, never a silent
// fallback.
func LoadConfig() Config {
	issuer := os.Getenv("AUTH_ISSUER")
	if issuer == "" {
		issuer = DefaultIssuer
	}
	ttl := 12 * time.Hour
	if raw := os.Getenv("AUTH_TOKEN_TTL"); raw != "" {
		if parsed, err := time.ParseDuration(raw); err == nil {
			ttl = parsed
		}
	}
	return Config{
		Issuer:   issuer,
		Secret:   os.Getenv("AUTH_SECRET"),
		TokenTTL: ttl,
	}
}

// Valid reports whether the environment is configured well enough to issue
// and verify sessions.
func (c Config) Valid() bool {
	return c.Secret != "" && c.Issuer != ""
}
