package config

import (
	"fmt"
	"strings"
	"time"
)

// VerifierMode selects the credential verifier implementation.
type VerifierMode string

const (
	// VerifierModeFirebase uses the Firebase Admin SDK: ID tokens are
	// verified and exchanged for Firebase session cookies. Requires
	// service-account credentials.
	VerifierModeFirebase VerifierMode = "firebase"
	// VerifierModeSecureToken verifies ID tokens against the
	// securetoken.google.com OIDC issuer and mints opaque sessions
	// persisted in Redis. No service account needed.
	VerifierModeSecureToken VerifierMode = "securetoken"
	// VerifierModeMock issues a fixed placeholder session artifact.
	// For demos and tests only; must never be selected in production.
	VerifierModeMock VerifierMode = "mock"
)

// UnmarshalText implements encoding.TextUnmarshaler for VerifierMode.
func (m *VerifierMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(string(text))
	switch v {
	case "firebase", "securetoken", "mock":
		*m = VerifierMode(v)
		return nil
	default:
		return fmt.Errorf("invalid VerifierMode: %q (valid options: firebase, securetoken, mock)", v)
	}
}

// SessionConfig controls the server-side session artifact.
type SessionConfig struct {
	// CookieName is the name of the session cookie.
	CookieName string `env:"COOKIE_NAME" envDefault:"__session"`

	// TTL is the validity window of a minted session artifact.
	TTL time.Duration `env:"TTL" envDefault:"120h"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Verifier determines which credential verifier to use.
	Verifier VerifierMode `env:"AUTH_VERIFIER" envDefault:"firebase"`

	// EdgeVerify makes the session gate verify the artifact at the edge
	// instead of checking cookie presence only. Slower but stricter.
	EdgeVerify bool `env:"AUTH_EDGE_VERIFY" envDefault:"false"`

	// Session artifact configuration.
	Session SessionConfig `envPrefix:"SESSION_"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.Session.CookieName == "" {
		a.Session.CookieName = "__session"
	}
	// Clamp the TTL to the provider ceiling: Firebase session cookies
	// accept between 5 minutes and 2 weeks.
	if a.Session.TTL < 5*time.Minute {
		a.Session.TTL = 5 * time.Minute
	}
	if a.Session.TTL > 14*24*time.Hour {
		a.Session.TTL = 14 * 24 * time.Hour
	}
}
