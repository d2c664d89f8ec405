package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"time"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
)

// CredentialVerifier converts a short-lived identity token into a
// long-lived session artifact and validates artifacts presented back.
/// Implementations are selected by configuration at startup: the Firebase
// Admin SDK, the securetoken OIDC issuer, or a fixed mock for demos.
type CredentialVerifier interface {
	// MintSession validates idToken against the credential store and
	// returns an opaque session artifact valid for ttl, along with the
	// principal the token proved. The principal comes out of the same
	// verification that minting already performs.
	MintSession(ctx context.Context, idToken string, ttl time.Duration) (string, domainauth.Principal, error)

	// CheckSession validates a session artifact and returns the principal
	// it stands for. Returns ErrInvalidSession for unknown, expired, or
	// malformed artifacts.
	CheckSession(ctx context.Context, artifact string) (domainauth.Principal, error)

	// RevokeSession invalidates a session artifact server-side where the
	// implementation supports it. Revoking an unknown artifact is not an
	// error.
	RevokeSession(ctx context.Context, artifact string) error
}

// IdentitySession is what the credential store hands back after a
// successful password operation. The IDToken is short-lived and never
// persisted; the RefreshToken stays with the caller.
type IdentitySession struct {
	UID          string
	Email        string
	DisplayName  string
	PhotoURL     string
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// AccountUpdate carries the identity-provider-side profile fields.
// Empty strings mean "leave unchanged".
type AccountUpdate struct {
	DisplayName string
	PhotoURL    string
}

// IdentityClient is the password-credential surface of the external
// credential store (the Identity Toolkit REST API).
type IdentityClient interface {
	// SignIn verifies an email/password pair and returns a fresh identity session.
	SignIn(ctx context.Context, email, password string) (IdentitySession, error)

	// SignUp creates a new account and returns its identity session.
	SignUp(ctx context.Context, email, password string) (IdentitySession, error)

	// UpdateAccount sets provider-side profile fields for the holder of idToken.
	UpdateAccount(ctx context.Context, idToken string, upd AccountUpdate) error

	// Lookup resolves the principal behind idToken, including the
	// email-verified flag.
	Lookup(ctx context.Context, idToken string) (domainauth.Principal, error)

	// SendPasswordReset sends a password-reset email.
	SendPasswordReset(ctx context.Context, email string) error

	// SendEmailVerification sends a verification email to the holder of idToken.
	SendEmailVerification(ctx context.Context, idToken string) error
}

// ProfileStore persists the mirrored profile documents.
type ProfileStore interface {
	Create(ctx context.Context, profile domainauth.Profile) error
	Get(ctx context.Context, uid string) (domainauth.Profile, error)
	Merge(ctx context.Context, uid string, upd domainauth.ProfileUpdate) error
	TouchLastLogin(ctx context.Context, uid string) error
}

// ProfileCache holds short-lived profile snapshots keyed by uid.
type ProfileCache interface {
	Get(ctx context.Context, uid string) (domainauth.Profile, bool, error)
	Put(ctx context.Context, profile domainauth.Profile) error
	Invalidate(ctx context.Context, uid string) error
}

// SessionStore persists opaque server-side sessions (securetoken mode).
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// AuditLog records auth lifecycle events.
type AuditLog interface {
	Record(ctx context.Context, event domainauth.AuditEvent) error
}
