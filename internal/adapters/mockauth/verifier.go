package mockauth

// Package mockauth is a fixed-artifact verifier for demos and local
// development without provider credentials. Never enable outside dev;
// the bootstrap refuses to select it when IS_DEV is false.

import (
	"context"
	"log/slog"
	"time"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

// Artifact is the fixed session artifact every mint returns.
const Artifact = "mock-session-cookie"

// DefaultPrincipal is handed back for any valid check.
var DefaultPrincipal = domainauth.Principal{
	UID:           "mock-user",
	Email:         "demo@campushub.test",
	DisplayName:   "Demo User",
	EmailVerified: true,
	Role:          domainauth.RoleStudent,
}

// Verifier accepts any non-empty ID token and recognizes only the
// fixed artifact.
type Verifier struct {
	logger    *slog.Logger
	principal domainauth.Principal
}

var _ ports.CredentialVerifier = (*Verifier)(nil)

func NewVerifier(logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{logger: logger, principal: DefaultPrincipal}
}

// WithPrincipal overrides the canned principal, e.g. to demo an admin.
func (v *Verifier) WithPrincipal(p domainauth.Principal) *Verifier {
	v.principal = p
	return v
}

func (v *Verifier) MintSession(ctx context.Context, idToken string, _ time.Duration) (string, domainauth.Principal, error) {
	if idToken == "" {
		return "", domainauth.Principal{}, ports.ErrInvalidSession
	}
	v.logger.WarnContext(ctx, "minting mock session artifact; auth is bypassed")
	return Artifact, v.principal, nil
}

func (v *Verifier) CheckSession(_ context.Context, artifact string) (domainauth.Principal, error) {
	if artifact != Artifact {
		return domainauth.Principal{}, ports.ErrInvalidSession
	}
	return v.principal, nil
}

func (v *Verifier) RevokeSession(context.Context, string) error { return nil }
