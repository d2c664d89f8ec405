package securetoken

// Package securetoken implements the credential verifier against the
// securetoken.google.com OIDC issuer. Firebase ID tokens are standard
// OIDC ID tokens, so they verify with go-oidc without the admin SDK or
// a service account. Session artifacts are opaque IDs backed by the
// session store, which makes revocation immediate.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

const issuerBase = "https://securetoken.google.com/"

// tokenClaims is the subset of securetoken ID-token claims we use.
type tokenClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
	Role          string `json:"role"`
	Admin         bool   `json:"admin"`
}

// verifyFunc validates a raw ID token and returns its claims.
type verifyFunc func(ctx context.Context, rawIDToken string) (tokenClaims, error)

// Verifier implements ports.CredentialVerifier with OIDC token
// verification and store-backed opaque sessions.
type Verifier struct {
	verify   verifyFunc
	sessions ports.SessionStore
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

var _ ports.CredentialVerifier = (*Verifier)(nil)

// NewVerifier discovers the securetoken issuer for projectID and wires
// the session store. Discovery performs one network round trip.
func NewVerifier(ctx context.Context, projectID string, sessions ports.SessionStore, logger *slog.Logger) (*Verifier, error) {
	if projectID == "" {
		return nil, fmt.Errorf("securetoken: project ID is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("securetoken: session store is required")
	}

	provider, err := gooidc.NewProvider(ctx, issuerBase+projectID)
	if err != nil {
		return nil, fmt.Errorf("securetoken: discover issuer: %w", err)
	}
	oidcVerifier := provider.Verifier(&gooidc.Config{ClientID: projectID})

	verify := func(ctx context.Context, raw string) (tokenClaims, error) {
		tok, err := oidcVerifier.Verify(ctx, raw)
		if err != nil {
			return tokenClaims{}, err
		}
		var claims tokenClaims
		if err := tok.Claims(&claims); err != nil {
			return tokenClaims{}, fmt.Errorf("parse claims: %w", err)
		}
		return claims, nil
	}
	return newVerifier(verify, sessions, logger), nil
}

func newVerifier(verify verifyFunc, sessions ports.SessionStore, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{
		verify:   verify,
		sessions: sessions,
		logger:   logger,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (v *Verifier) MintSession(ctx context.Context, idToken string, ttl time.Duration) (string, domainauth.Principal, error) {
	if idToken == "" {
		return "", domainauth.Principal{}, fmt.Errorf("mint session: %w", ports.ErrInvalidSession)
	}

	claims, err := v.verify(ctx, idToken)
	if err != nil {
		return "", domainauth.Principal{}, fmt.Errorf("verify id token: %w: %w", ports.ErrInvalidSession, err)
	}

	sess := domainauth.Session{
		ID:            v.newID(),
		UID:           claims.Subject,
		Email:         claims.Email,
		DisplayName:   claims.Name,
		EmailVerified: claims.EmailVerified,
		Role:          roleFromClaims(claims),
		ExpiresAt:     v.now().Add(ttl),
	}
	if err := v.sessions.Save(ctx, sess); err != nil {
		return "", domainauth.Principal{}, fmt.Errorf("save session: %w", err)
	}
	return sess.ID, sess.Principal(), nil
}

func (v *Verifier) CheckSession(ctx context.Context, artifact string) (domainauth.Principal, error) {
	if artifact == "" {
		return domainauth.Principal{}, ports.ErrInvalidSession
	}

	sess, err := v.sessions.Get(ctx, artifact)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("%w: %w", ports.ErrInvalidSession, err)
	}
	if sess.Expired(v.now()) {
		// Best effort; the store TTL reaps it regardless.
		if err := v.sessions.Delete(ctx, artifact); err != nil {
			v.logger.DebugContext(ctx, "delete of expired session failed", "error", err)
		}
		return domainauth.Principal{}, ports.ErrInvalidSession
	}
	return sess.Principal(), nil
}

// RevokeSession drops the stored session. Unknown artifacts are treated
// as already revoked.
func (v *Verifier) RevokeSession(ctx context.Context, artifact string) error {
	if artifact == "" {
		return nil
	}
	if err := v.sessions.Delete(ctx, artifact); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func roleFromClaims(claims tokenClaims) domainauth.Role {
	if claims.Role != "" {
		return domainauth.Role(claims.Role)
	}
	if claims.Admin {
		return domainauth.RoleAdmin
	}
	return ""
}
