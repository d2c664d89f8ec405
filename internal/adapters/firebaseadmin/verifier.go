package firebaseadmin

// Package firebaseadmin implements the credential verifier on top of the
// Firebase Admin SDK. Session artifacts are Firebase session cookies:
// self-contained JWTs minted from a verified ID token, so nothing is
// persisted server-side.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	fbauth "firebase.google.com/go/v4/auth"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

// tokenVerifier is the subset of *firebase.google.com/go/v4/auth.Client
// the verifier needs. Narrowed for testability.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	SessionCookie(ctx context.Context, idToken string, expiresIn time.Duration) (string, error)
	VerifySessionCookie(ctx context.Context, sessionCookie string) (*fbauth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// Verifier implements ports.CredentialVerifier using the admin SDK.
type Verifier struct {
	client tokenVerifier
	logger *slog.Logger
}

var _ ports.CredentialVerifier = (*Verifier)(nil)

// NewVerifier wraps an admin auth client. The client comes from the SDK
// bootstrap; this constructor never performs network calls itself.
func NewVerifier(client *fbauth.Client, logger *slog.Logger) (*Verifier, error) {
	if client == nil {
		return nil, errors.New("firebaseadmin: auth client is required")
	}
	return newVerifier(client, logger), nil
}

func newVerifier(client tokenVerifier, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{client: client, logger: logger}
}

func (v *Verifier) MintSession(ctx context.Context, idToken string, ttl time.Duration) (string, domainauth.Principal, error) {
	if idToken == "" {
		return "", domainauth.Principal{}, fmt.Errorf("mint session: %w", ports.ErrInvalidSession)
	}

	tok, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", domainauth.Principal{}, fmt.Errorf("verify id token: %w: %w", ports.ErrInvalidSession, err)
	}

	cookie, err := v.client.SessionCookie(ctx, idToken, ttl)
	if err != nil {
		return "", domainauth.Principal{}, fmt.Errorf("mint session cookie: %w", err)
	}
	return cookie, principalFromToken(tok), nil
}

func (v *Verifier) CheckSession(ctx context.Context, artifact string) (domainauth.Principal, error) {
	if artifact == "" {
		return domainauth.Principal{}, ports.ErrInvalidSession
	}

	tok, err := v.client.VerifySessionCookie(ctx, artifact)
	if err != nil {
		return domainauth.Principal{}, fmt.Errorf("%w: %w", ports.ErrInvalidSession, err)
	}
	return principalFromToken(tok), nil
}

// RevokeSession invalidates all refresh tokens for the session's
// principal, which also invalidates outstanding session cookies on the
// next revocation-aware check. An unverifiable artifact is treated as
// already revoked.
func (v *Verifier) RevokeSession(ctx context.Context, artifact string) error {
	if artifact == "" {
		return nil
	}

	tok, err := v.client.VerifySessionCookie(ctx, artifact)
	if err != nil {
		v.logger.DebugContext(ctx, "revoke of unverifiable session artifact ignored", "error", err)
		return nil
	}

	if err := v.client.RevokeRefreshTokens(ctx, tok.UID); err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

// principalFromToken maps session-cookie claims into a domain principal.
func principalFromToken(tok *fbauth.Token) domainauth.Principal {
	p := domainauth.Principal{UID: tok.UID}
	if v, ok := tok.Claims["email"].(string); ok {
		p.Email = v
	}
	if v, ok := tok.Claims["email_verified"].(bool); ok {
		p.EmailVerified = v
	}
	if v, ok := tok.Claims["name"].(string); ok {
		p.DisplayName = v
	}
	if v, ok := tok.Claims["picture"].(string); ok {
		p.PhotoURL = v
	}
	if v, ok := tok.Claims["role"].(string); ok {
		p.Role = domainauth.Role(v)
	} else if admin, ok := tok.Claims["admin"].(bool); ok && admin {
		p.Role = domainauth.RoleAdmin
	}
	return p
}
