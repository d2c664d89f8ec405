package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

// Sessions orchestrates session-artifact minting, validation, and
// revocation for the exchange endpoint and the gate's strict mode.
type Sessions struct {
	verifier ports.CredentialVerifier
	audit    ports.AuditLog
	logger   *slog.Logger
	ttl      time.Duration
	now      func() time.Time
}

// NewSessions wires the configured verifier with the session TTL.
// Audit may be nil.
func NewSessions(verifier ports.CredentialVerifier, audit ports.AuditLog, ttl time.Duration, logger *slog.Logger) *Sessions {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sessions{
		verifier: verifier,
		audit:    audit,
		logger:   logger,
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL reports the configured session lifetime.
func (s *Sessions) TTL() time.Duration { return s.ttl }

// Establish exchanges a fresh ID token for a session artifact and
// records the mint in the audit trail.
func (s *Sessions) Establish(ctx context.Context, idToken string) (string, error) {
	artifact, principal, err := s.verifier.MintSession(ctx, idToken, s.ttl)
	if err != nil {
		return "", fmt.Errorf("establish session: %w", err)
	}

	s.recordAudit(ctx, principal.UID, domainauth.AuditSessionMint)
	return artifact, nil
}

// Check validates an artifact and returns its principal.
func (s *Sessions) Check(ctx context.Context, artifact string) (domainauth.Principal, error) {
	return s.verifier.CheckSession(ctx, artifact)
}

// Revoke invalidates the artifact server-side. Failures are logged;
// the caller clears the cookie regardless. The audit row carries no
// UID since revocation does not verify the artifact.
func (s *Sessions) Revoke(ctx context.Context, artifact string) {
	if artifact == "" {
		return
	}

	if err := s.verifier.RevokeSession(ctx, artifact); err != nil {
		s.logger.WarnContext(ctx, "session revocation failed", "error", err)
		return
	}
	s.recordAudit(ctx, "", domainauth.AuditSessionRevoke)
}

func (s *Sessions) recordAudit(ctx context.Context, uid string, action domainauth.AuditAction) {
	if s.audit == nil {
		return
	}
	event := domainauth.AuditEvent{UID: uid, Action: action, OccurredAt: s.now()}
	if err := s.audit.Record(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit record failed", "action", action, "error", err)
	}
}
