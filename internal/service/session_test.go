package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

func TestSessionsEstablish(t *testing.T) {
	verifier := &fakeVerifier{}
	audit := &fakeAudit{}
	sessions := NewSessions(verifier, audit, 120*time.Hour, nil)

	artifact, err := sessions.Establish(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, "artifact-for-id-token", artifact)
	assert.Equal(t, []domainauth.AuditAction{domainauth.AuditSessionMint}, audit.actions())
	assert.Equal(t, "uid-1", audit.events[0].UID)
}

func TestSessionsEstablishUsesConfiguredTTL(t *testing.T) {
	var gotTTL time.Duration
	verifier := &fakeVerifier{
		mintFunc: func(_ context.Context, _ string, ttl time.Duration) (string, domainauth.Principal, error) {
			gotTTL = ttl
			return "artifact", domainauth.Principal{UID: "uid-1"}, nil
		},
	}
	sessions := NewSessions(verifier, nil, 120*time.Hour, nil)

	_, err := sessions.Establish(context.Background(), "id-token")
	require.NoError(t, err)
	assert.Equal(t, 120*time.Hour, gotTTL)
}

func TestSessionsEstablishInvalidToken(t *testing.T) {
	verifier := &fakeVerifier{
		mintFunc: func(context.Context, string, time.Duration) (string, domainauth.Principal, error) {
			return "", domainauth.Principal{}, ports.ErrInvalidSession
		},
	}
	audit := &fakeAudit{}
	sessions := NewSessions(verifier, audit, time.Hour, nil)

	_, err := sessions.Establish(context.Background(), "forged")
	assert.ErrorIs(t, err, ports.ErrInvalidSession)
	assert.Empty(t, audit.events, "failed mints are not audited")
}

func TestSessionsCheck(t *testing.T) {
	verifier := &fakeVerifier{}
	sessions := NewSessions(verifier, nil, time.Hour, nil)

	principal, err := sessions.Check(context.Background(), "artifact")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", principal.UID)

	_, err = sessions.Check(context.Background(), "")
	assert.ErrorIs(t, err, ports.ErrInvalidSession)
}

func TestSessionsRevoke(t *testing.T) {
	verifier := &fakeVerifier{}
	audit := &fakeAudit{}
	sessions := NewSessions(verifier, audit, time.Hour, nil)

	sessions.Revoke(context.Background(), "artifact")
	assert.Equal(t, []string{"artifact"}, verifier.revoked)
	assert.Equal(t, []domainauth.AuditAction{domainauth.AuditSessionRevoke}, audit.actions())
	assert.Empty(t, audit.events[0].UID, "revocation does not verify the artifact")

	// Empty artifacts are skipped entirely.
	sessions.Revoke(context.Background(), "")
	assert.Len(t, verifier.revoked, 1)
}

func TestSessionsRevokeFailureIsSwallowed(t *testing.T) {
	verifier := &fakeVerifier{revokeErr: errors.New("provider unavailable")}
	audit := &fakeAudit{}
	sessions := NewSessions(verifier, audit, time.Hour, nil)

	// Must not panic or error even when the provider rejects the revoke.
	sessions.Revoke(context.Background(), "artifact")
	assert.Empty(t, verifier.revoked)
	assert.Empty(t, audit.events, "failed revocations are not audited")
}
