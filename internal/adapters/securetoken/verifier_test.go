package securetoken

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

// memSessions is an in-memory ports.SessionStore.
type memSessions struct {
	sessions map[string]domainauth.Session
	saveErr  error
}

func newMemSessions() *memSessions {
	return &memSessions{sessions: map[string]domainauth.Session{}}
}

var _ ports.SessionStore = (*memSessions)(nil)

func (m *memSessions) Save(_ context.Context, sess domainauth.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.sessions[sess.ID] = sess
	return nil
}

func (m *memSessions) Get(_ context.Context, id string) (domainauth.Session, error) {
	sess, ok := m.sessions[id]
	if !ok {
		return domainauth.Session{}, errors.New("not found")
	}
	return sess, nil
}

func (m *memSessions) Delete(_ context.Context, id string) error {
	delete(m.sessions, id)
	return nil
}

func staticVerify(claims tokenClaims, err error) verifyFunc {
	return func(context.Context, string) (tokenClaims, error) {
		return claims, err
	}
}

func TestMintSessionStoresOpaqueArtifact(t *testing.T) {
	store := newMemSessions()
	v := newVerifier(staticVerify(tokenClaims{
		Subject:       "uid-1",
		Email:         "alice@example.edu",
		EmailVerified: true,
		Name:          "Alice",
	}, nil), store, nil)
	v.newID = func() string { return "artifact-1" }
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	v.now = func() time.Time { return base }

	artifact, principal, err := v.MintSession(context.Background(), "id-token", 120*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "artifact-1", artifact)
	assert.Equal(t, "uid-1", principal.UID)
	assert.Equal(t, "alice@example.edu", principal.Email)

	sess := store.sessions["artifact-1"]
	assert.Equal(t, "uid-1", sess.UID)
	assert.Equal(t, "alice@example.edu", sess.Email)
	assert.True(t, sess.EmailVerified)
	assert.Equal(t, base.Add(120*time.Hour), sess.ExpiresAt)
}

func TestMintSessionRejectsBadToken(t *testing.T) {
	v := newVerifier(staticVerify(tokenClaims{}, errors.New("oidc: token is expired")), newMemSessions(), nil)

	_, _, err := v.MintSession(context.Background(), "stale", time.Hour)
	assert.ErrorIs(t, err, ports.ErrInvalidSession)

	_, _, err = v.MintSession(context.Background(), "", time.Hour)
	assert.ErrorIs(t, err, ports.ErrInvalidSession)
}

func TestMintSessionStoreFailure(t *testing.T) {
	store := newMemSessions()
	store.saveErr = errors.New("redis down")
	v := newVerifier(staticVerify(tokenClaims{Subject: "uid-1"}, nil), store, nil)

	_, _, err := v.MintSession(context.Background(), "id-token", time.Hour)
	assert.ErrorContains(t, err, "save session")
}

func TestCheckSessionReturnsPrincipal(t *testing.T) {
	store := newMemSessions()
	store.sessions["artifact-1"] = domainauth.Session{
		ID:        "artifact-1",
		UID:       "uid-1",
		Email:     "alice@example.edu",
		Role:      domainauth.RoleAdmin,
		ExpiresAt: time.Now().Add(time.Hour),
	}
	v := newVerifier(nil, store, nil)

	p, err := v.CheckSession(context.Background(), "artifact-1")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", p.UID)
	assert.True(t, p.IsAdmin())
}

func TestCheckSessionExpired(t *testing.T) {
	store := newMemSessions()
	store.sessions["artifact-1"] = domainauth.Session{
		ID:        "artifact-1",
		UID:       "uid-1",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	v := newVerifier(nil, store, nil)

	_, err := v.CheckSession(context.Background(), "artifact-1")
	assert.ErrorIs(t, err, ports.ErrInvalidSession)
	assert.Empty(t, store.sessions, "expired session should be dropped")
}

func TestCheckSessionUnknown(t *testing.T) {
	v := newVerifier(nil, newMemSessions(), nil)

	_, err := v.CheckSession(context.Background(), "no-such")
	assert.ErrorIs(t, err, ports.ErrInvalidSession)

	_, err = v.CheckSession(context.Background(), "")
	assert.ErrorIs(t, err, ports.ErrInvalidSession)
}

func TestRevokeSession(t *testing.T) {
	store := newMemSessions()
	store.sessions["artifact-1"] = domainauth.Session{ID: "artifact-1", UID: "uid-1"}
	v := newVerifier(nil, store, nil)

	require.NoError(t, v.RevokeSession(context.Background(), "artifact-1"))
	assert.Empty(t, store.sessions)

	// Idempotent for unknown and empty artifacts.
	assert.NoError(t, v.RevokeSession(context.Background(), "artifact-1"))
	assert.NoError(t, v.RevokeSession(context.Background(), ""))
}

func TestRoleFromClaims(t *testing.T) {
	assert.Equal(t, domainauth.RoleStudent, roleFromClaims(tokenClaims{Role: "student"}))
	assert.Equal(t, domainauth.RoleAdmin, roleFromClaims(tokenClaims{Admin: true}))
	assert.Equal(t, domainauth.Role(""), roleFromClaims(tokenClaims{}))
}
