package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
	"github.com/campushub/campushub/internal/service"
)

// stubVerifier is a minimal ports.CredentialVerifier for endpoint tests.
type stubVerifier struct {
	mu      sync.Mutex
	revoked []string
	mintErr error
}

var _ ports.CredentialVerifier = (*stubVerifier)(nil)

func (s *stubVerifier) MintSession(_ context.Context, idToken string, _ time.Duration) (string, domainauth.Principal, error) {
	if s.mintErr != nil {
		return "", domainauth.Principal{}, s.mintErr
	}
	if idToken == "" {
		return "", domainauth.Principal{}, ports.ErrInvalidSession
	}
	return "artifact-for-" + idToken, domainauth.Principal{UID: "uid-1", Email: "alice@example.edu"}, nil
}

func (s *stubVerifier) CheckSession(_ context.Context, artifact string) (domainauth.Principal, error) {
	if artifact == "" || !strings.HasPrefix(artifact, "artifact-") {
		return domainauth.Principal{}, ports.ErrInvalidSession
	}
	return domainauth.Principal{UID: "uid-1", Email: "alice@example.edu"}, nil
}

func (s *stubVerifier) RevokeSession(_ context.Context, artifact string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked = append(s.revoked, artifact)
	return nil
}

func newSessionHandlers(verifier ports.CredentialVerifier) *SessionHandlers {
	return &SessionHandlers{
		Sessions: service.NewSessions(verifier, nil, 120*time.Hour, nil),
		Cookies:  CookieConfig{Name: "__session", Secure: true},
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestSessionExchangeSuccess(t *testing.T) {
	h := newSessionHandlers(&stubVerifier{})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/session",
		strings.NewReader(`{"idToken":"fresh-token"}`))
	rec := httptest.NewRecorder()
	h.Exchange(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "success"}, decodeBody(t, rec))

	cookie := findCookie(rec.Result().Cookies(), "__session")
	require.NotNil(t, cookie)
	assert.Equal(t, "artifact-for-fresh-token", cookie.Value)
	assert.Equal(t, 432000, cookie.MaxAge)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.True(t, cookie.Secure)
}

func TestSessionExchangeMalformedBody(t *testing.T) {
	h := newSessionHandlers(&stubVerifier{})

	for name, payload := range map[string]string{
		"empty body":    "",
		"not json":      "not-json",
		"empty object":  "{}",
		"empty idToken": `{"idToken":""}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/auth/session", strings.NewReader(payload))
			rec := httptest.NewRecorder()
			h.Exchange(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, map[string]string{"error": "Unauthorized"}, decodeBody(t, rec))
			assert.Nil(t, findCookie(rec.Result().Cookies(), "__session"))
		})
	}
}

func TestSessionExchangeMintFailure(t *testing.T) {
	h := newSessionHandlers(&stubVerifier{mintErr: ports.ErrInvalidSession})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/session",
		strings.NewReader(`{"idToken":"stale-token"}`))
	rec := httptest.NewRecorder()
	h.Exchange(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, map[string]string{"error": "Unauthorized"}, decodeBody(t, rec))
}

func TestSessionTeardown(t *testing.T) {
	verifier := &stubVerifier{}
	h := newSessionHandlers(verifier)

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: "artifact-123"})
	rec := httptest.NewRecorder()
	h.Teardown(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "success"}, decodeBody(t, rec))
	assert.Equal(t, []string{"artifact-123"}, verifier.revoked)

	cookie := findCookie(rec.Result().Cookies(), "__session")
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.Negative(t, cookie.MaxAge)
}

func TestSessionTeardownWithoutCookieIsIdempotent(t *testing.T) {
	verifier := &stubVerifier{}
	h := newSessionHandlers(verifier)

	req := httptest.NewRequest(http.MethodDelete, "/api/auth/session", nil)
	rec := httptest.NewRecorder()
	h.Teardown(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "success"}, decodeBody(t, rec))
	assert.Empty(t, verifier.revoked)
}

func TestSessionRoundTripLeavesNoCookie(t *testing.T) {
	router := NewRouter(RouterServices{
		Sessions: service.NewSessions(&stubVerifier{}, nil, 120*time.Hour, nil),
		Cookies:  CookieConfig{Name: "__session"},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}

	srvURL, err := url.Parse(srv.URL)
	require.NoError(t, err)

	resp, err := client.Post(srv.URL+"/api/auth/session", "application/json",
		strings.NewReader(`{"idToken":"fresh-token"}`))
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, jar.Cookies(srvURL), "cookie set after exchange")

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/auth/session", nil)
	require.NoError(t, err)
	resp, err = client.Do(req)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Empty(t, jar.Cookies(srvURL), "round trip must leave no cookie")
}
