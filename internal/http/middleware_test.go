package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/ports"
)

func TestClassifyPath(t *testing.T) {
	tests := []struct {
		path     string
		expected pathClass
	}{
		{"/", classPublic},
		{"/events", classPublic},
		{"/clubs", classPublic},
		{"/api/auth/session", classPublic},
		{"/static/app.css", classPublic},
		{"/profiles", classPublic},
		{"/profile", classProtected},
		{"/profile/edit", classProtected},
		{"/admin", classProtected},
		{"/admin/users", classProtected},
		{"/my-activities", classProtected},
		{"/my-activities/42", classProtected},
		{"/auth/sign-in", classAuthOnly},
		{"/auth/sign-up", classAuthOnly},
		{"/auth/sign-in/extra", classPublic},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, classifyPath(tt.path))
		})
	}
}

func gateHandler(cfg GateConfig) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("page"))
	})
	return SessionGate(cfg)(next)
}

func testCookies() CookieConfig {
	return CookieConfig{Name: "__session"}
}

func TestGateProtectedWithoutCookieRedirects(t *testing.T) {
	handler := gateHandler(GateConfig{Cookies: testCookies()})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/auth/sign-in?redirect=%2Fprofile", rec.Header().Get("Location"))
}

func TestGateRedirectPreservesQuery(t *testing.T) {
	handler := gateHandler(GateConfig{Cookies: testCookies()})

	req := httptest.NewRequest(http.MethodGet, "/my-activities?tab=upcoming&page=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/auth/sign-in", loc.Path)
	assert.Equal(t, "/my-activities?tab=upcoming&page=2", loc.Query().Get("redirect"))
}

func TestGateProtectedWithCookiePasses(t *testing.T) {
	handler := gateHandler(GateConfig{Cookies: testCookies()})

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: "some-artifact"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateAuthOnlyWithCookieRedirectsHome(t *testing.T) {
	handler := gateHandler(GateConfig{Cookies: testCookies()})

	for _, path := range []string{"/auth/sign-in", "/auth/sign-up"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.AddCookie(&http.Cookie{Name: "__session", Value: "some-artifact"})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/", rec.Header().Get("Location"), path)
	}
}

func TestGateAuthOnlyWithoutCookiePasses(t *testing.T) {
	handler := gateHandler(GateConfig{Cookies: testCookies()})

	req := httptest.NewRequest(http.MethodGet, "/auth/sign-in", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGatePublicAlwaysPasses(t *testing.T) {
	handler := gateHandler(GateConfig{Cookies: testCookies()})

	for _, path := range []string{"/", "/events", "/api/other", "/static/app.css"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestGateStrictModeRejectsInvalidArtifact(t *testing.T) {
	cfg := GateConfig{
		Cookies: testCookies(),
		Verify: func(_ context.Context, artifact string) (domainauth.Principal, error) {
			return domainauth.Principal{}, ports.ErrInvalidSession
		},
	}
	handler := gateHandler(cfg)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: "forged"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)

	// The bad cookie is cleared alongside the redirect.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "__session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestGateStrictModeInjectsPrincipal(t *testing.T) {
	cfg := GateConfig{
		Cookies: testCookies(),
		Verify: func(context.Context, string) (domainauth.Principal, error) {
			return domainauth.Principal{UID: "uid-1", Email: "alice@example.edu"}, nil
		},
	}

	var seen domainauth.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := SessionGate(cfg)(next)

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: "valid"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "uid-1", seen.UID)
}

func TestGateStrictModeSkipsVerifyOnPublicPaths(t *testing.T) {
	called := false
	cfg := GateConfig{
		Cookies: testCookies(),
		Verify: func(context.Context, string) (domainauth.Principal, error) {
			called = true
			return domainauth.Principal{UID: "uid-1"}, nil
		},
	}
	handler := gateHandler(cfg)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req.AddCookie(&http.Cookie{Name: "__session", Value: "valid"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, called, "public paths never hit the verifier")
}
