package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignInPageEscapesRedirect(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet,
		"/auth/sign-in?redirect=--%3E%3Cscript%3Ealert(1)%3C/script%3E%3C!--", nil)
	rec := httptest.NewRecorder()
	signInPage(rec, req)

	body := rec.Body.String()
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "--><script")
}

func TestSignInPageKeepsLocalRedirect(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/auth/sign-in?redirect=%2Fprofile%3Ftab%3Dcourses", nil)
	rec := httptest.NewRecorder()
	signInPage(rec, req)

	assert.Contains(t, rec.Body.String(), "redirect=/profile?tab=courses")
}

func TestSameSitePath(t *testing.T) {
	assert.Equal(t, "/profile", sameSitePath("/profile"))
	assert.Equal(t, "/my-activities?tab=done", sameSitePath("/my-activities?tab=done"))
	assert.Equal(t, "/", sameSitePath(""))
	assert.Equal(t, "/", sameSitePath("https://evil.example/phish"))
	assert.Equal(t, "/", sameSitePath("//evil.example/phish"))
	assert.Equal(t, "/", sameSitePath("javascript:alert(1)"))
}
