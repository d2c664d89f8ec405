package httpx

import (
	"net/http"
	"time"
)

// CookieConfig describes the session cookie surface.
type CookieConfig struct {
	Name   string
	Domain string
	// Secure is off only in local development.
	Secure bool
}

// SetSessionCookie writes the session artifact cookie.
func SetSessionCookie(w http.ResponseWriter, cfg CookieConfig, artifact string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    artifact,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie immediately.
func ClearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionArtifact reads the session cookie value, empty when absent.
func sessionArtifact(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}
