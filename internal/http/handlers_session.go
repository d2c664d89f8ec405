package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/campushub/campushub/internal/service"
)

// SessionHandlers implements the session exchange endpoint.
type SessionHandlers struct {
	Sessions *service.Sessions
	Cookies  CookieConfig
	Logger   *slog.Logger
}

func (h *SessionHandlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Exchange handles POST /api/auth/session: a fresh ID token in, the
// session cookie out. Every failure collapses to the same 401 body so
// callers learn nothing about the cause; the cause is logged here.
func (h *SessionHandlers) Exchange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDToken string `json:"idToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.IDToken == "" {
		h.logger().WarnContext(r.Context(), "session exchange rejected", "reason", "malformed body")
		h.unauthorized(w)
		return
	}

	artifact, err := h.Sessions.Establish(r.Context(), body.IDToken)
	if err != nil {
		h.logger().WarnContext(r.Context(), "session exchange rejected", "error", err)
		h.unauthorized(w)
		return
	}

	SetSessionCookie(w, h.Cookies, artifact, h.Sessions.TTL())
	WriteSuccess(w)
}

// Teardown handles DELETE /api/auth/session. Idempotent: succeeds
// whether or not a session exists, revoking server-side state when it
// does.
func (h *SessionHandlers) Teardown(w http.ResponseWriter, r *http.Request) {
	if artifact := sessionArtifact(r, h.Cookies.Name); artifact != "" {
		h.Sessions.Revoke(r.Context(), artifact)
	}
	ClearSessionCookie(w, h.Cookies)
	WriteSuccess(w)
}

func (h *SessionHandlers) unauthorized(w http.ResponseWriter) {
	WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
}
