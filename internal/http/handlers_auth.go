package httpx

import (
	"log/slog"
	"net/http"

	domainauth "github.com/campushub/campushub/internal/domain/auth"
	"github.com/campushub/campushub/internal/service"
)

// AuthHandlers exposes the auth facade over the /api/auth surface.
// Sessions and Cookies identify the acting user from the request's
// session cookie; the facade is never trusted to know who is calling.
type AuthHandlers struct {
	Svc      *service.Auth
	Sessions *service.Sessions
	Cookies  CookieConfig
	Logger   *slog.Logger
}

// actingPrincipal resolves the user behind the request. The gate's
// strict mode has already verified and stashed the principal; outside
// it the session cookie is checked directly.
func (h *AuthHandlers) actingPrincipal(r *http.Request) (domainauth.Principal, bool) {
	if principal, ok := PrincipalFromContext(r.Context()); ok {
		return principal, true
	}
	if h.Sessions == nil {
		return domainauth.Principal{}, false
	}
	artifact := sessionArtifact(r, h.Cookies.Name)
	if artifact == "" {
		return domainauth.Principal{}, false
	}
	principal, err := h.Sessions.Check(r.Context(), artifact)
	if err != nil {
		return domainauth.Principal{}, false
	}
	return principal, true
}

// principalPayload is the user shape rendered to clients.
type principalPayload struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName,omitempty"`
	PhotoURL      string `json:"photoUrl,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	Role          string `json:"role,omitempty"`
}

func toPrincipalPayload(p domainauth.Principal) principalPayload {
	return principalPayload{
		UID:           p.UID,
		Email:         p.Email,
		DisplayName:   p.DisplayName,
		PhotoURL:      p.PhotoURL,
		EmailVerified: p.EmailVerified,
		Role:          string(p.Role),
	}
}

func writeAuthError(w http.ResponseWriter, authErr *service.AuthError) {
	code := http.StatusBadRequest
	if authErr.Unauthenticated() {
		code = http.StatusUnauthorized
	}
	WriteError(w, code, authErr.Message)
}

// SignIn handles POST /api/auth/sign-in.
func (h *AuthHandlers) SignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	result, authErr := h.Svc.SignIn(r.Context(), body.Email, body.Password)
	if authErr != nil {
		writeAuthError(w, authErr)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"user":   toPrincipalPayload(result.Principal),
	})
}

// SignUp handles POST /api/auth/sign-up.
func (h *AuthHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		Password    string `json:"password"`
		DisplayName string `json:"displayName"`
		Department  string `json:"department"`
		StudentID   string `json:"studentId"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	result, authErr := h.Svc.SignUp(r.Context(), body.Email, body.Password, service.SignUpFields{
		DisplayName: body.DisplayName,
		Department:  body.Department,
		StudentID:   body.StudentID,
	})
	if authErr != nil {
		writeAuthError(w, authErr)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"user":   toPrincipalPayload(result.Principal),
	})
}

// SignOut handles POST /api/auth/sign-out. Always succeeds, even for
// anonymous callers; there is nothing to tear down for them.
func (h *AuthHandlers) SignOut(w http.ResponseWriter, r *http.Request) {
	principal, _ := h.actingPrincipal(r)
	if authErr := h.Svc.SignOut(r.Context(), principal.UID); authErr != nil {
		writeAuthError(w, authErr)
		return
	}
	WriteSuccess(w)
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	if authErr := h.Svc.ResetPassword(r.Context(), body.Email); authErr != nil {
		writeAuthError(w, authErr)
		return
	}
	WriteSuccess(w)
}

// SendVerification handles POST /api/auth/verification-email.
func (h *AuthHandlers) SendVerification(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.actingPrincipal(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "You must be signed in to do that.")
		return
	}
	if authErr := h.Svc.SendVerificationEmail(r.Context(), principal.UID); authErr != nil {
		writeAuthError(w, authErr)
		return
	}
	WriteSuccess(w)
}

// Profile handles GET /api/auth/profile for the requesting user.
func (h *AuthHandlers) Profile(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.actingPrincipal(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "You must be signed in to do that.")
		return
	}

	profile, err := h.Svc.Profile(r.Context(), principal.UID)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WarnContext(r.Context(), "profile read failed", "uid", principal.UID, "error", err)
		}
		WriteError(w, http.StatusNotFound, "Profile not found.")
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}

// UpdateProfile handles PATCH /api/auth/profile.
func (h *AuthHandlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, ok := h.actingPrincipal(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, "You must be signed in to do that.")
		return
	}

	var body struct {
		DisplayName *string `json:"displayName"`
		PhotoURL    *string `json:"photoUrl"`
		Department  *string `json:"department"`
		StudentID   *string `json:"studentId"`
		Bio         *string `json:"bio"`
	}
	if !DecodeJSON(w, r, &body) {
		return
	}

	authErr := h.Svc.UpdateProfile(r.Context(), principal.UID, domainauth.ProfileUpdate{
		DisplayName: body.DisplayName,
		PhotoURL:    body.PhotoURL,
		Department:  body.Department,
		StudentID:   body.StudentID,
		Bio:         body.Bio,
	})
	if authErr != nil {
		writeAuthError(w, authErr)
		return
	}
	WriteSuccess(w)
}
