package service

import (
	"errors"

	"github.com/campushub/campushub/internal/ports"
)

// errNoFreshToken marks operations that need a provider ID token when
// the facade holds none for the acting user, e.g. after a restart.
var errNoFreshToken = errors.New("no fresh id token held for user")

// AuthError carries a user-presentable message. The underlying cause
// stays server-side; handlers render Message and nothing else.
type AuthError struct {
	Message string
	cause   error
	noAuth  bool
}

func (e *AuthError) Error() string { return e.Message }
func (e *AuthError) Unwrap() error { return e.cause }

// Unauthenticated reports whether the failure is the absence of a
// signed-in principal, so handlers can answer 401 instead of 400.
func (e *AuthError) Unauthenticated() bool { return e.noAuth }

// User-facing messages for the known provider error codes. Anything
// unmapped collapses to the operation's generic message.
const (
	msgInvalidCredentials = "Invalid email or password. Please try again."
	msgTooManyAttempts    = "Too many failed login attempts. Please try again later."
	msgEmailInUse         = "This email is already in use. Please use a different email or try signing in."
	msgWeakPassword       = "Password is too weak. Please use a stronger password."
	msgNoAccountForEmail  = "No account found with this email address."

	msgSignInFailed  = "Failed to sign in. Please try again."
	msgSignUpFailed  = "Failed to create account. Please try again."
	msgResetFailed   = "Failed to send password reset email. Please try again."
	msgUpdateFailed  = "Failed to update profile. Please try again."
	msgVerifyFailed  = "Failed to send verification email. Please try again."
	msgNotSignedIn   = "You must be signed in to do that."
	msgSignOutFailed = "Failed to sign out. Please try again."
)

func authErr(message string, cause error) *AuthError {
	return &AuthError{Message: message, cause: cause}
}

func notSignedInErr() *AuthError {
	return &AuthError{Message: msgNotSignedIn, noAuth: true}
}

// mapProviderErr translates a provider error code using the given
// table, falling back to the generic message. Non-provider errors get
// the generic message too.
func mapProviderErr(err error, table map[string]string, generic string) *AuthError {
	if code, ok := ports.ProviderCode(err); ok {
		if msg, found := table[code]; found {
			return authErr(msg, err)
		}
	}
	return authErr(generic, err)
}

var signInErrors = map[string]string{
	"EMAIL_NOT_FOUND":             msgInvalidCredentials,
	"INVALID_PASSWORD":            msgInvalidCredentials,
	"INVALID_LOGIN_CREDENTIALS":   msgInvalidCredentials,
	"USER_DISABLED":               msgInvalidCredentials,
	"TOO_MANY_ATTEMPTS_TRY_LATER": msgTooManyAttempts,
}

var signUpErrors = map[string]string{
	"EMAIL_EXISTS":                msgEmailInUse,
	"WEAK_PASSWORD":               msgWeakPassword,
	"TOO_MANY_ATTEMPTS_TRY_LATER": msgTooManyAttempts,
}

var resetErrors = map[string]string{
	"EMAIL_NOT_FOUND": msgNoAccountForEmail,
}
