package ports

import (
	"errors"
	"fmt"
)

// ErrInvalidSession is returned by CredentialVerifier.CheckSession for
// unknown, expired, or malformed session artifacts.
var ErrInvalidSession = errors.New("invalid session")

// ErrProfileNotFound is returned by ProfileStore.Get when no document
// exists for the uid.
var ErrProfileNotFound = errors.New("profile not found")

// ProviderError carries the machine-readable error code reported by the
// credential store (e.g. EMAIL_NOT_FOUND, INVALID_PASSWORD). The facade
// maps codes to user-presentable messages; raw provider errors must never
// reach the UI.
type ProviderError struct {
	Code       string
	StatusCode int
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("identity provider error: %s (http %d)", e.Code, e.StatusCode)
}

// ProviderCode extracts the provider error code from err, if any.
func ProviderCode(err error) (string, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}
