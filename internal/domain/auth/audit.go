package auth

import "time"

// AuditAction enumerates the auth lifecycle events worth a trail.
type AuditAction string

const (
	AuditSignIn        AuditAction = "sign_in"
	AuditSignUp        AuditAction = "sign_up"
	AuditSignOut       AuditAction = "sign_out"
	AuditSessionMint   AuditAction = "session_mint"
	AuditSessionRevoke AuditAction = "session_revoke"
)

// AuditEvent is one entry in the auth audit trail. Recording is best
// effort; a failed write never blocks the auth flow itself.
type AuditEvent struct {
	ID         string         `json:"id"`
	OccurredAt time.Time      `json:"occurred_at"`
	UID        string         `json:"uid,omitempty"`
	Action     AuditAction    `json:"action"`
	Detail     map[string]any `json:"detail,omitempty"`
}
