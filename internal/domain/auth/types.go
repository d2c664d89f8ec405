package auth

// Package auth contains domain-level types for principals and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Principal represents the authenticated user as reported by the identity
// provider, merged with the mirrored profile document. Adapters map
// provider-specific claims into this shape.
type Principal struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"display_name,omitempty"`
	PhotoURL      string `json:"photo_url,omitempty"`
	EmailVerified bool   `json:"email_verified"`
	Role          Role   `json:"role,omitempty"`
}

// IsAdmin reports whether the principal carries the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// Profile is the mirrored document stored per principal in the document
// database. Field names follow the users collection schema.
type Profile struct {
	UID         string    `json:"uid"         firestore:"-"`
	Email       string    `json:"email"       firestore:"email"`
	DisplayName string    `json:"display_name" firestore:"display_name"`
	PhotoURL    string    `json:"photo_url,omitempty" firestore:"photo_url,omitempty"`
	Role        Role      `json:"role,omitempty"      firestore:"role,omitempty"`
	Department  string    `json:"department,omitempty" firestore:"department,omitempty"`
	StudentID   string    `json:"student_id,omitempty" firestore:"student_id,omitempty"`
	Bio         string    `json:"bio,omitempty"        firestore:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"           firestore:"created_at"`
	UpdatedAt   time.Time `json:"updated_at,omitempty" firestore:"updated_at,omitempty"`
	LastLogin   time.Time `json:"last_login,omitempty" firestore:"last_login,omitempty"`
}

// ProfileUpdate carries the optional fields a principal may change about
// themselves. Nil pointers mean "leave unchanged".
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
	Department  *string
	StudentID   *string
	Bio         *string
}

// IsZero reports whether the update would change nothing.
func (u ProfileUpdate) IsZero() bool {
	return u.DisplayName == nil && u.PhotoURL == nil && u.Department == nil &&
		u.StudentID == nil && u.Bio == nil
}

// Session is the server-side record persisted for an opaque session
// artifact. Only the securetoken verifier mode materializes these; in
// firebase mode the artifact is self-contained and nothing is stored.
type Session struct {
	ID            string    `json:"id"`
	UID           string    `json:"uid"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name,omitempty"`
	EmailVerified bool      `json:"email_verified"`
	Role          Role      `json:"role,omitempty"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// Principal converts the stored session back into the principal shape.
func (s Session) Principal() Principal {
	return Principal{
		UID:           s.UID,
		Email:         s.Email,
		DisplayName:   s.DisplayName,
		EmailVerified: s.EmailVerified,
		Role:          s.Role,
	}
}

// Expired reports whether the session is past its validity window.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }
