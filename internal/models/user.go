package models

import "time"

// Account roles.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// User is an authenticated account. Identity is the opaque stable string
// that keys all of the user's documents; it never changes.
type User struct {
	Identity     string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// IsDoctor reports whether the account has the doctor role.
func (u *User) IsDoctor() bool {
	return u.Role == RoleDoctor
}

// Session represents an authenticated browser session.
type Session struct {
	ID        string
	Identity  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the session has passed its expiry time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
