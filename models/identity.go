package models

import "strings"

// Role is the access level attached to a signed-in email.
type Role string

const (
	RoleSuperAdmin      Role = "superadmin"
	RoleAdmin           Role = "admin"
	RoleUser            Role = "user"
	RoleUnauthenticated Role = "unauthenticated"
)

func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleUser, RoleUnauthenticated:
		return true
	}
	return false
}

// ParseRole maps a stored role string to a Role. Anything unrecognised
// becomes RoleUser so that a malformed role record never grants access.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "superadmin", "super-admin", "super_admin":
		return RoleSuperAdmin
	case "admin":
		return RoleAdmin
	default:
		return RoleUser
	}
}

// Session is what the sign-in provider hands over: whether someone is
// signed in and under which email.
type Session struct {
	Authenticated bool
	UserID        string
	Email         string
}

// Identity is the resolved caller. It is fixed for the lifetime of a
// sign-in and re-resolved on the next one.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
	City   string `json:"city,omitempty"`
}

func Unauthenticated() Identity {
	return Identity{Role: RoleUnauthenticated}
}

func (i Identity) Authenticated() bool {
	return i.Role != RoleUnauthenticated && i.Role != ""
}

// NormalizeEmail is the form emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
