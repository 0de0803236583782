package domain

import "time"

// Role enumerates account roles. The model is deliberately flat: admin is
// not "staff plus extras" anywhere in code, each permission rule names the
// roles it accepts explicitly.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
	RoleUser  Role = "user"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleUser:
		return true
	}
	return false
}

// User is the single account model for requesters, staff and admins.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsStaff reports whether the account has the staff role.
func (u *User) IsStaff() bool {
	return u != nil && u.Role == RoleStaff
}

// IsUser reports whether the account has the plain user role.
func (u *User) IsUser() bool {
	return u != nil && u.Role == RoleUser
}
