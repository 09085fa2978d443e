package domain

import "time"

// Role is the coarse authorization level attached to a principal.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// AtLeast reports whether r satisfies the required role. super_admin
// satisfies admin; admin does not satisfy super_admin.
func (r Role) AtLeast(required Role) bool {
	if r == required {
		return true
	}
	switch required {
	case RoleUser:
		return r == RoleAdmin || r == RoleSuperAdmin
	case RoleAdmin:
		return r == RoleSuperAdmin
	}
	return false
}

// Principal is the canonical identity value used across the service. The
// directory boundary converts any external user representation into it once,
// at the edge.
type Principal struct {
	ID    int64
	Email string
	Role  Role
}

// User is a directory record: a principal plus its stored credentials.
type User struct {
	Principal

	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
