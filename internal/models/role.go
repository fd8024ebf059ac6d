package models

import "github.com/google/uuid"

// Role is the account capability level. Donor < Admin < SuperAdmin.
type Role string

const (
	RoleDonor      Role = "Donor"
	RoleAdmin      Role = "Admin"
	RoleSuperAdmin Role = "SuperAdmin"
)

func (r Role) rank() int {
	switch r {
	case RoleDonor:
		return 1
	case RoleAdmin:
		return 2
	case RoleSuperAdmin:
		return 3
	}
	return 0
}

func (r Role) Valid() bool {
	return r.rank() > 0
}

// AtLeast reports whether r grants every privilege of min.
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.rank() >= min.rank()
}

// Assignable reports whether r may be set through registration or a user update.
// SuperAdmin is only ever granted by a transfer.
func (r Role) Assignable() bool {
	return r == RoleDonor || r == RoleAdmin
}

// DeriveRole computes the role a user holds from its profile rows and the
// SuperAdmin flag.
func DeriveRole(hasAdminProfile, isSuperAdmin bool) Role {
	switch {
	case isSuperAdmin:
		return RoleSuperAdmin
	case hasAdminProfile:
		return RoleAdmin
	default:
		return RoleDonor
	}
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

func (a Actor) IsSuperAdmin() bool {
	return a.Role == RoleSuperAdmin
}
