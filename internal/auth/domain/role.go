package domain

// Role is a workspace membership role. The three roles form a strict total
// order: owner > admin > member.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Rank maps a role onto the total order. Unknown roles rank below member so
// a corrupt row can never manage anyone.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleMember
}

// CanManage reports whether acting may act on target. Strictly greater:
// equal ranks can never manage each other, which rules out admin-vs-admin
// actions.
func (acting Role) CanManage(target Role) bool {
	return acting.Rank() > target.Rank()
}

// CanAssign reports whether acting may grant the given role. An actor may
// only hand out roles strictly below their own, so nobody can self-promote
// or lateral-assign via an invite or role change.
func (acting Role) CanAssign(role Role) bool {
	return acting.Rank() > role.Rank()
}

// ParseRole validates a raw role string.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
