package domain

// Role is the privilege tier assigned to an account. Roles form a strict
// hierarchy: operator < admin < super_admin.
type Role string

const (
	RoleOperator   Role = "operator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// roleRanks orders roles by privilege. Built once at init, never mutated.
var roleRanks = map[Role]int{
	RoleOperator:   1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Rank returns the numeric privilege level of the role.
// Unknown roles rank 0, below every defined role.
func (r Role) Rank() int {
	return roleRanks[r]
}

// AtLeast reports whether the role meets or exceeds the given minimum.
func (r Role) AtLeast(minimum Role) bool {
	return r.Rank() >= roleRanks[minimum]
}

// Valid reports whether the role is one of the defined catalog entries.
func (r Role) Valid() bool {
	_, ok := roleRanks[r]
	return ok
}

// ParseRole converts an external string into a catalog Role.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}

// Roles returns all catalog roles in ascending privilege order.
func Roles() []Role {
	return []Role{RoleOperator, RoleAdmin, RoleSuperAdmin}
}
