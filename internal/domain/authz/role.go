package authz

// Role represents an actor's role in the portal
type Role string

const (
	RoleUser         Role = "user"
	RoleApprover     Role = "approver"
	RoleOnsiteLeader Role = "onsite_leader"
	RoleGM           Role = "gm"
	RoleBOD          Role = "bod"
	RoleAdmin        Role = "admin"
)

// roleLevels orders roles for display and filtering only; transition
// gating is membership-based, never threshold-based.
var roleLevels = map[Role]int{
	RoleUser:         0,
	RoleApprover:     1,
	RoleOnsiteLeader: 2,
	RoleGM:           3,
	RoleBOD:          4,
	RoleAdmin:        5,
}

// approverRoles is the set of roles allowed to approve or reject a
// pending application.
var approverRoles = map[Role]bool{
	RoleApprover:     true,
	RoleOnsiteLeader: true,
	RoleGM:           true,
	RoleBOD:          true,
	RoleAdmin:        true,
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is one of the defined constants
func (r Role) IsValid() bool {
	_, ok := roleLevels[r]
	return ok
}

// Level returns the display ordering of the role (user < approver <
// onsite_leader < gm < bod < admin)
func (r Role) Level() int {
	return roleLevels[r]
}

// IsApprover returns true if the role belongs to the approver set
func (r Role) IsApprover() bool {
	return approverRoles[r]
}

// IsAdmin returns true for the admin role
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Roles returns all valid roles in display order
func Roles() []Role {
	return []Role{RoleUser, RoleApprover, RoleOnsiteLeader, RoleGM, RoleBOD, RoleAdmin}
}
