package authz

// Actor is the authenticated identity invoking an operation. It is
// resolved from the bearer token by the HTTP layer and passed explicitly
// into every service call; there is no ambient auth state.
type Actor struct {
	ID         int64  `json:"id"`
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Department string `json:"department"`
	Role       Role   `json:"role"`
}
