package entity

import (
	"time"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
)

// User is an identity record. PasswordHash is never serialized.
type User struct {
	ID                 int64      `json:"id"`
	EmployeeID         string     `json:"employee_id"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	Department         string     `json:"department"`
	DepartmentID       *int64     `json:"department_id,omitempty"`
	TeamID             *int64     `json:"team_id,omitempty"`
	Role               authz.Role `json:"role"`
	MustChangePassword bool       `json:"must_change_password"`
	WeeklyReportExempt bool       `json:"weekly_report_exempt"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// Actor converts the user into the identity passed to service calls
func (u *User) Actor() authz.Actor {
	return authz.Actor{
		ID:         u.ID,
		EmployeeID: u.EmployeeID,
		Name:       u.Name,
		Email:      u.Email,
		Department: u.Department,
		Role:       u.Role,
	}
}
