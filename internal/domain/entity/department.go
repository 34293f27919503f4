package entity

import "time"

// Department is a master-data record referenced by users and approver
// assignments.
type Department struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Team groups users under an optional onsite leader.
type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	LeaderID    *int64    `json:"leader_id,omitempty"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`

	LeaderName  string  `json:"leader_name,omitempty"`
	MemberCount int     `json:"member_count"`
	Members     []*User `json:"members,omitempty"`
}

// ApproverAssignment binds a user to a department they approve for, with
// an approval level and an optional amount ceiling.
type ApproverAssignment struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	DepartmentID  int64     `json:"department_id"`
	ApprovalLevel int       `json:"approval_level"`
	MaxAmount     *float64  `json:"max_amount,omitempty"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`

	UserName       string `json:"user_name,omitempty"`
	UserEmployeeID string `json:"user_employee_id,omitempty"`
	DepartmentName string `json:"department_name,omitempty"`
	DepartmentCode string `json:"department_code,omitempty"`
}
