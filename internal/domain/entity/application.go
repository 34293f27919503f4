package entity

import (
	"time"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/workflow"
)

// Application is the workflow entity. ApprovedAt and RejectionReason are
// mutually exclusive: ApprovedAt is set only when status is approved,
// RejectionReason only when status is rejected.
type Application struct {
	ID              int64          `json:"id"`
	Title           string         `json:"title"`
	TypeID          int64          `json:"type_id"`
	TypeCode        string         `json:"type"`
	Description     string         `json:"description"`
	Amount          *float64       `json:"amount,omitempty"`
	Status          workflow.State `json:"status"`
	ApplicantID     int64          `json:"applicant_id"`
	ApproverID      *int64         `json:"approver_id,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`

	// Joined for display
	ApplicantName       string     `json:"applicant_name,omitempty"`
	ApplicantDepartment string     `json:"applicant_department,omitempty"`
	ApproverName        string     `json:"approver_name,omitempty"`
	Comments            []*Comment `json:"comments,omitempty"`
}

// IsTerminal reports whether the application has reached a final state
func (a *Application) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// ApplicationFilter narrows and orders an application listing. Zero
// values mean "no constraint". Filters are combined with AND.
type ApplicationFilter struct {
	Status     workflow.State
	TypeCode   string
	Department string
	Search     string // case-insensitive substring match over title
	DateFrom   string // inclusive lower bound on created_at (YYYY-MM-DD)
	DateTo     string // inclusive upper bound on created_at (YYYY-MM-DD)
	SortBy     string // whitelisted column, default created_at
	SortDesc   bool
	Limit      int
	Offset     int

	// Visibility scoping filled in by the service, not the caller.
	ApplicantID int64    // restrict to one applicant (role "user")
	Departments []string // restrict to departments (scoped approvers)
}
