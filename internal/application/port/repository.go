package port

import (
	"context"
	"time"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

// TransactionManager executes a function within a database transaction.
// Repository calls made with the ctx passed to fn join that transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ApplicationPatch carries the editable fields of an application. Nil
// pointers leave the column untouched; ClearAmount removes the amount.
type ApplicationPatch struct {
	Title       *string
	Description *string
	Amount      *float64
	ClearAmount bool
}

// ApplicationRepository defines persistence operations for Application.
//
// Submit, Approve and Reject are conditional writes: the UPDATE carries
// the expected current status in its WHERE clause and the boolean result
// reports whether a row was actually changed. A false result means the
// application was no longer in the expected state — the caller must
// surface that as an invalid-state failure, never as silent success.
type ApplicationRepository interface {
	Create(ctx context.Context, app *entity.Application) error
	GetByID(ctx context.Context, id int64) (*entity.Application, error)
	List(ctx context.Context, filter entity.ApplicationFilter) ([]*entity.Application, error)
	Count(ctx context.Context, filter entity.ApplicationFilter) (int64, error)
	Submit(ctx context.Context, id int64) (bool, error)
	Approve(ctx context.Context, id, approverID int64, at time.Time) (bool, error)
	Reject(ctx context.Context, id, approverID int64, reason string) (bool, error)
	UpdateContent(ctx context.Context, id int64, patch ApplicationPatch) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// CommentRepository defines persistence operations for Comment
type CommentRepository interface {
	Create(ctx context.Context, comment *entity.Comment) error
	GetByID(ctx context.Context, id int64) (*entity.Comment, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]*entity.Comment, error)
}

// AttachmentRepository defines persistence operations for Attachment
type AttachmentRepository interface {
	Create(ctx context.Context, att *entity.Attachment) error
	GetByID(ctx context.Context, id int64) (*entity.Attachment, error)
	ListByApplication(ctx context.Context, applicationID int64) ([]*entity.Attachment, error)
	Delete(ctx context.Context, id int64) error
}

// FavoriteRepository defines persistence operations for Favorite
type FavoriteRepository interface {
	Get(ctx context.Context, userID, applicationID int64) (*entity.Favorite, error)
	Create(ctx context.Context, fav *entity.Favorite) error
	Delete(ctx context.Context, userID, applicationID int64) error
	ListApplications(ctx context.Context, userID int64) ([]*entity.Application, error)
}

// UserRepository defines persistence operations for User
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	ListApprovers(ctx context.Context) ([]*entity.User, error)
	ListByTeam(ctx context.Context, teamID int64) ([]*entity.User, error)
	ListWithoutWeeklyReport(ctx context.Context, weekStart string) ([]*entity.User, error)
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id int64) error
}

// DepartmentRepository defines persistence operations for Department
type DepartmentRepository interface {
	Create(ctx context.Context, dept *entity.Department) error
	GetByID(ctx context.Context, id int64) (*entity.Department, error)
	GetByCode(ctx context.Context, code string) (*entity.Department, error)
	List(ctx context.Context, activeOnly bool) ([]*entity.Department, error)
	Update(ctx context.Context, dept *entity.Department) error
	Delete(ctx context.Context, id int64) error
}

// TeamRepository defines persistence operations for Team
type TeamRepository interface {
	Create(ctx context.Context, team *entity.Team) error
	GetByID(ctx context.Context, id int64) (*entity.Team, error)
	List(ctx context.Context) ([]*entity.Team, error)
	Update(ctx context.Context, team *entity.Team) error
	Delete(ctx context.Context, id int64) error
}

// ApplicationTypeRepository defines persistence operations for ApplicationType
type ApplicationTypeRepository interface {
	Create(ctx context.Context, typ *entity.ApplicationType) error
	GetByID(ctx context.Context, id int64) (*entity.ApplicationType, error)
	GetByCode(ctx context.Context, code string) (*entity.ApplicationType, error)
	List(ctx context.Context, includeInactive bool) ([]*entity.ApplicationType, error)
	Update(ctx context.Context, typ *entity.ApplicationType) error
	Delete(ctx context.Context, id int64) error
}

// ApproverRepository defines persistence operations for ApproverAssignment
type ApproverRepository interface {
	Create(ctx context.Context, a *entity.ApproverAssignment) error
	GetByID(ctx context.Context, id int64) (*entity.ApproverAssignment, error)
	List(ctx context.Context, userID, departmentID int64) ([]*entity.ApproverAssignment, error)
	// DepartmentNamesForUser returns the names of departments the user
	// actively approves for; feeds department-scoped visibility.
	DepartmentNamesForUser(ctx context.Context, userID int64) ([]string, error)
	Update(ctx context.Context, a *entity.ApproverAssignment) error
	Delete(ctx context.Context, id int64) error
}

// WeeklyReportFilter narrows a weekly-report listing. Zero values mean
// "no constraint"; Departments and UserIDs scope visibility.
type WeeklyReportFilter struct {
	WeekFrom    string
	WeekTo      string
	Departments []string
	UserIDs     []int64
}

// WeeklyReportRepository defines persistence operations for WeeklyReport
type WeeklyReportRepository interface {
	Create(ctx context.Context, report *entity.WeeklyReport) error
	GetByID(ctx context.Context, id int64) (*entity.WeeklyReport, error)
	GetByUserWeek(ctx context.Context, userID int64, weekStart string) (*entity.WeeklyReport, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.WeeklyReport, error)
	ListFiltered(ctx context.Context, filter WeeklyReportFilter) ([]*entity.WeeklyReport, error)
	Update(ctx context.Context, report *entity.WeeklyReport) error
	Delete(ctx context.Context, id int64) error
}

// SystemAccessRepository defines persistence operations for SystemAccess
type SystemAccessRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]string, error)
	// ReplaceForUser atomically swaps the user's grant set for systems.
	ReplaceForUser(ctx context.Context, userID int64, systems []string) error
}

// AuditRepository persists workflow events for the audit trail
type AuditRepository interface {
	Create(ctx context.Context, rec *entity.AuditRecord) error
	ListByApplication(ctx context.Context, applicationID int64) ([]*entity.AuditRecord, error)
}
