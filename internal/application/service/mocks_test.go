package service

import (
	"context"
	"fmt"
	"time"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

// noopLogger satisfies Logger without output
type noopLogger struct{}

func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// passthroughTx runs the function without a real transaction
type passthroughTx struct {
	calls int
}

func (m *passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockApplicationRepo struct {
	createFunc        func(ctx context.Context, app *entity.Application) error
	getByIDFunc       func(ctx context.Context, id int64) (*entity.Application, error)
	listFunc          func(ctx context.Context, filter entity.ApplicationFilter) ([]*entity.Application, error)
	countFunc         func(ctx context.Context, filter entity.ApplicationFilter) (int64, error)
	submitFunc        func(ctx context.Context, id int64) (bool, error)
	approveFunc       func(ctx context.Context, id, approverID int64, at time.Time) (bool, error)
	rejectFunc        func(ctx context.Context, id, approverID int64, reason string) (bool, error)
	updateContentFunc func(ctx context.Context, id int64, patch port.ApplicationPatch) (bool, error)
	deleteFunc        func(ctx context.Context, id int64) error
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *entity.Application) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, app)
	}
	app.ID = 1
	return nil
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id int64) (*entity.Application, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: application %d", apperr.ErrNotFound, id)
}

func (m *mockApplicationRepo) List(ctx context.Context, filter entity.ApplicationFilter) ([]*entity.Application, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return []*entity.Application{}, nil
}

func (m *mockApplicationRepo) Count(ctx context.Context, filter entity.ApplicationFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockApplicationRepo) Submit(ctx context.Context, id int64) (bool, error) {
	if m.submitFunc != nil {
		return m.submitFunc(ctx, id)
	}
	return true, nil
}

func (m *mockApplicationRepo) Approve(ctx context.Context, id, approverID int64, at time.Time) (bool, error) {
	if m.approveFunc != nil {
		return m.approveFunc(ctx, id, approverID, at)
	}
	return true, nil
}

func (m *mockApplicationRepo) Reject(ctx context.Context, id, approverID int64, reason string) (bool, error) {
	if m.rejectFunc != nil {
		return m.rejectFunc(ctx, id, approverID, reason)
	}
	return true, nil
}

func (m *mockApplicationRepo) UpdateContent(ctx context.Context, id int64, patch port.ApplicationPatch) (bool, error) {
	if m.updateContentFunc != nil {
		return m.updateContentFunc(ctx, id, patch)
	}
	return true, nil
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockTypeRepo struct {
	getByCodeFunc func(ctx context.Context, code string) (*entity.ApplicationType, error)
	getByIDFunc   func(ctx context.Context, id int64) (*entity.ApplicationType, error)
}

func (m *mockTypeRepo) Create(ctx context.Context, typ *entity.ApplicationType) error { return nil }

func (m *mockTypeRepo) GetByID(ctx context.Context, id int64) (*entity.ApplicationType, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.ApplicationType{ID: id, Code: "leave", Name: "Leave", IsActive: true}, nil
}

func (m *mockTypeRepo) GetByCode(ctx context.Context, code string) (*entity.ApplicationType, error) {
	if m.getByCodeFunc != nil {
		return m.getByCodeFunc(ctx, code)
	}
	return &entity.ApplicationType{ID: 1, Code: code, Name: "Leave", IsActive: true}, nil
}

func (m *mockTypeRepo) List(ctx context.Context, includeInactive bool) ([]*entity.ApplicationType, error) {
	return []*entity.ApplicationType{}, nil
}

func (m *mockTypeRepo) Update(ctx context.Context, typ *entity.ApplicationType) error { return nil }
func (m *mockTypeRepo) Delete(ctx context.Context, id int64) error                    { return nil }

type mockCommentRepo struct {
	createFunc func(ctx context.Context, comment *entity.Comment) error
	listFunc   func(ctx context.Context, applicationID int64) ([]*entity.Comment, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *entity.Comment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, comment)
	}
	comment.ID = 1
	return nil
}

func (m *mockCommentRepo) GetByID(ctx context.Context, id int64) (*entity.Comment, error) {
	return nil, fmt.Errorf("%w: comment %d", apperr.ErrNotFound, id)
}

func (m *mockCommentRepo) ListByApplication(ctx context.Context, applicationID int64) ([]*entity.Comment, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, applicationID)
	}
	return []*entity.Comment{}, nil
}

type mockApproverRepo struct {
	departmentNamesFunc func(ctx context.Context, userID int64) ([]string, error)
}

func (m *mockApproverRepo) Create(ctx context.Context, a *entity.ApproverAssignment) error {
	return nil
}

func (m *mockApproverRepo) GetByID(ctx context.Context, id int64) (*entity.ApproverAssignment, error) {
	return nil, fmt.Errorf("%w: approver assignment %d", apperr.ErrNotFound, id)
}

func (m *mockApproverRepo) List(ctx context.Context, userID, departmentID int64) ([]*entity.ApproverAssignment, error) {
	return []*entity.ApproverAssignment{}, nil
}

func (m *mockApproverRepo) DepartmentNamesForUser(ctx context.Context, userID int64) ([]string, error) {
	if m.departmentNamesFunc != nil {
		return m.departmentNamesFunc(ctx, userID)
	}
	return []string{}, nil
}

func (m *mockApproverRepo) Update(ctx context.Context, a *entity.ApproverAssignment) error {
	return nil
}

func (m *mockApproverRepo) Delete(ctx context.Context, id int64) error { return nil }

type mockUserRepo struct {
	createFunc          func(ctx context.Context, user *entity.User) error
	getByIDFunc         func(ctx context.Context, id int64) (*entity.User, error)
	getByEmployeeIDFunc func(ctx context.Context, employeeID string) (*entity.User, error)
	updateFunc          func(ctx context.Context, user *entity.User) error
	withoutReportFunc   func(ctx context.Context, weekStart string) ([]*entity.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
}

func (m *mockUserRepo) GetByEmployeeID(ctx context.Context, employeeID string) (*entity.User, error) {
	if m.getByEmployeeIDFunc != nil {
		return m.getByEmployeeIDFunc(ctx, employeeID)
	}
	return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, employeeID)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, fmt.Errorf("%w: user %s", apperr.ErrNotFound, email)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	return []*entity.User{}, nil
}

func (m *mockUserRepo) ListApprovers(ctx context.Context) ([]*entity.User, error) {
	return []*entity.User{}, nil
}

func (m *mockUserRepo) ListByTeam(ctx context.Context, teamID int64) ([]*entity.User, error) {
	return []*entity.User{}, nil
}

func (m *mockUserRepo) ListWithoutWeeklyReport(ctx context.Context, weekStart string) ([]*entity.User, error) {
	if m.withoutReportFunc != nil {
		return m.withoutReportFunc(ctx, weekStart)
	}
	return []*entity.User{}, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, id int64) error { return nil }

type mockAccessRepo struct {
	listFunc    func(ctx context.Context, userID int64) ([]string, error)
	replaceFunc func(ctx context.Context, userID int64, systems []string) error
}

func (m *mockAccessRepo) ListByUser(ctx context.Context, userID int64) ([]string, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, userID)
	}
	return []string{}, nil
}

func (m *mockAccessRepo) ReplaceForUser(ctx context.Context, userID int64, systems []string) error {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, userID, systems)
	}
	return nil
}

type mockReportRepo struct {
	createFunc        func(ctx context.Context, report *entity.WeeklyReport) error
	getByIDFunc       func(ctx context.Context, id int64) (*entity.WeeklyReport, error)
	getByUserWeekFunc func(ctx context.Context, userID int64, weekStart string) (*entity.WeeklyReport, error)
	updateFunc        func(ctx context.Context, report *entity.WeeklyReport) error
	deleteFunc        func(ctx context.Context, id int64) error
}

func (m *mockReportRepo) Create(ctx context.Context, report *entity.WeeklyReport) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, report)
	}
	report.ID = 1
	return nil
}

func (m *mockReportRepo) GetByID(ctx context.Context, id int64) (*entity.WeeklyReport, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: weekly report %d", apperr.ErrNotFound, id)
}

func (m *mockReportRepo) GetByUserWeek(ctx context.Context, userID int64, weekStart string) (*entity.WeeklyReport, error) {
	if m.getByUserWeekFunc != nil {
		return m.getByUserWeekFunc(ctx, userID, weekStart)
	}
	return nil, fmt.Errorf("%w: weekly report", apperr.ErrNotFound)
}

func (m *mockReportRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.WeeklyReport, error) {
	return []*entity.WeeklyReport{}, nil
}

func (m *mockReportRepo) ListFiltered(ctx context.Context, filter port.WeeklyReportFilter) ([]*entity.WeeklyReport, error) {
	return []*entity.WeeklyReport{}, nil
}

func (m *mockReportRepo) Update(ctx context.Context, report *entity.WeeklyReport) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, report)
	}
	return nil
}

func (m *mockReportRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockDeptRepo struct {
	createFunc    func(ctx context.Context, dept *entity.Department) error
	getByIDFunc   func(ctx context.Context, id int64) (*entity.Department, error)
	getByCodeFunc func(ctx context.Context, code string) (*entity.Department, error)
	deleteFunc    func(ctx context.Context, id int64) error
}

func (m *mockDeptRepo) Create(ctx context.Context, dept *entity.Department) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, dept)
	}
	dept.ID = 1
	return nil
}

func (m *mockDeptRepo) GetByID(ctx context.Context, id int64) (*entity.Department, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: department %d", apperr.ErrNotFound, id)
}

func (m *mockDeptRepo) GetByCode(ctx context.Context, code string) (*entity.Department, error) {
	if m.getByCodeFunc != nil {
		return m.getByCodeFunc(ctx, code)
	}
	return nil, fmt.Errorf("%w: department %s", apperr.ErrNotFound, code)
}

func (m *mockDeptRepo) List(ctx context.Context, activeOnly bool) ([]*entity.Department, error) {
	return []*entity.Department{}, nil
}

func (m *mockDeptRepo) Update(ctx context.Context, dept *entity.Department) error { return nil }

func (m *mockDeptRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

type mockTeamRepo struct {
	getByIDFunc func(ctx context.Context, id int64) (*entity.Team, error)
	listFunc    func(ctx context.Context) ([]*entity.Team, error)
}

func (m *mockTeamRepo) Create(ctx context.Context, team *entity.Team) error {
	team.ID = 1
	return nil
}

func (m *mockTeamRepo) GetByID(ctx context.Context, id int64) (*entity.Team, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("%w: team %d", apperr.ErrNotFound, id)
}

func (m *mockTeamRepo) List(ctx context.Context) ([]*entity.Team, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return []*entity.Team{}, nil
}

func (m *mockTeamRepo) Update(ctx context.Context, team *entity.Team) error { return nil }
func (m *mockTeamRepo) Delete(ctx context.Context, id int64) error          { return nil }

type mockAuditRepo struct {
	createFunc func(ctx context.Context, rec *entity.AuditRecord) error
}

func (m *mockAuditRepo) Create(ctx context.Context, rec *entity.AuditRecord) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rec)
	}
	rec.ID = 1
	return nil
}

func (m *mockAuditRepo) ListByApplication(ctx context.Context, applicationID int64) ([]*entity.AuditRecord, error) {
	return []*entity.AuditRecord{}, nil
}
