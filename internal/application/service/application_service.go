package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quyenpham2020/shinsei-portal/internal/application/dispatcher"
	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/event"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Approver visibility scopes. With ScopeAll every approver sees every
// application; with ScopeDepartment an approver only sees applications
// from their own department and departments they are assigned to.
const (
	ScopeAll        = "all"
	ScopeDepartment = "department"
)

// CreateApplicationInput carries the fields for a new application
type CreateApplicationInput struct {
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	// IsDraft keeps the new application in draft instead of submitting
	// it immediately.
	IsDraft bool `json:"is_draft"`
}

// UpdateApplicationInput carries a partial edit. Nil fields are left
// unchanged; ClearAmount removes the amount.
type UpdateApplicationInput struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	ClearAmount bool     `json:"clear_amount"`
}

// BulkResult reports the outcome for one application in a bulk action
type BulkResult struct {
	ID      int64  `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// ApplicationList pairs a page of applications with the total match count
type ApplicationList struct {
	Applications []*entity.Application `json:"applications"`
	Total        int64                 `json:"total"`
}

// ApplicationService manages the approval workflow for applications
type ApplicationService interface {
	Create(ctx context.Context, actor authz.Actor, input CreateApplicationInput) (*entity.Application, error)
	Get(ctx context.Context, actor authz.Actor, id int64) (*entity.Application, error)
	List(ctx context.Context, actor authz.Actor, filter entity.ApplicationFilter) (*ApplicationList, error)
	Update(ctx context.Context, actor authz.Actor, id int64, input UpdateApplicationInput) (*entity.Application, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
	Submit(ctx context.Context, actor authz.Actor, id int64) (*entity.Application, error)
	Approve(ctx context.Context, actor authz.Actor, id int64) (*entity.Application, error)
	Reject(ctx context.Context, actor authz.Actor, id int64, reason string) (*entity.Application, error)
	BulkApprove(ctx context.Context, actor authz.Actor, ids []int64) []BulkResult
	BulkReject(ctx context.Context, actor authz.Actor, ids []int64, reason string) []BulkResult
	AddComment(ctx context.Context, actor authz.Actor, id int64, content string) (*entity.Comment, error)
}

type applicationServiceImpl struct {
	appRepo       port.ApplicationRepository
	typeRepo      port.ApplicationTypeRepository
	commentRepo   port.CommentRepository
	approverRepo  port.ApproverRepository
	dispatcher    dispatcher.Dispatcher
	policy        authz.Policy
	approverScope string
	logger        Logger
}

// NewApplicationService creates a new ApplicationService. approverScope
// is ScopeAll or ScopeDepartment.
func NewApplicationService(
	appRepo port.ApplicationRepository,
	typeRepo port.ApplicationTypeRepository,
	commentRepo port.CommentRepository,
	approverRepo port.ApproverRepository,
	disp dispatcher.Dispatcher,
	approverScope string,
	logger Logger,
) ApplicationService {
	if approverScope != ScopeDepartment {
		approverScope = ScopeAll
	}
	return &applicationServiceImpl{
		appRepo:       appRepo,
		typeRepo:      typeRepo,
		commentRepo:   commentRepo,
		approverRepo:  approverRepo,
		dispatcher:    disp,
		policy:        authz.NewPolicy(),
		approverScope: approverScope,
		logger:        logger,
	}
}

// Create validates the input against the application type and stores a
// new draft owned by the actor
func (s *applicationServiceImpl) Create(ctx context.Context, actor authz.Actor, input CreateApplicationInput) (*entity.Application, error) {
	if !s.policy.CanCreate(actor) {
		return nil, fmt.Errorf("%w: not allowed to create applications", apperr.ErrForbidden)
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}

	typ, err := s.typeRepo.GetByCode(ctx, input.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown application type %q", apperr.ErrValidation, input.Type)
	}
	if !typ.IsActive {
		return nil, fmt.Errorf("%w: application type %q is inactive", apperr.ErrValidation, input.Type)
	}
	if typ.RequiresAmount && input.Amount == nil {
		return nil, fmt.Errorf("%w: application type %q requires an amount", apperr.ErrValidation, input.Type)
	}
	if input.Amount != nil && *input.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", apperr.ErrValidation)
	}

	status := workflow.StatePending
	if input.IsDraft {
		status = workflow.StateDraft
	}

	now := time.Now()
	app := &entity.Application{
		Title:       input.Title,
		TypeID:      typ.ID,
		TypeCode:    typ.Code,
		Description: input.Description,
		Amount:      input.Amount,
		Status:      status,
		ApplicantID: actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.appRepo.Create(ctx, app); err != nil {
		s.logger.Error("Failed to create application", "error", err, "applicant_id", actor.ID)
		return nil, fmt.Errorf("create application: %w", err)
	}

	s.publish(ctx, event.TypeApplicationCreated, app.ID, actor.ID, map[string]interface{}{
		"title": app.Title,
		"type":  app.TypeCode,
	})
	if app.Status == workflow.StatePending {
		s.publish(ctx, event.TypeApplicationSubmitted, app.ID, actor.ID, map[string]interface{}{
			"title": app.Title,
		})
	}

	s.logger.Info("Application created", "id", app.ID, "applicant_id", actor.ID, "type", app.TypeCode)
	return app, nil
}

// Get returns one application with its comments, enforcing visibility
func (s *applicationServiceImpl) Get(ctx context.Context, actor authz.Actor, id int64) (*entity.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.checkVisibility(ctx, actor, app); err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.ListByApplication(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load comments", "error", err, "application_id", id)
		return nil, fmt.Errorf("load comments: %w", err)
	}
	app.Comments = comments

	return app, nil
}

// List returns the applications visible to the actor, filtered and paged
func (s *applicationServiceImpl) List(ctx context.Context, actor authz.Actor, filter entity.ApplicationFilter) (*ApplicationList, error) {
	scoped, err := s.scopeFilter(ctx, actor, filter)
	if err != nil {
		return nil, err
	}

	apps, err := s.appRepo.List(ctx, scoped)
	if err != nil {
		s.logger.Error("Failed to list applications", "error", err, "actor_id", actor.ID)
		return nil, fmt.Errorf("list applications: %w", err)
	}

	total, err := s.appRepo.Count(ctx, scoped)
	if err != nil {
		return nil, fmt.Errorf("count applications: %w", err)
	}

	return &ApplicationList{Applications: apps, Total: total}, nil
}

// Update applies a partial edit to a draft or pending application
func (s *applicationServiceImpl) Update(ctx context.Context, actor authz.Actor, id int64, input UpdateApplicationInput) (*entity.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanEdit(actor, app.ApplicantID, app.Status) {
		if app.IsTerminal() && (actor.ID == app.ApplicantID || actor.Role.IsAdmin()) {
			return nil, fmt.Errorf("%w: application %d is %s and can no longer be edited", apperr.ErrInvalidState, id, app.Status)
		}
		return nil, fmt.Errorf("%w: not allowed to edit application %d", apperr.ErrForbidden, id)
	}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: title must not be empty", apperr.ErrValidation)
		}
		input.Title = &trimmed
	}
	if input.Amount != nil && *input.Amount < 0 {
		return nil, fmt.Errorf("%w: amount must not be negative", apperr.ErrValidation)
	}
	if input.ClearAmount {
		typ, err := s.typeRepo.GetByID(ctx, app.TypeID)
		if err != nil {
			return nil, fmt.Errorf("load application type: %w", err)
		}
		if typ.RequiresAmount {
			return nil, fmt.Errorf("%w: application type %q requires an amount", apperr.ErrValidation, typ.Code)
		}
	}

	patch := port.ApplicationPatch{
		Title:       input.Title,
		Description: input.Description,
		Amount:      input.Amount,
		ClearAmount: input.ClearAmount,
	}

	ok, err := s.appRepo.UpdateContent(ctx, id, patch)
	if err != nil {
		s.logger.Error("Failed to update application", "error", err, "id", id)
		return nil, fmt.Errorf("update application: %w", err)
	}
	if !ok {
		// The row left draft/pending between the read and the write.
		return nil, fmt.Errorf("%w: application %d can no longer be edited", apperr.ErrInvalidState, id)
	}

	return s.appRepo.GetByID(ctx, id)
}

// Delete removes an application and its comments and attachments
func (s *applicationServiceImpl) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.policy.CanDelete(actor, app.ApplicantID, app.Status) {
		return fmt.Errorf("%w: not allowed to delete application %d", apperr.ErrForbidden, id)
	}

	if err := s.appRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete application", "error", err, "id", id)
		return fmt.Errorf("delete application: %w", err)
	}

	s.publish(ctx, event.TypeApplicationDeleted, id, actor.ID, map[string]interface{}{
		"title": app.Title,
	})

	s.logger.Info("Application deleted", "id", id, "actor_id", actor.ID)
	return nil
}

// Submit moves a draft to pending
func (s *applicationServiceImpl) Submit(ctx context.Context, actor authz.Actor, id int64) (*entity.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanSubmit(actor, app.ApplicantID) {
		return nil, fmt.Errorf("%w: not allowed to submit application %d", apperr.ErrForbidden, id)
	}

	machine, err := workflow.NewMachine(app.Status)
	if err != nil {
		return nil, err
	}
	if _, err := machine.Fire(workflow.ActionSubmit); err != nil {
		return nil, err
	}

	ok, err := s.appRepo.Submit(ctx, id)
	if err != nil {
		s.logger.Error("Failed to submit application", "error", err, "id", id)
		return nil, fmt.Errorf("submit application: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: application %d is no longer a draft", apperr.ErrInvalidState, id)
	}

	s.publish(ctx, event.TypeApplicationSubmitted, id, actor.ID, nil)
	s.logger.Info("Application submitted", "id", id, "actor_id", actor.ID)

	return s.appRepo.GetByID(ctx, id)
}

// Approve moves a pending application to approved. The role check runs
// before the status check so a non-approver is always refused outright,
// never told about workflow state.
func (s *applicationServiceImpl) Approve(ctx context.Context, actor authz.Actor, id int64) (*entity.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.Role.IsApprover() {
		return nil, fmt.Errorf("%w: approver role required", apperr.ErrForbidden)
	}
	if err := s.checkVisibility(ctx, actor, app); err != nil {
		return nil, err
	}
	if !s.policy.CanApprove(actor, app.Status) {
		return nil, fmt.Errorf("%w: application %d is %s, not pending", apperr.ErrInvalidState, id, app.Status)
	}

	ok, err := s.appRepo.Approve(ctx, id, actor.ID, time.Now())
	if err != nil {
		s.logger.Error("Failed to approve application", "error", err, "id", id)
		return nil, fmt.Errorf("approve application: %w", err)
	}
	if !ok {
		// Lost the race: another approver resolved it first.
		return nil, fmt.Errorf("%w: application %d was already resolved", apperr.ErrInvalidState, id)
	}

	s.publish(ctx, event.TypeApplicationApproved, id, actor.ID, nil)
	s.logger.Info("Application approved", "id", id, "approver_id", actor.ID)

	return s.appRepo.GetByID(ctx, id)
}

// Reject moves a pending application to rejected. The reason is stored
// verbatim and may be empty; the same check order as Approve applies.
func (s *applicationServiceImpl) Reject(ctx context.Context, actor authz.Actor, id int64, reason string) (*entity.Application, error) {
	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !actor.Role.IsApprover() {
		return nil, fmt.Errorf("%w: approver role required", apperr.ErrForbidden)
	}
	if err := s.checkVisibility(ctx, actor, app); err != nil {
		return nil, err
	}
	if !s.policy.CanReject(actor, app.Status) {
		return nil, fmt.Errorf("%w: application %d is %s, not pending", apperr.ErrInvalidState, id, app.Status)
	}

	ok, err := s.appRepo.Reject(ctx, id, actor.ID, reason)
	if err != nil {
		s.logger.Error("Failed to reject application", "error", err, "id", id)
		return nil, fmt.Errorf("reject application: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: application %d was already resolved", apperr.ErrInvalidState, id)
	}

	s.publish(ctx, event.TypeApplicationRejected, id, actor.ID, map[string]interface{}{
		"reason": reason,
	})
	s.logger.Info("Application rejected", "id", id, "approver_id", actor.ID)

	return s.appRepo.GetByID(ctx, id)
}

// BulkApprove approves each id independently; one failure never aborts
// the rest
func (s *applicationServiceImpl) BulkApprove(ctx context.Context, actor authz.Actor, ids []int64) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		if _, err := s.Approve(ctx, actor, id); err != nil {
			results = append(results, BulkResult{ID: id, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{ID: id, Success: true})
	}
	return results
}

// BulkReject rejects each id independently with a shared reason
func (s *applicationServiceImpl) BulkReject(ctx context.Context, actor authz.Actor, ids []int64, reason string) []BulkResult {
	results := make([]BulkResult, 0, len(ids))
	for _, id := range ids {
		if _, err := s.Reject(ctx, actor, id, reason); err != nil {
			results = append(results, BulkResult{ID: id, Error: err.Error()})
			continue
		}
		results = append(results, BulkResult{ID: id, Success: true})
	}
	return results
}

// AddComment appends a comment to an application the actor can view
func (s *applicationServiceImpl) AddComment(ctx context.Context, actor authz.Actor, id int64, content string) (*entity.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is required", apperr.ErrValidation)
	}

	app, err := s.appRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.policy.CanComment(actor, app.ApplicantID) {
		return nil, fmt.Errorf("%w: not allowed to comment on application %d", apperr.ErrForbidden, id)
	}
	if err := s.checkVisibility(ctx, actor, app); err != nil {
		return nil, err
	}

	comment := &entity.Comment{
		ApplicationID: id,
		UserID:        actor.ID,
		Content:       content,
		CreatedAt:     time.Now(),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		s.logger.Error("Failed to add comment", "error", err, "application_id", id)
		return nil, fmt.Errorf("add comment: %w", err)
	}
	comment.UserName = actor.Name
	comment.UserDepartment = actor.Department

	s.publish(ctx, event.TypeApplicationCommented, id, actor.ID, map[string]interface{}{
		"comment_id": comment.ID,
	})

	return comment, nil
}

// checkVisibility enforces who may see an application: the owner always,
// admins always, approvers per the configured scope.
func (s *applicationServiceImpl) checkVisibility(ctx context.Context, actor authz.Actor, app *entity.Application) error {
	if actor.ID == app.ApplicantID || actor.Role.IsAdmin() {
		return nil
	}
	if !actor.Role.IsApprover() {
		return fmt.Errorf("%w: not allowed to view application %d", apperr.ErrForbidden, app.ID)
	}
	if s.approverScope == ScopeAll {
		return nil
	}

	depts, err := s.visibleDepartments(ctx, actor)
	if err != nil {
		return err
	}
	for _, d := range depts {
		if d == app.ApplicantDepartment {
			return nil
		}
	}
	return fmt.Errorf("%w: application %d is outside your department scope", apperr.ErrForbidden, app.ID)
}

// scopeFilter narrows a listing filter to what the actor may see
func (s *applicationServiceImpl) scopeFilter(ctx context.Context, actor authz.Actor, filter entity.ApplicationFilter) (entity.ApplicationFilter, error) {
	if actor.Role.IsAdmin() {
		return filter, nil
	}
	if !actor.Role.IsApprover() {
		filter.ApplicantID = actor.ID
		return filter, nil
	}
	if s.approverScope == ScopeDepartment {
		depts, err := s.visibleDepartments(ctx, actor)
		if err != nil {
			return filter, err
		}
		filter.Departments = depts
	}
	return filter, nil
}

// visibleDepartments returns the actor's own department plus every
// department they actively approve for
func (s *applicationServiceImpl) visibleDepartments(ctx context.Context, actor authz.Actor) ([]string, error) {
	assigned, err := s.approverRepo.DepartmentNamesForUser(ctx, actor.ID)
	if err != nil {
		s.logger.Error("Failed to load approver departments", "error", err, "user_id", actor.ID)
		return nil, fmt.Errorf("load approver departments: %w", err)
	}

	depts := make([]string, 0, len(assigned)+1)
	if actor.Department != "" {
		depts = append(depts, actor.Department)
	}
	for _, d := range assigned {
		if d != actor.Department {
			depts = append(depts, d)
		}
	}
	return depts, nil
}

// publish hands the event to the dispatcher without tying its handlers
// to the request lifetime
func (s *applicationServiceImpl) publish(ctx context.Context, eventType event.Type, applicationID, actorID int64, payload map[string]interface{}) {
	if s.dispatcher == nil {
		return
	}
	evt := event.New(eventType, applicationID, actorID, payload)
	s.dispatcher.DispatchAsync(context.WithoutCancel(ctx), evt)
}
