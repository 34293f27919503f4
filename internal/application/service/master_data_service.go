package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

// MasterDataService manages the reference data behind the portal:
// departments, teams, application types and approver assignments.
// Reads are open to any authenticated actor; mutations are admin-only.
type MasterDataService interface {
	CreateDepartment(ctx context.Context, actor authz.Actor, dept *entity.Department) (*entity.Department, error)
	ListDepartments(ctx context.Context, activeOnly bool) ([]*entity.Department, error)
	UpdateDepartment(ctx context.Context, actor authz.Actor, dept *entity.Department) (*entity.Department, error)
	DeleteDepartment(ctx context.Context, actor authz.Actor, id int64) error

	CreateTeam(ctx context.Context, actor authz.Actor, team *entity.Team) (*entity.Team, error)
	GetTeam(ctx context.Context, id int64) (*entity.Team, error)
	ListTeams(ctx context.Context, actor authz.Actor) ([]*entity.Team, error)
	UpdateTeam(ctx context.Context, actor authz.Actor, team *entity.Team) (*entity.Team, error)
	DeleteTeam(ctx context.Context, actor authz.Actor, id int64) error

	CreateApplicationType(ctx context.Context, actor authz.Actor, typ *entity.ApplicationType) (*entity.ApplicationType, error)
	ListApplicationTypes(ctx context.Context, includeInactive bool) ([]*entity.ApplicationType, error)
	UpdateApplicationType(ctx context.Context, actor authz.Actor, typ *entity.ApplicationType) (*entity.ApplicationType, error)
	DeleteApplicationType(ctx context.Context, actor authz.Actor, id int64) error

	CreateApprover(ctx context.Context, actor authz.Actor, a *entity.ApproverAssignment) (*entity.ApproverAssignment, error)
	ListApprovers(ctx context.Context, userID, departmentID int64) ([]*entity.ApproverAssignment, error)
	UpdateApprover(ctx context.Context, actor authz.Actor, a *entity.ApproverAssignment) (*entity.ApproverAssignment, error)
	DeleteApprover(ctx context.Context, actor authz.Actor, id int64) error
}

type masterDataServiceImpl struct {
	deptRepo     port.DepartmentRepository
	teamRepo     port.TeamRepository
	typeRepo     port.ApplicationTypeRepository
	approverRepo port.ApproverRepository
	userRepo     port.UserRepository
	logger       Logger
}

// NewMasterDataService creates a new MasterDataService
func NewMasterDataService(
	deptRepo port.DepartmentRepository,
	teamRepo port.TeamRepository,
	typeRepo port.ApplicationTypeRepository,
	approverRepo port.ApproverRepository,
	userRepo port.UserRepository,
	logger Logger,
) MasterDataService {
	return &masterDataServiceImpl{
		deptRepo:     deptRepo,
		teamRepo:     teamRepo,
		typeRepo:     typeRepo,
		approverRepo: approverRepo,
		userRepo:     userRepo,
		logger:       logger,
	}
}

func requireAdmin(actor authz.Actor) error {
	if !actor.Role.IsAdmin() {
		return fmt.Errorf("%w: admin role required", apperr.ErrForbidden)
	}
	return nil
}

// CreateDepartment stores a new department with a unique code
func (s *masterDataServiceImpl) CreateDepartment(ctx context.Context, actor authz.Actor, dept *entity.Department) (*entity.Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	dept.Code = strings.TrimSpace(dept.Code)
	dept.Name = strings.TrimSpace(dept.Name)
	if dept.Code == "" || dept.Name == "" {
		return nil, fmt.Errorf("%w: code and name are required", apperr.ErrValidation)
	}
	if existing, err := s.deptRepo.GetByCode(ctx, dept.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: department code %s is already taken", apperr.ErrValidation, dept.Code)
	}

	dept.IsActive = true
	dept.CreatedAt = time.Now()
	if err := s.deptRepo.Create(ctx, dept); err != nil {
		s.logger.Error("Failed to create department", "error", err, "code", dept.Code)
		return nil, fmt.Errorf("create department: %w", err)
	}

	s.logger.Info("Department created", "id", dept.ID, "code", dept.Code)
	return dept, nil
}

// ListDepartments returns departments, optionally only active ones
func (s *masterDataServiceImpl) ListDepartments(ctx context.Context, activeOnly bool) ([]*entity.Department, error) {
	return s.deptRepo.List(ctx, activeOnly)
}

// UpdateDepartment edits a department's name, description or active flag
func (s *masterDataServiceImpl) UpdateDepartment(ctx context.Context, actor authz.Actor, dept *entity.Department) (*entity.Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	existing, err := s.deptRepo.GetByID(ctx, dept.ID)
	if err != nil {
		return nil, err
	}

	dept.Name = strings.TrimSpace(dept.Name)
	if dept.Name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", apperr.ErrValidation)
	}
	// Code is immutable once created.
	dept.Code = existing.Code
	dept.CreatedAt = existing.CreatedAt

	if err := s.deptRepo.Update(ctx, dept); err != nil {
		s.logger.Error("Failed to update department", "error", err, "id", dept.ID)
		return nil, fmt.Errorf("update department: %w", err)
	}
	return dept, nil
}

// DeleteDepartment removes a department that no user references
func (s *masterDataServiceImpl) DeleteDepartment(ctx context.Context, actor authz.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.deptRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete department", "error", err, "id", id)
		return err
	}
	s.logger.Info("Department deleted", "id", id)
	return nil
}

// CreateTeam stores a new team, validating its leader if set
func (s *masterDataServiceImpl) CreateTeam(ctx context.Context, actor authz.Actor, team *entity.Team) (*entity.Team, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if team.LeaderID != nil {
		if _, err := s.userRepo.GetByID(ctx, *team.LeaderID); err != nil {
			return nil, fmt.Errorf("%w: leader %d does not exist", apperr.ErrValidation, *team.LeaderID)
		}
	}

	team.CreatedAt = time.Now()
	if err := s.teamRepo.Create(ctx, team); err != nil {
		s.logger.Error("Failed to create team", "error", err, "name", team.Name)
		return nil, fmt.Errorf("create team: %w", err)
	}

	s.logger.Info("Team created", "id", team.ID, "name", team.Name)
	return team, nil
}

// GetTeam returns one team with its members
func (s *masterDataServiceImpl) GetTeam(ctx context.Context, id int64) (*entity.Team, error) {
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	members, err := s.userRepo.ListByTeam(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load team members: %w", err)
	}
	team.Members = members
	team.MemberCount = len(members)
	return team, nil
}

// ListTeams returns the teams visible to the actor: admins, BOD and GM
// see all, an onsite leader sees their own team, everyone else none
func (s *masterDataServiceImpl) ListTeams(ctx context.Context, actor authz.Actor) ([]*entity.Team, error) {
	switch actor.Role {
	case authz.RoleAdmin, authz.RoleBOD, authz.RoleGM:
		return s.teamRepo.List(ctx)
	case authz.RoleOnsiteLeader:
		user, err := s.userRepo.GetByID(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		if user.TeamID == nil {
			return []*entity.Team{}, nil
		}
		team, err := s.teamRepo.GetByID(ctx, *user.TeamID)
		if err != nil {
			return nil, err
		}
		return []*entity.Team{team}, nil
	default:
		return []*entity.Team{}, nil
	}
}

// UpdateTeam edits a team's name, leader or description
func (s *masterDataServiceImpl) UpdateTeam(ctx context.Context, actor authz.Actor, team *entity.Team) (*entity.Team, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	if _, err := s.teamRepo.GetByID(ctx, team.ID); err != nil {
		return nil, err
	}
	team.Name = strings.TrimSpace(team.Name)
	if team.Name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", apperr.ErrValidation)
	}
	if team.LeaderID != nil {
		if _, err := s.userRepo.GetByID(ctx, *team.LeaderID); err != nil {
			return nil, fmt.Errorf("%w: leader %d does not exist", apperr.ErrValidation, *team.LeaderID)
		}
	}

	if err := s.teamRepo.Update(ctx, team); err != nil {
		s.logger.Error("Failed to update team", "error", err, "id", team.ID)
		return nil, fmt.Errorf("update team: %w", err)
	}
	return team, nil
}

// DeleteTeam removes a team; members are detached, not deleted
func (s *masterDataServiceImpl) DeleteTeam(ctx context.Context, actor authz.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.teamRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete team", "error", err, "id", id)
		return err
	}
	s.logger.Info("Team deleted", "id", id)
	return nil
}

// CreateApplicationType stores a new application type with a unique code
func (s *masterDataServiceImpl) CreateApplicationType(ctx context.Context, actor authz.Actor, typ *entity.ApplicationType) (*entity.ApplicationType, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	typ.Code = strings.TrimSpace(typ.Code)
	typ.Name = strings.TrimSpace(typ.Name)
	if typ.Code == "" || typ.Name == "" {
		return nil, fmt.Errorf("%w: code and name are required", apperr.ErrValidation)
	}
	if existing, err := s.typeRepo.GetByCode(ctx, typ.Code); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: application type code %s is already taken", apperr.ErrValidation, typ.Code)
	}
	if typ.ApprovalLevels <= 0 {
		typ.ApprovalLevels = 1
	}

	typ.IsActive = true
	typ.CreatedAt = time.Now()
	if err := s.typeRepo.Create(ctx, typ); err != nil {
		s.logger.Error("Failed to create application type", "error", err, "code", typ.Code)
		return nil, fmt.Errorf("create application type: %w", err)
	}

	s.logger.Info("Application type created", "id", typ.ID, "code", typ.Code)
	return typ, nil
}

// ListApplicationTypes returns application types in display order
func (s *masterDataServiceImpl) ListApplicationTypes(ctx context.Context, includeInactive bool) ([]*entity.ApplicationType, error) {
	return s.typeRepo.List(ctx, includeInactive)
}

// UpdateApplicationType edits an application type. Deactivating a type
// hides it from new applications without touching existing ones.
func (s *masterDataServiceImpl) UpdateApplicationType(ctx context.Context, actor authz.Actor, typ *entity.ApplicationType) (*entity.ApplicationType, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	existing, err := s.typeRepo.GetByID(ctx, typ.ID)
	if err != nil {
		return nil, err
	}
	typ.Name = strings.TrimSpace(typ.Name)
	if typ.Name == "" {
		return nil, fmt.Errorf("%w: name must not be empty", apperr.ErrValidation)
	}
	typ.Code = existing.Code
	typ.CreatedAt = existing.CreatedAt
	if typ.ApprovalLevels <= 0 {
		typ.ApprovalLevels = existing.ApprovalLevels
	}

	if err := s.typeRepo.Update(ctx, typ); err != nil {
		s.logger.Error("Failed to update application type", "error", err, "id", typ.ID)
		return nil, fmt.Errorf("update application type: %w", err)
	}
	return typ, nil
}

// DeleteApplicationType removes a type that no application references
func (s *masterDataServiceImpl) DeleteApplicationType(ctx context.Context, actor authz.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.typeRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete application type", "error", err, "id", id)
		return err
	}
	s.logger.Info("Application type deleted", "id", id)
	return nil
}

// CreateApprover assigns a user as approver for a department
func (s *masterDataServiceImpl) CreateApprover(ctx context.Context, actor authz.Actor, a *entity.ApproverAssignment) (*entity.ApproverAssignment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, a.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: user %d does not exist", apperr.ErrValidation, a.UserID)
	}
	if !user.Role.IsApprover() {
		return nil, fmt.Errorf("%w: user %s does not hold an approver role", apperr.ErrValidation, user.EmployeeID)
	}
	if _, err := s.deptRepo.GetByID(ctx, a.DepartmentID); err != nil {
		return nil, fmt.Errorf("%w: department %d does not exist", apperr.ErrValidation, a.DepartmentID)
	}
	if a.ApprovalLevel <= 0 {
		a.ApprovalLevel = 1
	}
	if a.MaxAmount != nil && *a.MaxAmount < 0 {
		return nil, fmt.Errorf("%w: max amount must not be negative", apperr.ErrValidation)
	}

	a.IsActive = true
	a.CreatedAt = time.Now()
	if err := s.approverRepo.Create(ctx, a); err != nil {
		s.logger.Error("Failed to create approver assignment", "error", err, "user_id", a.UserID)
		return nil, fmt.Errorf("create approver assignment: %w", err)
	}

	s.logger.Info("Approver assigned", "id", a.ID, "user_id", a.UserID, "department_id", a.DepartmentID)
	return a, nil
}

// ListApprovers returns assignments, optionally filtered by user or
// department (zero means no filter)
func (s *masterDataServiceImpl) ListApprovers(ctx context.Context, userID, departmentID int64) ([]*entity.ApproverAssignment, error) {
	return s.approverRepo.List(ctx, userID, departmentID)
}

// UpdateApprover edits an assignment's level, ceiling or active flag
func (s *masterDataServiceImpl) UpdateApprover(ctx context.Context, actor authz.Actor, a *entity.ApproverAssignment) (*entity.ApproverAssignment, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	existing, err := s.approverRepo.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	a.UserID = existing.UserID
	a.DepartmentID = existing.DepartmentID
	a.CreatedAt = existing.CreatedAt
	if a.ApprovalLevel <= 0 {
		a.ApprovalLevel = existing.ApprovalLevel
	}
	if a.MaxAmount != nil && *a.MaxAmount < 0 {
		return nil, fmt.Errorf("%w: max amount must not be negative", apperr.ErrValidation)
	}

	if err := s.approverRepo.Update(ctx, a); err != nil {
		s.logger.Error("Failed to update approver assignment", "error", err, "id", a.ID)
		return nil, fmt.Errorf("update approver assignment: %w", err)
	}
	return a, nil
}

// DeleteApprover removes an assignment
func (s *masterDataServiceImpl) DeleteApprover(ctx context.Context, actor authz.Actor, id int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.approverRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete approver assignment", "error", err, "id", id)
		return err
	}
	s.logger.Info("Approver assignment deleted", "id", id)
	return nil
}
