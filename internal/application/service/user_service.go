package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/pkg/utils"
)

// CreateUserInput carries the fields for a new user account
type CreateUserInput struct {
	EmployeeID         string   `json:"employee_id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Password           string   `json:"password"`
	Department         string   `json:"department"`
	DepartmentID       *int64   `json:"department_id"`
	TeamID             *int64   `json:"team_id"`
	Role               string   `json:"role"`
	WeeklyReportExempt bool     `json:"weekly_report_exempt"`
	Systems            []string `json:"systems"`
}

// UpdateUserInput carries a partial user edit. Nil fields are unchanged.
type UpdateUserInput struct {
	Name               *string  `json:"name"`
	Email              *string  `json:"email"`
	Department         *string  `json:"department"`
	DepartmentID       *int64   `json:"department_id"`
	TeamID             *int64   `json:"team_id"`
	Role               *string  `json:"role"`
	WeeklyReportExempt *bool    `json:"weekly_report_exempt"`
	Systems            []string `json:"systems"`
}

// UserService manages user accounts and their portal system grants.
// All mutations are admin-only.
type UserService interface {
	Create(ctx context.Context, actor authz.Actor, input CreateUserInput) (*entity.UserWithAccess, error)
	Get(ctx context.Context, actor authz.Actor, id int64) (*entity.UserWithAccess, error)
	List(ctx context.Context, actor authz.Actor) ([]*entity.UserWithAccess, error)
	ListApprovers(ctx context.Context, actor authz.Actor) ([]*entity.User, error)
	Update(ctx context.Context, actor authz.Actor, id int64, input UpdateUserInput) (*entity.UserWithAccess, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
	SetSystemAccess(ctx context.Context, actor authz.Actor, id int64, systems []string) error
	BulkSetSystemAccess(ctx context.Context, actor authz.Actor, updates []SystemAccessUpdate) []SystemAccessResult
}

type userServiceImpl struct {
	userRepo   port.UserRepository
	accessRepo port.SystemAccessRepository
	txManager  port.TransactionManager
	logger     Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo port.UserRepository,
	accessRepo port.SystemAccessRepository,
	txManager port.TransactionManager,
	logger Logger,
) UserService {
	return &userServiceImpl{
		userRepo:   userRepo,
		accessRepo: accessRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// Create stores a new user and their system grants in one transaction
func (s *userServiceImpl) Create(ctx context.Context, actor authz.Actor, input CreateUserInput) (*entity.UserWithAccess, error) {
	if !actor.Role.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", apperr.ErrForbidden)
	}

	input.EmployeeID = strings.TrimSpace(input.EmployeeID)
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	if err := utils.ValidateEmployeeID(input.EmployeeID); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if err := utils.ValidateEmail(input.Email); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if len(input.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", apperr.ErrValidation, minPasswordLength)
	}
	role := authz.Role(input.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperr.ErrValidation, input.Role)
	}
	if err := validSystems(input.Systems); err != nil {
		return nil, err
	}

	if existing, err := s.userRepo.GetByEmployeeID(ctx, input.EmployeeID); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: employee id %s is already taken", apperr.ErrValidation, input.EmployeeID)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &entity.User{
		EmployeeID:         input.EmployeeID,
		Name:               input.Name,
		Email:              input.Email,
		PasswordHash:       string(hash),
		Department:         input.Department,
		DepartmentID:       input.DepartmentID,
		TeamID:             input.TeamID,
		Role:               role,
		MustChangePassword: true,
		WeeklyReportExempt: input.WeeklyReportExempt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Create(txCtx, user); err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		if len(input.Systems) > 0 {
			if err := s.accessRepo.ReplaceForUser(txCtx, user.ID, input.Systems); err != nil {
				return fmt.Errorf("grant system access: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create user", "error", err, "employee_id", input.EmployeeID)
		return nil, err
	}

	s.logger.Info("User created", "id", user.ID, "employee_id", user.EmployeeID, "role", user.Role)
	return &entity.UserWithAccess{User: *user, Systems: input.Systems}, nil
}

// Get returns one user with their grants: self or admin
func (s *userServiceImpl) Get(ctx context.Context, actor authz.Actor, id int64) (*entity.UserWithAccess, error) {
	if actor.ID != id && !actor.Role.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", apperr.ErrForbidden)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	systems, err := s.accessRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load system access: %w", err)
	}
	return &entity.UserWithAccess{User: *user, Systems: systems}, nil
}

// List returns all users with their grants: admin only
func (s *userServiceImpl) List(ctx context.Context, actor authz.Actor) ([]*entity.UserWithAccess, error) {
	if !actor.Role.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", apperr.ErrForbidden)
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		s.logger.Error("Failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}

	result := make([]*entity.UserWithAccess, 0, len(users))
	for _, u := range users {
		systems, err := s.accessRepo.ListByUser(ctx, u.ID)
		if err != nil {
			return nil, fmt.Errorf("load system access: %w", err)
		}
		result = append(result, &entity.UserWithAccess{User: *u, Systems: systems})
	}
	return result, nil
}

// ListApprovers returns every user holding an approver role
func (s *userServiceImpl) ListApprovers(ctx context.Context, actor authz.Actor) ([]*entity.User, error) {
	if !actor.Role.IsApprover() {
		return nil, fmt.Errorf("%w: approver role required", apperr.ErrForbidden)
	}
	return s.userRepo.ListApprovers(ctx)
}

// Update applies a partial edit to a user: admin only
func (s *userServiceImpl) Update(ctx context.Context, actor authz.Actor, id int64, input UpdateUserInput) (*entity.UserWithAccess, error) {
	if !actor.Role.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", apperr.ErrForbidden)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, fmt.Errorf("%w: name must not be empty", apperr.ErrValidation)
		}
		user.Name = trimmed
	}
	if input.Email != nil {
		if err := utils.ValidateEmail(*input.Email); err != nil {
			return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
		}
		user.Email = *input.Email
	}
	if input.Department != nil {
		user.Department = *input.Department
	}
	if input.DepartmentID != nil {
		user.DepartmentID = input.DepartmentID
	}
	if input.TeamID != nil {
		user.TeamID = input.TeamID
	}
	if input.Role != nil {
		role := authz.Role(*input.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: unknown role %q", apperr.ErrValidation, *input.Role)
		}
		user.Role = role
	}
	if input.WeeklyReportExempt != nil {
		user.WeeklyReportExempt = *input.WeeklyReportExempt
	}
	user.UpdatedAt = time.Now()

	if input.Systems != nil {
		if err := validSystems(input.Systems); err != nil {
			return nil, err
		}
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.userRepo.Update(txCtx, user); err != nil {
			return fmt.Errorf("update user: %w", err)
		}
		if input.Systems != nil {
			if err := s.accessRepo.ReplaceForUser(txCtx, id, input.Systems); err != nil {
				return fmt.Errorf("update system access: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to update user", "error", err, "id", id)
		return nil, err
	}

	systems, err := s.accessRepo.ListByUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load system access: %w", err)
	}
	return &entity.UserWithAccess{User: *user, Systems: systems}, nil
}

// Delete removes a user: admin only, and never the admin themselves
func (s *userServiceImpl) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	if !actor.Role.IsAdmin() {
		return fmt.Errorf("%w: admin role required", apperr.ErrForbidden)
	}
	if actor.ID == id {
		return fmt.Errorf("%w: cannot delete your own account", apperr.ErrValidation)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete user", "error", err, "id", id)
		return err
	}

	s.logger.Info("User deleted", "id", id, "actor_id", actor.ID)
	return nil
}

// SetSystemAccess replaces a user's portal system grants: admin only
func (s *userServiceImpl) SetSystemAccess(ctx context.Context, actor authz.Actor, id int64, systems []string) error {
	if !actor.Role.IsAdmin() {
		return fmt.Errorf("%w: admin role required", apperr.ErrForbidden)
	}
	if err := validSystems(systems); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return err
	}

	err := s.txManager.WithTransaction(ctx, func(ctx context.Context) error {
		return s.accessRepo.ReplaceForUser(ctx, id, systems)
	})
	if err != nil {
		s.logger.Error("Failed to set system access", "error", err, "user_id", id)
		return fmt.Errorf("set system access: %w", err)
	}

	s.logger.Info("System access updated", "user_id", id, "systems", systems)
	return nil
}

// SystemAccessUpdate names one user's desired grant set in a bulk update
type SystemAccessUpdate struct {
	UserID  int64    `json:"user_id"`
	Systems []string `json:"systems"`
}

// SystemAccessResult reports the outcome for one user in a bulk update
type SystemAccessResult struct {
	UserID  int64  `json:"user_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// BulkSetSystemAccess applies grant sets for several users. Each user's
// replace is transactional on its own; failures do not stop the rest.
func (s *userServiceImpl) BulkSetSystemAccess(ctx context.Context, actor authz.Actor, updates []SystemAccessUpdate) []SystemAccessResult {
	results := make([]SystemAccessResult, 0, len(updates))
	for _, update := range updates {
		result := SystemAccessResult{UserID: update.UserID, Success: true}
		if err := s.SetSystemAccess(ctx, actor, update.UserID, update.Systems); err != nil {
			result.Success = false
			result.Error = err.Error()
		}
		results = append(results, result)
	}
	return results
}

func validSystems(systems []string) error {
	for _, sys := range systems {
		if !entity.ValidSystem(sys) {
			return fmt.Errorf("%w: unknown system %q", apperr.ErrValidation, sys)
		}
	}
	return nil
}
