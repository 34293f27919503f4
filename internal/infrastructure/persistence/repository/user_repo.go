package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/sqlite"
)

// UserRepository implements port.UserRepository
type UserRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sqlite.DB, logger *zap.Logger) port.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `
	id, employee_id, name, email, password_hash, department, department_id,
	team_id, role, must_change_password, weekly_report_exempt,
	created_at, updated_at
`

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (
			employee_id, name, email, password_hash, department, department_id,
			team_id, role, must_change_password, weekly_report_exempt,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		user.EmployeeID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Department,
		user.DepartmentID,
		user.TeamID,
		string(user.Role),
		user.MustChangePassword,
		user.WeeklyReportExempt,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err), zap.String("employee_id", user.EmployeeID))
		return fmt.Errorf("create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	user.ID = id
	return nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	query := "SELECT" + userColumns + "FROM users WHERE id = ?"
	return r.getOne(ctx, query, id)
}

// GetByEmployeeID retrieves a user by employee id, case-insensitively
func (r *UserRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*entity.User, error) {
	query := "SELECT" + userColumns + "FROM users WHERE employee_id = ? COLLATE NOCASE"
	return r.getOne(ctx, query, employeeID)
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	query := "SELECT" + userColumns + "FROM users WHERE email = ? COLLATE NOCASE"
	return r.getOne(ctx, query, email)
}

// List retrieves all users ordered by employee id
func (r *UserRepository) List(ctx context.Context) ([]*entity.User, error) {
	query := "SELECT" + userColumns + "FROM users ORDER BY employee_id"
	return r.list(ctx, query)
}

// ListApprovers retrieves users holding an approver role
func (r *UserRepository) ListApprovers(ctx context.Context) ([]*entity.User, error) {
	query := "SELECT" + userColumns + `FROM users
		WHERE role IN (?, ?, ?, ?, ?) ORDER BY name`
	return r.list(ctx, query,
		string(authz.RoleApprover),
		string(authz.RoleOnsiteLeader),
		string(authz.RoleGM),
		string(authz.RoleBOD),
		string(authz.RoleAdmin),
	)
}

// ListByTeam retrieves the members of a team
func (r *UserRepository) ListByTeam(ctx context.Context, teamID int64) ([]*entity.User, error) {
	query := "SELECT" + userColumns + "FROM users WHERE team_id = ? ORDER BY name"
	return r.list(ctx, query, teamID)
}

// ListWithoutWeeklyReport retrieves non-exempt users who have no report
// for the given week
func (r *UserRepository) ListWithoutWeeklyReport(ctx context.Context, weekStart string) ([]*entity.User, error) {
	query := "SELECT" + userColumns + `FROM users
		WHERE weekly_report_exempt = 0
		  AND id NOT IN (SELECT user_id FROM weekly_reports WHERE week_start = ?)
		ORDER BY department, name`
	return r.list(ctx, query, weekStart)
}

// Update persists every mutable field of a user
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	query := `
		UPDATE users
		SET name = ?, email = ?, password_hash = ?, department = ?,
			department_id = ?, team_id = ?, role = ?,
			must_change_password = ?, weekly_report_exempt = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.Department,
		user.DepartmentID,
		user.TeamID,
		string(user.Role),
		user.MustChangePassword,
		user.WeeklyReportExempt,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update user", zap.Error(err), zap.Int64("id", user.ID))
		return fmt.Errorf("update user: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d", apperr.ErrNotFound, user.ID)
	}
	return nil
}

// Delete removes a user. Applications they filed block the delete via
// foreign keys; reports and grants cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: user %d still has workflow records", apperr.ErrInvalidState, id)
		}
		r.logger.Error("Failed to delete user", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("delete user: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: user %d", apperr.ErrNotFound, id)
	}
	return nil
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...interface{}) (*entity.User, error) {
	user, err := scanUser(r.db.Executor(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user", apperr.ErrNotFound)
		}
		r.logger.Error("Failed to get user", zap.Error(err))
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.User, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list users", zap.Error(err))
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*entity.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func scanUser(row scanner) (*entity.User, error) {
	var user entity.User
	var role string
	var departmentID, teamID sql.NullInt64

	err := row.Scan(
		&user.ID,
		&user.EmployeeID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Department,
		&departmentID,
		&teamID,
		&role,
		&user.MustChangePassword,
		&user.WeeklyReportExempt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = authz.Role(role)
	if departmentID.Valid {
		user.DepartmentID = &departmentID.Int64
	}
	if teamID.Valid {
		user.TeamID = &teamID.Int64
	}
	return &user, nil
}

// Verify interface compliance
var _ port.UserRepository = (*UserRepository)(nil)
