package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/sqlite"
)

// ApproverRepository implements port.ApproverRepository
type ApproverRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewApproverRepository creates a new approver repository
func NewApproverRepository(db *sqlite.DB, logger *zap.Logger) port.ApproverRepository {
	return &ApproverRepository{
		db:     db,
		logger: logger,
	}
}

const approverSelect = `
	SELECT a.id, a.user_id, a.department_id, a.approval_level, a.max_amount,
		a.is_active, a.created_at,
		u.name, u.employee_id, d.name, d.code
	FROM approvers a
	JOIN users u ON u.id = a.user_id
	JOIN departments d ON d.id = a.department_id
`

// Create inserts a new approver assignment
func (r *ApproverRepository) Create(ctx context.Context, a *entity.ApproverAssignment) error {
	query := `
		INSERT INTO approvers (
			user_id, department_id, approval_level, max_amount, is_active,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		a.UserID,
		a.DepartmentID,
		a.ApprovalLevel,
		a.MaxAmount,
		a.IsActive,
		a.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create approver assignment", zap.Error(err), zap.Int64("user_id", a.UserID))
		return fmt.Errorf("create approver assignment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	a.ID = id
	return nil
}

// GetByID retrieves one assignment with user and department joined
func (r *ApproverRepository) GetByID(ctx context.Context, id int64) (*entity.ApproverAssignment, error) {
	query := approverSelect + "WHERE a.id = ?"

	a, err := scanApprover(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: approver assignment %d", apperr.ErrNotFound, id)
		}
		r.logger.Error("Failed to get approver assignment", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("get approver assignment: %w", err)
	}
	return a, nil
}

// List retrieves assignments, optionally narrowed to a user or a
// department (zero means no filter)
func (r *ApproverRepository) List(ctx context.Context, userID, departmentID int64) ([]*entity.ApproverAssignment, error) {
	var conds []string
	var args []interface{}

	if userID != 0 {
		conds = append(conds, "a.user_id = ?")
		args = append(args, userID)
	}
	if departmentID != 0 {
		conds = append(conds, "a.department_id = ?")
		args = append(args, departmentID)
	}

	query := approverSelect
	if len(conds) > 0 {
		query += "WHERE " + strings.Join(conds, " AND ") + " "
	}
	query += "ORDER BY d.code, a.approval_level"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list approver assignments", zap.Error(err))
		return nil, fmt.Errorf("list approver assignments: %w", err)
	}
	defer rows.Close()

	var assignments []*entity.ApproverAssignment
	for rows.Next() {
		a, err := scanApprover(rows)
		if err != nil {
			return nil, fmt.Errorf("scan approver assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// DepartmentNamesForUser retrieves the names of departments the user
// actively approves for
func (r *ApproverRepository) DepartmentNamesForUser(ctx context.Context, userID int64) ([]string, error) {
	query := `
		SELECT d.name
		FROM approvers a
		JOIN departments d ON d.id = a.department_id
		WHERE a.user_id = ? AND a.is_active = 1
		ORDER BY d.code
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list approver departments", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("list approver departments: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan department name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Update persists an assignment's mutable fields
func (r *ApproverRepository) Update(ctx context.Context, a *entity.ApproverAssignment) error {
	query := "UPDATE approvers SET approval_level = ?, max_amount = ?, is_active = ? WHERE id = ?"

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		a.ApprovalLevel,
		a.MaxAmount,
		a.IsActive,
		a.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update approver assignment", zap.Error(err), zap.Int64("id", a.ID))
		return fmt.Errorf("update approver assignment: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: approver assignment %d", apperr.ErrNotFound, a.ID)
	}
	return nil
}

// Delete removes an assignment
func (r *ApproverRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM approvers WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete approver assignment", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("delete approver assignment: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: approver assignment %d", apperr.ErrNotFound, id)
	}
	return nil
}

func scanApprover(row scanner) (*entity.ApproverAssignment, error) {
	var a entity.ApproverAssignment
	var maxAmount sql.NullFloat64

	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.DepartmentID,
		&a.ApprovalLevel,
		&maxAmount,
		&a.IsActive,
		&a.CreatedAt,
		&a.UserName,
		&a.UserEmployeeID,
		&a.DepartmentName,
		&a.DepartmentCode,
	)
	if err != nil {
		return nil, err
	}

	if maxAmount.Valid {
		a.MaxAmount = &maxAmount.Float64
	}
	return &a, nil
}

// Verify interface compliance
var _ port.ApproverRepository = (*ApproverRepository)(nil)
