package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/sqlite"
)

// DepartmentRepository implements port.DepartmentRepository
type DepartmentRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db *sqlite.DB, logger *zap.Logger) port.DepartmentRepository {
	return &DepartmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new department
func (r *DepartmentRepository) Create(ctx context.Context, dept *entity.Department) error {
	query := `
		INSERT INTO departments (code, name, description, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		dept.Code,
		dept.Name,
		dept.Description,
		dept.IsActive,
		dept.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create department", zap.Error(err), zap.String("code", dept.Code))
		return fmt.Errorf("create department: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	dept.ID = id
	return nil
}

// GetByID retrieves a department by id
func (r *DepartmentRepository) GetByID(ctx context.Context, id int64) (*entity.Department, error) {
	query := "SELECT id, code, name, description, is_active, created_at FROM departments WHERE id = ?"
	return r.getOne(ctx, query, id)
}

// GetByCode retrieves a department by its unique code
func (r *DepartmentRepository) GetByCode(ctx context.Context, code string) (*entity.Department, error) {
	query := "SELECT id, code, name, description, is_active, created_at FROM departments WHERE code = ?"
	return r.getOne(ctx, query, code)
}

// List retrieves departments ordered by code
func (r *DepartmentRepository) List(ctx context.Context, activeOnly bool) ([]*entity.Department, error) {
	query := "SELECT id, code, name, description, is_active, created_at FROM departments"
	if activeOnly {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY code"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list departments", zap.Error(err))
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()

	var depts []*entity.Department
	for rows.Next() {
		dept, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		depts = append(depts, dept)
	}
	return depts, rows.Err()
}

// Update persists a department's mutable fields
func (r *DepartmentRepository) Update(ctx context.Context, dept *entity.Department) error {
	query := "UPDATE departments SET name = ?, description = ?, is_active = ? WHERE id = ?"

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		dept.Name,
		dept.Description,
		dept.IsActive,
		dept.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update department", zap.Error(err), zap.Int64("id", dept.ID))
		return fmt.Errorf("update department: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: department %d", apperr.ErrNotFound, dept.ID)
	}
	return nil
}

// Delete removes a department; user references block it
func (r *DepartmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM departments WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: department %d is still referenced", apperr.ErrInvalidState, id)
		}
		r.logger.Error("Failed to delete department", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("delete department: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: department %d", apperr.ErrNotFound, id)
	}
	return nil
}

func (r *DepartmentRepository) getOne(ctx context.Context, query string, arg interface{}) (*entity.Department, error) {
	dept, err := scanDepartment(r.db.Executor(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: department", apperr.ErrNotFound)
		}
		r.logger.Error("Failed to get department", zap.Error(err))
		return nil, fmt.Errorf("get department: %w", err)
	}
	return dept, nil
}

func scanDepartment(row scanner) (*entity.Department, error) {
	var dept entity.Department
	err := row.Scan(
		&dept.ID,
		&dept.Code,
		&dept.Name,
		&dept.Description,
		&dept.IsActive,
		&dept.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &dept, nil
}

// Verify interface compliance
var _ port.DepartmentRepository = (*DepartmentRepository)(nil)
