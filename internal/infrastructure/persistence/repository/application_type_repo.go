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

// ApplicationTypeRepository implements port.ApplicationTypeRepository
type ApplicationTypeRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewApplicationTypeRepository creates a new application type repository
func NewApplicationTypeRepository(db *sqlite.DB, logger *zap.Logger) port.ApplicationTypeRepository {
	return &ApplicationTypeRepository{
		db:     db,
		logger: logger,
	}
}

const typeColumns = `
	id, code, name, description, requires_amount, requires_attachment,
	approval_levels, display_order, is_active, created_at
`

// Create inserts a new application type
func (r *ApplicationTypeRepository) Create(ctx context.Context, typ *entity.ApplicationType) error {
	query := `
		INSERT INTO application_types (
			code, name, description, requires_amount, requires_attachment,
			approval_levels, display_order, is_active, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		typ.Code,
		typ.Name,
		typ.Description,
		typ.RequiresAmount,
		typ.RequiresAttachment,
		typ.ApprovalLevels,
		typ.DisplayOrder,
		typ.IsActive,
		typ.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create application type", zap.Error(err), zap.String("code", typ.Code))
		return fmt.Errorf("create application type: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	typ.ID = id
	return nil
}

// GetByID retrieves an application type by id
func (r *ApplicationTypeRepository) GetByID(ctx context.Context, id int64) (*entity.ApplicationType, error) {
	query := "SELECT" + typeColumns + "FROM application_types WHERE id = ?"
	return r.getOne(ctx, query, id)
}

// GetByCode retrieves an application type by its unique code
func (r *ApplicationTypeRepository) GetByCode(ctx context.Context, code string) (*entity.ApplicationType, error) {
	query := "SELECT" + typeColumns + "FROM application_types WHERE code = ?"
	return r.getOne(ctx, query, code)
}

// List retrieves application types in display order
func (r *ApplicationTypeRepository) List(ctx context.Context, includeInactive bool) ([]*entity.ApplicationType, error) {
	query := "SELECT" + typeColumns + "FROM application_types"
	if !includeInactive {
		query += " WHERE is_active = 1"
	}
	query += " ORDER BY display_order, code"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list application types", zap.Error(err))
		return nil, fmt.Errorf("list application types: %w", err)
	}
	defer rows.Close()

	var types []*entity.ApplicationType
	for rows.Next() {
		typ, err := scanApplicationType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application type: %w", err)
		}
		types = append(types, typ)
	}
	return types, rows.Err()
}

// Update persists an application type's mutable fields
func (r *ApplicationTypeRepository) Update(ctx context.Context, typ *entity.ApplicationType) error {
	query := `
		UPDATE application_types
		SET name = ?, description = ?, requires_amount = ?,
			requires_attachment = ?, approval_levels = ?, display_order = ?,
			is_active = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		typ.Name,
		typ.Description,
		typ.RequiresAmount,
		typ.RequiresAttachment,
		typ.ApprovalLevels,
		typ.DisplayOrder,
		typ.IsActive,
		typ.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update application type", zap.Error(err), zap.Int64("id", typ.ID))
		return fmt.Errorf("update application type: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: application type %d", apperr.ErrNotFound, typ.ID)
	}
	return nil
}

// Delete removes an application type; applications referencing it block
// the delete
func (r *ApplicationTypeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM application_types WHERE id = ?", id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: application type %d is still referenced", apperr.ErrInvalidState, id)
		}
		r.logger.Error("Failed to delete application type", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("delete application type: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: application type %d", apperr.ErrNotFound, id)
	}
	return nil
}

func (r *ApplicationTypeRepository) getOne(ctx context.Context, query string, arg interface{}) (*entity.ApplicationType, error) {
	typ, err := scanApplicationType(r.db.Executor(ctx).QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: application type", apperr.ErrNotFound)
		}
		r.logger.Error("Failed to get application type", zap.Error(err))
		return nil, fmt.Errorf("get application type: %w", err)
	}
	return typ, nil
}

func scanApplicationType(row scanner) (*entity.ApplicationType, error) {
	var typ entity.ApplicationType
	err := row.Scan(
		&typ.ID,
		&typ.Code,
		&typ.Name,
		&typ.Description,
		&typ.RequiresAmount,
		&typ.RequiresAttachment,
		&typ.ApprovalLevels,
		&typ.DisplayOrder,
		&typ.IsActive,
		&typ.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &typ, nil
}

// Verify interface compliance
var _ port.ApplicationTypeRepository = (*ApplicationTypeRepository)(nil)
