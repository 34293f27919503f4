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

// CommentRepository implements port.CommentRepository
type CommentRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *sqlite.DB, logger *zap.Logger) port.CommentRepository {
	return &CommentRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new comment
func (r *CommentRepository) Create(ctx context.Context, comment *entity.Comment) error {
	query := `
		INSERT INTO comments (application_id, user_id, content, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		comment.ApplicationID,
		comment.UserID,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create comment", zap.Error(err), zap.Int64("application_id", comment.ApplicationID))
		return fmt.Errorf("create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	comment.ID = id
	return nil
}

// GetByID retrieves one comment with its author joined
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*entity.Comment, error) {
	query := `
		SELECT c.id, c.application_id, c.user_id, c.content, c.created_at,
			u.name, u.department
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = ?
	`

	comment, err := scanComment(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: comment %d", apperr.ErrNotFound, id)
		}
		r.logger.Error("Failed to get comment", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return comment, nil
}

// ListByApplication retrieves an application's comments, oldest first
func (r *CommentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*entity.Comment, error) {
	query := `
		SELECT c.id, c.application_id, c.user_id, c.content, c.created_at,
			u.name, u.department
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.application_id = ?
		ORDER BY c.created_at, c.id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to list comments", zap.Error(err), zap.Int64("application_id", applicationID))
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var comments []*entity.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func scanComment(row scanner) (*entity.Comment, error) {
	var comment entity.Comment
	err := row.Scan(
		&comment.ID,
		&comment.ApplicationID,
		&comment.UserID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UserName,
		&comment.UserDepartment,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

// Verify interface compliance
var _ port.CommentRepository = (*CommentRepository)(nil)
