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

// AttachmentRepository implements port.AttachmentRepository
type AttachmentRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sqlite.DB, logger *zap.Logger) port.AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

const attachmentColumns = `
	id, application_id, file_name, file_path, file_size, mime_type,
	uploaded_by, created_at
`

// Create inserts attachment metadata
func (r *AttachmentRepository) Create(ctx context.Context, att *entity.Attachment) error {
	query := `
		INSERT INTO attachments (
			application_id, file_name, file_path, file_size, mime_type,
			uploaded_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		att.ApplicationID,
		att.FileName,
		att.FilePath,
		att.FileSize,
		att.MimeType,
		att.UploadedBy,
		att.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create attachment", zap.Error(err), zap.Int64("application_id", att.ApplicationID))
		return fmt.Errorf("create attachment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	att.ID = id
	return nil
}

// GetByID retrieves one attachment
func (r *AttachmentRepository) GetByID(ctx context.Context, id int64) (*entity.Attachment, error) {
	query := "SELECT" + attachmentColumns + "FROM attachments WHERE id = ?"

	att, err := scanAttachment(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: attachment %d", apperr.ErrNotFound, id)
		}
		r.logger.Error("Failed to get attachment", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("get attachment: %w", err)
	}
	return att, nil
}

// ListByApplication retrieves an application's attachments
func (r *AttachmentRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*entity.Attachment, error) {
	query := "SELECT" + attachmentColumns + "FROM attachments WHERE application_id = ? ORDER BY created_at, id"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to list attachments", zap.Error(err), zap.Int64("application_id", applicationID))
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*entity.Attachment
	for rows.Next() {
		att, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}

// Delete removes attachment metadata
func (r *AttachmentRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM attachments WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete attachment", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("delete attachment: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: attachment %d", apperr.ErrNotFound, id)
	}
	return nil
}

func scanAttachment(row scanner) (*entity.Attachment, error) {
	var att entity.Attachment
	err := row.Scan(
		&att.ID,
		&att.ApplicationID,
		&att.FileName,
		&att.FilePath,
		&att.FileSize,
		&att.MimeType,
		&att.UploadedBy,
		&att.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// Verify interface compliance
var _ port.AttachmentRepository = (*AttachmentRepository)(nil)
