package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/sqlite"
)

// AuditRepository implements port.AuditRepository
type AuditRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sqlite.DB, logger *zap.Logger) port.AuditRepository {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts one audit record
func (r *AuditRepository) Create(ctx context.Context, rec *entity.AuditRecord) error {
	query := `
		INSERT INTO audit_log (
			event_id, event_type, application_id, actor_id, detail, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		rec.EventID,
		rec.EventType,
		rec.ApplicationID,
		rec.ActorID,
		rec.Detail,
		rec.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create audit record", zap.Error(err), zap.String("event_id", rec.EventID))
		return fmt.Errorf("create audit record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	rec.ID = id
	return nil
}

// ListByApplication retrieves an application's audit trail, oldest first
func (r *AuditRepository) ListByApplication(ctx context.Context, applicationID int64) ([]*entity.AuditRecord, error) {
	query := `
		SELECT id, event_id, event_type, application_id, actor_id, detail, created_at
		FROM audit_log
		WHERE application_id = ?
		ORDER BY created_at, id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, applicationID)
	if err != nil {
		r.logger.Error("Failed to list audit records", zap.Error(err), zap.Int64("application_id", applicationID))
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()

	var records []*entity.AuditRecord
	for rows.Next() {
		var rec entity.AuditRecord
		err := rows.Scan(
			&rec.ID,
			&rec.EventID,
			&rec.EventType,
			&rec.ApplicationID,
			&rec.ActorID,
			&rec.Detail,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// Verify interface compliance
var _ port.AuditRepository = (*AuditRepository)(nil)
