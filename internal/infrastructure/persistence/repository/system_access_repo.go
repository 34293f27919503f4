package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/sqlite"
)

// SystemAccessRepository implements port.SystemAccessRepository
type SystemAccessRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewSystemAccessRepository creates a new system access repository
func NewSystemAccessRepository(db *sqlite.DB, logger *zap.Logger) port.SystemAccessRepository {
	return &SystemAccessRepository{
		db:     db,
		logger: logger,
	}
}

// ListByUser retrieves the system ids granted to a user
func (r *SystemAccessRepository) ListByUser(ctx context.Context, userID int64) ([]string, error) {
	query := "SELECT system_id FROM user_system_access WHERE user_id = ? ORDER BY system_id"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list system access", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("list system access: %w", err)
	}
	defer rows.Close()

	systems := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan system id: %w", err)
		}
		systems = append(systems, id)
	}
	return systems, rows.Err()
}

// ReplaceForUser swaps the user's grant set. Runs inside the caller's
// transaction when one is in the context, so delete and insert land
// together.
func (r *SystemAccessRepository) ReplaceForUser(ctx context.Context, userID int64, systems []string) error {
	exec := r.db.Executor(ctx)

	if _, err := exec.ExecContext(ctx, "DELETE FROM user_system_access WHERE user_id = ?", userID); err != nil {
		r.logger.Error("Failed to clear system access", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("clear system access: %w", err)
	}

	now := time.Now()
	for _, system := range systems {
		_, err := exec.ExecContext(ctx,
			"INSERT INTO user_system_access (user_id, system_id, created_at) VALUES (?, ?, ?)",
			userID, system, now,
		)
		if err != nil {
			r.logger.Error("Failed to grant system access", zap.Error(err),
				zap.Int64("user_id", userID), zap.String("system_id", system))
			return fmt.Errorf("grant system access: %w", err)
		}
	}
	return nil
}

// Verify interface compliance
var _ port.SystemAccessRepository = (*SystemAccessRepository)(nil)
