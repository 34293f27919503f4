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

// FavoriteRepository implements port.FavoriteRepository
type FavoriteRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewFavoriteRepository creates a new favorite repository
func NewFavoriteRepository(db *sqlite.DB, logger *zap.Logger) port.FavoriteRepository {
	return &FavoriteRepository{
		db:     db,
		logger: logger,
	}
}

// Get retrieves one favorite pairing
func (r *FavoriteRepository) Get(ctx context.Context, userID, applicationID int64) (*entity.Favorite, error) {
	query := `
		SELECT id, user_id, application_id, created_at
		FROM favorites
		WHERE user_id = ? AND application_id = ?
	`

	var fav entity.Favorite
	err := r.db.Executor(ctx).QueryRowContext(ctx, query, userID, applicationID).Scan(
		&fav.ID,
		&fav.UserID,
		&fav.ApplicationID,
		&fav.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: favorite", apperr.ErrNotFound)
		}
		r.logger.Error("Failed to get favorite", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return &fav, nil
}

// Create inserts a favorite pairing
func (r *FavoriteRepository) Create(ctx context.Context, fav *entity.Favorite) error {
	query := `
		INSERT INTO favorites (user_id, application_id, created_at)
		VALUES (?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		fav.UserID,
		fav.ApplicationID,
		fav.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create favorite", zap.Error(err), zap.Int64("user_id", fav.UserID))
		return fmt.Errorf("create favorite: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	fav.ID = id
	return nil
}

// Delete removes a favorite pairing
func (r *FavoriteRepository) Delete(ctx context.Context, userID, applicationID int64) error {
	query := "DELETE FROM favorites WHERE user_id = ? AND application_id = ?"

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, userID, applicationID)
	if err != nil {
		r.logger.Error("Failed to delete favorite", zap.Error(err), zap.Int64("user_id", userID))
		return fmt.Errorf("delete favorite: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: favorite", apperr.ErrNotFound)
	}
	return nil
}

// ListApplications retrieves the applications a user has favorited,
// most recently favorited first
func (r *FavoriteRepository) ListApplications(ctx context.Context, userID int64) ([]*entity.Application, error) {
	query := "SELECT" + applicationColumns + applicationJoins + `
		JOIN favorites f ON f.application_id = a.id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list favorites", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var apps []*entity.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// Verify interface compliance
var _ port.FavoriteRepository = (*FavoriteRepository)(nil)
