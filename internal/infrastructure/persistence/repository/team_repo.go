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

// TeamRepository implements port.TeamRepository
type TeamRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db *sqlite.DB, logger *zap.Logger) port.TeamRepository {
	return &TeamRepository{
		db:     db,
		logger: logger,
	}
}

const teamSelect = `
	SELECT t.id, t.name, t.leader_id, t.description, t.created_at,
		COALESCE(l.name, ''),
		(SELECT COUNT(*) FROM users m WHERE m.team_id = t.id)
	FROM teams t
	LEFT JOIN users l ON l.id = t.leader_id
`

// Create inserts a new team
func (r *TeamRepository) Create(ctx context.Context, team *entity.Team) error {
	query := `
		INSERT INTO teams (name, leader_id, description, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		team.Name,
		team.LeaderID,
		team.Description,
		team.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create team", zap.Error(err), zap.String("name", team.Name))
		return fmt.Errorf("create team: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	team.ID = id
	return nil
}

// GetByID retrieves one team with leader name and member count
func (r *TeamRepository) GetByID(ctx context.Context, id int64) (*entity.Team, error) {
	query := teamSelect + "WHERE t.id = ?"

	team, err := scanTeam(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: team %d", apperr.ErrNotFound, id)
		}
		r.logger.Error("Failed to get team", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("get team: %w", err)
	}
	return team, nil
}

// List retrieves all teams ordered by name
func (r *TeamRepository) List(ctx context.Context) ([]*entity.Team, error) {
	query := teamSelect + "ORDER BY t.name"

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list teams", zap.Error(err))
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []*entity.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// Update persists a team's mutable fields
func (r *TeamRepository) Update(ctx context.Context, team *entity.Team) error {
	query := "UPDATE teams SET name = ?, leader_id = ?, description = ? WHERE id = ?"

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		team.Name,
		team.LeaderID,
		team.Description,
		team.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update team", zap.Error(err), zap.Int64("id", team.ID))
		return fmt.Errorf("update team: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: team %d", apperr.ErrNotFound, team.ID)
	}
	return nil
}

// Delete removes a team; member rows keep their user but lose the team
func (r *TeamRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM teams WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete team", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("delete team: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: team %d", apperr.ErrNotFound, id)
	}
	return nil
}

func scanTeam(row scanner) (*entity.Team, error) {
	var team entity.Team
	var leaderID sql.NullInt64

	err := row.Scan(
		&team.ID,
		&team.Name,
		&leaderID,
		&team.Description,
		&team.CreatedAt,
		&team.LeaderName,
		&team.MemberCount,
	)
	if err != nil {
		return nil, err
	}

	if leaderID.Valid {
		team.LeaderID = &leaderID.Int64
	}
	return &team, nil
}

// Verify interface compliance
var _ port.TeamRepository = (*TeamRepository)(nil)
