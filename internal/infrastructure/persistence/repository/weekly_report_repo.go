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

// WeeklyReportRepository implements port.WeeklyReportRepository
type WeeklyReportRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewWeeklyReportRepository creates a new weekly report repository
func NewWeeklyReportRepository(db *sqlite.DB, logger *zap.Logger) port.WeeklyReportRepository {
	return &WeeklyReportRepository{
		db:     db,
		logger: logger,
	}
}

const reportSelect = `
	SELECT r.id, r.user_id, r.week_start, r.week_end, r.content,
		r.achievements, r.challenges, r.next_week_plan,
		r.created_at, r.updated_at,
		u.name, u.department, u.employee_id
	FROM weekly_reports r
	JOIN users u ON u.id = r.user_id
`

// Create inserts a new weekly report
func (r *WeeklyReportRepository) Create(ctx context.Context, report *entity.WeeklyReport) error {
	query := `
		INSERT INTO weekly_reports (
			user_id, week_start, week_end, content, achievements, challenges,
			next_week_plan, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		report.UserID,
		report.WeekStart,
		report.WeekEnd,
		report.Content,
		report.Achievements,
		report.Challenges,
		report.NextWeekPlan,
		report.CreatedAt,
		report.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create weekly report", zap.Error(err),
			zap.Int64("user_id", report.UserID), zap.String("week_start", report.WeekStart))
		return fmt.Errorf("create weekly report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	report.ID = id
	return nil
}

// GetByID retrieves one report with its author joined
func (r *WeeklyReportRepository) GetByID(ctx context.Context, id int64) (*entity.WeeklyReport, error) {
	query := reportSelect + "WHERE r.id = ?"

	report, err := scanWeeklyReport(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: weekly report %d", apperr.ErrNotFound, id)
		}
		r.logger.Error("Failed to get weekly report", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("get weekly report: %w", err)
	}
	return report, nil
}

// GetByUserWeek retrieves the report one user filed for one week
func (r *WeeklyReportRepository) GetByUserWeek(ctx context.Context, userID int64, weekStart string) (*entity.WeeklyReport, error) {
	query := reportSelect + "WHERE r.user_id = ? AND r.week_start = ?"

	report, err := scanWeeklyReport(r.db.Executor(ctx).QueryRowContext(ctx, query, userID, weekStart))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: weekly report for week %s", apperr.ErrNotFound, weekStart)
		}
		r.logger.Error("Failed to get weekly report", zap.Error(err), zap.Int64("user_id", userID))
		return nil, fmt.Errorf("get weekly report: %w", err)
	}
	return report, nil
}

// ListByUser retrieves one user's reports, newest week first
func (r *WeeklyReportRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.WeeklyReport, error) {
	query := reportSelect + "WHERE r.user_id = ? ORDER BY r.week_start DESC"
	return r.list(ctx, query, userID)
}

// ListFiltered retrieves reports matching the filter, newest week first
// then grouped by department
func (r *WeeklyReportRepository) ListFiltered(ctx context.Context, filter port.WeeklyReportFilter) ([]*entity.WeeklyReport, error) {
	var conds []string
	var args []interface{}

	if filter.WeekFrom != "" {
		conds = append(conds, "r.week_start >= ?")
		args = append(args, filter.WeekFrom)
	}
	if filter.WeekTo != "" {
		conds = append(conds, "r.week_start <= ?")
		args = append(args, filter.WeekTo)
	}
	if len(filter.Departments) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.Departments)), ", ")
		conds = append(conds, fmt.Sprintf("u.department IN (%s)", placeholders))
		for _, d := range filter.Departments {
			args = append(args, d)
		}
	}
	if len(filter.UserIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(filter.UserIDs)), ", ")
		conds = append(conds, fmt.Sprintf("r.user_id IN (%s)", placeholders))
		for _, id := range filter.UserIDs {
			args = append(args, id)
		}
	}

	query := reportSelect
	if len(conds) > 0 {
		query += "WHERE " + strings.Join(conds, " AND ") + " "
	}
	query += "ORDER BY r.week_start DESC, u.department, u.name"

	return r.list(ctx, query, args...)
}

// Update persists a report's content fields
func (r *WeeklyReportRepository) Update(ctx context.Context, report *entity.WeeklyReport) error {
	query := `
		UPDATE weekly_reports
		SET content = ?, achievements = ?, challenges = ?, next_week_plan = ?,
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		report.Content,
		report.Achievements,
		report.Challenges,
		report.NextWeekPlan,
		report.UpdatedAt,
		report.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update weekly report", zap.Error(err), zap.Int64("id", report.ID))
		return fmt.Errorf("update weekly report: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: weekly report %d", apperr.ErrNotFound, report.ID)
	}
	return nil
}

// Delete removes a report
func (r *WeeklyReportRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM weekly_reports WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete weekly report", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("delete weekly report: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: weekly report %d", apperr.ErrNotFound, id)
	}
	return nil
}

func (r *WeeklyReportRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.WeeklyReport, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list weekly reports", zap.Error(err))
		return nil, fmt.Errorf("list weekly reports: %w", err)
	}
	defer rows.Close()

	var reports []*entity.WeeklyReport
	for rows.Next() {
		report, err := scanWeeklyReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weekly report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func scanWeeklyReport(row scanner) (*entity.WeeklyReport, error) {
	var report entity.WeeklyReport
	err := row.Scan(
		&report.ID,
		&report.UserID,
		&report.WeekStart,
		&report.WeekEnd,
		&report.Content,
		&report.Achievements,
		&report.Challenges,
		&report.NextWeekPlan,
		&report.CreatedAt,
		&report.UpdatedAt,
		&report.UserName,
		&report.UserDepartment,
		&report.UserEmployeeID,
	)
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Verify interface compliance
var _ port.WeeklyReportRepository = (*WeeklyReportRepository)(nil)
