package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/workflow"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/sqlite"
)

// sortColumns whitelists the columns a listing may be ordered by
var sortColumns = map[string]string{
	"created_at": "a.created_at",
	"updated_at": "a.updated_at",
	"title":      "a.title",
	"amount":     "a.amount",
	"status":     "a.status",
}

// ApplicationRepository implements port.ApplicationRepository
type ApplicationRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewApplicationRepository creates a new application repository
func NewApplicationRepository(db *sqlite.DB, logger *zap.Logger) port.ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

const applicationColumns = `
	a.id, a.title, a.type_id, t.code, a.description, a.amount, a.status,
	a.applicant_id, a.approver_id, a.created_at, a.updated_at,
	a.approved_at, a.rejection_reason,
	u.name, u.department, COALESCE(ap.name, '')
`

const applicationJoins = `
	FROM applications a
	JOIN application_types t ON t.id = a.type_id
	JOIN users u ON u.id = a.applicant_id
	LEFT JOIN users ap ON ap.id = a.approver_id
`

// Create inserts a new application
func (r *ApplicationRepository) Create(ctx context.Context, app *entity.Application) error {
	query := `
		INSERT INTO applications (
			title, type_id, description, amount, status, applicant_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		app.Title,
		app.TypeID,
		app.Description,
		app.Amount,
		string(app.Status),
		app.ApplicantID,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create application", zap.Error(err))
		return fmt.Errorf("create application: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}

	app.ID = id
	return nil
}

// GetByID retrieves one application with applicant and type joined
func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*entity.Application, error) {
	query := "SELECT" + applicationColumns + applicationJoins + "WHERE a.id = ?"

	app, err := scanApplication(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: application %d", apperr.ErrNotFound, id)
		}
		r.logger.Error("Failed to get application", zap.Error(err), zap.Int64("id", id))
		return nil, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

// List retrieves applications matching the filter
func (r *ApplicationRepository) List(ctx context.Context, filter entity.ApplicationFilter) ([]*entity.Application, error) {
	where, args := buildApplicationWhere(filter)

	orderCol, ok := sortColumns[filter.SortBy]
	if !ok {
		orderCol = "a.created_at"
	}
	direction := "ASC"
	if filter.SortDesc || filter.SortBy == "" {
		direction = "DESC"
	}

	query := "SELECT" + applicationColumns + applicationJoins + where +
		fmt.Sprintf(" ORDER BY %s %s", orderCol, direction)

	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list applications", zap.Error(err))
		return nil, fmt.Errorf("list applications: %w", err)
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

// Count returns the number of applications matching the filter
func (r *ApplicationRepository) Count(ctx context.Context, filter entity.ApplicationFilter) (int64, error) {
	where, args := buildApplicationWhere(filter)
	query := "SELECT COUNT(*)" + applicationJoins + where

	var count int64
	if err := r.db.Executor(ctx).QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		r.logger.Error("Failed to count applications", zap.Error(err))
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return count, nil
}

// Submit moves a draft to pending. The WHERE clause carries the expected
// status so a concurrent transition makes this a no-op, reported as false.
func (r *ApplicationRepository) Submit(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE applications
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		string(workflow.StatePending), time.Now(), id, string(workflow.StateDraft))
	if err != nil {
		r.logger.Error("Failed to submit application", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("submit application: %w", err)
	}
	return affected(result)
}

// Approve resolves a pending application. At most one of two concurrent
// approvals can match the WHERE clause; the loser gets false.
func (r *ApplicationRepository) Approve(ctx context.Context, id, approverID int64, at time.Time) (bool, error) {
	query := `
		UPDATE applications
		SET status = ?, approver_id = ?, approved_at = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		string(workflow.StateApproved), approverID, at, at, id, string(workflow.StatePending))
	if err != nil {
		r.logger.Error("Failed to approve application", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("approve application: %w", err)
	}
	return affected(result)
}

// Reject resolves a pending application with a reason
func (r *ApplicationRepository) Reject(ctx context.Context, id, approverID int64, reason string) (bool, error) {
	query := `
		UPDATE applications
		SET status = ?, approver_id = ?, rejection_reason = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		string(workflow.StateRejected), approverID, reason, time.Now(), id, string(workflow.StatePending))
	if err != nil {
		r.logger.Error("Failed to reject application", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("reject application: %w", err)
	}
	return affected(result)
}

// UpdateContent edits the editable fields while the application is still
// draft or pending
func (r *ApplicationRepository) UpdateContent(ctx context.Context, id int64, patch port.ApplicationPatch) (bool, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.ClearAmount {
		sets = append(sets, "amount = NULL")
	} else if patch.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *patch.Amount)
	}

	query := fmt.Sprintf(
		"UPDATE applications SET %s WHERE id = ? AND status IN (?, ?)",
		strings.Join(sets, ", "),
	)
	args = append(args, id, string(workflow.StateDraft), string(workflow.StatePending))

	result, err := r.db.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to update application", zap.Error(err), zap.Int64("id", id))
		return false, fmt.Errorf("update application: %w", err)
	}
	return affected(result)
}

// Delete removes an application; comments, attachments and favorites
// cascade
func (r *ApplicationRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Executor(ctx).ExecContext(ctx, "DELETE FROM applications WHERE id = ?", id)
	if err != nil {
		r.logger.Error("Failed to delete application", zap.Error(err), zap.Int64("id", id))
		return fmt.Errorf("delete application: %w", err)
	}

	ok, err := affected(result)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: application %d", apperr.ErrNotFound, id)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row scanner) (*entity.Application, error) {
	var app entity.Application
	var status string
	var amount sql.NullFloat64
	var approverID sql.NullInt64
	var approvedAt sql.NullTime
	var rejectionReason sql.NullString

	err := row.Scan(
		&app.ID,
		&app.Title,
		&app.TypeID,
		&app.TypeCode,
		&app.Description,
		&amount,
		&status,
		&app.ApplicantID,
		&approverID,
		&app.CreatedAt,
		&app.UpdatedAt,
		&approvedAt,
		&rejectionReason,
		&app.ApplicantName,
		&app.ApplicantDepartment,
		&app.ApproverName,
	)
	if err != nil {
		return nil, err
	}

	app.Status = workflow.State(status)
	if amount.Valid {
		app.Amount = &amount.Float64
	}
	if approverID.Valid {
		app.ApproverID = &approverID.Int64
	}
	if approvedAt.Valid {
		app.ApprovedAt = &approvedAt.Time
	}
	if rejectionReason.Valid {
		app.RejectionReason = &rejectionReason.String
	}
	return &app, nil
}

func buildApplicationWhere(filter entity.ApplicationFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if filter.Status != "" {
		conds = append(conds, "a.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.TypeCode != "" {
		conds = append(conds, "t.code = ?")
		args = append(args, filter.TypeCode)
	}
	if filter.Department != "" {
		conds = append(conds, "u.department = ?")
		args = append(args, filter.Department)
	}
	if filter.Search != "" {
		conds = append(conds, "a.title LIKE ? COLLATE NOCASE")
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.DateFrom != "" {
		conds = append(conds, "date(a.created_at) >= date(?)")
		args = append(args, filter.DateFrom)
	}
	if filter.DateTo != "" {
		conds = append(conds, "date(a.created_at) <= date(?)")
		args = append(args, filter.DateTo)
	}
	if filter.ApplicantID != 0 {
		conds = append(conds, "a.applicant_id = ?")
		args = append(args, filter.ApplicantID)
	}
	if len(filter.Departments) > 0 {
		placeholders := strings.Repeat("?, ", len(filter.Departments))
		conds = append(conds, fmt.Sprintf("u.department IN (%s)", placeholders[:len(placeholders)-2]))
		for _, d := range filter.Departments {
			args = append(args, d)
		}
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// affected reports whether the statement changed at least one row
func affected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// isForeignKeyViolation reports whether err is a foreign key constraint
// failure, used to turn referenced-row deletes into state errors
func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintTrigger)
}

// Verify interface compliance
var _ port.ApplicationRepository = (*ApplicationRepository)(nil)
