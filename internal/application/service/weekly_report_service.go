package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

// WeeklyReportInput carries the editable fields of a report. WeekStart
// must be a Monday in YYYY-MM-DD form; empty means the current week.
type WeeklyReportInput struct {
	WeekStart    string `json:"week_start"`
	Content      string `json:"content"`
	Achievements string `json:"achievements"`
	Challenges   string `json:"challenges"`
	NextWeekPlan string `json:"next_week_plan"`
}

// WeeklyReportService manages weekly reports. One report per user per
// week; writing twice in the same week updates in place.
type WeeklyReportService interface {
	Upsert(ctx context.Context, actor authz.Actor, input WeeklyReportInput) (*entity.WeeklyReport, error)
	Get(ctx context.Context, actor authz.Actor, id int64) (*entity.WeeklyReport, error)
	MyReports(ctx context.Context, actor authz.Actor) ([]*entity.WeeklyReport, error)
	ListAll(ctx context.Context, actor authz.Actor, filter port.WeeklyReportFilter) ([]*entity.WeeklyReport, error)
	Delete(ctx context.Context, actor authz.Actor, id int64) error
	PendingUsers(ctx context.Context, actor authz.Actor, weekStart string) ([]*entity.User, error)
}

type weeklyReportServiceImpl struct {
	reportRepo port.WeeklyReportRepository
	userRepo   port.UserRepository
	txManager  port.TransactionManager
	logger     Logger
}

// NewWeeklyReportService creates a new WeeklyReportService
func NewWeeklyReportService(
	reportRepo port.WeeklyReportRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	logger Logger,
) WeeklyReportService {
	return &weeklyReportServiceImpl{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// Upsert creates the actor's report for the week or updates the existing
// one. The read-then-write pair runs in a transaction so two submissions
// for the same week cannot both insert.
func (s *weeklyReportServiceImpl) Upsert(ctx context.Context, actor authz.Actor, input WeeklyReportInput) (*entity.WeeklyReport, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, fmt.Errorf("%w: content is required", apperr.ErrValidation)
	}

	weekStart, weekEnd, err := resolveWeek(input.WeekStart)
	if err != nil {
		return nil, err
	}

	var report *entity.WeeklyReport
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		existing, err := s.reportRepo.GetByUserWeek(txCtx, actor.ID, weekStart)
		if err != nil && !apperr.IsNotFound(err) {
			return fmt.Errorf("look up report: %w", err)
		}

		now := time.Now()
		if existing != nil {
			existing.Content = input.Content
			existing.Achievements = input.Achievements
			existing.Challenges = input.Challenges
			existing.NextWeekPlan = input.NextWeekPlan
			existing.UpdatedAt = now
			if err := s.reportRepo.Update(txCtx, existing); err != nil {
				return fmt.Errorf("update report: %w", err)
			}
			report = existing
			return nil
		}

		report = &entity.WeeklyReport{
			UserID:       actor.ID,
			WeekStart:    weekStart,
			WeekEnd:      weekEnd,
			Content:      input.Content,
			Achievements: input.Achievements,
			Challenges:   input.Challenges,
			NextWeekPlan: input.NextWeekPlan,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.reportRepo.Create(txCtx, report); err != nil {
			return fmt.Errorf("create report: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to save weekly report", "error", err, "user_id", actor.ID, "week_start", weekStart)
		return nil, err
	}

	s.logger.Info("Weekly report saved", "id", report.ID, "user_id", actor.ID, "week_start", weekStart)
	return report, nil
}

// Get returns one report: its author, any leader role, or an admin
func (s *weeklyReportServiceImpl) Get(ctx context.Context, actor authz.Actor, id int64) (*entity.WeeklyReport, error) {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report.UserID != actor.ID && !actor.Role.IsApprover() {
		return nil, fmt.Errorf("%w: not allowed to view this report", apperr.ErrForbidden)
	}
	return report, nil
}

// MyReports lists the actor's own reports, newest week first
func (s *weeklyReportServiceImpl) MyReports(ctx context.Context, actor authz.Actor) ([]*entity.WeeklyReport, error) {
	reports, err := s.reportRepo.ListByUser(ctx, actor.ID)
	if err != nil {
		s.logger.Error("Failed to list reports", "error", err, "user_id", actor.ID)
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// ListAll lists reports across users for leaders and admins
func (s *weeklyReportServiceImpl) ListAll(ctx context.Context, actor authz.Actor, filter port.WeeklyReportFilter) ([]*entity.WeeklyReport, error) {
	if !actor.Role.IsApprover() {
		return nil, fmt.Errorf("%w: leader role required", apperr.ErrForbidden)
	}

	reports, err := s.reportRepo.ListFiltered(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list reports", "error", err, "actor_id", actor.ID)
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return reports, nil
}

// Delete removes a report: its author or an admin
func (s *weeklyReportServiceImpl) Delete(ctx context.Context, actor authz.Actor, id int64) error {
	report, err := s.reportRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if report.UserID != actor.ID && !actor.Role.IsAdmin() {
		return fmt.Errorf("%w: not allowed to delete this report", apperr.ErrForbidden)
	}

	if err := s.reportRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete report", "error", err, "id", id)
		return fmt.Errorf("delete report: %w", err)
	}
	return nil
}

// PendingUsers returns non-exempt users who have not filed a report for
// the week
func (s *weeklyReportServiceImpl) PendingUsers(ctx context.Context, actor authz.Actor, weekStart string) ([]*entity.User, error) {
	if !actor.Role.IsApprover() {
		return nil, fmt.Errorf("%w: leader role required", apperr.ErrForbidden)
	}

	weekStart, _, err := resolveWeek(weekStart)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.ListWithoutWeeklyReport(ctx, weekStart)
	if err != nil {
		s.logger.Error("Failed to list pending users", "error", err, "week_start", weekStart)
		return nil, fmt.Errorf("list pending users: %w", err)
	}
	return users, nil
}

// resolveWeek normalizes a week start: empty means the current week, and
// a given date must be the Monday of its week
func resolveWeek(weekStart string) (start, end string, err error) {
	if weekStart == "" {
		start, end = entity.WeekOf(time.Now())
		return start, end, nil
	}

	day, err := time.Parse("2006-01-02", weekStart)
	if err != nil {
		return "", "", fmt.Errorf("%w: week_start must be YYYY-MM-DD", apperr.ErrValidation)
	}

	start, end = entity.WeekOf(day)
	if start != weekStart {
		return "", "", fmt.Errorf("%w: week_start must be a Monday, got %s", apperr.ErrValidation, weekStart)
	}
	return start, end, nil
}
