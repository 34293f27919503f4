package service

import (
	"context"
	"testing"
	"time"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

func newTestReportService(reportRepo *mockReportRepo, userRepo *mockUserRepo, tx *passthroughTx) WeeklyReportService {
	return NewWeeklyReportService(reportRepo, userRepo, tx, noopLogger{})
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name      string
		day       string
		wantStart string
		wantEnd   string
	}{
		{"a wednesday", "2025-03-12", "2025-03-10", "2025-03-16"},
		{"a monday maps to itself", "2025-03-10", "2025-03-10", "2025-03-16"},
		{"sunday belongs to the week it ends", "2025-03-16", "2025-03-10", "2025-03-16"},
		{"across a month boundary", "2025-04-01", "2025-03-31", "2025-04-06"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := time.Parse("2006-01-02", tt.day)
			if err != nil {
				t.Fatalf("parse day: %v", err)
			}
			start, end := entity.WeekOf(day)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("WeekOf(%s) = (%s, %s), want (%s, %s)", tt.day, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestUpsert(t *testing.T) {
	t.Run("creates when the week has no report", func(t *testing.T) {
		tx := &passthroughTx{}
		var created *entity.WeeklyReport
		reportRepo := &mockReportRepo{
			createFunc: func(ctx context.Context, report *entity.WeeklyReport) error {
				report.ID = 5
				created = report
				return nil
			},
		}
		svc := newTestReportService(reportRepo, &mockUserRepo{}, tx)

		report, err := svc.Upsert(context.Background(), owner, WeeklyReportInput{
			WeekStart: "2025-03-10",
			Content:   "Closed two deals",
		})
		if err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		if created == nil {
			t.Fatal("report was not created")
		}
		if report.WeekStart != "2025-03-10" || report.WeekEnd != "2025-03-16" {
			t.Errorf("week = %s..%s, want 2025-03-10..2025-03-16", report.WeekStart, report.WeekEnd)
		}
		if tx.calls != 1 {
			t.Errorf("transaction calls = %d, want 1", tx.calls)
		}
	})

	t.Run("updates in place when the week already has a report", func(t *testing.T) {
		existing := &entity.WeeklyReport{
			ID:        5,
			UserID:    owner.ID,
			WeekStart: "2025-03-10",
			WeekEnd:   "2025-03-16",
			Content:   "old",
		}
		var updated *entity.WeeklyReport
		reportRepo := &mockReportRepo{
			getByUserWeekFunc: func(ctx context.Context, userID int64, weekStart string) (*entity.WeeklyReport, error) {
				return existing, nil
			},
			updateFunc: func(ctx context.Context, report *entity.WeeklyReport) error {
				updated = report
				return nil
			},
			createFunc: func(ctx context.Context, report *entity.WeeklyReport) error {
				t.Fatal("Create called for an existing week")
				return nil
			},
		}
		svc := newTestReportService(reportRepo, &mockUserRepo{}, &passthroughTx{})

		report, err := svc.Upsert(context.Background(), owner, WeeklyReportInput{
			WeekStart: "2025-03-10",
			Content:   "new content",
		})
		if err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		if updated == nil {
			t.Fatal("report was not updated")
		}
		if report.ID != 5 || report.Content != "new content" {
			t.Errorf("report = %+v, want id 5 with new content", report)
		}
	})

	t.Run("rejects empty content", func(t *testing.T) {
		svc := newTestReportService(&mockReportRepo{}, &mockUserRepo{}, &passthroughTx{})
		if _, err := svc.Upsert(context.Background(), owner, WeeklyReportInput{WeekStart: "2025-03-10"}); !apperr.IsValidation(err) {
			t.Errorf("Upsert() error = %v, want validation", err)
		}
	})

	t.Run("rejects a week start that is not a monday", func(t *testing.T) {
		svc := newTestReportService(&mockReportRepo{}, &mockUserRepo{}, &passthroughTx{})
		_, err := svc.Upsert(context.Background(), owner, WeeklyReportInput{
			WeekStart: "2025-03-12",
			Content:   "x",
		})
		if !apperr.IsValidation(err) {
			t.Errorf("Upsert() error = %v, want validation", err)
		}
	})

	t.Run("empty week start means the current week", func(t *testing.T) {
		var gotWeek string
		reportRepo := &mockReportRepo{
			createFunc: func(ctx context.Context, report *entity.WeeklyReport) error {
				gotWeek = report.WeekStart
				return nil
			},
		}
		svc := newTestReportService(reportRepo, &mockUserRepo{}, &passthroughTx{})

		if _, err := svc.Upsert(context.Background(), owner, WeeklyReportInput{Content: "x"}); err != nil {
			t.Fatalf("Upsert() error = %v", err)
		}
		wantStart, _ := entity.WeekOf(time.Now())
		if gotWeek != wantStart {
			t.Errorf("week start = %s, want %s", gotWeek, wantStart)
		}
	})
}

func TestReportGet_Visibility(t *testing.T) {
	reportRepo := &mockReportRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.WeeklyReport, error) {
			return &entity.WeeklyReport{ID: id, UserID: owner.ID, WeekStart: "2025-03-10"}, nil
		},
	}
	svc := newTestReportService(reportRepo, &mockUserRepo{}, &passthroughTx{})

	if _, err := svc.Get(context.Background(), owner, 1); err != nil {
		t.Errorf("author Get() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), approver, 1); err != nil {
		t.Errorf("leader Get() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), stranger, 1); !apperr.IsForbidden(err) {
		t.Errorf("stranger Get() error = %v, want forbidden", err)
	}
}

func TestReportDelete(t *testing.T) {
	reportRepo := &mockReportRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.WeeklyReport, error) {
			return &entity.WeeklyReport{ID: id, UserID: owner.ID}, nil
		},
	}
	svc := newTestReportService(reportRepo, &mockUserRepo{}, &passthroughTx{})

	if err := svc.Delete(context.Background(), owner, 1); err != nil {
		t.Errorf("author Delete() error = %v", err)
	}
	if err := svc.Delete(context.Background(), admin, 1); err != nil {
		t.Errorf("admin Delete() error = %v", err)
	}
	// Leaders may read other reports but not delete them.
	if err := svc.Delete(context.Background(), approver, 1); !apperr.IsForbidden(err) {
		t.Errorf("leader Delete() error = %v, want forbidden", err)
	}
}

func TestPendingUsers(t *testing.T) {
	userRepo := &mockUserRepo{
		withoutReportFunc: func(ctx context.Context, weekStart string) ([]*entity.User, error) {
			if weekStart != "2025-03-10" {
				t.Errorf("week start = %s, want 2025-03-10", weekStart)
			}
			return []*entity.User{{ID: 1}, {ID: 2}}, nil
		},
	}
	svc := newTestReportService(&mockReportRepo{}, userRepo, &passthroughTx{})

	t.Run("leader lists pending users", func(t *testing.T) {
		users, err := svc.PendingUsers(context.Background(), approver, "2025-03-10")
		if err != nil {
			t.Fatalf("PendingUsers() error = %v", err)
		}
		if len(users) != 2 {
			t.Errorf("pending users = %d, want 2", len(users))
		}
	})

	t.Run("plain user is refused", func(t *testing.T) {
		if _, err := svc.PendingUsers(context.Background(), owner, "2025-03-10"); !apperr.IsForbidden(err) {
			t.Errorf("PendingUsers() error = %v, want forbidden", err)
		}
	})
}
