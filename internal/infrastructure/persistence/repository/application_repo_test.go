package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/quyenpham2020/shinsei-portal/internal/application/port"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/workflow"
	"github.com/quyenpham2020/shinsei-portal/internal/infrastructure/persistence/sqlite"
)

const testSchema = `
	CREATE TABLE users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		department TEXT NOT NULL DEFAULT ''
	);
	CREATE TABLE application_types (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);
	CREATE TABLE applications (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		type_id INTEGER NOT NULL REFERENCES application_types(id),
		description TEXT NOT NULL DEFAULT '',
		amount REAL,
		status TEXT NOT NULL DEFAULT 'draft',
		applicant_id INTEGER NOT NULL REFERENCES users(id),
		approver_id INTEGER REFERENCES users(id),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		approved_at DATETIME,
		rejection_reason TEXT
	);
`

// newTestRepo opens an in-memory database with the application tables
// and two users: an applicant (id 1) and an approver (id 2).
func newTestRepo(t *testing.T) (port.ApplicationRepository, *sql.DB) {
	t.Helper()

	sqlDB, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if _, err := sqlDB.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	if _, err := sqlDB.Exec(`
		INSERT INTO users (employee_id, name, department) VALUES
			('EMP-001', 'Applicant', 'Sales'),
			('EMP-002', 'Approver', 'Sales');
		INSERT INTO application_types (code, name) VALUES ('expense', 'Expense');
	`); err != nil {
		t.Fatalf("seed data: %v", err)
	}

	store := sqlite.NewDB(sqlDB, zap.NewNop())
	return NewApplicationRepository(store, zap.NewNop()), sqlDB
}

func insertApplication(t *testing.T, sqlDB *sql.DB, status workflow.State) int64 {
	t.Helper()

	now := time.Now()
	result, err := sqlDB.Exec(
		`INSERT INTO applications (title, type_id, status, applicant_id, created_at, updated_at)
		 VALUES (?, 1, ?, 1, ?, ?)`,
		"Business trip", string(status), now, now,
	)
	if err != nil {
		t.Fatalf("insert application: %v", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("last insert id: %v", err)
	}
	return id
}

func TestApplicationRepository_ConditionalTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("only the first of two competing resolutions wins", func(t *testing.T) {
		repo, sqlDB := newTestRepo(t)
		id := insertApplication(t, sqlDB, workflow.StatePending)

		ok, err := repo.Approve(ctx, id, 2, time.Now())
		if err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		if !ok {
			t.Fatal("first Approve() = false, want true")
		}

		ok, err = repo.Reject(ctx, id, 2, "too late")
		if err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		if ok {
			t.Error("Reject() after approval = true, want false")
		}

		app, err := repo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if app.Status != workflow.StateApproved {
			t.Errorf("status = %s, want approved", app.Status)
		}
		if app.RejectionReason != nil {
			t.Errorf("rejection reason = %q, want unset", *app.RejectionReason)
		}
	})

	t.Run("reject wins and approve loses", func(t *testing.T) {
		repo, sqlDB := newTestRepo(t)
		id := insertApplication(t, sqlDB, workflow.StatePending)

		ok, err := repo.Reject(ctx, id, 2, "")
		if err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		if !ok {
			t.Fatal("first Reject() = false, want true")
		}

		ok, err = repo.Approve(ctx, id, 2, time.Now())
		if err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		if ok {
			t.Error("Approve() after rejection = true, want false")
		}

		app, err := repo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("GetByID() error = %v", err)
		}
		if app.Status != workflow.StateRejected {
			t.Errorf("status = %s, want rejected", app.Status)
		}
		if app.RejectionReason == nil || *app.RejectionReason != "" {
			t.Errorf("rejection reason = %v, want stored empty string", app.RejectionReason)
		}
		if app.ApprovedAt != nil {
			t.Error("approved_at was set on a rejection")
		}
	})

	t.Run("submit only moves drafts", func(t *testing.T) {
		repo, sqlDB := newTestRepo(t)
		draftID := insertApplication(t, sqlDB, workflow.StateDraft)
		pendingID := insertApplication(t, sqlDB, workflow.StatePending)

		ok, err := repo.Submit(ctx, draftID)
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if !ok {
			t.Error("Submit() on draft = false, want true")
		}

		ok, err = repo.Submit(ctx, pendingID)
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if ok {
			t.Error("Submit() on pending = true, want false")
		}
	})

	t.Run("content edits stop once resolved", func(t *testing.T) {
		repo, sqlDB := newTestRepo(t)
		id := insertApplication(t, sqlDB, workflow.StatePending)

		title := "Revised trip"
		ok, err := repo.UpdateContent(ctx, id, port.ApplicationPatch{Title: &title})
		if err != nil {
			t.Fatalf("UpdateContent() error = %v", err)
		}
		if !ok {
			t.Fatal("UpdateContent() on pending = false, want true")
		}

		if _, err := repo.Approve(ctx, id, 2, time.Now()); err != nil {
			t.Fatalf("Approve() error = %v", err)
		}

		ok, err = repo.UpdateContent(ctx, id, port.ApplicationPatch{Title: &title})
		if err != nil {
			t.Fatalf("UpdateContent() error = %v", err)
		}
		if ok {
			t.Error("UpdateContent() on approved = true, want false")
		}
	})
}
