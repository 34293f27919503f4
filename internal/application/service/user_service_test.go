package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

func validCreateInput() CreateUserInput {
	return CreateUserInput{
		EmployeeID: "EMP-002",
		Name:       "Hanako Sato",
		Email:      "hanako@example.com",
		Password:   "initial-pass",
		Department: "Finance",
		Role:       "user",
		Systems:    []string{entity.SystemApprovals, entity.SystemWeeklyReports},
	}
}

func TestUserCreate(t *testing.T) {
	t.Run("admin creates a user with grants in one transaction", func(t *testing.T) {
		tx := &passthroughTx{}
		var createdUser *entity.User
		var grantedSystems []string
		userRepo := &mockUserRepo{
			createFunc: func(ctx context.Context, user *entity.User) error {
				user.ID = 42
				createdUser = user
				return nil
			},
		}
		accessRepo := &mockAccessRepo{
			replaceFunc: func(ctx context.Context, userID int64, systems []string) error {
				grantedSystems = systems
				return nil
			},
		}
		svc := NewUserService(userRepo, accessRepo, tx, noopLogger{})

		result, err := svc.Create(context.Background(), admin, validCreateInput())
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if createdUser == nil {
			t.Fatal("user was not stored")
		}
		if !createdUser.MustChangePassword {
			t.Error("new user should be forced to change the initial password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(createdUser.PasswordHash), []byte("initial-pass")); err != nil {
			t.Error("stored hash does not match the initial password")
		}
		if len(grantedSystems) != 2 {
			t.Errorf("granted systems = %v, want 2 entries", grantedSystems)
		}
		if tx.calls != 1 {
			t.Errorf("transaction calls = %d, want 1", tx.calls)
		}
		if len(result.Systems) != 2 {
			t.Errorf("result systems = %v, want 2 entries", result.Systems)
		}
	})

	t.Run("non-admin is refused", func(t *testing.T) {
		svc := NewUserService(&mockUserRepo{}, &mockAccessRepo{}, &passthroughTx{}, noopLogger{})
		if _, err := svc.Create(context.Background(), approver, validCreateInput()); !apperr.IsForbidden(err) {
			t.Errorf("Create() error = %v, want forbidden", err)
		}
	})

	t.Run("duplicate employee id", func(t *testing.T) {
		userRepo := &mockUserRepo{
			getByEmployeeIDFunc: func(ctx context.Context, employeeID string) (*entity.User, error) {
				return &entity.User{ID: 1, EmployeeID: employeeID}, nil
			},
		}
		svc := NewUserService(userRepo, &mockAccessRepo{}, &passthroughTx{}, noopLogger{})
		if _, err := svc.Create(context.Background(), admin, validCreateInput()); !apperr.IsValidation(err) {
			t.Errorf("Create() error = %v, want validation", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		tests := []struct {
			name   string
			mutate func(*CreateUserInput)
		}{
			{"bad email", func(in *CreateUserInput) { in.Email = "not-an-email" }},
			{"bad employee id", func(in *CreateUserInput) { in.EmployeeID = "x" }},
			{"short password", func(in *CreateUserInput) { in.Password = "short" }},
			{"unknown role", func(in *CreateUserInput) { in.Role = "supervisor" }},
			{"unknown system", func(in *CreateUserInput) { in.Systems = []string{"payroll"} }},
			{"missing name", func(in *CreateUserInput) { in.Name = " " }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				input := validCreateInput()
				tt.mutate(&input)
				svc := NewUserService(&mockUserRepo{}, &mockAccessRepo{}, &passthroughTx{}, noopLogger{})
				if _, err := svc.Create(context.Background(), admin, input); !apperr.IsValidation(err) {
					t.Errorf("Create() error = %v, want validation", err)
				}
			})
		}
	})
}

func TestUserGet(t *testing.T) {
	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			return &entity.User{ID: id, EmployeeID: "EMP-001"}, nil
		},
	}
	svc := NewUserService(userRepo, &mockAccessRepo{}, &passthroughTx{}, noopLogger{})

	if _, err := svc.Get(context.Background(), owner, owner.ID); err != nil {
		t.Errorf("self Get() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), admin, owner.ID); err != nil {
		t.Errorf("admin Get() error = %v", err)
	}
	if _, err := svc.Get(context.Background(), stranger, owner.ID); !apperr.IsForbidden(err) {
		t.Errorf("stranger Get() error = %v, want forbidden", err)
	}
}

func TestUserDelete(t *testing.T) {
	svc := NewUserService(&mockUserRepo{}, &mockAccessRepo{}, &passthroughTx{}, noopLogger{})

	if err := svc.Delete(context.Background(), admin, admin.ID); !apperr.IsValidation(err) {
		t.Errorf("self Delete() error = %v, want validation", err)
	}
	if err := svc.Delete(context.Background(), approver, owner.ID); !apperr.IsForbidden(err) {
		t.Errorf("non-admin Delete() error = %v, want forbidden", err)
	}
	if err := svc.Delete(context.Background(), admin, owner.ID); err != nil {
		t.Errorf("admin Delete() error = %v", err)
	}
}

func TestSetSystemAccess(t *testing.T) {
	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			return &entity.User{ID: id}, nil
		},
	}
	var replaced []string
	accessRepo := &mockAccessRepo{
		replaceFunc: func(ctx context.Context, userID int64, systems []string) error {
			replaced = systems
			return nil
		},
	}
	svc := NewUserService(userRepo, accessRepo, &passthroughTx{}, noopLogger{})

	if err := svc.SetSystemAccess(context.Background(), admin, owner.ID, []string{entity.SystemMasterManagement}); err != nil {
		t.Fatalf("SetSystemAccess() error = %v", err)
	}
	if len(replaced) != 1 || replaced[0] != entity.SystemMasterManagement {
		t.Errorf("replaced systems = %v, want [%s]", replaced, entity.SystemMasterManagement)
	}

	if err := svc.SetSystemAccess(context.Background(), owner, owner.ID, nil); !apperr.IsForbidden(err) {
		t.Errorf("non-admin SetSystemAccess() error = %v, want forbidden", err)
	}
	if err := svc.SetSystemAccess(context.Background(), admin, owner.ID, []string{"payroll"}); !apperr.IsValidation(err) {
		t.Errorf("unknown system error = %v, want validation", err)
	}
}

func TestBulkSetSystemAccess(t *testing.T) {
	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			if id == 99 {
				return nil, apperr.ErrNotFound
			}
			return &entity.User{ID: id}, nil
		},
	}
	svc := NewUserService(userRepo, &mockAccessRepo{}, &passthroughTx{}, noopLogger{})

	updates := []SystemAccessUpdate{
		{UserID: 10, Systems: []string{entity.SystemApprovals}},
		{UserID: 99, Systems: []string{entity.SystemApprovals}},
		{UserID: 11, Systems: []string{entity.SystemWeeklyReports}},
	}
	results := svc.BulkSetSystemAccess(context.Background(), admin, updates)

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if !results[0].Success || !results[2].Success {
		t.Error("updates for existing users should succeed")
	}
	if results[1].Success {
		t.Error("update for missing user should fail")
	}
	if results[1].Error == "" {
		t.Error("failed result should carry the error message")
	}
}
