package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

const testSecret = "test-secret-key"

func testUser(t *testing.T, password string) *entity.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return &entity.User{
		ID:           10,
		EmployeeID:   "EMP-001",
		Name:         "Taro Yamada",
		Email:        "taro@example.com",
		PasswordHash: string(hash),
		Department:   "Sales",
		Role:         authz.RoleUser,
	}
}

func newTestAuthService(userRepo *mockUserRepo, accessRepo *mockAccessRepo) AuthService {
	return NewAuthService(userRepo, accessRepo, testSecret, time.Hour, noopLogger{})
}

func TestLogin(t *testing.T) {
	user := testUser(t, "secret-pass")
	userRepo := &mockUserRepo{
		getByEmployeeIDFunc: func(ctx context.Context, employeeID string) (*entity.User, error) {
			if !strings.EqualFold(employeeID, user.EmployeeID) {
				return nil, apperr.ErrNotFound
			}
			return user, nil
		},
	}
	accessRepo := &mockAccessRepo{
		listFunc: func(ctx context.Context, userID int64) ([]string, error) {
			return []string{entity.SystemApprovals}, nil
		},
	}
	svc := newTestAuthService(userRepo, accessRepo)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		result, err := svc.Login(context.Background(), "EMP-001", "secret-pass")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if result.Token == "" {
			t.Error("token is empty")
		}
		if len(result.User.Systems) != 1 || result.User.Systems[0] != entity.SystemApprovals {
			t.Errorf("systems = %v, want [%s]", result.User.Systems, entity.SystemApprovals)
		}

		actor, err := svc.VerifyToken(result.Token)
		if err != nil {
			t.Fatalf("VerifyToken() error = %v", err)
		}
		if actor.ID != user.ID || actor.EmployeeID != user.EmployeeID || actor.Role != user.Role {
			t.Errorf("actor = %+v, want identity of user %d", actor, user.ID)
		}
	})

	t.Run("employee id is matched case-insensitively", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), "emp-001", "secret-pass"); err != nil {
			t.Errorf("Login() error = %v", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), "EMP-001", "wrong"); !apperr.IsUnauthorized(err) {
			t.Errorf("Login() error = %v, want unauthorized", err)
		}
	})

	t.Run("unknown user gets the same error as wrong password", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), "EMP-999", "secret-pass"); !apperr.IsUnauthorized(err) {
			t.Errorf("Login() error = %v, want unauthorized", err)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := svc.Login(context.Background(), "", ""); !apperr.IsValidation(err) {
			t.Errorf("Login() error = %v, want validation", err)
		}
	})
}

func TestVerifyToken_Invalid(t *testing.T) {
	svc := newTestAuthService(&mockUserRepo{}, &mockAccessRepo{})

	if _, err := svc.VerifyToken("not-a-token"); !apperr.IsForbidden(err) {
		t.Errorf("VerifyToken() error = %v, want forbidden", err)
	}

	// A token signed with a different secret must be refused.
	other := NewAuthService(&mockUserRepo{}, &mockAccessRepo{}, "other-secret", time.Hour, noopLogger{})
	token, err := other.(*authServiceImpl).issueToken(testUser(t, "x"))
	if err != nil {
		t.Fatalf("issueToken() error = %v", err)
	}
	if _, err := svc.VerifyToken(token); !apperr.IsForbidden(err) {
		t.Errorf("VerifyToken() error = %v, want forbidden", err)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, &mockAccessRepo{}, testSecret, -time.Minute, noopLogger{})
	token, err := svc.(*authServiceImpl).issueToken(testUser(t, "x"))
	if err != nil {
		t.Fatalf("issueToken() error = %v", err)
	}

	verifier := newTestAuthService(&mockUserRepo{}, &mockAccessRepo{})
	if _, err := verifier.VerifyToken(token); !apperr.IsForbidden(err) {
		t.Errorf("VerifyToken() error = %v, want forbidden", err)
	}
}

func TestChangePassword(t *testing.T) {
	user := testUser(t, "old-password")
	user.MustChangePassword = true

	var updated *entity.User
	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			return user, nil
		},
		updateFunc: func(ctx context.Context, u *entity.User) error {
			updated = u
			return nil
		},
	}
	svc := newTestAuthService(userRepo, &mockAccessRepo{})
	actor := user.Actor()

	t.Run("too short", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), actor, "old-password", "short")
		if !apperr.IsValidation(err) {
			t.Errorf("ChangePassword() error = %v, want validation", err)
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), actor, "nope", "new-password-1")
		if !apperr.IsUnauthorized(err) {
			t.Errorf("ChangePassword() error = %v, want unauthorized", err)
		}
	})

	t.Run("success clears the must-change flag", func(t *testing.T) {
		if err := svc.ChangePassword(context.Background(), actor, "old-password", "new-password-1"); err != nil {
			t.Fatalf("ChangePassword() error = %v", err)
		}
		if updated == nil {
			t.Fatal("user was not updated")
		}
		if updated.MustChangePassword {
			t.Error("must-change flag still set")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("new-password-1")); err != nil {
			t.Error("stored hash does not match the new password")
		}
	})
}
