package service

import (
	"context"
	"testing"

	"github.com/quyenpham2020/shinsei-portal/internal/domain/apperr"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/authz"
	"github.com/quyenpham2020/shinsei-portal/internal/domain/entity"
)

func newMasterService(deptRepo *mockDeptRepo, teamRepo *mockTeamRepo, userRepo *mockUserRepo) MasterDataService {
	if deptRepo == nil {
		deptRepo = &mockDeptRepo{}
	}
	if teamRepo == nil {
		teamRepo = &mockTeamRepo{}
	}
	if userRepo == nil {
		userRepo = &mockUserRepo{}
	}
	return NewMasterDataService(deptRepo, teamRepo, &mockTypeRepo{}, &mockApproverRepo{}, userRepo, noopLogger{})
}

func TestCreateDepartment(t *testing.T) {
	t.Run("admin creates a department", func(t *testing.T) {
		svc := newMasterService(nil, nil, nil)

		dept, err := svc.CreateDepartment(context.Background(), admin, &entity.Department{Code: "SALES", Name: "Sales"})
		if err != nil {
			t.Fatalf("CreateDepartment() error = %v", err)
		}
		if !dept.IsActive {
			t.Error("new department should be active")
		}
	})

	t.Run("non-admin is refused", func(t *testing.T) {
		svc := newMasterService(nil, nil, nil)

		_, err := svc.CreateDepartment(context.Background(), approver, &entity.Department{Code: "SALES", Name: "Sales"})
		if !apperr.IsForbidden(err) {
			t.Fatalf("CreateDepartment() error = %v, want forbidden", err)
		}
	})

	t.Run("duplicate code is refused", func(t *testing.T) {
		deptRepo := &mockDeptRepo{
			getByCodeFunc: func(ctx context.Context, code string) (*entity.Department, error) {
				return &entity.Department{ID: 1, Code: code}, nil
			},
		}
		svc := newMasterService(deptRepo, nil, nil)

		_, err := svc.CreateDepartment(context.Background(), admin, &entity.Department{Code: "SALES", Name: "Sales"})
		if !apperr.IsValidation(err) {
			t.Fatalf("CreateDepartment() error = %v, want validation", err)
		}
	})
}

func TestUpdateDepartmentKeepsCode(t *testing.T) {
	deptRepo := &mockDeptRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Department, error) {
			return &entity.Department{ID: id, Code: "SALES", Name: "Sales"}, nil
		},
	}
	svc := newMasterService(deptRepo, nil, nil)

	updated, err := svc.UpdateDepartment(context.Background(), admin, &entity.Department{ID: 1, Code: "HACKED", Name: "Sales & Marketing"})
	if err != nil {
		t.Fatalf("UpdateDepartment() error = %v", err)
	}
	if updated.Code != "SALES" {
		t.Errorf("code = %s, want original SALES", updated.Code)
	}
	if updated.Name != "Sales & Marketing" {
		t.Errorf("name = %s, want updated name", updated.Name)
	}
}

func TestListTeamsScoping(t *testing.T) {
	teamID := int64(7)
	allTeams := []*entity.Team{{ID: 7, Name: "Tokyo"}, {ID: 8, Name: "Osaka"}}

	teamRepo := &mockTeamRepo{
		listFunc: func(ctx context.Context) ([]*entity.Team, error) { return allTeams, nil },
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Team, error) {
			return &entity.Team{ID: id, Name: "Tokyo"}, nil
		},
	}
	userRepo := &mockUserRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
			return &entity.User{ID: id, TeamID: &teamID}, nil
		},
	}
	svc := newMasterService(nil, teamRepo, userRepo)

	tests := []struct {
		name  string
		actor authz.Actor
		want  int
	}{
		{"admin sees all", admin, 2},
		{"gm sees all", authz.Actor{ID: 40, Role: authz.RoleGM}, 2},
		{"onsite leader sees own team", authz.Actor{ID: 41, Role: authz.RoleOnsiteLeader}, 1},
		{"plain user sees none", owner, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teams, err := svc.ListTeams(context.Background(), tt.actor)
			if err != nil {
				t.Fatalf("ListTeams() error = %v", err)
			}
			if len(teams) != tt.want {
				t.Errorf("got %d teams, want %d", len(teams), tt.want)
			}
		})
	}
}

func TestCreateApprover(t *testing.T) {
	deptRepo := &mockDeptRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.Department, error) {
			return &entity.Department{ID: id, Code: "SALES"}, nil
		},
	}

	t.Run("assigns an approver-role user", func(t *testing.T) {
		userRepo := &mockUserRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
				return &entity.User{ID: id, EmployeeID: "EMP-020", Role: authz.RoleApprover}, nil
			},
		}
		svc := newMasterService(deptRepo, nil, userRepo)

		a, err := svc.CreateApprover(context.Background(), admin, &entity.ApproverAssignment{UserID: 20, DepartmentID: 1})
		if err != nil {
			t.Fatalf("CreateApprover() error = %v", err)
		}
		if a.ApprovalLevel != 1 {
			t.Errorf("approval level = %d, want default 1", a.ApprovalLevel)
		}
		if !a.IsActive {
			t.Error("new assignment should be active")
		}
	})

	t.Run("plain user cannot be assigned", func(t *testing.T) {
		userRepo := &mockUserRepo{
			getByIDFunc: func(ctx context.Context, id int64) (*entity.User, error) {
				return &entity.User{ID: id, EmployeeID: "EMP-010", Role: authz.RoleUser}, nil
			},
		}
		svc := newMasterService(deptRepo, nil, userRepo)

		_, err := svc.CreateApprover(context.Background(), admin, &entity.ApproverAssignment{UserID: 10, DepartmentID: 1})
		if !apperr.IsValidation(err) {
			t.Fatalf("CreateApprover() error = %v, want validation", err)
		}
	})
}
