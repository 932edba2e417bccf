package services

import (
	"context"
	"errors"
	"testing"

	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/validator"
)

func newTestUserService(repo *mockRepository) UserService {
	return NewUserService(repo, nil, testLogger(), validator.New())
}

func TestUserService_SetBlocked_DemotesModerator(t *testing.T) {
	repo := newMockRepository()
	repo.users["admin1"] = &models.User{ID: "admin1", Role: models.RoleAdmin}
	repo.users["mod1"] = &models.User{ID: "mod1", Role: models.RoleModerator}

	svc := newTestUserService(repo)

	resp, err := svc.SetBlocked(context.Background(), "admin1", "mod1", true)
	if err != nil {
		t.Fatalf("SetBlocked() error = %v", err)
	}

	if !resp.IsBlocked {
		t.Error("user should be blocked")
	}
	if resp.Role != models.RoleDriver {
		t.Errorf("role = %s, blocking a moderator must demote to DRIVER", resp.Role)
	}
	if repo.users["mod1"].Role != models.RoleDriver {
		t.Errorf("persisted role = %s, want DRIVER", repo.users["mod1"].Role)
	}
}

func TestUserService_SetBlocked_UnblockKeepsDriverRole(t *testing.T) {
	repo := newMockRepository()
	repo.users["admin1"] = &models.User{ID: "admin1", Role: models.RoleAdmin}
	repo.users["u1"] = &models.User{ID: "u1", Role: models.RoleDriver, IsBlocked: true}

	svc := newTestUserService(repo)

	resp, err := svc.SetBlocked(context.Background(), "admin1", "u1", false)
	if err != nil {
		t.Fatalf("SetBlocked() error = %v", err)
	}

	if resp.IsBlocked {
		t.Error("user should be unblocked")
	}
	// Unblocking never restores a revoked moderator role.
	if resp.Role != models.RoleDriver {
		t.Errorf("role = %s, want DRIVER", resp.Role)
	}
}

func TestUserService_SetBlocked_AdminProtected(t *testing.T) {
	repo := newMockRepository()
	repo.users["admin1"] = &models.User{ID: "admin1", Role: models.RoleAdmin}
	repo.users["admin2"] = &models.User{ID: "admin2", Role: models.RoleAdmin}

	svc := newTestUserService(repo)

	var perm *PermissionError

	_, err := svc.SetBlocked(context.Background(), "admin1", "admin2", true)
	if !errors.As(err, &perm) {
		t.Errorf("SetBlocked() on admin error = %v, want PermissionError", err)
	}

	_, err = svc.SetBlocked(context.Background(), "admin1", "admin1", true)
	if !errors.As(err, &perm) {
		t.Errorf("SetBlocked() on self error = %v, want PermissionError", err)
	}
}

func TestUserService_SetModerator_Toggle(t *testing.T) {
	repo := newMockRepository()
	repo.users["admin1"] = &models.User{ID: "admin1", Role: models.RoleAdmin}
	repo.users["u1"] = &models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleDriver}

	svc := newTestUserService(repo)

	resp, err := svc.SetModerator(context.Background(), "admin1", "u1@example.com", true)
	if err != nil {
		t.Fatalf("SetModerator(true) error = %v", err)
	}
	if resp.Role != models.RoleModerator {
		t.Errorf("role = %s, want MODERATOR", resp.Role)
	}

	resp, err = svc.SetModerator(context.Background(), "admin1", "u1@example.com", false)
	if err != nil {
		t.Fatalf("SetModerator(false) error = %v", err)
	}
	if resp.Role != models.RoleDriver {
		t.Errorf("role = %s, want DRIVER", resp.Role)
	}
}

func TestUserService_SetModerator_BlockedUser(t *testing.T) {
	repo := newMockRepository()
	repo.users["admin1"] = &models.User{ID: "admin1", Role: models.RoleAdmin}
	repo.users["u1"] = &models.User{ID: "u1", Email: "u1@example.com", Role: models.RoleDriver, IsBlocked: true}

	svc := newTestUserService(repo)

	_, err := svc.SetModerator(context.Background(), "admin1", "u1@example.com", true)
	var ruleErr *BusinessRuleError
	if !errors.As(err, &ruleErr) {
		t.Errorf("SetModerator() on blocked user error = %v, want BusinessRuleError", err)
	}
}

func TestUserService_Me_Blocked(t *testing.T) {
	repo := newMockRepository()
	repo.users["u1"] = &models.User{ID: "u1", Role: models.RoleDriver, IsBlocked: true}

	svc := newTestUserService(repo)

	_, err := svc.Me(context.Background(), "u1")
	if !errors.Is(err, ErrUserBlocked) {
		t.Errorf("Me() on blocked user error = %v, want ErrUserBlocked", err)
	}
}

func TestUserService_Me_NotFound(t *testing.T) {
	repo := newMockRepository()
	svc := newTestUserService(repo)

	_, err := svc.Me(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Me() error = %v, want ErrUserNotFound", err)
	}
}
