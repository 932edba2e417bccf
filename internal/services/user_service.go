package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/repositories"
	"github.com/saferoads-vn/report-service/internal/validator"
)

type userService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewUserService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) UserService {
	return &userService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *userService) Me(ctx context.Context, userID string) (*UserResponse, error) {
	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsBlocked {
		return nil, ErrUserBlocked
	}

	return &UserResponse{User: user}, nil
}

func (s *userService) List(ctx context.Context) (*UserListResponse, error) {
	users, err := s.repo.User().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]*UserResponse, len(users))
	for i, u := range users {
		responses[i] = &UserResponse{User: u}
	}

	return &UserListResponse{Users: responses, Total: len(responses)}, nil
}

func (s *userService) SetBlocked(ctx context.Context, adminID, userID string, blocked bool) (*UserResponse, error) {
	s.logger.Info("Setting user blocked state", "admin_id", adminID, "user_id", userID, "blocked", blocked)

	if adminID == userID {
		return nil, NewPermissionError(adminID, userID, "user", "block", "admins cannot block themselves")
	}

	user, err := s.repo.User().GetByID(ctx, s.db, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == models.RoleAdmin {
		return nil, NewPermissionError(adminID, userID, "user", "block", "admins cannot be blocked")
	}

	user.IsBlocked = blocked

	// Blocking a moderator revokes the role in the same write. Unblocking
	// never restores it.
	if blocked && user.Role == models.RoleModerator {
		user.Role = models.RoleDriver
		s.logger.Info("Moderator demoted on block", "user_id", userID)
	}

	if err := s.repo.User().Update(ctx, s.db, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &UserResponse{User: user}, nil
}

func (s *userService) SetModerator(ctx context.Context, adminID, email string, moderator bool) (*UserResponse, error) {
	s.logger.Info("Setting moderator role", "admin_id", adminID, "email", email, "moderator", moderator)

	user, err := s.repo.User().GetByEmail(ctx, s.db, email)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.Role == models.RoleAdmin {
		return nil, NewPermissionError(adminID, user.ID, "user", "set_moderator", "admin role cannot be changed")
	}

	if moderator {
		if user.IsBlocked {
			return nil, NewBusinessRuleError("blocked_user_promotion",
				"blocked users cannot be promoted to moderator")
		}
		user.Role = models.RoleModerator
	} else {
		user.Role = models.RoleDriver
	}

	if err := s.repo.User().Update(ctx, s.db, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &UserResponse{User: user}, nil
}
