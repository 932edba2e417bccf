package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/repositories"
	"github.com/saferoads-vn/report-service/internal/validator"
)

type rewardService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewRewardService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) RewardService {
	return &rewardService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *rewardService) Current(ctx context.Context) (*RewardResponse, error) {
	current, err := s.repo.Reward().GetCurrent(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to get current reward: %w", err)
	}
	if current == nil {
		return nil, ErrRewardNotFound
	}

	return &RewardResponse{PointRewardVersion: current}, nil
}

func (s *rewardService) History(ctx context.Context) (*RewardHistoryResponse, error) {
	versions, err := s.repo.Reward().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward versions: %w", err)
	}

	responses := make([]*RewardResponse, len(versions))
	for i, v := range versions {
		responses[i] = &RewardResponse{PointRewardVersion: v}
	}

	return &RewardHistoryResponse{Versions: responses}, nil
}

// CreateVersion closes the open version and opens the new one inside a single
// serializable transaction, so at most one version is ever open even under
// concurrent calls.
func (s *rewardService) CreateVersion(ctx context.Context, adminID string, req *CreateRewardRequest) (*RewardResponse, error) {
	s.logger.Info("Creating reward version", "admin_id", adminID, "amount", req.Amount)

	if errs := s.validator.GetBusinessValidator().ValidateRewardCreate(req); len(errs) > 0 {
		return nil, fromValidatorErrors(errs)
	}

	var created *models.PointRewardVersion

	err := s.repo.WithSerializableTransaction(ctx, func(txRepo repositories.Repository) error {
		now := time.Now().UTC()

		if err := txRepo.Reward().CloseOpen(ctx, nil, now); err != nil {
			return fmt.Errorf("failed to close open versions: %w", err)
		}

		start := now
		if req.StartDate != nil {
			start = req.StartDate.UTC()
		}

		version := &models.PointRewardVersion{
			Amount:    req.Amount,
			StartDate: start,
		}
		if err := txRepo.Reward().Create(ctx, nil, version); err != nil {
			return fmt.Errorf("failed to create version: %w", err)
		}

		created = version
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reward version created", "version_id", created.ID, "amount", created.Amount)

	return &RewardResponse{PointRewardVersion: created}, nil
}
