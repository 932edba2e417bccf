package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/saferoads-vn/report-service/internal/cache"
	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/repositories"
)

type RewardPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager

	// inTx marks a transaction-scoped instance; set by newTxRepository.
	inTx bool
}

func NewRewardPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.RewardRepository {
	return &RewardPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (rw *RewardPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return rw.db
}

// GetCurrent returns the open reward version, or nil when none is configured.
// Reads inside a transaction bypass the cache so the close-then-insert
// sequence always sees the live row.
func (rw *RewardPostgreSQL) GetCurrent(ctx context.Context, tx *gorm.DB) (*models.PointRewardVersion, error) {
	if tx != nil || rw.inTx {
		return rw.queryCurrent(ctx, rw.getDB(tx))
	}

	var version models.PointRewardVersion
	err := rw.cacheManager.Reward.CacheOrExecute(ctx, "current", &version, cache.RewardCacheConfig.TTL, func() (interface{}, error) {
		current, err := rw.queryCurrent(ctx, rw.db)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return nil, repositories.ErrNotFound
		}
		return current, nil
	})
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &version, nil
}

func (rw *RewardPostgreSQL) queryCurrent(ctx context.Context, db *gorm.DB) (*models.PointRewardVersion, error) {
	var version models.PointRewardVersion
	err := db.WithContext(ctx).
		Where("end_date IS NULL").
		Order("start_date DESC").
		First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current reward version: %w", err)
	}

	return &version, nil
}

// CloseOpen stamps closedAt on every open version. Affecting zero rows is
// fine, it just means no version was configured yet.
func (rw *RewardPostgreSQL) CloseOpen(ctx context.Context, tx *gorm.DB, closedAt time.Time) error {
	err := rw.getDB(tx).WithContext(ctx).
		Model(&models.PointRewardVersion{}).
		Where("end_date IS NULL").
		Update("end_date", closedAt).Error
	if err != nil {
		return fmt.Errorf("failed to close open reward versions: %w", err)
	}

	cache.SafeDelete(ctx, rw.cacheManager.Reward, "current")

	return nil
}

// Create inserts a new reward version.
func (rw *RewardPostgreSQL) Create(ctx context.Context, tx *gorm.DB, version *models.PointRewardVersion) error {
	if err := rw.getDB(tx).WithContext(ctx).Create(version).Error; err != nil {
		return fmt.Errorf("failed to create reward version: %w", err)
	}

	cache.SafeDelete(ctx, rw.cacheManager.Reward, "current")

	return nil
}

// List retrieves the full version history, newest first.
func (rw *RewardPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.PointRewardVersion, error) {
	var versions []*models.PointRewardVersion
	err := rw.getDB(tx).WithContext(ctx).
		Order("start_date DESC").
		Find(&versions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reward versions: %w", err)
	}

	return versions, nil
}
