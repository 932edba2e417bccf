package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/saferoads-vn/report-service/internal/cache"
	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/repositories"
)

type ReportTypePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager

	// inTx marks a transaction-scoped instance; set by newTxRepository.
	inTx bool
}

func NewReportTypePostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ReportTypeRepository {
	return &ReportTypePostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

func (rt *ReportTypePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return rt.db
}

// List retrieves the report-type catalog with caching. Transaction reads
// bypass the cache.
func (rt *ReportTypePostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.ReportType, error) {
	if tx != nil || rt.inTx {
		return rt.queryList(ctx, rt.getDB(tx))
	}

	var types []*models.ReportType

	err := rt.cacheManager.ReportType.CacheOrExecute(ctx, "list:all", &types, cache.ReportTypeCacheConfig.TTL, func() (interface{}, error) {
		return rt.queryList(ctx, rt.db)
	})
	if err != nil {
		return nil, err
	}

	return types, nil
}

func (rt *ReportTypePostgreSQL) queryList(ctx context.Context, db *gorm.DB) ([]*models.ReportType, error) {
	var types []*models.ReportType
	err := db.WithContext(ctx).
		Order("name ASC").
		Find(&types).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list report types: %w", err)
	}
	return types, nil
}

// GetByID retrieves a report type by ID.
func (rt *ReportTypePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ReportType, error) {
	var reportType models.ReportType
	err := rt.getDB(tx).WithContext(ctx).First(&reportType, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report type: %w", err)
	}

	return &reportType, nil
}

// UpsertByName inserts a report type or refreshes its description and icon.
// Used by startup seeding so repeated boots stay idempotent.
func (rt *ReportTypePostgreSQL) UpsertByName(ctx context.Context, tx *gorm.DB, reportType *models.ReportType) error {
	err := rt.getDB(tx).WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "icon", "updated_at"}),
		}).
		Create(reportType).Error
	if err != nil {
		return fmt.Errorf("failed to upsert report type: %w", err)
	}

	cache.SafeDelete(ctx, rt.cacheManager.ReportType, "list:all")

	return nil
}
