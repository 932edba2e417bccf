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

type ReportPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager

	// inTx marks a transaction-scoped instance; set by newTxRepository.
	inTx bool
}

func NewReportPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ReportRepository {
	return &ReportPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
	}
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (r *ReportPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts a new report and invalidates the owner's listings.
func (r *ReportPostgreSQL) Create(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	if err := r.getDB(tx).WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, r.cacheManager.Report, fmt.Sprintf("owner:%s:*", report.UserID))
	cache.SafeInvalidatePattern(ctx, r.cacheManager.Report, "list:*")

	return nil
}

// GetByID retrieves a report by ID with caching. Reads inside a transaction
// bypass the cache and take a row lock: a moderation decision must evaluate
// the live status, never a cached snapshot that may predate another decision.
func (r *ReportPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Report, error) {
	if tx != nil || r.inTx {
		return r.queryByID(ctx, r.getDB(tx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
	}

	cacheKey := fmt.Sprintf("id:%s", id)
	var report models.Report

	err := r.cacheManager.Report.CacheOrExecute(ctx, cacheKey, &report, cache.ReportCacheConfig.TTL, func() (interface{}, error) {
		return r.queryByID(ctx, r.db, id)
	})
	if err != nil {
		return nil, err
	}

	return &report, nil
}

func (r *ReportPostgreSQL) queryByID(ctx context.Context, db *gorm.DB, id string) (*models.Report, error) {
	var report models.Report
	err := db.WithContext(ctx).
		Preload("ReportType").
		Preload("User").
		First(&report, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repositories.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return &report, nil
}

// GetByOwner retrieves all reports submitted by a user, newest first.
func (r *ReportPostgreSQL) GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string) ([]*models.Report, error) {
	cacheKey := fmt.Sprintf("owner:%s:all", ownerID)
	var reports []*models.Report

	err := r.cacheManager.Report.CacheOrExecute(ctx, cacheKey, &reports, cache.ReportCacheConfig.TTL, func() (interface{}, error) {
		var dbReports []*models.Report
		err := r.getDB(tx).WithContext(ctx).
			Preload("ReportType").
			Where("user_id = ?", ownerID).
			Order("created_at DESC").
			Find(&dbReports).Error
		if err != nil {
			return nil, fmt.Errorf("failed to list reports by owner: %w", err)
		}
		return dbReports, nil
	})
	if err != nil {
		return nil, err
	}

	return reports, nil
}

// List retrieves reports matching the filters with a total count for paging.
// Listings are not cached because the filter space is unbounded.
func (r *ReportPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ReportFilters) ([]*models.Report, int64, error) {
	query := r.getDB(tx).WithContext(ctx).Model(&models.Report{})
	query = r.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var reports []*models.Report
	err := query.
		Preload("ReportType").
		Preload("User").
		Order("created_at DESC").
		Find(&reports).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}

	return reports, total, nil
}

// UpdateDecision persists a moderation decision in a single row write.
func (r *ReportPostgreSQL) UpdateDecision(ctx context.Context, tx *gorm.DB, report *models.Report) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.Report{}).
		Where("id = ?", report.ID).
		Updates(map[string]interface{}{
			"status":           report.Status,
			"rejection_reason": report.RejectionReason,
			"moderator_id":     report.ModeratorID,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update report decision: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}

	cache.InvalidateReportCache(ctx, r.cacheManager, report.ID, report.UserID)

	return nil
}

func (r *ReportPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ReportFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.City != nil {
		query = query.Where("city = ?", *filters.City)
	}
	if filters.District != nil {
		query = query.Where("district = ?", *filters.District)
	}
	if filters.ReportTypeID != nil {
		query = query.Where("report_type_id = ?", *filters.ReportTypeID)
	}
	if filters.Search != nil && *filters.Search != "" {
		pattern := "%" + *filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}
	return query
}
