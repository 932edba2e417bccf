package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/saferoads-vn/report-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

// ReportFilters are ANDed together; Search alone matches title OR description
// case-insensitively. Results are ordered newest-created-first.
type ReportFilters struct {
	Status       *models.ReportStatus `json:"status"`
	City         *string              `json:"city"`
	District     *string              `json:"district"`
	ReportTypeID *string              `json:"report_type_id"`
	Search       *string              `json:"search"`
	Limit        int                  `json:"limit"`
	Offset       int                  `json:"offset"`
}

// ===== REPOSITORY INTERFACES =====

type ReportRepository interface {
	Create(ctx context.Context, tx *gorm.DB, report *models.Report) error
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Report, error)
	GetByOwner(ctx context.Context, tx *gorm.DB, ownerID string) ([]*models.Report, error)
	List(ctx context.Context, tx *gorm.DB, filters ReportFilters) ([]*models.Report, int64, error)

	// UpdateDecision persists a moderation decision: status, rejection
	// reason and moderator in a single row write.
	UpdateDecision(ctx context.Context, tx *gorm.DB, report *models.Report) error
}

type ReportTypeRepository interface {
	List(ctx context.Context, tx *gorm.DB) ([]*models.ReportType, error)
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.ReportType, error)
	UpsertByName(ctx context.Context, tx *gorm.DB, reportType *models.ReportType) error
}

type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.User, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error

	// UpsertByEmail creates the user on first sign-in or refreshes the
	// profile fields of an existing one, keyed by email.
	UpsertByEmail(ctx context.Context, tx *gorm.DB, user *models.User) (*models.User, error)

	// IncrementPoints adds delta to the user's point balance.
	IncrementPoints(ctx context.Context, tx *gorm.DB, userID string, delta int) error
}

type RewardRepository interface {
	// GetCurrent returns the version with a NULL end date, or nil.
	GetCurrent(ctx context.Context, tx *gorm.DB) (*models.PointRewardVersion, error)

	// CloseOpen stamps closedAt on every open version.
	CloseOpen(ctx context.Context, tx *gorm.DB, closedAt time.Time) error

	Create(ctx context.Context, tx *gorm.DB, version *models.PointRewardVersion) error
	List(ctx context.Context, tx *gorm.DB) ([]*models.PointRewardVersion, error)
}
