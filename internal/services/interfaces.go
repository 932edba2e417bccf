package services

import (
	"context"

	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateReportRequest = validator.ReportCreateRequest
type DecideReportRequest = validator.ReportDecideRequest
type ListReportsRequest = validator.ReportListRequest
type CreateRewardRequest = validator.RewardCreateRequest

type ReportResponse struct {
	*models.Report
	PointsAwarded *int `json:"points_awarded,omitempty"`
}

type ReportListResponse struct {
	Reports    []*ReportResponse `json:"reports"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	Size       int               `json:"size"`
	TotalPages int               `json:"total_pages"`
}

type UserResponse struct {
	*models.User
}

type UserListResponse struct {
	Users []*UserResponse `json:"users"`
	Total int             `json:"total"`
}

type RewardResponse struct {
	*models.PointRewardVersion
}

type RewardHistoryResponse struct {
	Versions []*RewardResponse `json:"versions"`
}

// ===== SERVICE INTERFACES =====

// ReportService covers the driver-facing report lifecycle and the moderation
// queue.
type ReportService interface {
	// Create submits a new report for the given driver. The address fields
	// are resolved from coordinates on a best-effort basis.
	Create(ctx context.Context, driverID string, req *CreateReportRequest) (*ReportResponse, error)

	GetByID(ctx context.Context, userID string, role models.UserRole, id string) (*ReportResponse, error)
	ListByOwner(ctx context.Context, driverID string) ([]*ReportResponse, error)

	// ListForModeration returns a filtered, paginated listing for moderators.
	ListForModeration(ctx context.Context, req *ListReportsRequest) (*ReportListResponse, error)

	// Decide applies a one-shot moderation decision to a pending report.
	// Approval credits the owner with the current reward amount.
	Decide(ctx context.Context, moderatorID, reportID string, req *DecideReportRequest) (*ReportResponse, error)
}

// ReportTypeService exposes the hazard category catalog.
type ReportTypeService interface {
	List(ctx context.Context) ([]*models.ReportType, error)

	// Seed upserts the built-in catalog entries. Idempotent across boots.
	Seed(ctx context.Context) error
}

// UserService covers the signed-in user's own profile and admin user
// management.
type UserService interface {
	Me(ctx context.Context, userID string) (*UserResponse, error)
	List(ctx context.Context) (*UserListResponse, error)

	// SetBlocked blocks or unblocks a user. Blocking a moderator also
	// demotes them to driver in the same write.
	SetBlocked(ctx context.Context, adminID, userID string, blocked bool) (*UserResponse, error)

	// SetModerator grants or revokes the moderator role, keyed by email.
	SetModerator(ctx context.Context, adminID, email string, moderator bool) (*UserResponse, error)
}

// RewardService manages the temporal point reward configuration.
type RewardService interface {
	Current(ctx context.Context) (*RewardResponse, error)
	History(ctx context.Context) (*RewardHistoryResponse, error)

	// CreateVersion closes the open version and opens a new one atomically.
	CreateVersion(ctx context.Context, adminID string, req *CreateRewardRequest) (*RewardResponse, error)
}

// ExportService produces spreadsheet exports for admins.
type ExportService interface {
	// ExportReports renders the filtered report listing as an xlsx workbook.
	ExportReports(ctx context.Context, req *ListReportsRequest) ([]byte, string, error)
}

// ServiceManager provides access to all services with lifecycle management.
type ServiceManager interface {
	Report() ReportService
	ReportType() ReportTypeService
	User() UserService
	Reward() RewardService
	Export() ExportService

	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	HealthCheck(ctx context.Context) error
}
