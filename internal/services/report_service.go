package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saferoads-vn/report-service/internal/events"
	"github.com/saferoads-vn/report-service/internal/gazetteer"
	"github.com/saferoads-vn/report-service/internal/geocoding"
	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/repositories"
	"github.com/saferoads-vn/report-service/internal/validator"
)

type reportService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	geocoder  geocoding.Geocoder
	gazetteer *gazetteer.Gazetteer
	publisher events.EventPublisher
}

func NewReportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, geocoder geocoding.Geocoder, gaz *gazetteer.Gazetteer, publisher events.EventPublisher) ReportService {
	return &reportService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		geocoder:  geocoder,
		gazetteer: gaz,
		publisher: publisher,
	}
}

// ===== DRIVER OPERATIONS =====

func (s *reportService) Create(ctx context.Context, driverID string, req *CreateReportRequest) (*ReportResponse, error) {
	s.logger.Info("Creating report", "driver_id", driverID, "title", req.Title)

	if errs := s.validator.GetBusinessValidator().ValidateReportCreate(req); len(errs) > 0 {
		return nil, fromValidatorErrors(errs)
	}

	// The route gate already rejects blocked accounts; the service re-checks
	// so the rule holds for every caller.
	owner, err := s.repo.User().GetByID(ctx, s.db, driverID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load owner: %w", err)
	}
	if owner.IsBlocked {
		return nil, ErrUserBlocked
	}

	if _, err := s.repo.ReportType().GetByID(ctx, s.db, req.ReportTypeID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportTypeNotFound
		}
		return nil, fmt.Errorf("failed to check report type: %w", err)
	}

	report := &models.Report{
		ID:           uuid.New().String(),
		Title:        req.Title,
		Description:  req.Description,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Status:       models.StatusPending,
		ReportTypeID: req.ReportTypeID,
		UserID:       driverID,
	}

	if len(req.Photos) > 0 {
		photos, err := json.Marshal(req.Photos)
		if err != nil {
			return nil, fmt.Errorf("failed to encode photos: %w", err)
		}
		report.Photos = photos
	}

	s.resolveAddress(ctx, report)

	if err := s.repo.Report().Create(ctx, s.db, report); err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	s.publishReportEvent(ctx, events.ReportCreated, report, 0)

	s.logger.Info("Report created", "report_id", report.ID, "city", ptrOrEmpty(report.City), "district", ptrOrEmpty(report.District))

	created, err := s.repo.Report().GetByID(ctx, s.db, report.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload report: %w", err)
	}

	return &ReportResponse{Report: created}, nil
}

// resolveAddress fills the address fields from coordinates on a best-effort
// basis. A geocoding failure leaves all three fields nil and never blocks the
// submission.
func (s *reportService) resolveAddress(ctx context.Context, report *models.Report) {
	result, err := s.geocoder.ReverseGeocode(ctx, report.Longitude, report.Latitude)
	if err != nil {
		s.logger.Warn("Reverse geocoding failed, storing report without address",
			"report_id", report.ID, "error", err)
		return
	}

	report.Address = &result.PlaceName

	loc := s.gazetteer.Resolve(result.PlaceName, result.Parts)
	report.City = loc.City
	report.District = loc.District
}

func (s *reportService) GetByID(ctx context.Context, userID string, role models.UserRole, id string) (*ReportResponse, error) {
	report, err := s.repo.Report().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	// Drivers may only see their own submissions.
	if role == models.RoleDriver && report.UserID != userID {
		return nil, NewPermissionError(userID, id, "report", "read", "not the report owner")
	}

	return &ReportResponse{Report: report}, nil
}

func (s *reportService) ListByOwner(ctx context.Context, driverID string) ([]*ReportResponse, error) {
	reports, err := s.repo.Report().GetByOwner(ctx, s.db, driverID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	responses := make([]*ReportResponse, len(reports))
	for i, r := range reports {
		responses[i] = &ReportResponse{Report: r}
	}

	return responses, nil
}

// ===== MODERATION OPERATIONS =====

func (s *reportService) ListForModeration(ctx context.Context, req *ListReportsRequest) (*ReportListResponse, error) {
	if errs := s.validator.Validate(req); len(errs) > 0 {
		return nil, fromValidatorErrors(errs)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	size := req.Size
	if size < 1 {
		size = 20
	}

	filters := repositories.ReportFilters{
		City:         req.City,
		District:     req.District,
		ReportTypeID: req.ReportTypeID,
		Search:       req.Search,
		Limit:        size,
		Offset:       (page - 1) * size,
	}
	if req.Status != nil {
		status := models.ReportStatus(*req.Status)
		filters.Status = &status
	}

	reports, total, err := s.repo.Report().List(ctx, s.db, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	responses := make([]*ReportResponse, len(reports))
	for i, r := range reports {
		responses[i] = &ReportResponse{Report: r}
	}

	return &ReportListResponse{
		Reports:    responses,
		Total:      total,
		Page:       page,
		Size:       size,
		TotalPages: int(math.Ceil(float64(total) / float64(size))),
	}, nil
}

func (s *reportService) Decide(ctx context.Context, moderatorID, reportID string, req *DecideReportRequest) (*ReportResponse, error) {
	s.logger.Info("Deciding report", "report_id", reportID, "moderator_id", moderatorID, "approved", req.Approved)

	if errs := s.validator.GetBusinessValidator().ValidateReportDecide(req); len(errs) > 0 {
		return nil, fromValidatorErrors(errs)
	}

	moderator, err := s.repo.User().GetByID(ctx, s.db, moderatorID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load moderator: %w", err)
	}
	if moderator.Role != models.RoleModerator {
		return nil, NewPermissionError(moderatorID, reportID, "report", "decide", "caller is not a moderator")
	}

	var decided *models.Report
	var awarded int

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		report, err := txRepo.Report().GetByID(ctx, nil, reportID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrReportNotFound
			}
			return fmt.Errorf("failed to load report: %w", err)
		}

		// A decision is one-shot. Anything past PENDING is immutable.
		if report.Status != models.StatusPending {
			return NewBusinessRuleError("report_already_decided",
				fmt.Sprintf("report is %s and can no longer be decided", report.Status))
		}

		if req.Approved {
			report.Status = models.StatusApproved
			report.RejectionReason = nil
		} else {
			report.Status = models.StatusRejected
			report.RejectionReason = req.RejectionReason
		}
		report.ModeratorID = &moderatorID

		if err := txRepo.Report().UpdateDecision(ctx, nil, report); err != nil {
			return fmt.Errorf("failed to persist decision: %w", err)
		}

		if req.Approved {
			reward, err := txRepo.Reward().GetCurrent(ctx, nil)
			if err != nil {
				return fmt.Errorf("failed to load reward version: %w", err)
			}
			// No configured reward means the approval credits nothing.
			if reward != nil && reward.Amount > 0 {
				if err := txRepo.User().IncrementPoints(ctx, nil, report.UserID, reward.Amount); err != nil {
					return fmt.Errorf("failed to credit points: %w", err)
				}
				awarded = reward.Amount
			}
		}

		decided = report
		return nil
	})
	if err != nil {
		return nil, err
	}

	eventType := events.ReportApproved
	if !req.Approved {
		eventType = events.ReportRejected
	}
	s.publishReportEvent(ctx, eventType, decided, awarded)

	s.logger.Info("Report decided", "report_id", reportID, "status", decided.Status, "points_awarded", awarded)

	resp := &ReportResponse{Report: decided}
	if req.Approved {
		resp.PointsAwarded = &awarded
	}

	return resp, nil
}

// publishReportEvent emits a lifecycle event. Broker failures are logged and
// never surfaced to the caller.
func (s *reportService) publishReportEvent(ctx context.Context, eventType string, report *models.Report, points int) {
	if s.publisher == nil {
		return
	}

	data := &events.ReportEventData{
		ReportID:    report.ID,
		OwnerID:     report.UserID,
		ModeratorID: report.ModeratorID,
		Status:      string(report.Status),
		City:        report.City,
		District:    report.District,
		Points:      points,
	}

	if err := s.publisher.Publish(ctx, eventType, data); err != nil {
		s.logger.Error("Failed to publish report event",
			"event_type", eventType, "report_id", report.ID, "error", err)
	}
}

func ptrOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
