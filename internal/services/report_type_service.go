package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/repositories"
)

type reportTypeService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewReportTypeService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ReportTypeService {
	return &reportTypeService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

// seedTypes is the built-in hazard catalog.
var seedTypes = []models.ReportType{
	{
		Name:        "Tình trạng đường",
		Description: "Báo cáo về tình trạng đường xá, cầu cống",
		Icon:        "bi-cone-striped",
	},
	{
		Name:        "Vi phạm giao thông",
		Description: "Báo cáo về các hành vi vi phạm luật giao thông",
		Icon:        "bi-car-front",
	},
	{
		Name:        "Điểm nguy hiểm",
		Description: "Báo cáo về các điểm nguy hiểm, dễ xảy ra tai nạn",
		Icon:        "bi-exclamation-triangle",
	},
}

func (s *reportTypeService) List(ctx context.Context) ([]*models.ReportType, error) {
	types, err := s.repo.ReportType().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list report types: %w", err)
	}

	return types, nil
}

// Seed upserts the built-in catalog by name so repeated boots are idempotent.
func (s *reportTypeService) Seed(ctx context.Context) error {
	for _, t := range seedTypes {
		reportType := t
		reportType.ID = uuid.New().String()

		if err := s.repo.ReportType().UpsertByName(ctx, s.db, &reportType); err != nil {
			return fmt.Errorf("failed to seed report type %q: %w", t.Name, err)
		}
	}

	s.logger.Info("Report type catalog seeded", "count", len(seedTypes))

	return nil
}
