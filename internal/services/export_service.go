package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ExportService {
	return &exportService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

var exportHeaders = []string{
	"ID", "Title", "Description", "Status", "City", "District", "Address",
	"Latitude", "Longitude", "Type", "Reporter", "Rejection Reason", "Created At",
}

// ExportReports renders the filtered report listing as an xlsx workbook and
// returns the file bytes plus a timestamped filename.
func (s *exportService) ExportReports(ctx context.Context, req *ListReportsRequest) ([]byte, string, error) {
	filters := repositories.ReportFilters{
		City:         req.City,
		District:     req.District,
		ReportTypeID: req.ReportTypeID,
		Search:       req.Search,
	}
	if req.Status != nil {
		status := models.ReportStatus(*req.Status)
		filters.Status = &status
	}

	reports, total, err := s.repo.Report().List(ctx, s.db, filters)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load reports for export: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Reports"
	f.SetSheetName(f.GetSheetName(0), sheet)

	for col, header := range exportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, "", fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, report := range reports {
		values := []interface{}{
			report.ID,
			report.Title,
			report.Description,
			string(report.Status),
			ptrOrEmpty(report.City),
			ptrOrEmpty(report.District),
			ptrOrEmpty(report.Address),
			report.Latitude,
			report.Longitude,
			report.ReportType.Name,
			report.User.Name,
			ptrOrEmpty(report.RejectionReason),
			report.CreatedAt.Format(time.RFC3339),
		}

		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, "", fmt.Errorf("failed to compute cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, "", fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("reports_%s.xlsx", time.Now().UTC().Format("20060102_150405"))

	s.logger.Info("Reports exported", "count", total, "filename", filename)

	return buf.Bytes(), filename, nil
}
