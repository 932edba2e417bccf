package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/services"
	"github.com/saferoads-vn/report-service/internal/utils"
	"github.com/saferoads-vn/report-service/internal/validator"
)

type ReportHandler struct {
	BaseHandler
	reportService     services.ReportService
	reportTypeService services.ReportTypeService
	validator         *validator.Validator
}

func NewReportHandler(
	reportService services.ReportService,
	reportTypeService services.ReportTypeService,
	validator *validator.Validator,
	logger utils.Logger,
) *ReportHandler {
	return &ReportHandler{
		BaseHandler:       NewBaseHandler(logger),
		reportService:     reportService,
		reportTypeService: reportTypeService,
		validator:         validator,
	}
}

// CreateReport submits a new hazard report
// @Summary Submit report
// @Description Submits a geotagged hazard report for moderation
// @Tags reports
// @Accept json
// @Produce json
// @Param report body services.CreateReportRequest true "Report data"
// @Success 201 {object} services.ReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /reports [post]
func (h *ReportHandler) CreateReport(c *gin.Context) {
	var req services.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting report", "title", req.Title)

	report, err := h.reportService.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// GetMyReports lists the caller's own submissions
// @Summary List own reports
// @Tags reports
// @Produce json
// @Success 200 {array} services.ReportResponse
// @Router /reports/mine [get]
func (h *ReportHandler) GetMyReports(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	reports, err := h.reportService.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reports)
}

// GetReport retrieves a single report
// @Summary Get report
// @Tags reports
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} services.ReportResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id} [get]
func (h *ReportHandler) GetReport(c *gin.Context) {
	userID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	role, _ := c.Get("user_role")
	userRole, _ := role.(models.UserRole)

	report, err := h.reportService.GetByID(c.Request.Context(), userID, userRole, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// ListReportTypes returns the hazard category catalog
// @Summary List report types
// @Tags reports
// @Produce json
// @Success 200 {array} models.ReportType
// @Router /report-types [get]
func (h *ReportHandler) ListReportTypes(c *gin.Context) {
	types, err := h.reportTypeService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, types)
}
