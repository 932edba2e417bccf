package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saferoads-vn/report-service/internal/services"
	"github.com/saferoads-vn/report-service/internal/utils"
	"github.com/saferoads-vn/report-service/internal/validator"
)

type ModerationHandler struct {
	BaseHandler
	reportService services.ReportService
	validator     *validator.Validator
}

func NewModerationHandler(
	reportService services.ReportService,
	validator *validator.Validator,
	logger utils.Logger,
) *ModerationHandler {
	return &ModerationHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
		validator:     validator,
	}
}

// ListReports returns the moderation queue
// @Summary List reports for moderation
// @Description Filtered, paginated report listing for moderators
// @Tags moderation
// @Produce json
// @Param status query string false "Report status"
// @Param city query string false "City filter"
// @Param district query string false "District filter"
// @Param search query string false "Title or description search"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} services.ReportListResponse
// @Failure 400 {object} ErrorResponse
// @Router /moderation/reports [get]
func (h *ModerationHandler) ListReports(c *gin.Context) {
	var req services.ListReportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	listing, err := h.reportService.ListForModeration(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

// DecideReport applies a moderation decision
// @Summary Decide report
// @Description Approves or rejects a pending report. Decisions are one-shot.
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path string true "Report ID"
// @Param decision body services.DecideReportRequest true "Decision"
// @Success 200 {object} services.ReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /moderation/reports/{id} [patch]
func (h *ModerationHandler) DecideReport(c *gin.Context) {
	var req services.DecideReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	moderatorID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Deciding report", "report_id", c.Param("id"), "approved", req.Approved)

	report, err := h.reportService.Decide(c.Request.Context(), moderatorID, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
