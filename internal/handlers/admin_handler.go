package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/saferoads-vn/report-service/internal/services"
	"github.com/saferoads-vn/report-service/internal/utils"
	"github.com/saferoads-vn/report-service/internal/validator"
)

type AdminHandler struct {
	BaseHandler
	userService   services.UserService
	rewardService services.RewardService
	exportService services.ExportService
	validator     *validator.Validator
}

func NewAdminHandler(
	userService services.UserService,
	rewardService services.RewardService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *AdminHandler {
	return &AdminHandler{
		BaseHandler:   NewBaseHandler(logger),
		userService:   userService,
		rewardService: rewardService,
		exportService: exportService,
		validator:     validator,
	}
}

// ===== USER MANAGEMENT =====

// ListUsers returns all registered users
// @Summary List users
// @Tags admin
// @Produce json
// @Success 200 {object} services.UserListResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, users)
}

type blockRequest struct {
	Blocked bool `json:"blocked"`
}

// BlockUser blocks or unblocks a user
// @Summary Block or unblock user
// @Description Toggles the blocked flag. Blocking a moderator demotes them to driver.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body blockRequest true "Blocked flag"
// @Success 200 {object} services.UserResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id}/block [post]
func (h *AdminHandler) BlockUser(c *gin.Context) {
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	adminID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Setting blocked state", "target_id", c.Param("id"), "blocked", req.Blocked)

	user, err := h.userService.SetBlocked(c.Request.Context(), adminID, c.Param("id"), req.Blocked)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

type moderatorRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Moderator bool   `json:"moderator"`
}

// SetModerator grants or revokes the moderator role
// @Summary Set moderator role
// @Tags admin
// @Accept json
// @Produce json
// @Param request body moderatorRequest true "Email and desired role"
// @Success 200 {object} services.UserResponse
// @Failure 404 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /admin/users/moderator [post]
func (h *AdminHandler) SetModerator(c *gin.Context) {
	var req moderatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	adminID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Setting moderator role", "email", req.Email, "moderator", req.Moderator)

	user, err := h.userService.SetModerator(c.Request.Context(), adminID, req.Email, req.Moderator)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ===== REWARD CONFIGURATION =====

// GetCurrentReward returns the open reward version
// @Summary Get current reward
// @Tags admin
// @Produce json
// @Success 200 {object} services.RewardResponse
// @Failure 404 {object} ErrorResponse
// @Router /admin/point-reward [get]
func (h *AdminHandler) GetCurrentReward(c *gin.Context) {
	reward, err := h.rewardService.Current(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reward)
}

// GetRewardHistory returns all reward versions
// @Summary Get reward history
// @Tags admin
// @Produce json
// @Success 200 {object} services.RewardHistoryResponse
// @Router /admin/point-reward/history [get]
func (h *AdminHandler) GetRewardHistory(c *gin.Context) {
	history, err := h.rewardService.History(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// CreateReward opens a new reward version
// @Summary Create reward version
// @Description Closes the open version and opens a new one atomically
// @Tags admin
// @Accept json
// @Produce json
// @Param request body services.CreateRewardRequest true "Reward amount"
// @Success 201 {object} services.RewardResponse
// @Failure 400 {object} ErrorResponse
// @Router /admin/point-reward [post]
func (h *AdminHandler) CreateReward(c *gin.Context) {
	var req services.CreateRewardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	adminID, ok := h.currentUserID(c)
	if !ok {
		return
	}

	reward, err := h.rewardService.CreateVersion(c.Request.Context(), adminID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reward)
}

// ===== EXPORT =====

// ExportReports streams the filtered report listing as xlsx
// @Summary Export reports
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Router /admin/reports/export [get]
func (h *AdminHandler) ExportReports(c *gin.Context) {
	var req services.ListReportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid query parameters",
			Details: err.Error(),
		})
		return
	}

	data, filename, err := h.exportService.ExportReports(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
