package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/saferoads-vn/report-service/internal/config"
	"github.com/saferoads-vn/report-service/internal/models"
	"github.com/saferoads-vn/report-service/internal/repositories"
	"github.com/saferoads-vn/report-service/internal/services"
	"github.com/saferoads-vn/report-service/internal/utils"
	"github.com/saferoads-vn/report-service/internal/validator"
)

type HandlerManager struct {
	reportHandler     *ReportHandler
	moderationHandler *ModerationHandler
	adminHandler      *AdminHandler
	userHandler       *UserHandler
	authMiddleware    *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, userRepo)

	return &HandlerManager{
		reportHandler:     NewReportHandler(serviceManager.Report(), serviceManager.ReportType(), validator, logger),
		moderationHandler: NewModerationHandler(serviceManager.Report(), validator, logger),
		adminHandler:      NewAdminHandler(serviceManager.User(), serviceManager.Reward(), serviceManager.Export(), validator, logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		authMiddleware:    authMiddleware,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", HealthCheck)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		reports := v1.Group("/reports")
		{
			// Submission requires an unblocked account; reads do not.
			reports.POST("", hm.authMiddleware.RequireNotBlockedMiddleware(), hm.reportHandler.CreateReport)
			reports.GET("/mine", hm.reportHandler.GetMyReports)
			reports.GET("/:id", hm.reportHandler.GetReport)
		}

		v1.GET("/report-types", hm.reportHandler.ListReportTypes)
		v1.GET("/users/me", hm.userHandler.Me)

		moderation := v1.Group("/moderation")
		moderation.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleModerator))
		{
			moderation.GET("/reports", hm.moderationHandler.ListReports)
			moderation.PATCH("/reports/:id", hm.moderationHandler.DecideReport)
		}

		admin := v1.Group("/admin")
		admin.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin))
		{
			admin.GET("/users", hm.adminHandler.ListUsers)
			admin.POST("/users/:id/block", hm.adminHandler.BlockUser)
			admin.POST("/users/moderator", hm.adminHandler.SetModerator)

			admin.GET("/point-reward", hm.adminHandler.GetCurrentReward)
			admin.GET("/point-reward/history", hm.adminHandler.GetRewardHistory)
			admin.POST("/point-reward", hm.adminHandler.CreateReward)

			admin.GET("/reports/export", hm.adminHandler.ExportReports)
		}
	}
}

// HealthCheck endpoint
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "report-service",
	})
}
