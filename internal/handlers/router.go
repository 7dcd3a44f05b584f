package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/attempt-service/internal/config"
	"github.com/lumenlearn/attempt-service/internal/models"
	"github.com/lumenlearn/attempt-service/internal/repositories"
	"github.com/lumenlearn/attempt-service/internal/services"
	"github.com/lumenlearn/attempt-service/internal/utils"
)

type HandlerManager struct {
	attemptHandler *AttemptHandler
	authMiddleware *CasdoorAuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	userRepo repositories.UserRepository,
) *HandlerManager {
	return &HandlerManager{
		attemptHandler: NewAttemptHandler(serviceManager, logger),
		authMiddleware: NewCasdoorAuthMiddleware(casdoorConfig, userRepo),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.POST("/start", hm.attemptHandler.StartAttempt)
			attempts.GET("", hm.attemptHandler.ListAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
			attempts.PATCH("/:id/responses", hm.attemptHandler.PatchResponses)
			attempts.POST("/:id/submit", hm.attemptHandler.SubmitAttempt)
		}

		// Assessment-scoped attempt views - Instructors and Admins only
		assessments := v1.Group("/assessments")
		assessments.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleInstructor, models.RoleAdmin))
		{
			assessments.GET("/:id/attempts", hm.attemptHandler.ListByAssessment)
			assessments.GET("/:id/attempts/export", hm.attemptHandler.ExportAttempts)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"service": "attempt-service",
		})
	})
}
