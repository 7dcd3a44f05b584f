package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/attempt-service/internal/models"
	"github.com/lumenlearn/attempt-service/internal/services"
	"github.com/lumenlearn/attempt-service/internal/utils"
	appvalidator "github.com/lumenlearn/attempt-service/internal/validator"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c, h.logger).Info(msg, args...)
}

// callerFromContext builds the authenticated identity the services consume.
func (h *BaseHandler) callerFromContext(c *gin.Context) (services.Caller, bool) {
	userID := c.GetString("user_id")
	tenantID := c.GetString("tenant_id")
	role, _ := c.Get("user_role")

	userRole, ok := role.(models.UserRole)
	if userID == "" || tenantID == "" || !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "User not authenticated",
		})
		return services.Caller{}, false
	}

	return services.Caller{UserID: userID, TenantID: tenantID, Role: userRole}, true
}

// handleServiceError maps service errors to HTTP status codes.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs appvalidator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Validation failed",
			Details: err.Error(),
		})
		return
	}

	var permErr *services.PermissionError
	if errors.As(err, &permErr) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: permErr.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrInvalidAssessment),
		errors.Is(err, services.ErrLearnerNotFound),
		errors.Is(err, services.ErrNotALearner),
		errors.Is(err, services.ErrAttemptNotEditable),
		errors.Is(err, services.ErrAttemptAlreadySubmitted):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "bad_request",
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrAttemptNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrNotAssigned),
		errors.Is(err, services.ErrAssessmentNotAvailable),
		errors.Is(err, services.ErrAssessmentExpired),
		errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: err.Error(),
		})

	case errors.Is(err, services.ErrAttemptLimitReached):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})

	default:
		h.logger.Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}
