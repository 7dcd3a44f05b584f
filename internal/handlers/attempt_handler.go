package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/attempt-service/internal/models"
	"github.com/lumenlearn/attempt-service/internal/repositories"
	"github.com/lumenlearn/attempt-service/internal/services"
	"github.com/lumenlearn/attempt-service/internal/utils"
)

// AttemptHandler exposes the attempt lifecycle over HTTP.
type AttemptHandler struct {
	BaseHandler
	attempts services.AttemptService
	exports  services.ExportService
}

func NewAttemptHandler(sm services.ServiceManager, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		attempts:    sm.Attempts(),
		exports:     sm.Exports(),
	}
}

// StartAttempt godoc
// @Summary Start a new attempt
// @Description Starts an attempt for the authenticated learner after checking assignment, availability window and attempt quota
// @Tags attempts
// @Accept json
// @Produce json
// @Param request body services.StartAttemptRequest true "Start attempt request"
// @Success 201 {object} models.Attempt
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /attempts/start [post]
func (h *AttemptHandler) StartAttempt(c *gin.Context) {
	caller, ok := h.callerFromContext(c)
	if !ok {
		return
	}

	var req services.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	attempt, err := h.attempts.StartAttempt(c.Request.Context(), caller, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Attempt started",
		"attempt_id", attempt.ID,
		"assessment_id", attempt.AssessmentID,
		"user_id", attempt.UserID)

	c.JSON(http.StatusCreated, attempt)
}

// PatchResponses godoc
// @Summary Record responses on an in-progress attempt
// @Description Normalizes and stores the submitted answers; entirely blank answers leave prior responses untouched
// @Tags attempts
// @Accept json
// @Produce json
// @Param id path string true "Attempt ID"
// @Param request body services.PatchResponsesRequest true "Response patches"
// @Success 200 {object} models.Attempt
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/responses [patch]
func (h *AttemptHandler) PatchResponses(c *gin.Context) {
	caller, ok := h.callerFromContext(c)
	if !ok {
		return
	}

	var req services.PatchResponsesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	attempt, err := h.attempts.PatchResponses(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// SubmitAttempt godoc
// @Summary Submit an attempt for grading
// @Description Grades every auto-gradable item synchronously and defers the rest to external evaluators
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.Attempt
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id}/submit [post]
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	caller, ok := h.callerFromContext(c)
	if !ok {
		return
	}

	attempt, err := h.attempts.SubmitAttempt(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Attempt submitted",
		"attempt_id", attempt.ID,
		"status", attempt.Status)

	c.JSON(http.StatusOK, attempt)
}

// GetAttempt godoc
// @Summary Get an attempt by ID
// @Tags attempts
// @Produce json
// @Param id path string true "Attempt ID"
// @Success 200 {object} models.Attempt
// @Failure 404 {object} ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	caller, ok := h.callerFromContext(c)
	if !ok {
		return
	}

	attempt, err := h.attempts.GetAttempt(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, attempt)
}

// ListAttempts godoc
// @Summary List the caller's attempts
// @Tags attempts
// @Produce json
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SuccessResponse
// @Router /attempts [get]
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	caller, ok := h.callerFromContext(c)
	if !ok {
		return
	}

	attempts, err := h.attempts.ListAttempts(c.Request.Context(), caller, parseAttemptFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: attempts})
}

// ListByAssessment godoc
// @Summary List attempts for an assessment
// @Description Staff-only view of every attempt recorded against an assessment
// @Tags attempts
// @Produce json
// @Param id path string true "Assessment ID"
// @Param status query string false "Filter by status"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /assessments/{id}/attempts [get]
func (h *AttemptHandler) ListByAssessment(c *gin.Context) {
	caller, ok := h.callerFromContext(c)
	if !ok {
		return
	}

	attempts, err := h.attempts.ListByAssessment(c.Request.Context(), caller, c.Param("id"), parseAttemptFilters(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: attempts})
}

// ExportAttempts godoc
// @Summary Export attempts for an assessment as a spreadsheet
// @Tags attempts
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Assessment ID"
// @Success 200 {file} binary
// @Failure 403 {object} ErrorResponse
// @Router /assessments/{id}/attempts/export [get]
func (h *AttemptHandler) ExportAttempts(c *gin.Context) {
	caller, ok := h.callerFromContext(c)
	if !ok {
		return
	}

	assessmentID := c.Param("id")
	data, err := h.exports.ExportAssessmentAttempts(c.Request.Context(), caller, assessmentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("attempts_%s_%s.xlsx", assessmentID, time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseAttemptFilters(c *gin.Context) repositories.AttemptFilters {
	filters := repositories.AttemptFilters{}

	if s := c.Query("status"); s != "" {
		status := models.AttemptStatus(s)
		filters.Status = &status
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil && limit > 0 {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil && offset > 0 {
		filters.Offset = offset
	}

	return filters
}
