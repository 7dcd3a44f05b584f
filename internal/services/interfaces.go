package services

import (
	"context"

	"github.com/lumenlearn/attempt-service/internal/models"
	"github.com/lumenlearn/attempt-service/internal/repositories"
	appvalidator "github.com/lumenlearn/attempt-service/internal/validator"
)

// Request DTOs live next to their validation rules.
type (
	StartAttemptRequest   = appvalidator.StartAttemptRequest
	PatchResponsesRequest = appvalidator.PatchResponsesRequest
	ResponsePatch         = appvalidator.ResponsePatch
)

// Caller is the authenticated identity a handler resolved from the request.
type Caller struct {
	UserID   string
	TenantID string
	Role     models.UserRole
}

// AttemptService owns the attempt lifecycle: eligibility, response
// normalization, submission, and reads.
type AttemptService interface {
	StartAttempt(ctx context.Context, caller Caller, req *StartAttemptRequest) (*models.Attempt, error)
	PatchResponses(ctx context.Context, caller Caller, attemptID string, req *PatchResponsesRequest) (*models.Attempt, error)
	SubmitAttempt(ctx context.Context, caller Caller, attemptID string) (*models.Attempt, error)
	GetAttempt(ctx context.Context, caller Caller, attemptID string) (*models.Attempt, error)
	ListAttempts(ctx context.Context, caller Caller, filters repositories.AttemptFilters) ([]*models.Attempt, error)
	ListByAssessment(ctx context.Context, caller Caller, assessmentID string, filters repositories.AttemptFilters) ([]*models.Attempt, error)
}

// GradingService grades a submitted attempt synchronously where it can and
// defers the rest to external evaluators.
type GradingService interface {
	GradeSubmission(ctx context.Context, attempt *models.Attempt) (*GradingResult, error)
}

// ExportService renders attempt results for instructors.
type ExportService interface {
	ExportAssessmentAttempts(ctx context.Context, caller Caller, assessmentID string) ([]byte, error)
}

type ServiceManager interface {
	Attempts() AttemptService
	Grading() GradingService
	Exports() ExportService
	Close() error
}
