package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/attempt-service/internal/events"
	"github.com/lumenlearn/attempt-service/internal/models"
	"github.com/lumenlearn/attempt-service/internal/repositories"
	appvalidator "github.com/lumenlearn/attempt-service/internal/validator"
)

type attemptService struct {
	repo      repositories.Repository
	grading   GradingService
	publisher events.EventPublisher
	logger    *slog.Logger
	validator *appvalidator.Validator
}

func NewAttemptService(
	repo repositories.Repository,
	grading GradingService,
	publisher events.EventPublisher,
	logger *slog.Logger,
	validator *appvalidator.Validator,
) AttemptService {
	return &attemptService{
		repo:      repo,
		grading:   grading,
		publisher: publisher,
		logger:    logger,
		validator: validator,
	}
}

// StartAttempt runs the eligibility gate and creates a fresh in-progress
// attempt. The checks run in a fixed order so callers get deterministic
// errors when several conditions fail at once.
func (s *attemptService) StartAttempt(ctx context.Context, caller Caller, req *StartAttemptRequest) (*models.Attempt, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// Platform operators act across tenants; they never take assessments.
	if caller.Role == models.RoleSuperAdmin {
		return nil, NewPermissionError(caller.UserID, "attempt", "start", "super-admin accounts cannot take assessments")
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, caller.TenantID, req.AssessmentID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidAssessment
		}
		return nil, fmt.Errorf("failed to load assessment %s: %w", req.AssessmentID, err)
	}

	learnerID := s.resolveLearnerID(caller, req)
	if learnerID == "" {
		return nil, NewValidationError("user_id", "is required", nil)
	}

	learner, err := s.repo.User().GetByID(ctx, caller.TenantID, learnerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrLearnerNotFound
		}
		return nil, fmt.Errorf("failed to load user %s: %w", learnerID, err)
	}
	if learner.Role != models.RoleLearner {
		return nil, ErrNotALearner
	}

	cohort, err := s.findAssignedCohort(ctx, caller.TenantID, assessment.ID, learner.ID)
	if err != nil {
		return nil, err
	}

	assignment := cohort.AssignmentFor(assessment.ID)
	if err := checkAvailabilityWindow(assignment, time.Now().UTC()); err != nil {
		return nil, err
	}

	if err := s.checkAttemptQuota(ctx, caller.TenantID, assessment, assignment, learner.ID); err != nil {
		return nil, err
	}

	attempt := &models.Attempt{
		ID:           uuid.New().String(),
		TenantID:     caller.TenantID,
		AssessmentID: assessment.ID,
		UserID:       learner.ID,
		Status:       models.AttemptInProgress,
		Responses:    map[string]models.ItemResponse{},
	}

	if err := s.repo.Attempt().Save(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	if err := s.publishEvent(ctx, events.NewEvent(events.TypeAttemptStarted, caller.TenantID, events.AttemptStarted{
		AttemptID: attempt.ID,
	})); err != nil {
		return nil, err
	}

	s.logger.Info("Attempt started",
		"attempt_id", attempt.ID,
		"assessment_id", assessment.ID,
		"user_id", learner.ID)

	return attempt, nil
}

// PatchResponses normalizes and records in-progress answers. Each entry fully
// replaces any prior response for the same item; entries that normalize to
// nothing are skipped and leave the prior response untouched.
func (s *attemptService) PatchResponses(ctx context.Context, caller Caller, attemptID string, req *PatchResponsesRequest) (*models.Attempt, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	attempt, err := s.loadOwnedAttempt(ctx, caller, attemptID, "update")
	if err != nil {
		return nil, err
	}
	if attempt.Status.IsTerminal() {
		return nil, ErrAttemptNotEditable
	}

	assessment, err := s.repo.Assessment().GetByID(ctx, caller.TenantID, attempt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment %s: %w", attempt.AssessmentID, err)
	}
	itemSet := make(map[string]bool, len(assessment.ItemIDs))
	for _, id := range assessment.ItemIDs {
		itemSet[id] = true
	}

	for _, patch := range req.Responses {
		if !itemSet[patch.ItemID] {
			return nil, NewValidationError("item_id", "does not belong to the assessment", patch.ItemID)
		}

		item, err := s.repo.Item().GetByID(ctx, caller.TenantID, patch.ItemID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, NewValidationError("item_id", "references an unknown item", patch.ItemID)
			}
			return nil, fmt.Errorf("failed to load item %s: %w", patch.ItemID, err)
		}

		normalized, err := normalizeResponse(item, patch)
		if err != nil {
			return nil, err
		}
		if normalized == nil {
			continue
		}

		if attempt.Responses == nil {
			attempt.Responses = map[string]models.ItemResponse{}
		}
		attempt.Responses[patch.ItemID] = *normalized
	}

	if err := s.repo.Attempt().Save(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	return attempt, nil
}

// SubmitAttempt grades the attempt and moves it to its terminal status. The
// transition is monotonic: a second submit fails without re-grading or
// re-publishing anything.
func (s *attemptService) SubmitAttempt(ctx context.Context, caller Caller, attemptID string) (*models.Attempt, error) {
	attempt, err := s.loadOwnedAttempt(ctx, caller, attemptID, "submit")
	if err != nil {
		return nil, err
	}
	if attempt.Status.IsTerminal() {
		return nil, ErrAttemptAlreadySubmitted
	}

	result, err := s.grading.GradeSubmission(ctx, attempt)
	if err != nil {
		return nil, fmt.Errorf("failed to grade attempt %s: %w", attempt.ID, err)
	}

	now := time.Now().UTC()
	attempt.Status = result.Status
	attempt.Score = &result.Score
	attempt.MaxScore = &result.MaxScore
	attempt.SubmittedAt = &now

	if err := s.repo.Attempt().Save(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	// A fully scored attempt announces its score; anything with pending
	// external evaluation announces the evaluation requests instead. The two
	// never mix.
	if result.Status == models.AttemptScored {
		if err := s.publishEvent(ctx, events.NewEvent(events.TypeAttemptScored, caller.TenantID, events.AttemptScored{
			AttemptID: attempt.ID,
			Score:     result.Score,
		})); err != nil {
			return nil, err
		}
	} else {
		for _, event := range result.DeferredEvents {
			if err := s.publishEvent(ctx, event); err != nil {
				return nil, err
			}
		}
	}

	s.logger.Info("Attempt submitted",
		"attempt_id", attempt.ID,
		"status", attempt.Status,
		"score", result.Score,
		"max_score", result.MaxScore,
		"deferred_events", len(result.DeferredEvents))

	return attempt, nil
}

func (s *attemptService) GetAttempt(ctx context.Context, caller Caller, attemptID string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, caller.TenantID, attemptID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}

	// Learners only ever see their own attempts; a foreign attempt looks the
	// same as a missing one.
	if caller.Role == models.RoleLearner && attempt.UserID != caller.UserID {
		return nil, ErrAttemptNotFound
	}

	return attempt, nil
}

func (s *attemptService) ListAttempts(ctx context.Context, caller Caller, filters repositories.AttemptFilters) ([]*models.Attempt, error) {
	attempts, err := s.repo.Attempt().ListByUser(ctx, caller.TenantID, caller.UserID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts: %w", err)
	}
	return attempts, nil
}

func (s *attemptService) ListByAssessment(ctx context.Context, caller Caller, assessmentID string, filters repositories.AttemptFilters) ([]*models.Attempt, error) {
	if caller.Role == models.RoleLearner {
		return nil, NewPermissionError(caller.UserID, "attempt", "list", "learners cannot list other learners' attempts")
	}

	attempts, err := s.repo.Attempt().ListByAssessment(ctx, caller.TenantID, assessmentID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts for assessment %s: %w", assessmentID, err)
	}
	return attempts, nil
}

// ===== HELPERS =====

// resolveLearnerID picks who the attempt belongs to. Learners always attempt
// as themselves regardless of the payload; staff may start on behalf of a
// learner by naming one.
func (s *attemptService) resolveLearnerID(caller Caller, req *StartAttemptRequest) string {
	if caller.Role == models.RoleLearner {
		return caller.UserID
	}
	return req.UserID
}

// findAssignedCohort returns the first cohort granting the learner access to
// the assessment.
func (s *attemptService) findAssignedCohort(ctx context.Context, tenantID, assessmentID, learnerID string) (*models.Cohort, error) {
	cohorts, err := s.repo.Cohort().ListByLearner(ctx, tenantID, learnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cohorts for user %s: %w", learnerID, err)
	}

	for _, cohort := range cohorts {
		if cohort.Includes(assessmentID) {
			return cohort, nil
		}
	}
	return nil, ErrNotAssigned
}

func checkAvailabilityWindow(assignment *models.CohortAssignment, now time.Time) error {
	if assignment == nil {
		return nil
	}
	if assignment.AvailableFrom != nil && now.Before(*assignment.AvailableFrom) {
		return ErrAssessmentNotAvailable
	}
	if assignment.DueDate != nil && now.After(*assignment.DueDate) {
		return ErrAssessmentExpired
	}
	return nil
}

// checkAttemptQuota enforces the allowed-attempts limit; a cohort assignment
// override wins over the assessment default, and nil means unlimited.
func (s *attemptService) checkAttemptQuota(ctx context.Context, tenantID string, assessment *models.Assessment, assignment *models.CohortAssignment, learnerID string) error {
	allowed := assessment.AllowedAttempts
	if assignment != nil && assignment.AllowedAttempts != nil {
		allowed = assignment.AllowedAttempts
	}
	if allowed == nil {
		return nil
	}

	existing, err := s.repo.Attempt().ListByLearner(ctx, tenantID, assessment.ID, learnerID)
	if err != nil {
		return fmt.Errorf("failed to count attempts: %w", err)
	}
	if len(existing) >= *allowed {
		return ErrAttemptLimitReached
	}
	return nil
}

// loadOwnedAttempt fetches an attempt for mutation; only the learner who owns
// it may change it.
func (s *attemptService) loadOwnedAttempt(ctx context.Context, caller Caller, attemptID, action string) (*models.Attempt, error) {
	attempt, err := s.repo.Attempt().GetByID(ctx, caller.TenantID, attemptID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to load attempt: %w", err)
	}
	if attempt.UserID != caller.UserID {
		return nil, NewPermissionError(caller.UserID, "attempt", action, "attempt belongs to another learner")
	}
	return attempt, nil
}

// publishEvent delivers once, after the attempt state is saved. A failure
// surfaces to the caller; there is no retry and the saved state stays put.
func (s *attemptService) publishEvent(ctx context.Context, event events.Event) error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	return nil
}
