package services

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the engine. Every failure here is terminal for
// the request; there are no transient classes and no retries.
var (
	// Eligibility gate
	ErrInvalidAssessment      = errors.New("invalid assessment id")
	ErrLearnerNotFound        = errors.New("learner does not exist")
	ErrNotALearner            = errors.New("user is not a learner")
	ErrNotAssigned            = errors.New("learner is not assigned to this assessment")
	ErrAssessmentNotAvailable = errors.New("assessment is not yet available")
	ErrAssessmentExpired      = errors.New("assessment has expired")
	ErrAttemptLimitReached    = errors.New("attempt limit reached")

	// Attempt lifecycle
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptNotEditable      = errors.New("attempt is not editable")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")

	// Generic
	ErrForbidden        = errors.New("forbidden")
	ErrValidationFailed = errors.New("validation failed")
)

// PermissionError carries the denied resource/action pair for the handler
// layer to report.
type PermissionError struct {
	UserID   string
	Resource string
	Action   string
	Reason   string
}

func NewPermissionError(userID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:   userID,
		Resource: resource,
		Action:   action,
		Reason:   reason,
	}
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: %s on %s (%s)", e.Action, e.Resource, e.Reason)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

// ValidationError marks a malformed payload field.
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
