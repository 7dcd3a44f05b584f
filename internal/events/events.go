package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/lumenlearn/attempt-service/internal/models"
)

const (
	EventSource  = "attempt-service"
	EventVersion = "1.0"
)

// Event types published by the engine.
const (
	TypeAttemptStarted                  = "attempt.started"
	TypeAttemptScored                   = "attempt.scored"
	TypeFreeResponseEvaluationRequested = "evaluation.free_response_requested"
	TypeScenarioEvaluationRequested     = "evaluation.scenario_requested"
)

// Event is the envelope every published message uses.
type Event struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Source     string      `json:"source"`
	Version    string      `json:"version"`
	OccurredAt time.Time   `json:"occurred_at"`
	TenantID   string      `json:"tenant_id"`
	Data       interface{} `json:"data"`
}

// NewEvent builds an envelope with a fresh ID and timestamp.
func NewEvent(eventType, tenantID string, data interface{}) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       eventType,
		Source:     EventSource,
		Version:    EventVersion,
		OccurredAt: time.Now().UTC(),
		TenantID:   tenantID,
		Data:       data,
	}
}

// ===== PAYLOADS =====

type AttemptStarted struct {
	AttemptID string `json:"attempt_id"`
}

type AttemptScored struct {
	AttemptID string  `json:"attempt_id"`
	Score     float64 `json:"score"`
}

// FreeResponseEvaluationRequested hands a short-answer or essay response to an
// external evaluator; it carries everything the evaluator needs to grade
// without further lookups.
type FreeResponseEvaluationRequested struct {
	AttemptID         string          `json:"attempt_id"`
	ItemID            string          `json:"item_id"`
	ItemKind          models.ItemKind `json:"item_kind"`
	Prompt            string          `json:"prompt"`
	Mode              string          `json:"mode,omitempty"`
	MaxScore          float64         `json:"max_score"`
	AIEvaluatorID     *string         `json:"ai_evaluator_id,omitempty"`
	RubricKeywords    []string        `json:"rubric_keywords,omitempty"`
	RubricGuidance    *string         `json:"rubric_guidance,omitempty"`
	RubricSections    []string        `json:"rubric_sections,omitempty"`
	LengthExpectation *string         `json:"length_expectation,omitempty"`
	SampleAnswer      *string         `json:"sample_answer,omitempty"`
	ResponseText      string          `json:"response_text,omitempty"`
}

type ScenarioEvaluationRequested struct {
	AttemptID  string                    `json:"attempt_id"`
	ItemID     string                    `json:"item_id"`
	Evaluation models.ScenarioEvaluation `json:"evaluation"`
	Response   *models.ScenarioAnswer    `json:"response,omitempty"`
}
