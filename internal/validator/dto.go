package validator

import (
	"github.com/lumenlearn/attempt-service/internal/models"
)

// StartAttemptRequest starts a new attempt. UserID is advisory: when the
// caller is a learner it is ignored in favor of the authenticated identity.
type StartAttemptRequest struct {
	AssessmentID string `json:"assessment_id" validate:"required,notblank"`
	UserID       string `json:"user_id"`
}

// PatchResponsesRequest records in-progress answers; each entry replaces any
// prior response for the same item.
type PatchResponsesRequest struct {
	Responses []ResponsePatch `json:"responses" validate:"required,min=1,dive"`
}

// ResponsePatch is the wire shape of one incoming answer. Which fields are
// meaningful depends on the referenced item's kind; the normalizer
// canonicalizes accordingly.
type ResponsePatch struct {
	ItemID string `json:"item_id" validate:"required,notblank"`

	// Choice: legacy single index or a set of indexes.
	AnswerIndex   *int  `json:"answer_index,omitempty"`
	AnswerIndexes []int `json:"answer_indexes,omitempty"`

	// True/false
	BoolAnswer *bool `json:"bool_answer,omitempty"`

	// Text-ish kinds: legacy single answer or a list.
	TextAnswer  *string  `json:"text_answer,omitempty"`
	TextAnswers []string `json:"text_answers,omitempty"`

	// Matching
	Pairs []models.MatchPair `json:"pairs,omitempty"`

	// Ordering
	Ordering []string `json:"ordering,omitempty"`

	// Essay
	EssayText *string `json:"essay_text,omitempty"`

	// Numeric
	Value *float64 `json:"value,omitempty" validate:"omitempty,finite"`
	Unit  *string  `json:"unit,omitempty"`

	// Hotspot
	Points []models.Point `json:"points,omitempty"`

	// Drag-and-drop
	Placements []models.TokenPlacement `json:"placements,omitempty"`

	// Scenario task
	RepositoryURL   *string               `json:"repository_url,omitempty"`
	ArtifactURL     *string               `json:"artifact_url,omitempty"`
	SubmissionNotes *string               `json:"submission_notes,omitempty"`
	Files           []models.ScenarioFile `json:"files,omitempty"`
}
