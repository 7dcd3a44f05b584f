package models

import (
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptScored     AttemptStatus = "scored"
)

// IsTerminal reports whether no further learner mutation is allowed.
// Transitions are monotonic: in_progress -> submitted | scored, never back.
func (s AttemptStatus) IsTerminal() bool {
	return s == AttemptSubmitted || s == AttemptScored
}

type Attempt struct {
	ID           string        `json:"id" gorm:"primaryKey;size:36"`
	TenantID     string        `json:"tenant_id" gorm:"not null;index;size:64"`
	AssessmentID string        `json:"assessment_id" gorm:"not null;index;size:36"`
	UserID       string        `json:"user_id" gorm:"not null;index;size:255"`
	Status       AttemptStatus `json:"status" gorm:"default:in_progress;index"`

	// Responses is keyed by item ID; patching an item replaces its prior response.
	Responses map[string]ItemResponse `json:"responses" gorm:"serializer:json;type:jsonb"`

	// Scoring (nil until submit)
	Score    *float64 `json:"score,omitempty"`
	MaxScore *float64 `json:"max_score,omitempty"`

	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Reserved for optimistic saves; the core itself is last-write-wins.
	Version int `json:"version" gorm:"default:1"`
}

func (Attempt) TableName() string {
	return "attempts"
}

// ItemResponse is the canonical stored response for a single item. Only the
// fields matching the item's kind are populated; everything else stays zero.
type ItemResponse struct {
	ItemID string `json:"item_id"`

	AnswerIndexes []int            `json:"answer_indexes,omitempty"` // choice
	BoolAnswer    *bool            `json:"bool_answer,omitempty"`    // true/false
	TextAnswers   []string         `json:"text_answers,omitempty"`   // fill-blank, short answer
	Pairs         []MatchPair      `json:"pairs,omitempty"`          // matching
	Ordering      []string         `json:"ordering,omitempty"`       // ordering
	EssayText     string           `json:"essay_text,omitempty"`     // essay
	Numeric       *NumericAnswer   `json:"numeric,omitempty"`        // numeric
	Points        []Point          `json:"points,omitempty"`         // hotspot
	Placements    []TokenPlacement `json:"placements,omitempty"`     // drag-and-drop
	Scenario      *ScenarioAnswer  `json:"scenario,omitempty"`       // scenario task

	UpdatedAt time.Time `json:"updated_at"`
}

type MatchPair struct {
	PromptID string `json:"prompt_id"`
	TargetID string `json:"target_id"`
}

type NumericAnswer struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit,omitempty"`
}

// Point is a normalized image coordinate; both components live in [0,1].
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type TokenPlacement struct {
	TokenID    string `json:"token_id"`
	DropZoneID string `json:"drop_zone_id"`
	Position   *int   `json:"position,omitempty"`
}

type ScenarioAnswer struct {
	RepositoryURL   string         `json:"repository_url,omitempty"`
	ArtifactURL     string         `json:"artifact_url,omitempty"`
	SubmissionNotes string         `json:"submission_notes,omitempty"`
	Files           []ScenarioFile `json:"files,omitempty"`
}

type ScenarioFile struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	URL     string `json:"url,omitempty"`
}
