package models

import (
	"time"

	"gorm.io/datatypes"
)

type ItemKind string

const (
	KindChoice      ItemKind = "choice"
	KindTrueFalse   ItemKind = "true_false"
	KindFillBlank   ItemKind = "fill_blank"
	KindMatching    ItemKind = "matching"
	KindOrdering    ItemKind = "ordering"
	KindNumeric     ItemKind = "numeric"
	KindHotspot     ItemKind = "hotspot"
	KindDragDrop    ItemKind = "drag_drop"
	KindShortAnswer ItemKind = "short_answer"
	KindEssay       ItemKind = "essay"
	KindScenario    ItemKind = "scenario_task"
)

// Item is a single question. Read-only from the engine's perspective; its kind
// selects both the answer shape and the grading algorithm.
type Item struct {
	ID       string   `json:"id" gorm:"primaryKey;size:36"`
	TenantID string   `json:"tenant_id" gorm:"not null;index;size:64"`
	Kind     ItemKind `json:"kind" gorm:"not null;index"`
	Text     string   `json:"text" gorm:"type:text;not null"`

	// Content holds the per-kind configuration schema below.
	Content datatypes.JSON `json:"content" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Item) TableName() string {
	return "items"
}

// ===== SCORING MODES =====

type ScoringMode string

const (
	ModeAll          ScoringMode = "all"
	ModePartial      ScoringMode = "partial"
	ModePartialPairs ScoringMode = "partial_pairs"
	ModePerZone      ScoringMode = "per_zone"
	ModePerToken     ScoringMode = "per_token"
	ModeExact        ScoringMode = "exact"
	ModeRange        ScoringMode = "range"
)

// ===== ITEM CONTENT SCHEMAS =====

type ChoiceContent struct {
	Options         []ChoiceOption `json:"options"`
	CorrectIndexes  []int          `json:"correct_indexes"`
	MultipleCorrect bool           `json:"multiple_correct"`
}

type ChoiceOption struct {
	Text     string  `json:"text"`
	ImageURL *string `json:"image_url,omitempty"`
}

type TrueFalseContent struct {
	CorrectAnswer bool    `json:"correct_answer"`
	TrueLabel     *string `json:"true_label,omitempty"`
	FalseLabel    *string `json:"false_label,omitempty"`
}

type FillBlankContent struct {
	Blanks []BlankSpec `json:"blanks"`
	Mode   ScoringMode `json:"mode"` // all | partial
}

type BlankSpec struct {
	Matchers []BlankMatcher `json:"matchers"`
}

// BlankMatcher accepts an answer either by string comparison or by regex.
// Comparison is case-insensitive unless CaseSensitive is set; regex patterns
// get the `i` flag by default.
type BlankMatcher struct {
	Kind          string `json:"kind"` // "exact" | "regex"
	Value         string `json:"value"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
}

type MatchingContent struct {
	Prompts      []MatchOption `json:"prompts"`
	Targets      []MatchOption `json:"targets"`
	CorrectPairs []MatchPair   `json:"correct_pairs"`
	Mode         ScoringMode   `json:"mode"` // all | partial
}

type MatchOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type OrderingContent struct {
	Options      []MatchOption `json:"options"`
	CorrectOrder []string      `json:"correct_order"`
	Mode         ScoringMode   `json:"mode"` // all | partial_pairs

	// When set, ordering is judged by an external evaluator: max score still
	// counts, but the item is skipped and no event is emitted here.
	CustomEvaluatorID *string `json:"custom_evaluator_id,omitempty"`
}

type NumericContent struct {
	Mode      ScoringMode `json:"mode"` // exact | range
	Value     float64     `json:"value,omitempty"`
	Tolerance float64     `json:"tolerance,omitempty"` // exact mode, defaults to 0
	Min       float64     `json:"min,omitempty"`       // range mode, inclusive
	Max       float64     `json:"max,omitempty"`       // range mode, inclusive
	Unit      *string     `json:"unit,omitempty"`
}

type HotspotContent struct {
	Regions       []HotspotRegion `json:"regions"`
	Mode          ScoringMode     `json:"mode"` // all | partial
	MaxSelections int             `json:"max_selections,omitempty"`
}

// HotspotRegion is a polygon over normalized image coordinates; vertices are
// ordered and the edge list wraps around.
type HotspotRegion struct {
	ID       string  `json:"id"`
	Vertices []Point `json:"vertices"`
}

type DragDropContent struct {
	Zones []DropZone  `json:"zones"`
	Mode  ScoringMode `json:"mode"` // all | per_zone | per_token
}

type DropZone struct {
	ID              string   `json:"id"`
	Evaluation      string   `json:"evaluation"` // "ordered" | "set"
	CorrectTokenIDs []string `json:"correct_token_ids"`
	MaxTokens       *int     `json:"max_tokens,omitempty"`
}

// FreeResponseContent configures short-answer and essay items. These are never
// scored inline; grading is delegated to an external evaluator via events.
type FreeResponseContent struct {
	Mode              string   `json:"mode,omitempty"` // evaluator hint, passed through
	MaxScore          *float64 `json:"max_score,omitempty"`
	AIEvaluatorID     *string  `json:"ai_evaluator_id,omitempty"`
	RubricKeywords    []string `json:"rubric_keywords,omitempty"`
	RubricGuidance    *string  `json:"rubric_guidance,omitempty"`
	RubricSections    []string `json:"rubric_sections,omitempty"`
	LengthExpectation *string  `json:"length_expectation,omitempty"`
	SampleAnswer      *string  `json:"sample_answer,omitempty"`
}

type ScenarioContent struct {
	Evaluation ScenarioEvaluation `json:"evaluation"`
	MaxScore   float64            `json:"max_score"`
}

type ScenarioEvaluation struct {
	Mode        string  `json:"mode"` // "automated" | "manual"
	EvaluatorID *string `json:"evaluator_id,omitempty"`
	Instruction *string `json:"instruction,omitempty"`
}

const (
	DefaultShortAnswerMaxScore = 1.0
	DefaultEssayMaxScore       = 10.0
)
