package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lumenlearn/attempt-service/internal/events"
	"github.com/lumenlearn/attempt-service/internal/models"
	"github.com/lumenlearn/attempt-service/internal/repositories"
)

// GradingOutcome is the result of grading a single item: either a synchronous
// score or a deferral to an external evaluator.
type GradingOutcome interface {
	isGradingOutcome()
}

// Scored is an item graded inline.
type Scored struct {
	Score    float64
	MaxScore float64
}

// Deferred is an item handed to an external evaluator. Request is nil when a
// custom evaluator already owns the item and no event should be emitted here.
type Deferred struct {
	MaxScore float64
	Request  *events.Event
}

func (Scored) isGradingOutcome()   {}
func (Deferred) isGradingOutcome() {}

// GradingResult aggregates a whole submission. Score and MaxScore cover only
// what was graded synchronously (plus the reserved maximum of items owned by
// custom evaluators); event-deferred items carry their maximum in the event
// payload instead.
type GradingResult struct {
	Score          float64
	MaxScore       float64
	Status         models.AttemptStatus
	DeferredEvents []events.Event
}

type gradingService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewGradingService(repo repositories.Repository, logger *slog.Logger) GradingService {
	return &gradingService{repo: repo, logger: logger}
}

// GradeSubmission walks the assessment's items in order and folds the
// per-item outcomes. Grading degrades gracefully: a missing response or a
// broken item configuration yields zero credit, never an error.
func (s *gradingService) GradeSubmission(ctx context.Context, attempt *models.Attempt) (*GradingResult, error) {
	assessment, err := s.repo.Assessment().GetByID(ctx, attempt.TenantID, attempt.AssessmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment %s: %w", attempt.AssessmentID, err)
	}

	result := &GradingResult{Status: models.AttemptScored}

	for _, itemID := range assessment.ItemIDs {
		item, err := s.repo.Item().GetByID(ctx, attempt.TenantID, itemID)
		if err != nil {
			s.logger.Warn("Skipping unresolvable item",
				"attempt_id", attempt.ID,
				"item_id", itemID,
				"error", err)
			continue
		}

		var response *models.ItemResponse
		if stored, ok := attempt.Responses[itemID]; ok {
			stored := stored
			response = &stored
		}

		switch outcome := s.gradeItem(attempt, item, response).(type) {
		case Scored:
			result.Score += outcome.Score
			result.MaxScore += outcome.MaxScore
		case Deferred:
			result.Status = models.AttemptSubmitted
			if outcome.Request != nil {
				result.DeferredEvents = append(result.DeferredEvents, *outcome.Request)
			} else {
				result.MaxScore += outcome.MaxScore
			}
		}
	}

	return result, nil
}

// gradeItem dispatches on the item kind. Free-response and scenario items are
// never scored inline.
func (s *gradingService) gradeItem(attempt *models.Attempt, item *models.Item, response *models.ItemResponse) GradingOutcome {
	switch item.Kind {
	case models.KindChoice:
		var content models.ChoiceContent
		if err := json.Unmarshal(item.Content, &content); err != nil {
			return s.contentError(item, err)
		}
		return gradeChoice(&content, response)

	case models.KindTrueFalse:
		var content models.TrueFalseContent
		if err := json.Unmarshal(item.Content, &content); err != nil {
			return s.contentError(item, err)
		}
		return gradeTrueFalse(&content, response)

	case models.KindFillBlank:
		var content models.FillBlankContent
		if err := json.Unmarshal(item.Content, &content); err != nil {
			return s.contentError(item, err)
		}
		return gradeFillBlank(&content, response)

	case models.KindMatching:
		var content models.MatchingContent
		if err := json.Unmarshal(item.Content, &content); err != nil {
			return s.contentError(item, err)
		}
		return gradeMatching(&content, response)

	case models.KindOrdering:
		var content models.OrderingContent
		if err := json.Unmarshal(item.Content, &content); err != nil {
			return s.contentError(item, err)
		}
		return gradeOrdering(&content, response)

	case models.KindNumeric:
		var content models.NumericContent
		if err := json.Unmarshal(item.Content, &content); err != nil {
			return s.contentError(item, err)
		}
		return gradeNumeric(&content, response)

	case models.KindHotspot:
		var content models.HotspotContent
		if err := json.Unmarshal(item.Content, &content); err != nil {
			return s.contentError(item, err)
		}
		return gradeHotspot(&content, response)

	case models.KindDragDrop:
		var content models.DragDropContent
		if err := json.Unmarshal(item.Content, &content); err != nil {
			return s.contentError(item, err)
		}
		return gradeDragDrop(&content, response)

	case models.KindShortAnswer, models.KindEssay:
		return s.deferFreeResponse(attempt, item, response)

	case models.KindScenario:
		return s.deferScenario(attempt, item, response)

	default:
		s.logger.Warn("Unknown item kind, awarding no credit",
			"item_id", item.ID,
			"kind", item.Kind)
		return Scored{}
	}
}

func (s *gradingService) contentError(item *models.Item, err error) GradingOutcome {
	s.logger.Warn("Malformed item content, awarding no credit",
		"item_id", item.ID,
		"kind", item.Kind,
		"error", err)
	return Scored{}
}

// deferFreeResponse builds the evaluation request for short-answer and essay
// items. The event carries the full rubric so the evaluator needs no further
// lookups; it is emitted even when the learner left the item blank.
func (s *gradingService) deferFreeResponse(attempt *models.Attempt, item *models.Item, response *models.ItemResponse) Deferred {
	var content models.FreeResponseContent
	if err := json.Unmarshal(item.Content, &content); err != nil {
		s.logger.Warn("Malformed free-response content, deferring with defaults",
			"item_id", item.ID,
			"error", err)
	}

	maxScore := models.DefaultShortAnswerMaxScore
	if item.Kind == models.KindEssay {
		maxScore = models.DefaultEssayMaxScore
	}
	if content.MaxScore != nil && *content.MaxScore > 0 {
		maxScore = *content.MaxScore
	}

	var responseText string
	if response != nil {
		if item.Kind == models.KindEssay {
			responseText = response.EssayText
		} else {
			responseText = strings.Join(response.TextAnswers, "\n")
		}
	}

	event := events.NewEvent(events.TypeFreeResponseEvaluationRequested, attempt.TenantID, events.FreeResponseEvaluationRequested{
		AttemptID:         attempt.ID,
		ItemID:            item.ID,
		ItemKind:          item.Kind,
		Prompt:            item.Text,
		Mode:              content.Mode,
		MaxScore:          maxScore,
		AIEvaluatorID:     content.AIEvaluatorID,
		RubricKeywords:    content.RubricKeywords,
		RubricGuidance:    content.RubricGuidance,
		RubricSections:    content.RubricSections,
		LengthExpectation: content.LengthExpectation,
		SampleAnswer:      content.SampleAnswer,
		ResponseText:      responseText,
	})

	return Deferred{MaxScore: maxScore, Request: &event}
}

func (s *gradingService) deferScenario(attempt *models.Attempt, item *models.Item, response *models.ItemResponse) Deferred {
	var content models.ScenarioContent
	if err := json.Unmarshal(item.Content, &content); err != nil {
		s.logger.Warn("Malformed scenario content, deferring with defaults",
			"item_id", item.ID,
			"error", err)
	}

	maxScore := content.MaxScore
	if maxScore <= 0 {
		maxScore = 1
	}

	var answer *models.ScenarioAnswer
	if response != nil {
		answer = response.Scenario
	}

	event := events.NewEvent(events.TypeScenarioEvaluationRequested, attempt.TenantID, events.ScenarioEvaluationRequested{
		AttemptID:  attempt.ID,
		ItemID:     item.ID,
		Evaluation: content.Evaluation,
		Response:   answer,
	})

	return Deferred{MaxScore: maxScore, Request: &event}
}
