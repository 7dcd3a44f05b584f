package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/lumenlearn/attempt-service/internal/models"
)

// normalizeResponse canonicalizes one incoming answer according to the item's
// kind. A nil result means the answer was entirely blank and nothing should
// be stored.
func normalizeResponse(item *models.Item, patch ResponsePatch) (*models.ItemResponse, error) {
	resp := &models.ItemResponse{ItemID: item.ID, UpdatedAt: time.Now().UTC()}

	switch item.Kind {
	case models.KindChoice:
		indexes := patch.AnswerIndexes
		if len(indexes) == 0 && patch.AnswerIndex != nil {
			indexes = []int{*patch.AnswerIndex}
		}
		for _, idx := range indexes {
			if idx < 0 {
				return nil, NewValidationError("answer_indexes", "must be non-negative", idx)
			}
		}
		indexes = dedupeSortInts(indexes)
		if len(indexes) == 0 {
			return nil, nil
		}
		resp.AnswerIndexes = indexes

	case models.KindTrueFalse:
		if patch.BoolAnswer == nil {
			return nil, nil
		}
		resp.BoolAnswer = patch.BoolAnswer

	case models.KindFillBlank, models.KindShortAnswer:
		answers := patch.TextAnswers
		if len(answers) == 0 && patch.TextAnswer != nil {
			answers = []string{*patch.TextAnswer}
		}
		// Positions are meaningful (blank N answers position N), so blank
		// entries stay in place; the answer is dropped only when every entry
		// is blank.
		trimmed := make([]string, len(answers))
		blank := true
		for i, a := range answers {
			trimmed[i] = strings.TrimSpace(a)
			if trimmed[i] != "" {
				blank = false
			}
		}
		if blank {
			return nil, nil
		}
		resp.TextAnswers = trimmed

	case models.KindMatching:
		// Pairs pass through as sent; grading resolves duplicates and unknown
		// prompt or target IDs.
		if len(patch.Pairs) == 0 {
			return nil, nil
		}
		resp.Pairs = append([]models.MatchPair(nil), patch.Pairs...)

	case models.KindOrdering:
		seen := map[string]bool{}
		var ordering []string
		for _, id := range patch.Ordering {
			id = strings.TrimSpace(id)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ordering = append(ordering, id)
		}
		if len(ordering) == 0 {
			return nil, nil
		}
		resp.Ordering = ordering

	case models.KindEssay:
		if patch.EssayText == nil {
			return nil, nil
		}
		text := strings.TrimSpace(*patch.EssayText)
		if text == "" {
			return nil, nil
		}
		resp.EssayText = text

	case models.KindNumeric:
		if patch.Value == nil {
			return nil, nil
		}
		if math.IsNaN(*patch.Value) || math.IsInf(*patch.Value, 0) {
			return nil, NewValidationError("value", "must be a finite number", *patch.Value)
		}
		numeric := &models.NumericAnswer{Value: *patch.Value}
		if patch.Unit != nil {
			numeric.Unit = strings.TrimSpace(*patch.Unit)
		}
		resp.Numeric = numeric

	case models.KindHotspot:
		if len(patch.Points) == 0 {
			return nil, nil
		}
		points := make([]models.Point, len(patch.Points))
		for i, pt := range patch.Points {
			points[i] = models.Point{
				X: normalizeCoordinate(pt.X),
				Y: normalizeCoordinate(pt.Y),
			}
		}
		resp.Points = points

	case models.KindDragDrop:
		// The last placement per token wins; the surviving placements keep
		// the token's first-seen order.
		var order []string
		byToken := map[string]models.TokenPlacement{}
		for _, p := range patch.Placements {
			token := strings.TrimSpace(p.TokenID)
			zone := strings.TrimSpace(p.DropZoneID)
			if token == "" || zone == "" {
				continue
			}
			placement := models.TokenPlacement{TokenID: token, DropZoneID: zone}
			if p.Position != nil && *p.Position >= 0 {
				pos := *p.Position
				placement.Position = &pos
			}
			if _, ok := byToken[token]; !ok {
				order = append(order, token)
			}
			byToken[token] = placement
		}
		if len(order) == 0 {
			return nil, nil
		}
		placements := make([]models.TokenPlacement, 0, len(order))
		for _, token := range order {
			placements = append(placements, byToken[token])
		}
		resp.Placements = placements

	case models.KindScenario:
		answer := &models.ScenarioAnswer{}
		if patch.RepositoryURL != nil {
			answer.RepositoryURL = strings.TrimSpace(*patch.RepositoryURL)
		}
		if patch.ArtifactURL != nil {
			answer.ArtifactURL = strings.TrimSpace(*patch.ArtifactURL)
		}
		if patch.SubmissionNotes != nil {
			answer.SubmissionNotes = strings.TrimSpace(*patch.SubmissionNotes)
		}
		for _, f := range patch.Files {
			path := strings.TrimSpace(f.Path)
			if path == "" {
				continue
			}
			answer.Files = append(answer.Files, models.ScenarioFile{
				Path:    path,
				Content: f.Content,
				URL:     strings.TrimSpace(f.URL),
			})
		}
		if answer.RepositoryURL == "" && answer.ArtifactURL == "" &&
			answer.SubmissionNotes == "" && len(answer.Files) == 0 {
			return nil, nil
		}
		resp.Scenario = answer

	default:
		return nil, NewValidationError("item_id", "references an item kind that cannot be answered", string(item.Kind))
	}

	return resp, nil
}

// normalizeCoordinate clamps to the unit interval and rounds to 6 decimals so
// equality checks survive serialization round-trips.
func normalizeCoordinate(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return math.Round(v*1e6) / 1e6
}

func dedupeSortInts(in []int) []int {
	seen := map[int]bool{}
	var out []int
	for _, v := range in {
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
