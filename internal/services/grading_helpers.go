package services

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/lumenlearn/attempt-service/internal/models"
)

// gradeChoice awards a single point for the exact answer. Single-correct
// items need exactly the one right index; multi-correct items need set
// equality with the key, no more and no less.
func gradeChoice(content *models.ChoiceContent, response *models.ItemResponse) Scored {
	out := Scored{MaxScore: 1}
	if response == nil || len(response.AnswerIndexes) == 0 {
		return out
	}

	given := dedupeSortInts(response.AnswerIndexes)
	if content.MultipleCorrect {
		want := dedupeSortInts(content.CorrectIndexes)
		if intsEqual(given, want) {
			out.Score = 1
		}
		return out
	}

	if len(given) == 1 && len(content.CorrectIndexes) > 0 && given[0] == content.CorrectIndexes[0] {
		out.Score = 1
	}
	return out
}

func gradeTrueFalse(content *models.TrueFalseContent, response *models.ItemResponse) Scored {
	out := Scored{MaxScore: 1}
	if response != nil && response.BoolAnswer != nil && *response.BoolAnswer == content.CorrectAnswer {
		out.Score = 1
	}
	return out
}

// gradeFillBlank matches each blank's answer against its matcher list. In
// partial mode every blank is worth one point; in all mode the item is worth
// one point and every blank must match.
func gradeFillBlank(content *models.FillBlankContent, response *models.ItemResponse) Scored {
	total := len(content.Blanks)
	matched := 0
	for i, blank := range content.Blanks {
		var answer string
		if response != nil && i < len(response.TextAnswers) {
			answer = strings.TrimSpace(response.TextAnswers[i])
		}
		if answer != "" && blankMatches(blank, answer) {
			matched++
		}
	}

	if content.Mode == models.ModePartial {
		return Scored{Score: float64(matched), MaxScore: float64(total)}
	}

	out := Scored{MaxScore: 1}
	if total > 0 && matched == total {
		out.Score = 1
	}
	return out
}

// blankMatches reports whether any matcher accepts the answer. Matchers are
// tried in order and the first satisfied one wins; a matcher that fails to
// compile never matches.
func blankMatches(blank models.BlankSpec, answer string) bool {
	for _, m := range blank.Matchers {
		switch m.Kind {
		case "exact":
			want := strings.TrimSpace(m.Value)
			if m.CaseSensitive {
				if answer == want {
					return true
				}
			} else if strings.EqualFold(answer, want) {
				return true
			}
		case "regex":
			pattern := m.Value
			if !m.CaseSensitive {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile("^(?:" + pattern + ")$")
			if err != nil {
				continue
			}
			if re.MatchString(answer) {
				return true
			}
		}
	}
	return false
}

func gradeMatching(content *models.MatchingContent, response *models.ItemResponse) Scored {
	total := len(content.Prompts)
	if total == 0 {
		total = len(content.CorrectPairs)
	}

	want := make(map[string]string, len(content.CorrectPairs))
	for _, p := range content.CorrectPairs {
		want[p.PromptID] = p.TargetID
	}

	matched := 0
	if response != nil {
		seen := map[string]bool{}
		for _, p := range response.Pairs {
			if seen[p.PromptID] {
				continue
			}
			seen[p.PromptID] = true
			if target, ok := want[p.PromptID]; ok && target == p.TargetID {
				matched++
			}
		}
	}

	if content.Mode == models.ModePartial {
		return Scored{Score: float64(matched), MaxScore: float64(total)}
	}

	out := Scored{MaxScore: 1}
	if total > 0 && matched == total {
		out.Score = 1
	}
	return out
}

// gradeOrdering scores a sequence. In partial_pairs mode each of the
// n(n-1)/2 element pairs earns a point when the submission keeps the pair in
// the correct relative order. Items owned by a custom evaluator are deferred
// without emitting anything here.
func gradeOrdering(content *models.OrderingContent, response *models.ItemResponse) GradingOutcome {
	maxScore := 1.0
	if content.Mode == models.ModePartialPairs {
		n := len(content.CorrectOrder)
		maxScore = float64(n * (n - 1) / 2)
	}

	if content.CustomEvaluatorID != nil {
		return Deferred{MaxScore: maxScore}
	}

	out := Scored{MaxScore: maxScore}
	if response == nil || len(response.Ordering) == 0 {
		return out
	}

	if content.Mode == models.ModePartialPairs {
		out.Score = float64(orderedPairCount(content.CorrectOrder, response.Ordering))
		return out
	}

	if stringsEqual(response.Ordering, content.CorrectOrder) {
		out.Score = 1
	}
	return out
}

// orderedPairCount counts pairs (i, j) of the correct sequence that appear in
// the same relative order in the submission. Pairs with a missing element
// earn nothing.
func orderedPairCount(correct, given []string) int {
	pos := make(map[string]int, len(given))
	for i, id := range given {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}

	count := 0
	for i := 0; i < len(correct); i++ {
		for j := i + 1; j < len(correct); j++ {
			pi, iok := pos[correct[i]]
			pj, jok := pos[correct[j]]
			if iok && jok && pi < pj {
				count++
			}
		}
	}
	return count
}

func gradeNumeric(content *models.NumericContent, response *models.ItemResponse) Scored {
	out := Scored{MaxScore: 1}
	if response == nil || response.Numeric == nil {
		return out
	}

	value := response.Numeric.Value
	switch content.Mode {
	case models.ModeRange:
		if value >= content.Min && value <= content.Max {
			out.Score = 1
		}
	default:
		if math.Abs(value-content.Value) <= content.Tolerance {
			out.Score = 1
		}
	}
	return out
}

// gradeHotspot tests each selected point against every region polygon. In
// all mode every region must be hit; in partial mode each distinct hit earns
// a point up to the selection budget.
func gradeHotspot(content *models.HotspotContent, response *models.ItemResponse) Scored {
	matched := map[string]bool{}
	if response != nil {
		for _, point := range response.Points {
			for _, region := range content.Regions {
				if pointInPolygon(point, region.Vertices) {
					matched[region.ID] = true
				}
			}
		}
	}

	if content.Mode == models.ModePartial {
		budget := content.MaxSelections
		if budget < 1 {
			budget = 1
		}
		if len(content.Regions) < budget {
			budget = len(content.Regions)
		}
		score := len(matched)
		if score > budget {
			score = budget
		}
		return Scored{Score: float64(score), MaxScore: float64(budget)}
	}

	out := Scored{MaxScore: 1}
	if len(content.Regions) > 0 && len(matched) == len(content.Regions) {
		out.Score = 1
	}
	return out
}

// pointInPolygon is the even-odd ray-casting test: a ray cast along +X from
// the point crosses the polygon boundary an odd number of times iff the
// point is inside. Degenerate polygons (< 3 vertices) contain nothing.
func pointInPolygon(p models.Point, vertices []models.Point) bool {
	if len(vertices) < 3 {
		return false
	}

	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) {
			crossX := vi.X + (p.Y-vi.Y)/(vj.Y-vi.Y)*(vj.X-vi.X)
			if p.X < crossX {
				inside = !inside
			}
		}
		j = i
	}
	return inside
}

// gradeDragDrop evaluates each zone independently. Ordered zones compare the
// position-sorted placement sequence to the key; set zones compare token
// sets. Placements beyond a zone's maxTokens are dropped before either
// comparison.
func gradeDragDrop(content *models.DragDropContent, response *models.ItemResponse) Scored {
	var placements []models.TokenPlacement
	if response != nil {
		placements = response.Placements
	}

	correctZones := 0
	tokenCredit := 0
	tokenMax := 0

	for _, zone := range content.Zones {
		placed := placementsForZone(placements, zone)
		tokenMax += len(zone.CorrectTokenIDs)

		if zone.Evaluation == "set" {
			want := make(map[string]bool, len(zone.CorrectTokenIDs))
			for _, id := range zone.CorrectTokenIDs {
				want[id] = true
			}
			got := map[string]bool{}
			for _, p := range placed {
				got[p.TokenID] = true
			}
			hits := 0
			for id := range got {
				if want[id] {
					hits++
				}
			}
			tokenCredit += hits
			if len(got) == len(want) && hits == len(want) {
				correctZones++
			}
			continue
		}

		// ordered: position-aligned matches earn token credit even when the
		// zone as a whole is wrong
		sortPlacementsByPosition(placed)
		hits := 0
		for i, p := range placed {
			if i < len(zone.CorrectTokenIDs) && p.TokenID == zone.CorrectTokenIDs[i] {
				hits++
			}
		}
		tokenCredit += hits
		if len(placed) == len(zone.CorrectTokenIDs) && hits == len(zone.CorrectTokenIDs) {
			correctZones++
		}
	}

	switch content.Mode {
	case models.ModePerZone:
		return Scored{Score: float64(correctZones), MaxScore: float64(len(content.Zones))}
	case models.ModePerToken:
		return Scored{Score: float64(tokenCredit), MaxScore: float64(tokenMax)}
	default:
		out := Scored{MaxScore: 1}
		if len(content.Zones) > 0 && correctZones == len(content.Zones) {
			out.Score = 1
		}
		return out
	}
}

func placementsForZone(placements []models.TokenPlacement, zone models.DropZone) []models.TokenPlacement {
	var placed []models.TokenPlacement
	for _, p := range placements {
		if p.DropZoneID == zone.ID {
			placed = append(placed, p)
		}
	}
	if zone.MaxTokens != nil && len(placed) > *zone.MaxTokens {
		placed = placed[:*zone.MaxTokens]
	}
	return placed
}

// sortPlacementsByPosition orders by explicit position; placements without
// one keep their stored order after the positioned ones.
func sortPlacementsByPosition(placed []models.TokenPlacement) {
	sort.SliceStable(placed, func(i, j int) bool {
		pi, pj := placed[i].Position, placed[j].Position
		switch {
		case pi == nil:
			return false
		case pj == nil:
			return true
		default:
			return *pi < *pj
		}
	})
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
