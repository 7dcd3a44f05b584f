package services

import (
	"testing"

	"github.com/lumenlearn/attempt-service/internal/models"
)

func boolPtr(b bool) *bool       { return &b }
func intPtr(i int) *int          { return &i }
func strPtr(s string) *string    { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestGradeChoice(t *testing.T) {
	single := &models.ChoiceContent{
		Options:        []models.ChoiceOption{{Text: "a"}, {Text: "b"}, {Text: "c"}},
		CorrectIndexes: []int{1},
	}
	multi := &models.ChoiceContent{
		Options:         []models.ChoiceOption{{Text: "a"}, {Text: "b"}, {Text: "c"}},
		CorrectIndexes:  []int{0, 2},
		MultipleCorrect: true,
	}

	tests := []struct {
		name     string
		content  *models.ChoiceContent
		response *models.ItemResponse
		want     float64
	}{
		{"single correct", single, &models.ItemResponse{AnswerIndexes: []int{1}}, 1},
		{"single wrong", single, &models.ItemResponse{AnswerIndexes: []int{2}}, 0},
		{"single with extra selection", single, &models.ItemResponse{AnswerIndexes: []int{0, 1}}, 0},
		{"multi exact set", multi, &models.ItemResponse{AnswerIndexes: []int{0, 2}}, 1},
		{"multi order irrelevant", multi, &models.ItemResponse{AnswerIndexes: []int{2, 0}}, 1},
		{"multi subset", multi, &models.ItemResponse{AnswerIndexes: []int{0}}, 0},
		{"multi superset", multi, &models.ItemResponse{AnswerIndexes: []int{0, 1, 2}}, 0},
		{"missing response", single, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := gradeChoice(tt.content, tt.response)
			if got.Score != tt.want {
				t.Errorf("score = %v, want %v", got.Score, tt.want)
			}
			if got.MaxScore != 1 {
				t.Errorf("max score = %v, want 1", got.MaxScore)
			}
		})
	}
}

func TestGradeTrueFalse(t *testing.T) {
	content := &models.TrueFalseContent{CorrectAnswer: true}

	if got := gradeTrueFalse(content, &models.ItemResponse{BoolAnswer: boolPtr(true)}); got.Score != 1 {
		t.Errorf("correct answer: score = %v, want 1", got.Score)
	}
	if got := gradeTrueFalse(content, &models.ItemResponse{BoolAnswer: boolPtr(false)}); got.Score != 0 {
		t.Errorf("wrong answer: score = %v, want 0", got.Score)
	}
	if got := gradeTrueFalse(content, nil); got.Score != 0 {
		t.Errorf("missing answer: score = %v, want 0", got.Score)
	}
}

func TestGradeFillBlank(t *testing.T) {
	content := &models.FillBlankContent{
		Mode: models.ModePartial,
		Blanks: []models.BlankSpec{
			{Matchers: []models.BlankMatcher{{Kind: "exact", Value: "Paris"}}},
			{Matchers: []models.BlankMatcher{
				{Kind: "exact", Value: "Seine", CaseSensitive: true},
				{Kind: "regex", Value: "riv(er|ière)"},
			}},
		},
	}

	t.Run("partial credits each matched blank", func(t *testing.T) {
		got := gradeFillBlank(content, &models.ItemResponse{TextAnswers: []string{"paris", "wrong"}})
		if got.Score != 1 || got.MaxScore != 2 {
			t.Errorf("got %v/%v, want 1/2", got.Score, got.MaxScore)
		}
	})

	t.Run("exact match is case-insensitive by default", func(t *testing.T) {
		got := gradeFillBlank(content, &models.ItemResponse{TextAnswers: []string{"PARIS", "Seine"}})
		if got.Score != 2 {
			t.Errorf("score = %v, want 2", got.Score)
		}
	})

	t.Run("case-sensitive matcher rejects wrong case", func(t *testing.T) {
		got := gradeFillBlank(content, &models.ItemResponse{TextAnswers: []string{"Paris", "seine"}})
		if got.Score != 1 {
			t.Errorf("score = %v, want 1", got.Score)
		}
	})

	t.Run("regex matcher applies i flag by default", func(t *testing.T) {
		got := gradeFillBlank(content, &models.ItemResponse{TextAnswers: []string{"Paris", "RIVER"}})
		if got.Score != 2 {
			t.Errorf("score = %v, want 2", got.Score)
		}
	})

	t.Run("all mode requires every blank", func(t *testing.T) {
		allMode := &models.FillBlankContent{Mode: models.ModeAll, Blanks: content.Blanks}
		got := gradeFillBlank(allMode, &models.ItemResponse{TextAnswers: []string{"Paris", "nope"}})
		if got.Score != 0 || got.MaxScore != 1 {
			t.Errorf("got %v/%v, want 0/1", got.Score, got.MaxScore)
		}
		got = gradeFillBlank(allMode, &models.ItemResponse{TextAnswers: []string{"Paris", "Seine"}})
		if got.Score != 1 {
			t.Errorf("score = %v, want 1", got.Score)
		}
	})

	t.Run("broken regex never matches", func(t *testing.T) {
		broken := &models.FillBlankContent{
			Mode:   models.ModePartial,
			Blanks: []models.BlankSpec{{Matchers: []models.BlankMatcher{{Kind: "regex", Value: "("}}}},
		}
		got := gradeFillBlank(broken, &models.ItemResponse{TextAnswers: []string{"anything"}})
		if got.Score != 0 {
			t.Errorf("score = %v, want 0", got.Score)
		}
	})

	t.Run("missing response earns nothing", func(t *testing.T) {
		got := gradeFillBlank(content, nil)
		if got.Score != 0 || got.MaxScore != 2 {
			t.Errorf("got %v/%v, want 0/2", got.Score, got.MaxScore)
		}
	})
}

func TestGradeMatching(t *testing.T) {
	content := &models.MatchingContent{
		Prompts: []models.MatchOption{{ID: "p1"}, {ID: "p2"}, {ID: "p3"}},
		Targets: []models.MatchOption{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}},
		CorrectPairs: []models.MatchPair{
			{PromptID: "p1", TargetID: "t1"},
			{PromptID: "p2", TargetID: "t2"},
			{PromptID: "p3", TargetID: "t3"},
		},
		Mode: models.ModePartial,
	}

	got := gradeMatching(content, &models.ItemResponse{Pairs: []models.MatchPair{
		{PromptID: "p1", TargetID: "t1"},
		{PromptID: "p2", TargetID: "t3"},
		{PromptID: "p3", TargetID: "t3"},
	}})
	if got.Score != 2 || got.MaxScore != 3 {
		t.Errorf("partial: got %v/%v, want 2/3", got.Score, got.MaxScore)
	}

	allMode := &models.MatchingContent{Prompts: content.Prompts, CorrectPairs: content.CorrectPairs, Mode: models.ModeAll}
	got = gradeMatching(allMode, &models.ItemResponse{Pairs: content.CorrectPairs})
	if got.Score != 1 || got.MaxScore != 1 {
		t.Errorf("all complete: got %v/%v, want 1/1", got.Score, got.MaxScore)
	}
	got = gradeMatching(allMode, &models.ItemResponse{Pairs: content.CorrectPairs[:2]})
	if got.Score != 0 {
		t.Errorf("all incomplete: score = %v, want 0", got.Score)
	}
}

func TestGradeOrdering(t *testing.T) {
	pairs := &models.OrderingContent{
		CorrectOrder: []string{"a", "b", "c"},
		Mode:         models.ModePartialPairs,
	}

	t.Run("one inversion keeps two of three pairs", func(t *testing.T) {
		outcome := gradeOrdering(pairs, &models.ItemResponse{Ordering: []string{"a", "c", "b"}})
		scored, ok := outcome.(Scored)
		if !ok {
			t.Fatalf("outcome = %T, want Scored", outcome)
		}
		if scored.Score != 2 || scored.MaxScore != 3 {
			t.Errorf("got %v/%v, want 2/3", scored.Score, scored.MaxScore)
		}
	})

	t.Run("perfect order earns every pair", func(t *testing.T) {
		scored := gradeOrdering(pairs, &models.ItemResponse{Ordering: []string{"a", "b", "c"}}).(Scored)
		if scored.Score != 3 {
			t.Errorf("score = %v, want 3", scored.Score)
		}
	})

	t.Run("missing element forfeits its pairs", func(t *testing.T) {
		scored := gradeOrdering(pairs, &models.ItemResponse{Ordering: []string{"a", "c"}}).(Scored)
		if scored.Score != 2 {
			t.Errorf("score = %v, want 2", scored.Score)
		}
	})

	t.Run("all mode needs exact sequence", func(t *testing.T) {
		allMode := &models.OrderingContent{CorrectOrder: []string{"a", "b", "c"}, Mode: models.ModeAll}
		if s := gradeOrdering(allMode, &models.ItemResponse{Ordering: []string{"a", "b", "c"}}).(Scored); s.Score != 1 {
			t.Errorf("exact: score = %v, want 1", s.Score)
		}
		if s := gradeOrdering(allMode, &models.ItemResponse{Ordering: []string{"b", "a", "c"}}).(Scored); s.Score != 0 {
			t.Errorf("swapped: score = %v, want 0", s.Score)
		}
	})

	t.Run("custom evaluator defers without an event", func(t *testing.T) {
		custom := &models.OrderingContent{
			CorrectOrder:      []string{"a", "b", "c"},
			Mode:              models.ModePartialPairs,
			CustomEvaluatorID: strPtr("eval-1"),
		}
		outcome := gradeOrdering(custom, &models.ItemResponse{Ordering: []string{"a", "b", "c"}})
		deferred, ok := outcome.(Deferred)
		if !ok {
			t.Fatalf("outcome = %T, want Deferred", outcome)
		}
		if deferred.Request != nil {
			t.Error("custom evaluator items must not emit an event")
		}
		if deferred.MaxScore != 3 {
			t.Errorf("max score = %v, want 3", deferred.MaxScore)
		}
	})
}

func TestGradeNumeric(t *testing.T) {
	exact := &models.NumericContent{Mode: models.ModeExact, Value: 9.81, Tolerance: 0.05}
	rng := &models.NumericContent{Mode: models.ModeRange, Min: 10, Max: 20}

	tests := []struct {
		name     string
		content  *models.NumericContent
		response *models.ItemResponse
		want     float64
	}{
		{"exact within tolerance", exact, &models.ItemResponse{Numeric: &models.NumericAnswer{Value: 9.79}}, 1},
		{"exact at tolerance edge", exact, &models.ItemResponse{Numeric: &models.NumericAnswer{Value: 9.86}}, 1},
		{"exact outside tolerance", exact, &models.ItemResponse{Numeric: &models.NumericAnswer{Value: 9.7}}, 0},
		{"range inclusive lower bound", rng, &models.ItemResponse{Numeric: &models.NumericAnswer{Value: 10}}, 1},
		{"range inclusive upper bound", rng, &models.ItemResponse{Numeric: &models.NumericAnswer{Value: 20}}, 1},
		{"range outside", rng, &models.ItemResponse{Numeric: &models.NumericAnswer{Value: 20.1}}, 0},
		{"missing response", exact, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gradeNumeric(tt.content, tt.response); got.Score != tt.want {
				t.Errorf("score = %v, want %v", got.Score, tt.want)
			}
		})
	}
}

func TestPointInPolygon(t *testing.T) {
	square := []models.Point{{X: 0.2, Y: 0.2}, {X: 0.8, Y: 0.2}, {X: 0.8, Y: 0.8}, {X: 0.2, Y: 0.8}}

	tests := []struct {
		name  string
		point models.Point
		want  bool
	}{
		{"center", models.Point{X: 0.5, Y: 0.5}, true},
		{"outside left", models.Point{X: 0.1, Y: 0.5}, false},
		{"outside above", models.Point{X: 0.5, Y: 0.9}, false},
		{"near inner edge", models.Point{X: 0.21, Y: 0.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pointInPolygon(tt.point, square); got != tt.want {
				t.Errorf("pointInPolygon = %v, want %v", got, tt.want)
			}
		})
	}

	t.Run("degenerate polygon contains nothing", func(t *testing.T) {
		if pointInPolygon(models.Point{X: 0.5, Y: 0.5}, square[:2]) {
			t.Error("two vertices must not contain any point")
		}
	})

	t.Run("concave polygon", func(t *testing.T) {
		// L-shape with a notch in the upper right
		concave := []models.Point{
			{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 0.5},
			{X: 0.5, Y: 0.5}, {X: 0.5, Y: 1}, {X: 0, Y: 1},
		}
		if !pointInPolygon(models.Point{X: 0.25, Y: 0.75}, concave) {
			t.Error("point in the leg should be inside")
		}
		if pointInPolygon(models.Point{X: 0.75, Y: 0.75}, concave) {
			t.Error("point in the notch should be outside")
		}
	})
}

func TestGradeHotspot(t *testing.T) {
	regions := []models.HotspotRegion{
		{ID: "r1", Vertices: []models.Point{{X: 0, Y: 0}, {X: 0.4, Y: 0}, {X: 0.4, Y: 0.4}, {X: 0, Y: 0.4}}},
		{ID: "r2", Vertices: []models.Point{{X: 0.6, Y: 0.6}, {X: 1, Y: 0.6}, {X: 1, Y: 1}, {X: 0.6, Y: 1}}},
	}

	t.Run("partial counts distinct hits up to the budget", func(t *testing.T) {
		content := &models.HotspotContent{Regions: regions, Mode: models.ModePartial, MaxSelections: 2}
		got := gradeHotspot(content, &models.ItemResponse{Points: []models.Point{
			{X: 0.2, Y: 0.2},
			{X: 0.8, Y: 0.8},
		}})
		if got.Score != 2 || got.MaxScore != 2 {
			t.Errorf("got %v/%v, want 2/2", got.Score, got.MaxScore)
		}
	})

	t.Run("budget caps the score even with more hits", func(t *testing.T) {
		content := &models.HotspotContent{Regions: regions, Mode: models.ModePartial, MaxSelections: 1}
		got := gradeHotspot(content, &models.ItemResponse{Points: []models.Point{
			{X: 0.2, Y: 0.2},
			{X: 0.8, Y: 0.8},
		}})
		if got.Score != 1 || got.MaxScore != 1 {
			t.Errorf("got %v/%v, want 1/1", got.Score, got.MaxScore)
		}
	})

	t.Run("budget never exceeds the region count", func(t *testing.T) {
		content := &models.HotspotContent{Regions: regions, Mode: models.ModePartial, MaxSelections: 5}
		got := gradeHotspot(content, nil)
		if got.MaxScore != 2 {
			t.Errorf("max score = %v, want 2", got.MaxScore)
		}
	})

	t.Run("duplicate hits on one region count once", func(t *testing.T) {
		content := &models.HotspotContent{Regions: regions, Mode: models.ModePartial, MaxSelections: 2}
		got := gradeHotspot(content, &models.ItemResponse{Points: []models.Point{
			{X: 0.1, Y: 0.1},
			{X: 0.2, Y: 0.2},
		}})
		if got.Score != 1 {
			t.Errorf("score = %v, want 1", got.Score)
		}
	})

	t.Run("all mode requires every region hit", func(t *testing.T) {
		content := &models.HotspotContent{Regions: regions, Mode: models.ModeAll}
		got := gradeHotspot(content, &models.ItemResponse{Points: []models.Point{{X: 0.2, Y: 0.2}}})
		if got.Score != 0 || got.MaxScore != 1 {
			t.Errorf("got %v/%v, want 0/1", got.Score, got.MaxScore)
		}
		got = gradeHotspot(content, &models.ItemResponse{Points: []models.Point{
			{X: 0.2, Y: 0.2},
			{X: 0.8, Y: 0.8},
		}})
		if got.Score != 1 {
			t.Errorf("score = %v, want 1", got.Score)
		}
	})
}

func TestGradeDragDrop(t *testing.T) {
	orderedZone := models.DropZone{
		ID:              "z1",
		Evaluation:      "ordered",
		CorrectTokenIDs: []string{"tok-1", "tok-2", "tok-3"},
	}
	setZone := models.DropZone{
		ID:              "z2",
		Evaluation:      "set",
		CorrectTokenIDs: []string{"tok-4", "tok-5"},
	}

	t.Run("per_token credits position-aligned matches in ordered zones", func(t *testing.T) {
		content := &models.DragDropContent{Zones: []models.DropZone{orderedZone}, Mode: models.ModePerToken}
		got := gradeDragDrop(content, &models.ItemResponse{Placements: []models.TokenPlacement{
			{TokenID: "tok-1", DropZoneID: "z1", Position: intPtr(0)},
			{TokenID: "tok-3", DropZoneID: "z1", Position: intPtr(1)},
			{TokenID: "tok-2", DropZoneID: "z1", Position: intPtr(2)},
		}})
		if got.Score != 1 || got.MaxScore != 3 {
			t.Errorf("got %v/%v, want 1/3", got.Score, got.MaxScore)
		}
	})

	t.Run("per_zone counts fully correct zones", func(t *testing.T) {
		content := &models.DragDropContent{Zones: []models.DropZone{orderedZone, setZone}, Mode: models.ModePerZone}
		got := gradeDragDrop(content, &models.ItemResponse{Placements: []models.TokenPlacement{
			{TokenID: "tok-1", DropZoneID: "z1", Position: intPtr(0)},
			{TokenID: "tok-2", DropZoneID: "z1", Position: intPtr(1)},
			{TokenID: "tok-3", DropZoneID: "z1", Position: intPtr(2)},
			{TokenID: "tok-5", DropZoneID: "z2"},
		}})
		if got.Score != 1 || got.MaxScore != 2 {
			t.Errorf("got %v/%v, want 1/2", got.Score, got.MaxScore)
		}
	})

	t.Run("set zone ignores order", func(t *testing.T) {
		content := &models.DragDropContent{Zones: []models.DropZone{setZone}, Mode: models.ModePerZone}
		got := gradeDragDrop(content, &models.ItemResponse{Placements: []models.TokenPlacement{
			{TokenID: "tok-5", DropZoneID: "z2"},
			{TokenID: "tok-4", DropZoneID: "z2"},
		}})
		if got.Score != 1 {
			t.Errorf("score = %v, want 1", got.Score)
		}
	})

	t.Run("extra token breaks set equality", func(t *testing.T) {
		content := &models.DragDropContent{Zones: []models.DropZone{setZone}, Mode: models.ModePerZone}
		got := gradeDragDrop(content, &models.ItemResponse{Placements: []models.TokenPlacement{
			{TokenID: "tok-4", DropZoneID: "z2"},
			{TokenID: "tok-5", DropZoneID: "z2"},
			{TokenID: "tok-6", DropZoneID: "z2"},
		}})
		if got.Score != 0 {
			t.Errorf("score = %v, want 0", got.Score)
		}
	})

	t.Run("maxTokens truncates before evaluation", func(t *testing.T) {
		capped := models.DropZone{
			ID:              "z3",
			Evaluation:      "set",
			CorrectTokenIDs: []string{"tok-1"},
			MaxTokens:       intPtr(1),
		}
		content := &models.DragDropContent{Zones: []models.DropZone{capped}, Mode: models.ModePerZone}
		got := gradeDragDrop(content, &models.ItemResponse{Placements: []models.TokenPlacement{
			{TokenID: "tok-1", DropZoneID: "z3"},
			{TokenID: "tok-9", DropZoneID: "z3"},
		}})
		if got.Score != 1 {
			t.Errorf("score = %v, want 1", got.Score)
		}
	})

	t.Run("all mode needs every zone correct", func(t *testing.T) {
		content := &models.DragDropContent{Zones: []models.DropZone{orderedZone, setZone}, Mode: models.ModeAll}
		got := gradeDragDrop(content, &models.ItemResponse{Placements: []models.TokenPlacement{
			{TokenID: "tok-1", DropZoneID: "z1", Position: intPtr(0)},
			{TokenID: "tok-2", DropZoneID: "z1", Position: intPtr(1)},
			{TokenID: "tok-3", DropZoneID: "z1", Position: intPtr(2)},
			{TokenID: "tok-4", DropZoneID: "z2"},
			{TokenID: "tok-5", DropZoneID: "z2"},
		}})
		if got.Score != 1 || got.MaxScore != 1 {
			t.Errorf("got %v/%v, want 1/1", got.Score, got.MaxScore)
		}
	})

	t.Run("missing response earns nothing", func(t *testing.T) {
		content := &models.DragDropContent{Zones: []models.DropZone{orderedZone}, Mode: models.ModePerToken}
		got := gradeDragDrop(content, nil)
		if got.Score != 0 || got.MaxScore != 3 {
			t.Errorf("got %v/%v, want 0/3", got.Score, got.MaxScore)
		}
	})
}
