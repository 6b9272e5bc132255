package selection

import (
	"testing"

	"english_lt_backend/internal/model"
)

func catalogFixture() []model.Question {
	qs := []model.Question{
		{Category: model.CategoryWord, Prompt: "苹果", Answer: "apple", Textbook: "PEP7A"},
		{Category: model.CategoryWord, Prompt: "平衡", Answer: "balance", Textbook: "PEP7A"},
		{Category: model.CategoryWord, Prompt: "勇气", Answer: "courage", Textbook: "PEP7B"},
		{Category: model.CategoryPhrase, Prompt: "感谢你", Answer: "thank you", Textbook: "PEP7A"},
		{Category: model.CategoryPhrase, Prompt: "推迟", Answer: "put off", Textbook: "PEP7B"},
		{Category: model.CategorySentence, Prompt: "今天天气很好", Answer: "It is nice today.", Textbook: "PEP7A"},
	}
	for i := range qs {
		qs[i].ID = uint(i + 1)
	}
	return qs
}

func TestGenerateNeverDuplicatesAndRespectsCount(t *testing.T) {
	catalog := catalogFixture()
	configs := []TypeConfig{
		{Category: model.CategoryWord, Count: 2, PointValue: 25, TimeLimitSeconds: 5, MinTimeSeconds: 2},
		{Category: model.CategoryPhrase, Count: 1, PointValue: 25, TimeLimitSeconds: 5, MinTimeSeconds: 2},
	}

	for seed := int64(0); seed < 50; seed++ {
		result := NewSelectorWithSeed(seed).Generate(configs, catalog, "")

		if len(result.Questions) != 3 {
			t.Fatalf("seed %d: expected 3 questions, got %d", seed, len(result.Questions))
		}

		seen := make(map[uint]bool)
		perCategory := make(map[string]int)
		for _, q := range result.Questions {
			if seen[q.ID] {
				t.Fatalf("seed %d: duplicate question id %d", seed, q.ID)
			}
			seen[q.ID] = true
			perCategory[q.Category]++
		}
		if perCategory[model.CategoryWord] != 2 || perCategory[model.CategoryPhrase] != 1 {
			t.Fatalf("seed %d: unexpected per-category counts %v", seed, perCategory)
		}
	}
}

func TestGenerateStampsTypeParameters(t *testing.T) {
	configs := []TypeConfig{
		{Category: model.CategorySentence, Count: 1, PointValue: 40, TimeLimitSeconds: 8, MinTimeSeconds: 3},
	}

	result := NewSelectorWithSeed(7).Generate(configs, catalogFixture(), "")
	if len(result.Questions) != 1 {
		t.Fatalf("expected 1 question, got %d", len(result.Questions))
	}

	q := result.Questions[0]
	if q.PointValue != 40 || q.TimeLimitSeconds != 8 || q.MinTimeSeconds != 3 {
		t.Errorf("type parameters not stamped: %+v", q)
	}
}

func TestGenerateReportsShortfall(t *testing.T) {
	configs := []TypeConfig{
		{Category: model.CategoryWord, Count: 5, PointValue: 25, TimeLimitSeconds: 5, MinTimeSeconds: 2},
	}

	result := NewSelectorWithSeed(1).Generate(configs, catalogFixture(), "")

	if len(result.Questions) != 3 {
		t.Fatalf("expected all 3 available word questions, got %d", len(result.Questions))
	}
	if len(result.Shortfalls) != 1 {
		t.Fatalf("expected 1 shortfall, got %d", len(result.Shortfalls))
	}
	sf := result.Shortfalls[0]
	if sf.Category != model.CategoryWord || sf.Requested != 5 || sf.Available != 3 {
		t.Errorf("unexpected shortfall %+v", sf)
	}
}

func TestGenerateTextbookFilter(t *testing.T) {
	configs := []TypeConfig{
		{Category: model.CategoryWord, Count: 3, PointValue: 25, TimeLimitSeconds: 5, MinTimeSeconds: 2},
	}

	result := NewSelectorWithSeed(3).Generate(configs, catalogFixture(), "PEP7A")
	if len(result.Questions) != 2 {
		t.Fatalf("expected 2 PEP7A word questions, got %d", len(result.Questions))
	}
	for _, q := range result.Questions {
		if q.Textbook != "PEP7A" {
			t.Errorf("question %d from wrong textbook %s", q.ID, q.Textbook)
		}
	}

	// "all" 哨兵不过滤
	result = NewSelectorWithSeed(3).Generate(configs, catalogFixture(), model.TextbookAll)
	if len(result.Questions) != 3 {
		t.Fatalf("expected 3 questions with the all sentinel, got %d", len(result.Questions))
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	configs := []TypeConfig{
		{Category: model.CategoryWord, Count: 2, PointValue: 25, TimeLimitSeconds: 5, MinTimeSeconds: 2},
	}

	a := NewSelectorWithSeed(42).Generate(configs, catalogFixture(), "")
	b := NewSelectorWithSeed(42).Generate(configs, catalogFixture(), "")

	for i := range a.Questions {
		if a.Questions[i].ID != b.Questions[i].ID {
			t.Fatalf("same seed produced different draws: %d vs %d", a.Questions[i].ID, b.Questions[i].ID)
		}
	}
}

func TestValidateConfigs(t *testing.T) {
	testCases := []struct {
		name    string
		config  TypeConfig
		wantErr bool
	}{
		{"valid", TypeConfig{Category: "word", Count: 1, PointValue: 25, TimeLimitSeconds: 5, MinTimeSeconds: 2}, false},
		{"zero count skips checks", TypeConfig{Category: "word", Count: 0}, false},
		{"negative count", TypeConfig{Category: "word", Count: -1}, true},
		{"point value below 1", TypeConfig{Category: "word", Count: 1, PointValue: 0, TimeLimitSeconds: 5, MinTimeSeconds: 2}, true},
		{"time limit below 5", TypeConfig{Category: "word", Count: 1, PointValue: 25, TimeLimitSeconds: 4, MinTimeSeconds: 2}, true},
		{"min time above limit", TypeConfig{Category: "word", Count: 1, PointValue: 25, TimeLimitSeconds: 5, MinTimeSeconds: 6}, true},
		{"min time zero", TypeConfig{Category: "word", Count: 1, PointValue: 25, TimeLimitSeconds: 5, MinTimeSeconds: 0}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConfigs([]TypeConfig{tc.config})
			if (err != nil) != tc.wantErr {
				t.Errorf("ValidateConfigs() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
