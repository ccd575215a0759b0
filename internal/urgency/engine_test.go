package urgency

import (
	"math"
	"strings"
	"testing"

	"github.com/spec-kit/supportiq/internal/config"
	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/provider"
)

func testEngine() *Engine {
	return NewEngine(config.UrgencyConfig{
		CriticalKeywords:    []string{"payment", "security", "breach", "outage", "down", "emergency", "critical"},
		HighUrgencyKeywords: []string{"error", "failed", "broken", "urgent", "asap"},
		CategoryBaselines: map[string]float64{
			"payment":  8,
			"security": 9,
			"outage":   10,
			"email":    4,
			"database": 7,
			"general":  3,
		},
	})
}

func TestEvaluateCriticalScenario(t *testing.T) {
	engine := testEngine()

	result := engine.Evaluate(provider.SentimentVeryNegative, -1.0,
		"Payment system is down, this is an emergency", "payment")

	// 0.4*10 + 0.3*10 + 0.2*8 + 0.1*5 = 9.1, rounded to 9.
	if result.Score != 9 {
		t.Fatalf("Score = %d, want 9", result.Score)
	}
	if result.Level != domain.UrgencyCritical {
		t.Errorf("Level = %s, want critical", result.Level)
	}
	if result.Tier != domain.TierL3 {
		t.Errorf("Tier = %s, want L3", result.Tier)
	}
	if len(result.MatchedKeywords) == 0 {
		t.Error("expected matched critical keywords")
	}
	if result.SentimentAnomaly {
		t.Error("unexpected sentiment anomaly")
	}
}

func TestEvaluateBands(t *testing.T) {
	engine := testEngine()

	tests := []struct {
		name      string
		polarity  float64
		text      string
		category  string
		wantScore int
		wantLevel domain.UrgencyLevel
		wantTier  domain.Tier
	}{
		{
			name:      "neutral general stays low",
			polarity:  0,
			text:      "question about the user guide",
			category:  "general",
			wantScore: 3,
			wantLevel: domain.UrgencyLow,
			wantTier:  domain.TierL1,
		},
		{
			name:      "positive sentiment floors at low",
			polarity:  1,
			text:      "everything works, thanks",
			category:  "general",
			wantScore: 2,
			wantLevel: domain.UrgencyLow,
			wantTier:  domain.TierL1,
		},
		{
			name:      "high keywords push into high band",
			polarity:  -1,
			text:      "export error, request failed",
			category:  "general",
			wantScore: 6,
			wantLevel: domain.UrgencyHigh,
			wantTier:  domain.TierL2,
		},
		{
			name:      "medium band on low-risk category routes L1",
			polarity:  0,
			text:      "mailbox rules question",
			category:  "email",
			wantScore: 4,
			wantLevel: domain.UrgencyMedium,
			wantTier:  domain.TierL1,
		},
		{
			name:      "medium band on high-baseline category routes L2",
			polarity:  0,
			text:      "replication lagging behind",
			category:  "database",
			wantScore: 4,
			wantLevel: domain.UrgencyMedium,
			wantTier:  domain.TierL2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Evaluate(provider.LabelForScore(tt.polarity), tt.polarity, tt.text, tt.category)
			if result.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", result.Score, tt.wantScore)
			}
			if result.Level != tt.wantLevel {
				t.Errorf("Level = %s, want %s", result.Level, tt.wantLevel)
			}
			if result.Tier != tt.wantTier {
				t.Errorf("Tier = %s, want %s", result.Tier, tt.wantTier)
			}
		})
	}
}

func TestLevelForScoreCoversWholeScale(t *testing.T) {
	wantLevels := map[int]domain.UrgencyLevel{
		1: domain.UrgencyLow, 2: domain.UrgencyLow, 3: domain.UrgencyLow,
		4: domain.UrgencyMedium, 5: domain.UrgencyMedium,
		6: domain.UrgencyHigh, 7: domain.UrgencyHigh,
		8: domain.UrgencyCritical, 9: domain.UrgencyCritical, 10: domain.UrgencyCritical,
	}
	for score := 1; score <= 10; score++ {
		if got := levelForScore(score); got != wantLevels[score] {
			t.Errorf("levelForScore(%d) = %s, want %s", score, got, wantLevels[score])
		}
	}
}

func TestEvaluateSentimentAnomaly(t *testing.T) {
	engine := testEngine()

	for _, polarity := range []float64{math.NaN(), -2, 1.5} {
		result := engine.Evaluate("", polarity, "simple question", "general")
		if !result.SentimentAnomaly {
			t.Fatalf("polarity %v: expected anomaly flag", polarity)
		}
		neutral := engine.Evaluate(provider.SentimentNeutral, 0, "simple question", "general")
		if result.Score != neutral.Score {
			t.Fatalf("polarity %v: anomaly score %d differs from neutral %d",
				polarity, result.Score, neutral.Score)
		}
		if !strings.Contains(result.Explanation, "assumed neutral") {
			t.Fatalf("explanation missing anomaly note: %q", result.Explanation)
		}
	}
}

func TestEvaluateRecoversPolarityFromLabel(t *testing.T) {
	engine := testEngine()

	tests := []struct {
		label    string
		polarity float64
	}{
		{provider.SentimentVeryNegative, -1},
		{provider.SentimentNegative, -0.5},
		{provider.SentimentNeutral, 0},
		{provider.SentimentPositive, 0.5},
		{provider.SentimentVeryPositive, 1},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			result := engine.Evaluate(tt.label, math.NaN(), "simple question", "general")
			if !result.SentimentAnomaly {
				t.Fatal("expected anomaly flag")
			}
			clean := engine.Evaluate(tt.label, tt.polarity, "simple question", "general")
			if result.Score != clean.Score {
				t.Fatalf("recovered score %d differs from clean %d", result.Score, clean.Score)
			}
			if !strings.Contains(result.Explanation, "recovered from label") {
				t.Fatalf("explanation missing recovery note: %q", result.Explanation)
			}
		})
	}

	// a label nobody recognizes still lands on neutral
	garbage := engine.Evaluate("shrug", 5, "simple question", "general")
	neutral := engine.Evaluate(provider.SentimentNeutral, 0, "simple question", "general")
	if garbage.Score != neutral.Score {
		t.Fatalf("unknown label score %d differs from neutral %d", garbage.Score, neutral.Score)
	}
}

func TestEvaluateScoreClamped(t *testing.T) {
	engine := testEngine()

	worst := engine.Evaluate(provider.SentimentVeryNegative, -1,
		"payment outage down emergency security breach critical error failed", "outage")
	if worst.Score < 1 || worst.Score > 10 {
		t.Fatalf("score out of range: %d", worst.Score)
	}
	if worst.Score != 10 {
		t.Fatalf("worst case score = %d, want 10", worst.Score)
	}

	best := engine.Evaluate(provider.SentimentVeryPositive, 1, "all good", "general")
	if best.Score < 1 || best.Score > 10 {
		t.Fatalf("score out of range: %d", best.Score)
	}
}

func TestEvaluateUnknownCategoryUsesMidBaseline(t *testing.T) {
	engine := testEngine()

	result := engine.Evaluate("neutral", 0, "odd request", "warehouse")
	if result.EffectiveCategory != "warehouse" {
		t.Fatalf("EffectiveCategory = %q, want warehouse", result.EffectiveCategory)
	}
	if got := result.Factors["category"]; got != midCategoryBaseline {
		t.Fatalf("category factor = %v, want %v", got, midCategoryBaseline)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	engine := testEngine()

	first := engine.Evaluate("negative", -0.6, "vpn connection broken", "")
	for i := 0; i < 5; i++ {
		again := engine.Evaluate("negative", -0.6, "vpn connection broken", "")
		if again.Score != first.Score || again.Tier != first.Tier || again.Explanation != first.Explanation {
			t.Fatal("evaluation is not deterministic")
		}
	}
}

func TestDetectCategory(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"my invoice is wrong", "payment"},
		{"possible phishing email", "security"},
		{"site returns 503", "outage"},
		{"locked out of my account", "authentication"},
		{"printer will not start", "hardware"},
		{"sql query very slow", "database"},
		{"nothing specific", "general"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := DetectCategory(tt.text); got != tt.want {
				t.Fatalf("DetectCategory(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestEvaluateAutoDetectsCategory(t *testing.T) {
	engine := testEngine()

	result := engine.Evaluate("neutral", 0, "cannot reach the vpn", "")
	if result.EffectiveCategory != "network" {
		t.Fatalf("EffectiveCategory = %q, want network", result.EffectiveCategory)
	}
}
