// Package urgency scores ticket priority from sentiment, keyword signals,
// and category, and maps the score onto an urgency band and an initial
// knowledge tier.
package urgency

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spec-kit/supportiq/internal/config"
	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/provider"
	"github.com/spec-kit/supportiq/internal/scoring"
)

// polarityForLabel inverts provider.LabelForScore to a representative
// polarity per bucket, used to recover when the numeric score is malformed
// but the label is recognizable.
var polarityForLabel = map[string]float64{
	provider.SentimentVeryNegative: -1,
	provider.SentimentNegative:     -0.5,
	provider.SentimentNeutral:      0,
	provider.SentimentPositive:     0.5,
	provider.SentimentVeryPositive: 1,
}

// Sub-factor weights. Each factor is pre-scaled to 0-10 before weighting.
const (
	sentimentWeight = 0.40
	keywordWeight   = 0.30
	categoryWeight  = 0.20
	baseWeight      = 0.10

	// baseScore is the constant baseline factor that keeps every ticket
	// above the urgency floor.
	baseScore = 5.0

	// midCategoryBaseline is the default for categories absent from the
	// configured table.
	midCategoryBaseline = 5.0

	// l2CategoryOverride escalates medium-band tickets to L2 when the
	// effective category's baseline is at or above it.
	l2CategoryOverride = 7.0
)

// Result carries the full urgency evaluation for one ticket.
type Result struct {
	Score             int
	Level             domain.UrgencyLevel
	Tier              domain.Tier
	EffectiveCategory string
	Factors           map[string]float64
	MatchedKeywords   []string
	Explanation       string
	// SentimentAnomaly is set when the sentiment input was malformed and
	// the engine fell back to neutral polarity.
	SentimentAnomaly bool
}

// Engine evaluates ticket urgency. It is deterministic and safe for
// concurrent use; all tunables are fixed at construction.
type Engine struct {
	criticalKeywords  []string
	highKeywords      []string
	categoryBaselines map[string]float64
}

// NewEngine constructs the engine from urgency configuration.
func NewEngine(cfg config.UrgencyConfig) *Engine {
	return &Engine{
		criticalKeywords:  cfg.CriticalKeywords,
		highKeywords:      cfg.HighUrgencyKeywords,
		categoryBaselines: cfg.CategoryBaselines,
	}
}

// Evaluate scores the combined ticket text. Malformed sentiment input never
// fails the evaluation; a polarity outside [-1,1] is recovered from the
// label when it is a known one, neutral otherwise, and the anomaly is
// flagged for the caller to log.
func (e *Engine) Evaluate(sentimentLabel string, sentimentScore float64, text, category string) Result {
	polarity := sentimentScore
	anomaly := false
	recovered := false
	if math.IsNaN(polarity) || polarity < -1 || polarity > 1 {
		anomaly = true
		polarity, recovered = polarityForLabel[sentimentLabel]
	}

	// Strongly negative polarity maps near 10, neutral near 5, strongly
	// positive near 1.
	sentimentFactor := (1-polarity)*4.5 + 1

	criticalHit := scoring.ContainsAny(text, e.criticalKeywords)
	matched := e.matchedKeywords(text)
	var keywordFactor float64
	if criticalHit {
		keywordFactor = 10
	} else {
		keywordFactor = scoring.Overlap(text, e.highKeywords) * 10
	}

	effectiveCategory := strings.ToLower(strings.TrimSpace(category))
	if effectiveCategory == "" {
		effectiveCategory = DetectCategory(text)
	}
	baseline, known := e.categoryBaselines[effectiveCategory]
	if !known {
		baseline = midCategoryBaseline
	}

	factors := map[string]float64{
		"sentiment": round2(sentimentFactor),
		"keywords":  round2(keywordFactor),
		"category":  round2(baseline),
		"base":      baseScore,
	}

	weighted := sentimentWeight*sentimentFactor +
		keywordWeight*keywordFactor +
		categoryWeight*baseline +
		baseWeight*baseScore
	score := clampScore(int(math.Round(weighted)))

	level := levelForScore(score)
	tier := e.tierForScore(score, baseline)

	return Result{
		Score:             score,
		Level:             level,
		Tier:              tier,
		EffectiveCategory: effectiveCategory,
		Factors:           factors,
		MatchedKeywords:   matched,
		Explanation:       buildExplanation(score, level, factors, matched, effectiveCategory, anomaly, recovered),
		SentimentAnomaly:  anomaly,
	}
}

func (e *Engine) matchedKeywords(text string) []string {
	var matched []string
	for _, keyword := range e.criticalKeywords {
		if scoring.ContainsAny(text, []string{keyword}) {
			matched = append(matched, keyword)
		}
	}
	return matched
}

// Band table: 1-3 low/L1, 4-5 medium/L1 (L2 by category override), 6-7
// high/L2, 8-10 critical/L3. Inclusive, non-overlapping, covers 1-10.
func levelForScore(score int) domain.UrgencyLevel {
	switch {
	case score >= 8:
		return domain.UrgencyCritical
	case score >= 6:
		return domain.UrgencyHigh
	case score >= 4:
		return domain.UrgencyMedium
	default:
		return domain.UrgencyLow
	}
}

func (e *Engine) tierForScore(score int, categoryBaseline float64) domain.Tier {
	switch {
	case score >= 8:
		return domain.TierL3
	case score >= 6:
		return domain.TierL2
	case score >= 4:
		if categoryBaseline >= l2CategoryOverride {
			return domain.TierL2
		}
		return domain.TierL1
	default:
		return domain.TierL1
	}
}

func clampScore(score int) int {
	if score < 1 {
		return 1
	}
	if score > 10 {
		return 10
	}
	return score
}

func buildExplanation(score int, level domain.UrgencyLevel, factors map[string]float64, matched []string, category string, anomaly, recovered bool) string {
	parts := []string{fmt.Sprintf("urgency %d/10 (%s)", score, strings.ToUpper(string(level)))}
	parts = append(parts, fmt.Sprintf("dominant factor: %s", dominantFactor(factors)))
	if len(matched) > 0 {
		parts = append(parts, "critical keywords: "+strings.Join(matched, ", "))
	}
	if category != "general" {
		parts = append(parts, "category: "+category)
	}
	if anomaly {
		if recovered {
			parts = append(parts, "sentiment score invalid, recovered from label")
		} else {
			parts = append(parts, "sentiment unavailable, assumed neutral")
		}
	}
	return strings.Join(parts, " | ")
}

// dominantFactor names the sub-factor with the largest weighted
// contribution to the score.
func dominantFactor(factors map[string]float64) string {
	weights := map[string]float64{
		"sentiment": sentimentWeight,
		"keywords":  keywordWeight,
		"category":  categoryWeight,
		"base":      baseWeight,
	}
	names := make([]string, 0, len(factors))
	for name := range factors {
		names = append(names, name)
	}
	sort.Strings(names)

	dominant := ""
	best := -1.0
	for _, name := range names {
		contribution := factors[name] * weights[name]
		if contribution > best {
			best = contribution
			dominant = name
		}
	}
	return dominant
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
