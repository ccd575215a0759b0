// Package promotion holds the pure eligibility rules of the tier promotion
// engine. Committing a promotion is the promotion service's job; this
// package only decides who qualifies and why.
package promotion

import (
	"fmt"

	"github.com/spec-kit/supportiq/internal/config"
	"github.com/spec-kit/supportiq/internal/domain"
)

// Rule describes one legal promotion edge and its usage threshold.
type Rule struct {
	From           domain.Tier
	To             domain.Tier
	UsageThreshold int
}

// Candidate is an entry that qualifies for a single-step promotion.
type Candidate struct {
	Entry  domain.KnowledgeEntry
	Rule   Rule
	Reason string
}

// Rules materializes the promotion edges from configuration. Order matters
// only for presentation; each entry can match at most one rule since rules
// key off the entry's current tier.
func Rules(cfg config.PromotionConfig) []Rule {
	return []Rule{
		{From: domain.TierL3, To: domain.TierL2, UsageThreshold: cfg.L3ToL2Threshold},
		{From: domain.TierL2, To: domain.TierL1, UsageThreshold: cfg.L2ToL1Threshold},
	}
}

// RuleFor returns the promotion rule whose source tier matches the entry's
// current tier. L1 entries have none; they are terminal.
func RuleFor(tier domain.Tier, cfg config.PromotionConfig) (Rule, bool) {
	for _, rule := range Rules(cfg) {
		if rule.From == tier {
			return rule, true
		}
	}
	return Rule{}, false
}

// Eligible reports whether the entry meets the rule's thresholds. Inactive
// entries never qualify.
func Eligible(entry domain.KnowledgeEntry, rule Rule, minFeedback float64) bool {
	if !entry.Active || entry.Tier != rule.From {
		return false
	}
	return entry.UsageCount >= rule.UsageThreshold && entry.AvgFeedbackScore >= minFeedback
}

// Evaluate returns the promotable entries from a snapshot, each bound to its
// single-step rule. An entry appears at most once: its tier at snapshot time
// selects exactly one rule, so no double-hop can occur within one pass even
// when the next tier's thresholds are already met.
func Evaluate(entries []domain.KnowledgeEntry, cfg config.PromotionConfig) []Candidate {
	candidates := make([]Candidate, 0)
	for _, entry := range entries {
		rule, ok := RuleFor(entry.Tier, cfg)
		if !ok {
			continue
		}
		if !Eligible(entry, rule, cfg.MinFeedbackScore) {
			continue
		}
		candidates = append(candidates, Candidate{
			Entry:  entry,
			Rule:   rule,
			Reason: AutoReason(entry, rule, cfg.MinFeedbackScore),
		})
	}
	return candidates
}

// AutoReason renders the audit reason for a threshold-driven promotion.
func AutoReason(entry domain.KnowledgeEntry, rule Rule, minFeedback float64) string {
	return fmt.Sprintf("auto-promoted: usage_count=%d >= %d, avg_feedback=%.2f >= %.2f",
		entry.UsageCount, rule.UsageThreshold, entry.AvgFeedbackScore, minFeedback)
}

// ProgressCandidate reports an entry approaching its promotion threshold.
type ProgressCandidate struct {
	Entry             domain.KnowledgeEntry
	Rule              Rule
	ProgressPercent   float64
	FeedbackQualified bool
}

// progressFloor is the share of the usage threshold at which an entry is
// reported as approaching promotion.
const progressFloor = 0.7

// ApproachingPromotion returns entries at or above 70% of their usage
// threshold, with their progress toward it.
func ApproachingPromotion(entries []domain.KnowledgeEntry, cfg config.PromotionConfig) []ProgressCandidate {
	out := make([]ProgressCandidate, 0)
	for _, entry := range entries {
		rule, ok := RuleFor(entry.Tier, cfg)
		if !ok || !entry.Active || rule.UsageThreshold <= 0 {
			continue
		}
		if float64(entry.UsageCount) < float64(rule.UsageThreshold)*progressFloor {
			continue
		}
		progress := float64(entry.UsageCount) / float64(rule.UsageThreshold) * 100
		if progress > 100 {
			progress = 100
		}
		out = append(out, ProgressCandidate{
			Entry:             entry,
			Rule:              rule,
			ProgressPercent:   progress,
			FeedbackQualified: entry.AvgFeedbackScore >= cfg.MinFeedbackScore,
		})
	}
	return out
}
