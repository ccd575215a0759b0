package dto

import (
	"time"

	"github.com/spec-kit/supportiq/internal/domain"
)

// CreateEntryRequest payload.
type CreateEntryRequest struct {
	Tier     domain.Tier `json:"tier"`
	Title    string      `json:"title"`
	Content  string      `json:"content"`
	Keywords []string    `json:"keywords"`
	Category string      `json:"category"`
}

// KnowledgeEntryResponse response. Embeddings are internal and never leave
// the API.
type KnowledgeEntryResponse struct {
	ID               string      `json:"id"`
	ExternalKey      string      `json:"external_key"`
	Tier             domain.Tier `json:"tier"`
	Title            string      `json:"title"`
	Content          string      `json:"content"`
	Keywords         []string    `json:"keywords"`
	Category         string      `json:"category"`
	UsageCount       int         `json:"usage_count"`
	FeedbackCount    int         `json:"feedback_count"`
	AvgFeedbackScore float64     `json:"avg_feedback_score"`
	SuccessRate      float64     `json:"success_rate"`
	Active           bool        `json:"active"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

// PromoteEntryRequest payload for manual promotion.
type PromoteEntryRequest struct {
	ToTier domain.Tier `json:"to_tier"`
	Reason string      `json:"reason"`
}

// PromotionRecordResponse audit trail item.
type PromotionRecordResponse struct {
	ID                     string      `json:"id"`
	KnowledgeEntryID       string      `json:"knowledge_entry_id"`
	FromTier               domain.Tier `json:"from_tier"`
	ToTier                 domain.Tier `json:"to_tier"`
	Reason                 string      `json:"reason"`
	UsageCountAtPromotion  int         `json:"usage_count_at_promotion"`
	AvgFeedbackAtPromotion float64     `json:"avg_feedback_at_promotion"`
	PromotedAt             time.Time   `json:"promoted_at"`
}

// PromotionCandidateResponse describes an entry nearing promotion.
type PromotionCandidateResponse struct {
	Entry             KnowledgeEntryResponse `json:"entry"`
	TargetTier        domain.Tier            `json:"target_tier"`
	UsageThreshold    int                    `json:"usage_threshold"`
	ProgressPercent   float64                `json:"progress_percent"`
	FeedbackQualified bool                   `json:"feedback_qualified"`
}

// SweepResponse summarizes a manually triggered promotion pass.
type SweepResponse struct {
	Evaluated int                       `json:"evaluated"`
	Promoted  []PromotionRecordResponse `json:"promoted"`
	Failed    int                       `json:"failed"`
}
