package domain

import "time"

// KnowledgeEntry is a tiered knowledge base solution. Tier and the usage
// statistics are owned by the promotion engine; content fields are owned by
// the external authoring workflow.
type KnowledgeEntry struct {
	ID               string
	ExternalKey      string
	Tier             Tier
	Title            string
	Content          string
	Keywords         []string
	Category         string
	UsageCount       int
	FeedbackCount    int
	AvgFeedbackScore float64
	SuccessRate      float64
	Embedding        []float32
	Active           bool
	// Version guards optimistic-concurrency writes against the entry.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PromotionRecord is the append-only audit trail of tier transitions. The
// usage and feedback values are the pre-promotion statistics that justified
// the move.
type PromotionRecord struct {
	ID                     string
	KnowledgeEntryID       string
	FromTier               Tier
	ToTier                 Tier
	Reason                 string
	UsageCountAtPromotion  int
	AvgFeedbackAtPromotion float64
	PromotedAt             time.Time
}
