package dto

import (
	"time"

	"github.com/spec-kit/supportiq/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	Category       string `json:"category"`
	RequesterEmail string `json:"requester_email"`
}

// AnalyzeRequest payload for the stateless scoring endpoint.
type AnalyzeRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string              `json:"id"`
	ExternalKey  string              `json:"external_key"`
	Title        string              `json:"title"`
	Status       domain.TicketStatus `json:"status"`
	UrgencyScore int                 `json:"urgency_score"`
	UrgencyLevel domain.UrgencyLevel `json:"urgency_level"`
	AssignedTier domain.Tier         `json:"assigned_tier"`
	Category     string              `json:"category"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
	ResolvedAt   *time.Time          `json:"resolved_at,omitempty"`
}

// TriageResponse is the full intake result: the stored ticket, the scoring
// breakdown, and suggested solutions.
type TriageResponse struct {
	Ticket      TicketDetail       `json:"ticket"`
	Urgency     UrgencyBreakdown   `json:"urgency"`
	Sentiment   SentimentResponse  `json:"sentiment"`
	Suggestions []SearchResultItem `json:"suggestions"`
	Degraded    bool               `json:"degraded"`
}

// TicketDetail response.
type TicketDetail struct {
	TicketSummary
	Description    string  `json:"description"`
	SentimentScore float64 `json:"sentiment_score"`
	SentimentLabel string  `json:"sentiment_label"`
	RequesterEmail string  `json:"requester_email,omitempty"`
}

// UrgencyBreakdown exposes the deterministic scoring trace.
type UrgencyBreakdown struct {
	Score             int                 `json:"score"`
	Level             domain.UrgencyLevel `json:"level"`
	Tier              domain.Tier         `json:"tier"`
	EffectiveCategory string              `json:"effective_category"`
	Factors           map[string]float64  `json:"factors"`
	MatchedKeywords   []string            `json:"matched_keywords,omitempty"`
	Explanation       string              `json:"explanation"`
}

// SentimentResponse response.
type SentimentResponse struct {
	Label      string  `json:"label"`
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
}

// ResolveTicketRequest payload.
type ResolveTicketRequest struct {
	KnowledgeEntryID string `json:"knowledge_entry_id"`
	Solution         string `json:"solution"`
	ResolvedBy       string `json:"resolved_by"`
	FeedbackScore    *int   `json:"feedback_score"`
	FeedbackComment  string `json:"feedback_comment"`
}

// FeedbackRequest payload.
type FeedbackRequest struct {
	Score   int    `json:"score"`
	Comment string `json:"comment"`
}

// ResolutionResponse response.
type ResolutionResponse struct {
	ID                    string                  `json:"id"`
	TicketID              string                  `json:"ticket_id"`
	KnowledgeEntryID      string                  `json:"knowledge_entry_id,omitempty"`
	Solution              string                  `json:"solution"`
	Source                domain.ResolutionSource `json:"source"`
	ResolutionTimeMinutes int                     `json:"resolution_time_minutes"`
	FeedbackScore         *int                    `json:"feedback_score,omitempty"`
	FeedbackComment       string                  `json:"feedback_comment,omitempty"`
	ResolvedBy            string                  `json:"resolved_by,omitempty"`
	CreatedAt             time.Time               `json:"created_at"`
}
