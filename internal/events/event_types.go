package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/supportiq/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketTriaged    EventType = "ticket_triaged"
	EventTicketResolved   EventType = "ticket_resolved"
	EventFeedbackRecorded EventType = "feedback_recorded"
	EventEntryPromoted    EventType = "entry_promoted"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// NewEvent wraps a payload with a fresh id and timestamp.
func NewEvent(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// TicketTriagedPayload payload.
type TicketTriagedPayload struct {
	TicketID     string              `json:"ticket_id"`
	TicketKey    string              `json:"ticket_key"`
	Title        string              `json:"title"`
	UrgencyScore int                 `json:"urgency_score"`
	UrgencyLevel domain.UrgencyLevel `json:"urgency_level"`
	AssignedTier domain.Tier         `json:"assigned_tier"`
	Category     string              `json:"category"`
	Degraded     bool                `json:"degraded"`
}

// TicketResolvedPayload payload.
type TicketResolvedPayload struct {
	TicketID         string                  `json:"ticket_id"`
	ResolutionID     string                  `json:"resolution_id"`
	Source           domain.ResolutionSource `json:"source"`
	KnowledgeEntryID string                  `json:"knowledge_entry_id,omitempty"`
}

// FeedbackRecordedPayload payload.
type FeedbackRecordedPayload struct {
	ResolutionID     string  `json:"resolution_id"`
	KnowledgeEntryID string  `json:"knowledge_entry_id,omitempty"`
	Score            int     `json:"score"`
	NewAverage       float64 `json:"new_average,omitempty"`
}

// EntryPromotedPayload payload.
type EntryPromotedPayload struct {
	KnowledgeEntryID string      `json:"knowledge_entry_id"`
	FromTier         domain.Tier `json:"from_tier"`
	ToTier           domain.Tier `json:"to_tier"`
	Reason           string      `json:"reason"`
	Manual           bool        `json:"manual"`
}
