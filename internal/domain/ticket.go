package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
	TicketStatusEscalated  TicketStatus = "escalated"
)

// UrgencyLevel enumerates the categorical urgency bands.
type UrgencyLevel string

const (
	UrgencyLow      UrgencyLevel = "low"
	UrgencyMedium   UrgencyLevel = "medium"
	UrgencyHigh     UrgencyLevel = "high"
	UrgencyCritical UrgencyLevel = "critical"
)

// Ticket is the aggregate for support requests. Tickets are never deleted,
// only status-transitioned.
type Ticket struct {
	ID             string
	ExternalKey    string
	Title          string
	Description    string
	Status         TicketStatus
	UrgencyScore   int
	UrgencyLevel   UrgencyLevel
	SentimentScore float64
	SentimentLabel string
	Category       string
	AssignedTier   Tier
	RequesterEmail string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ResolvedAt     *time.Time
}

var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusEscalated, TicketStatusResolved},
	TicketStatusInProgress: {TicketStatusResolved, TicketStatusEscalated},
	TicketStatusEscalated:  {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusResolved:   {TicketStatusClosed, TicketStatusInProgress},
	TicketStatusClosed:     {},
}

// ValidStatusTransition reports whether current -> next is allowed.
func ValidStatusTransition(current, next TicketStatus) bool {
	for _, candidate := range ticketTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
