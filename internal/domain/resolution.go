package domain

import "time"

// ResolutionSource identifies where a solution came from.
type ResolutionSource string

const (
	ResolutionSourceL1KB   ResolutionSource = "L1_KB"
	ResolutionSourceL2KB   ResolutionSource = "L2_KB"
	ResolutionSourceL3KB   ResolutionSource = "L3_KB"
	ResolutionSourceManual ResolutionSource = "manual"
)

// SourceForTier maps a knowledge tier to its resolution source.
func SourceForTier(t Tier) ResolutionSource {
	switch t {
	case TierL1:
		return ResolutionSourceL1KB
	case TierL2:
		return ResolutionSourceL2KB
	case TierL3:
		return ResolutionSourceL3KB
	}
	return ResolutionSourceManual
}

// Resolution records how a ticket was resolved. Immutable once created,
// except that feedback may be attached afterwards; it feeds knowledge entry
// statistics. KnowledgeEntryID is empty for manual resolutions.
type Resolution struct {
	ID                    string
	TicketID              string
	KnowledgeEntryID      string
	Solution              string
	Source                ResolutionSource
	ResolutionTimeMinutes int
	FeedbackScore         *int
	FeedbackComment       string
	ResolvedBy            string
	CreatedAt             time.Time
}
