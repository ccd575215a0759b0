package domain

// Tier enumerates knowledge base specialization levels. L1 is self-service,
// L3 is expert-only.
type Tier string

const (
	TierL1 Tier = "L1"
	TierL2 Tier = "L2"
	TierL3 Tier = "L3"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	switch t {
	case TierL1, TierL2, TierL3:
		return true
	}
	return false
}

// Depth returns the numeric level of the tier, 1 through 3. Unknown tiers
// sort after L3.
func (t Tier) Depth() int {
	switch t {
	case TierL1:
		return 1
	case TierL2:
		return 2
	case TierL3:
		return 3
	}
	return 4
}

// promotionTargets is the exhaustive one-step promotion table. Promotion only
// moves toward L1 and never skips a level; L1 is terminal.
var promotionTargets = map[Tier]Tier{
	TierL3: TierL2,
	TierL2: TierL1,
}

// PromotionTarget returns the tier a promotion from t lands on, and false
// when t has no outgoing promotion edge.
func (t Tier) PromotionTarget() (Tier, bool) {
	next, ok := promotionTargets[t]
	return next, ok
}

// CanPromoteTo reports whether from -> to is a legal single promotion step.
func CanPromoteTo(from, to Tier) bool {
	next, ok := promotionTargets[from]
	return ok && next == to
}
