package domain

import "testing"

func TestTierValid(t *testing.T) {
	for _, tier := range []Tier{TierL1, TierL2, TierL3} {
		if !tier.Valid() {
			t.Errorf("%s should be valid", tier)
		}
	}
	for _, tier := range []Tier{"", "L4", "l1"} {
		if tier.Valid() {
			t.Errorf("%q should be invalid", tier)
		}
	}
}

func TestCanPromoteTo(t *testing.T) {
	tests := []struct {
		from, to Tier
		want     bool
	}{
		{TierL3, TierL2, true},
		{TierL2, TierL1, true},
		{TierL3, TierL1, false}, // no skipping
		{TierL1, TierL2, false}, // no demotion direction
		{TierL2, TierL3, false},
		{TierL1, TierL1, false}, // terminal
	}
	for _, tt := range tests {
		if got := CanPromoteTo(tt.from, tt.to); got != tt.want {
			t.Errorf("CanPromoteTo(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPromotionTarget(t *testing.T) {
	if next, ok := TierL3.PromotionTarget(); !ok || next != TierL2 {
		t.Errorf("L3 target = %s ok=%v", next, ok)
	}
	if next, ok := TierL2.PromotionTarget(); !ok || next != TierL1 {
		t.Errorf("L2 target = %s ok=%v", next, ok)
	}
	if _, ok := TierL1.PromotionTarget(); ok {
		t.Error("L1 must have no promotion target")
	}
}

func TestTierDepthOrdering(t *testing.T) {
	if !(TierL1.Depth() < TierL2.Depth() && TierL2.Depth() < TierL3.Depth()) {
		t.Fatal("tier depths out of order")
	}
	if Tier("bogus").Depth() <= TierL3.Depth() {
		t.Fatal("unknown tier must sort after L3")
	}
}

func TestValidStatusTransition(t *testing.T) {
	tests := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusOpen, TicketStatusInProgress, true},
		{TicketStatusOpen, TicketStatusResolved, true},
		{TicketStatusInProgress, TicketStatusResolved, true},
		{TicketStatusEscalated, TicketStatusResolved, true},
		{TicketStatusResolved, TicketStatusClosed, true},
		{TicketStatusResolved, TicketStatusInProgress, true}, // reopen
		{TicketStatusClosed, TicketStatusOpen, false},
		{TicketStatusClosed, TicketStatusResolved, false},
		{TicketStatusOpen, TicketStatusClosed, false},
	}
	for _, tt := range tests {
		if got := ValidStatusTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("ValidStatusTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestSourceForTier(t *testing.T) {
	tests := []struct {
		tier Tier
		want ResolutionSource
	}{
		{TierL1, ResolutionSourceL1KB},
		{TierL2, ResolutionSourceL2KB},
		{TierL3, ResolutionSourceL3KB},
		{"", ResolutionSourceManual},
	}
	for _, tt := range tests {
		if got := SourceForTier(tt.tier); got != tt.want {
			t.Errorf("SourceForTier(%q) = %s, want %s", tt.tier, got, tt.want)
		}
	}
}
