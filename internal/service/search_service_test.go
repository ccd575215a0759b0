package service

import (
	"context"
	"errors"
	"testing"

	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/search"
)

func newSearchFixture(t *testing.T, topK int, entries ...domain.KnowledgeEntry) (*SearchService, *fakeEmbedder) {
	t.Helper()
	ranker, err := search.NewRanker(0.7, 0.3, topK)
	if err != nil {
		t.Fatalf("NewRanker: %v", err)
	}
	embedder := &fakeEmbedder{vector: []float32{1, 0, 0}}
	svc := NewSearchService(SearchDependencies{
		KnowledgeRepo: newFakeKnowledgeRepo(entries...),
		Embedder:      embedder,
		Ranker:        ranker,
	})
	return svc, embedder
}

func activeEntry(id string, tier domain.Tier, embedding []float32) domain.KnowledgeEntry {
	return domain.KnowledgeEntry{ID: id, Tier: tier, Active: true, Embedding: embedding}
}

func TestSearchFailsClosedOnEmbeddingError(t *testing.T) {
	svc, embedder := newSearchFixture(t, 5,
		activeEntry("kb-1", domain.TierL1, []float32{1, 0, 0}),
	)
	embedder.err = errBoom

	results, err := svc.Search(context.Background(), "reset password", nil, 5)
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected embed error, got %v", err)
	}
	if results != nil {
		t.Errorf("results = %+v, want nil", results)
	}
}

func TestSearchTierRestriction(t *testing.T) {
	svc, _ := newSearchFixture(t, 5,
		activeEntry("kb-l1", domain.TierL1, []float32{1, 0, 0}),
		activeEntry("kb-l2", domain.TierL2, []float32{1, 0, 0}),
		activeEntry("kb-l3", domain.TierL3, []float32{1, 0, 0}),
	)

	tier := domain.TierL2
	results, err := svc.Search(context.Background(), "query", &tier, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Entry.ID != "kb-l2" {
		t.Fatalf("results = %+v, want only kb-l2", results)
	}
}

func TestSearchSkipsInactiveEntries(t *testing.T) {
	svc, _ := newSearchFixture(t, 5,
		activeEntry("kb-live", domain.TierL1, []float32{1, 0, 0}),
		domain.KnowledgeEntry{ID: "kb-dead", Tier: domain.TierL1, Active: false, Embedding: []float32{1, 0, 0}},
	)

	results, err := svc.Search(context.Background(), "query", nil, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Entry.ID != "kb-live" {
		t.Fatalf("results = %+v, want only kb-live", results)
	}
}

func TestSearchDefaultsTopK(t *testing.T) {
	entries := make([]domain.KnowledgeEntry, 0, 6)
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		entries = append(entries, activeEntry("kb-"+id, domain.TierL1, []float32{1, 0, 0}))
	}
	svc, _ := newSearchFixture(t, 3, entries...)

	results, err := svc.Search(context.Background(), "query", nil, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d, want ranker default of 3", len(results))
	}
}

func TestCascadeWidensUntilFilled(t *testing.T) {
	svc, _ := newSearchFixture(t, 5,
		activeEntry("kb-l1", domain.TierL1, []float32{1, 0, 0}),
		activeEntry("kb-l2", domain.TierL2, []float32{0.9, 0.1, 0}),
		activeEntry("kb-l3", domain.TierL3, []float32{0.8, 0.2, 0}),
	)

	results, err := svc.CascadeSearch(context.Background(), "query", domain.TierL1, 2)
	if err != nil {
		t.Fatalf("CascadeSearch: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	// L1 is exhausted first, then L2 tops up the remainder. L3 is never
	// consulted because the quota is already met.
	if results[0].Entry.ID != "kb-l1" || results[1].Entry.ID != "kb-l2" {
		t.Errorf("order = [%s %s], want [kb-l1 kb-l2]", results[0].Entry.ID, results[1].Entry.ID)
	}
}

func TestCascadeStartsAtAssignedTier(t *testing.T) {
	svc, _ := newSearchFixture(t, 5,
		activeEntry("kb-l1", domain.TierL1, []float32{1, 0, 0}),
		activeEntry("kb-l2", domain.TierL2, []float32{1, 0, 0}),
		activeEntry("kb-l3", domain.TierL3, []float32{1, 0, 0}),
	)

	results, err := svc.CascadeSearch(context.Background(), "query", domain.TierL2, 5)
	if err != nil {
		t.Fatalf("CascadeSearch: %v", err)
	}
	for _, ranked := range results {
		if ranked.Entry.ID == "kb-l1" {
			t.Fatal("cascade must not reach back to shallower tiers")
		}
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want kb-l2 and kb-l3", len(results))
	}
}

func TestEmbedQueryWithoutCache(t *testing.T) {
	svc, embedder := newSearchFixture(t, 5)

	vector, err := svc.EmbedQuery(context.Background(), "query")
	if err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
	if len(vector) != 3 {
		t.Fatalf("vector = %v", vector)
	}
	if embedder.calls != 1 {
		t.Errorf("embedder calls = %d, want 1", embedder.calls)
	}
}
