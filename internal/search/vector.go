package search

import (
	"math"
	"sort"

	"github.com/spec-kit/supportiq/internal/domain"
)

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value in [-1,1], or 0 for mismatched or zero-norm inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Neighbor is a similarity-search hit.
type Neighbor struct {
	EntryID    string
	Similarity float64
}

// CorpusIndex answers nearest-neighbor queries over a point-in-time snapshot
// of knowledge entries. It is read-only after construction, so independent
// queries may run in parallel.
type CorpusIndex struct {
	entries []domain.KnowledgeEntry
}

// NewCorpusIndex builds an index over the snapshot, skipping entries with no
// embedding.
func NewCorpusIndex(entries []domain.KnowledgeEntry) *CorpusIndex {
	indexed := make([]domain.KnowledgeEntry, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Embedding) == 0 {
			continue
		}
		indexed = append(indexed, entry)
	}
	return &CorpusIndex{entries: indexed}
}

// Len returns the number of indexed entries.
func (ci *CorpusIndex) Len() int {
	return len(ci.entries)
}

// Nearest returns up to k neighbors ordered by descending raw cosine
// similarity. k <= 0 or an empty corpus yields an empty result.
func (ci *CorpusIndex) Nearest(query []float32, k int) []Neighbor {
	if k <= 0 || len(ci.entries) == 0 || len(query) == 0 {
		return []Neighbor{}
	}

	neighbors := make([]Neighbor, 0, len(ci.entries))
	for _, entry := range ci.entries {
		neighbors = append(neighbors, Neighbor{
			EntryID:    entry.ID,
			Similarity: CosineSimilarity(query, entry.Embedding),
		})
	}
	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})
	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors
}
