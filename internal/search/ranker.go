// Package search implements hybrid retrieval over the knowledge base:
// cosine similarity blended with keyword overlap under a convex weight.
package search

import (
	"math"
	"sort"

	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/scoring"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

const weightEpsilon = 1e-9

// Candidate pairs a knowledge entry with its raw cosine similarity to the
// query, in [-1,1].
type Candidate struct {
	Entry      domain.KnowledgeEntry
	Similarity float64
}

// Ranked is a candidate with its scored components. HybridScore lies in
// [0,1] given well-formed inputs.
type Ranked struct {
	Entry         domain.KnowledgeEntry
	Similarity    float64
	KeywordScore  float64
	SemanticScore float64
	HybridScore   float64
}

// Ranker combines semantic and keyword signals into a single ordering. It is
// pure over a provided candidate snapshot and safe for concurrent use.
type Ranker struct {
	semanticWeight float64
	keywordWeight  float64
	topK           int
}

// NewRanker validates the convex-weight invariant and constructs a ranker.
// The weights are rejected, never renormalized, when they do not sum to 1.0.
func NewRanker(semanticWeight, keywordWeight float64, topK int) (*Ranker, error) {
	if math.Abs(semanticWeight+keywordWeight-1.0) > weightEpsilon {
		return nil, apperrors.NewConfigurationError("ranker weights must sum to 1.0", map[string]any{
			"semantic_weight": semanticWeight,
			"keyword_weight":  keywordWeight,
		})
	}
	if semanticWeight < 0 || keywordWeight < 0 {
		return nil, apperrors.NewConfigurationError("ranker weights must be non-negative", nil)
	}
	if topK < 0 {
		topK = 0
	}
	return &Ranker{semanticWeight: semanticWeight, keywordWeight: keywordWeight, topK: topK}, nil
}

// TopK returns the configured result cap.
func (r *Ranker) TopK() int {
	return r.topK
}

// NormalizeSimilarity rescales cosine similarity from [-1,1] to [0,1] so the
// weighted sum stays bounded and monotonic.
func NormalizeSimilarity(sim float64) float64 {
	rescaled := (sim + 1) / 2
	if rescaled < 0 {
		return 0
	}
	if rescaled > 1 {
		return 1
	}
	return rescaled
}

// Rank scores every candidate against the query text and returns the top-K
// in descending hybrid order. Ties break on higher raw similarity, then on
// the lower knowledge tier. An empty candidate set yields an empty slice.
func (r *Ranker) Rank(queryText string, candidates []Candidate) []Ranked {
	return r.RankTop(queryText, candidates, r.topK)
}

// RankTop is Rank with an explicit result cap. k = 0 yields an empty slice.
func (r *Ranker) RankTop(queryText string, candidates []Candidate, k int) []Ranked {
	if k <= 0 || len(candidates) == 0 {
		return []Ranked{}
	}

	ranked := make([]Ranked, 0, len(candidates))
	for _, candidate := range candidates {
		semantic := NormalizeSimilarity(candidate.Similarity)
		keyword := scoring.Overlap(queryText, candidate.Entry.Keywords)
		ranked = append(ranked, Ranked{
			Entry:         candidate.Entry,
			Similarity:    candidate.Similarity,
			KeywordScore:  keyword,
			SemanticScore: semantic,
			HybridScore:   r.semanticWeight*semantic + r.keywordWeight*keyword,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].HybridScore != ranked[j].HybridScore {
			return ranked[i].HybridScore > ranked[j].HybridScore
		}
		if ranked[i].Similarity != ranked[j].Similarity {
			return ranked[i].Similarity > ranked[j].Similarity
		}
		// Equal relevance prefers the cheaper self-service tier.
		return ranked[i].Entry.Tier.Depth() < ranked[j].Entry.Tier.Depth()
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
