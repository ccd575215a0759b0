package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/provider"
	"github.com/spec-kit/supportiq/internal/repository"
	"github.com/spec-kit/supportiq/internal/search"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

// SearchService performs hybrid retrieval over the knowledge base.
type SearchService struct {
	knowledge repository.KnowledgeRepository
	embedder  provider.Embedder
	ranker    *search.Ranker
	cache     *redis.Client
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// SearchDependencies bundles collaborators for the search service.
type SearchDependencies struct {
	KnowledgeRepo repository.KnowledgeRepository
	Embedder      provider.Embedder
	Ranker        *search.Ranker
	Cache         *redis.Client
	CacheTTL      time.Duration
	Logger        *zap.Logger
}

// NewSearchService constructs the service.
func NewSearchService(deps SearchDependencies) *SearchService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{
		knowledge: deps.KnowledgeRepo,
		embedder:  deps.Embedder,
		ranker:    deps.Ranker,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
		logger:    logger,
	}
}

// Search ranks active knowledge entries against the query, optionally
// restricted to one tier. An embedding failure fails the search closed;
// partial, keyword-only results would corrupt score comparability.
func (s *SearchService) Search(ctx context.Context, query string, tier *domain.Tier, topK int) ([]search.Ranked, error) {
	if topK <= 0 {
		topK = s.ranker.TopK()
	}
	vector, err := s.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	var tiers []domain.Tier
	if tier != nil {
		tiers = []domain.Tier{*tier}
	}
	entries, err := s.knowledge.ListActive(ctx, tiers)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.rank(query, vector, entries, topK), nil
}

// CascadeSearch starts at the given tier and widens to deeper tiers until
// topK results are collected. The per-tier grouping is preserved in the
// returned order.
func (s *SearchService) CascadeSearch(ctx context.Context, query string, startTier domain.Tier, topK int) ([]search.Ranked, error) {
	vector, err := s.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return s.CascadeWithVector(ctx, query, vector, startTier, topK)
}

// CascadeWithVector is CascadeSearch with a pre-computed query embedding,
// used by triage to avoid embedding the ticket text twice.
func (s *SearchService) CascadeWithVector(ctx context.Context, query string, vector []float32, startTier domain.Tier, topK int) ([]search.Ranked, error) {
	if topK <= 0 {
		topK = s.ranker.TopK()
	}

	results := make([]search.Ranked, 0, topK)
	for depth := startTier.Depth(); depth <= domain.TierL3.Depth() && len(results) < topK; depth++ {
		tier := tierAtDepth(depth)
		entries, err := s.knowledge.ListActive(ctx, []domain.Tier{tier})
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		results = append(results, s.rank(query, vector, entries, topK-len(results))...)
	}
	return results, nil
}

// EmbedQuery returns the query embedding, consulting the Redis cache first.
// Cache failures only log; the provider remains the source of truth.
func (s *SearchService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	key := embedCacheKey(query)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var vector []float32
			if err := json.Unmarshal(raw, &vector); err == nil && len(vector) == s.embedder.Dimension() {
				return vector, nil
			}
		} else if err != redis.Nil {
			s.logger.Debug("embedding cache read failed", zap.Error(err))
		}
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(vector); err == nil {
			if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Debug("embedding cache write failed", zap.Error(err))
			}
		}
	}
	return vector, nil
}

func (s *SearchService) rank(query string, vector []float32, entries []domain.KnowledgeEntry, topK int) []search.Ranked {
	index := search.NewCorpusIndex(entries)
	neighbors := index.Nearest(vector, index.Len())

	byID := make(map[string]domain.KnowledgeEntry, len(entries))
	for _, entry := range entries {
		byID[entry.ID] = entry
	}

	candidates := make([]search.Candidate, 0, len(neighbors))
	for _, neighbor := range neighbors {
		candidates = append(candidates, search.Candidate{
			Entry:      byID[neighbor.EntryID],
			Similarity: neighbor.Similarity,
		})
	}
	return s.ranker.RankTop(query, candidates, topK)
}

func tierAtDepth(depth int) domain.Tier {
	switch depth {
	case 1:
		return domain.TierL1
	case 2:
		return domain.TierL2
	default:
		return domain.TierL3
	}
}

func embedCacheKey(query string) string {
	sum := sha256.Sum256([]byte(query))
	return "embed:" + hex.EncodeToString(sum[:])
}
