package dto

import "github.com/spec-kit/supportiq/internal/domain"

// SearchRequest payload.
type SearchRequest struct {
	Query   string       `json:"query"`
	Tier    *domain.Tier `json:"tier"`
	TopK    int          `json:"top_k"`
	Cascade bool         `json:"cascade"`
}

// SearchResultItem is one ranked hit with its score breakdown.
type SearchResultItem struct {
	Entry         KnowledgeEntryResponse `json:"entry"`
	HybridScore   float64                `json:"hybrid_score"`
	SemanticScore float64                `json:"semantic_score"`
	KeywordScore  float64                `json:"keyword_score"`
	Similarity    float64                `json:"similarity"`
}

// SearchResponse response.
type SearchResponse struct {
	Query   string             `json:"query"`
	Results []SearchResultItem `json:"results"`
}
