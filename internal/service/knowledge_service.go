package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/supportiq/internal/domain"
	"github.com/spec-kit/supportiq/internal/provider"
	"github.com/spec-kit/supportiq/internal/repository"
	apperrors "github.com/spec-kit/supportiq/pkg/util"
)

// KnowledgeService manages knowledge base entries.
type KnowledgeService struct {
	knowledge repository.KnowledgeRepository
	embedder  provider.Embedder
	logger    *zap.Logger
}

// KnowledgeDependencies bundles collaborators for the knowledge service.
type KnowledgeDependencies struct {
	KnowledgeRepo repository.KnowledgeRepository
	Embedder      provider.Embedder
	Logger        *zap.Logger
}

// NewKnowledgeService constructs the service.
func NewKnowledgeService(deps KnowledgeDependencies) *KnowledgeService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KnowledgeService{
		knowledge: deps.KnowledgeRepo,
		embedder:  deps.Embedder,
		logger:    logger,
	}
}

// CreateEntryInput carries new entry fields.
type CreateEntryInput struct {
	Tier     domain.Tier
	Title    string
	Content  string
	Keywords []string
	Category string
}

// CreateEntry persists a new knowledge entry with a fresh content embedding.
// An embedding failure rejects the entry; an unembedded entry would be
// invisible to semantic search.
func (s *KnowledgeService) CreateEntry(ctx context.Context, input CreateEntryInput) (domain.KnowledgeEntry, error) {
	if strings.TrimSpace(input.Title) == "" {
		return domain.KnowledgeEntry{}, apperrors.NewValidationError("title is required", nil)
	}
	if strings.TrimSpace(input.Content) == "" {
		return domain.KnowledgeEntry{}, apperrors.NewValidationError("content is required", nil)
	}
	if !input.Tier.Valid() {
		return domain.KnowledgeEntry{}, apperrors.NewValidationError("tier must be one of L1, L2, L3", nil)
	}

	embedding, err := s.embedder.Embed(ctx, input.Title+" "+input.Content)
	if err != nil {
		return domain.KnowledgeEntry{}, err
	}

	keywords := make([]string, 0, len(input.Keywords))
	for _, keyword := range input.Keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" {
			keywords = append(keywords, keyword)
		}
	}

	now := time.Now().UTC()
	entry := domain.KnowledgeEntry{
		ID:          uuid.NewString(),
		ExternalKey: generateEntryKey(),
		Tier:        input.Tier,
		Title:       input.Title,
		Content:     input.Content,
		Keywords:    keywords,
		Category:    strings.ToLower(strings.TrimSpace(input.Category)),
		Embedding:   embedding,
		Active:      true,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.knowledge.Create(ctx, &entry); err != nil {
		return domain.KnowledgeEntry{}, apperrors.MapError(err)
	}

	s.logger.Info("knowledge entry created",
		zap.String("entry_id", entry.ID),
		zap.String("tier", string(entry.Tier)),
		zap.String("category", entry.Category))
	return entry, nil
}

// GetEntry returns an entry by id.
func (s *KnowledgeService) GetEntry(ctx context.Context, id string) (domain.KnowledgeEntry, error) {
	entry, err := s.knowledge.GetByID(ctx, id)
	if err != nil {
		return domain.KnowledgeEntry{}, apperrors.MapError(err)
	}
	return *entry, nil
}

// ListEntries returns entries matching the filter.
func (s *KnowledgeService) ListEntries(ctx context.Context, filter repository.KnowledgeFilter) ([]domain.KnowledgeEntry, error) {
	entries, err := s.knowledge.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

// Categories returns the distinct categories present in the knowledge base.
func (s *KnowledgeService) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.knowledge.Categories(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

func generateEntryKey() string {
	return "KB-" + strings.ToUpper(uuid.NewString()[:8])
}
